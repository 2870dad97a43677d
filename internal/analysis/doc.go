// Package analysis looks at recorded scene series.
//
// The shards should drift without settling into a rhythm. [Spectrum] turns a
// mean-speed series into a power spectrum so a run can be checked for a
// dominant oscillation:
//
//	s := analysis.Spectrum(speeds, 60)
//	f, _ := s.Dominant()
package analysis
