package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

type PowerSpectrum struct {
	// Freqs[i] is the frequency in Hz of Power[i].
	Freqs []float64
	Power []float64
}

// Spectrum returns the one-sided power spectrum of series sampled at
// sampleHz. The mean is removed and a Hann window applied first.
func Spectrum(series []float64, sampleHz float64) PowerSpectrum {
	n := len(series)
	if n < 2 || sampleHz <= 0 {
		return PowerSpectrum{}
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range series {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}
	spectrum := fft.FFTReal(windowed)

	half := n/2 + 1
	ps := PowerSpectrum{Freqs: make([]float64, half), Power: make([]float64, half)}
	for i := range half {
		ps.Freqs[i] = float64(i) * sampleHz / float64(n)
		mag := cmplx.Abs(spectrum[i])
		ps.Power[i] = mag * mag / float64(n)
	}
	return ps
}

// Dominant returns the strongest non-zero frequency and its power.
func (p PowerSpectrum) Dominant() (freq, power float64) {
	for i := 1; i < len(p.Power); i++ {
		if p.Power[i] > power {
			freq, power = p.Freqs[i], p.Power[i]
		}
	}
	return freq, power
}

// Flatness is the ratio of geometric to arithmetic mean power, skipping DC.
// Noise-like drift is close to 1, a single tone close to 0.
func (p PowerSpectrum) Flatness() float64 {
	if len(p.Power) < 2 {
		return 0
	}
	logSum, sum, n := 0.0, 0.0, 0
	for _, v := range p.Power[1:] {
		v = math.Max(v, 1e-300)
		logSum += math.Log(v)
		sum += v
		n++
	}
	if sum == 0 {
		return 0
	}
	return math.Exp(logSum/float64(n)) / (sum / float64(n))
}
