// Package metrics scores scene frames: kinetic energy, mean speed and how
// many shards sit inside the governor's speed band.
package metrics

import (
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
)

// Metric accumulates over frames. Value reports the aggregate so far.
type Metric interface {
	Name() string
	Observe(states []dynamo.BodyState)
	Value() float64
	Reset()
}

// Frame summarises a single snapshot.
type Frame struct {
	Bodies    int
	Kinetic   float64
	MeanSpeed float64
	MaxSpeed  float64
}

func Measure(states []dynamo.BodyState) Frame {
	var f Frame
	for _, s := range states {
		if s.Static {
			continue
		}
		v := s.Speed()
		f.Bodies++
		f.Kinetic += 0.5 * s.Mass * v * v
		f.MeanSpeed += v
		f.MaxSpeed = max(f.MaxSpeed, v)
	}
	if f.Bodies > 0 {
		f.MeanSpeed /= float64(f.Bodies)
	}
	return f
}

// Standard returns the metrics a recorded run reports, with the band taken
// from the field profile.
func Standard(cfg config.FieldConfig) []Metric {
	return []Metric{
		NewKinetic(),
		NewMeanSpeed(),
		NewBand(cfg.FloorSpeedSq, cfg.CeilingSpeed),
	}
}
