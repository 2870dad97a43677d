package control

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
)

type Governor interface {
	Name() string
	Govern(v dynamo.Vec, rng *rand.Rand) dynamo.Vec
}

// Floor scales up any velocity whose squared speed is below SpeedSq and
// adds per-axis jitter in [-Jitter/2, Jitter/2]. Of the two jitter signs it
// keeps the faster result, so the governed speed is never below Boost times
// the incoming speed.
type Floor struct {
	SpeedSq float64
	Boost   float64
	Jitter  float64
}

func (f *Floor) Name() string { return config.GovernorFloor }

func (f *Floor) Govern(v dynamo.Vec, rng *rand.Rand) dynamo.Vec {
	if v.LenSq() >= f.SpeedSq {
		return v
	}
	j := dynamo.V((rng.Float64()-0.5)*f.Jitter, (rng.Float64()-0.5)*f.Jitter)
	base := v.Scale(f.Boost)
	plus, minus := base.Add(j), base.Sub(j)
	if minus.LenSq() > plus.LenSq() {
		return minus
	}
	return plus
}

// Ceiling multiplies any velocity faster than Speed by Damp.
type Ceiling struct {
	Speed float64
	Damp  float64
}

func (c *Ceiling) Name() string { return config.GovernorCeiling }

func (c *Ceiling) Govern(v dynamo.Vec, _ *rand.Rand) dynamo.Vec {
	if v.LenSq() <= c.Speed*c.Speed {
		return v
	}
	return v.Scale(c.Damp)
}

type None struct{}

func (None) Name() string                                 { return config.GovernorNone }
func (None) Govern(v dynamo.Vec, _ *rand.Rand) dynamo.Vec { return v }

func NewGovernor(cfg config.FieldConfig) (Governor, error) {
	switch cfg.Governor {
	case config.GovernorFloor:
		return &Floor{SpeedSq: cfg.FloorSpeedSq, Boost: cfg.FloorBoost, Jitter: cfg.FloorJitter}, nil
	case config.GovernorCeiling:
		return &Ceiling{Speed: cfg.CeilingSpeed, Damp: cfg.CeilingDamp}, nil
	case config.GovernorNone, "":
		return None{}, nil
	}
	return nil, fmt.Errorf("governor %q: %w", cfg.Governor, dynamo.ErrParameterBounds)
}
