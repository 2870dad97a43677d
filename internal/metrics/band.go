package metrics

import (
	"math"

	"github.com/san-kum/seaglass/internal/dynamo"
)

// Band is the share of body samples whose speed lies within
// [sqrt(floorSq), ceiling]. An empty history counts as fully in band.
type Band struct {
	floor   float64
	ceiling float64
	inside  int
	samples int
}

func NewBand(floorSq, ceiling float64) *Band {
	return &Band{floor: math.Sqrt(floorSq), ceiling: ceiling}
}

func (b *Band) Name() string { return "in_band" }

func (b *Band) Observe(states []dynamo.BodyState) {
	for _, s := range states {
		if s.Static {
			continue
		}
		b.samples++
		if v := s.Speed(); v >= b.floor && v <= b.ceiling {
			b.inside++
		}
	}
}

func (b *Band) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return float64(b.inside) / float64(b.samples)
}

func (b *Band) Reset() {
	b.inside = 0
	b.samples = 0
}
