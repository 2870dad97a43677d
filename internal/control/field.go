package control

import (
	"math/rand"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/physics"
)

// Field is the autonomous current. Apply is meant to be registered with
// physics.World.BeforeStep.
type Field struct {
	reg     *physics.Registry
	rng     *rand.Rand
	current float64
	gov     Governor
}

func NewField(reg *physics.Registry, cfg config.FieldConfig, rng *rand.Rand) (*Field, error) {
	gov, err := NewGovernor(cfg)
	if err != nil {
		return nil, err
	}
	return &Field{reg: reg, rng: rng, current: cfg.Current, gov: gov}, nil
}

func (f *Field) Governor() Governor { return f.gov }

// Use swaps the governor policy and current strength.
func (f *Field) Use(gov Governor, current float64) {
	f.gov = gov
	f.current = current
}

func (f *Field) Apply() {
	f.reg.Each(func(b *physics.Body) {
		if b.Static() {
			return
		}
		m := b.Mass()
		b.ApplyForce(dynamo.V(
			(f.rng.Float64()-0.5)*f.current*m,
			(f.rng.Float64()-0.5)*f.current*m,
		))
		v := b.Velocity()
		if g := f.gov.Govern(v, f.rng); g != v {
			b.SetVelocity(g)
		}
	})
}
