package control

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/physics"
)

func defaultFloor() *Floor {
	return &Floor{SpeedSq: config.DefaultFloorSpeedSq, Boost: config.DefaultFloorBoost, Jitter: config.DefaultFloorJitter}
}

func TestFloorBoostsSlowBodies(t *testing.T) {
	f := defaultFloor()
	rng := rand.New(rand.NewSource(7))

	tests := []dynamo.Vec{
		dynamo.V(0, 0),
		dynamo.V(0.01, 0),
		dynamo.V(0.3, -0.2),
		dynamo.V(-0.49, 0),
		dynamo.V(0.35, 0.35),
	}
	for _, v := range tests {
		for i := 0; i < 100; i++ {
			got := f.Govern(v, rng)
			if got.Len() < v.Len()*f.Boost-1e-12 {
				t.Fatalf("%v: governed speed %f below boost %f", v, got.Len(), v.Len()*f.Boost)
			}
			if got.Len() <= v.Len() {
				t.Fatalf("%v: speed did not increase (%f)", v, got.Len())
			}
		}
	}
}

func TestFloorJitterBounds(t *testing.T) {
	f := defaultFloor()
	rng := rand.New(rand.NewSource(3))
	v := dynamo.V(0.2, 0.1)
	base := v.Scale(f.Boost)
	for i := 0; i < 200; i++ {
		d := f.Govern(v, rng).Sub(base)
		if math.Abs(d.X) > f.Jitter/2 || math.Abs(d.Y) > f.Jitter/2 {
			t.Fatalf("jitter %v outside ±%f", d, f.Jitter/2)
		}
	}
}

func TestFloorIgnoresFastBodies(t *testing.T) {
	f := defaultFloor()
	v := dynamo.V(0.5, 0)
	if got := f.Govern(v, rand.New(rand.NewSource(1))); got != v {
		t.Errorf("speed 0.5 is at the floor, expected unchanged, got %v", got)
	}
}

func TestCeiling(t *testing.T) {
	c := &Ceiling{Speed: 3.5, Damp: 0.98}
	tests := []struct {
		name string
		in   dynamo.Vec
		want dynamo.Vec
	}{
		{"below cap", dynamo.V(1, 2), dynamo.V(1, 2)},
		{"at cap", dynamo.V(3.5, 0), dynamo.V(3.5, 0)},
		{"above cap", dynamo.V(4, 0), dynamo.V(3.92, 0)},
		{"diagonal", dynamo.V(3, -3), dynamo.V(2.94, -2.94)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Govern(tt.in, nil); got.Dist(tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewGovernor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{config.GovernorFloor, config.GovernorFloor},
		{config.GovernorCeiling, config.GovernorCeiling},
		{config.GovernorNone, config.GovernorNone},
		{"", config.GovernorNone},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig().Field
		cfg.Governor = tt.name
		g, err := NewGovernor(cfg)
		if err != nil {
			t.Fatalf("%q: %v", tt.name, err)
		}
		if g.Name() != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.name, tt.want, g.Name())
		}
	}

	cfg := config.DefaultConfig().Field
	cfg.Governor = "turbo"
	if _, err := NewGovernor(cfg); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func newScene(t *testing.T, cfg *config.Config, seed int64, vels ...dynamo.Vec) (*physics.World, *physics.Registry, *Field) {
	t.Helper()
	w := physics.NewWorld(cfg.Timing, cfg.Gravity)
	reg := physics.NewRegistry(w, cfg.Bodies)
	for i, v := range vels {
		// far apart so bodies never touch
		pos := dynamo.V(float64(i)*1000, 0)
		if _, err := reg.AddBody(physics.BodySpec{ID: string(rune('a' + i)), Pos: pos, Vel: v, Radius: 40}); err != nil {
			t.Fatal(err)
		}
	}
	f, err := NewField(reg, cfg.Field, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}
	w.BeforeStep(f.Apply)
	return w, reg, f
}

func TestFieldForceProportionalToMass(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Field.Governor = config.GovernorNone
	_, reg, f := newScene(t, cfg, 11, dynamo.V(1, 0), dynamo.V(0, 1))

	for i := 0; i < 50; i++ {
		f.Apply()
		reg.Each(func(b *physics.Body) {
			limit := 0.5 * cfg.Field.Current * b.Mass()
			got := b.Force()
			if math.Abs(got.X) > limit+1e-15 || math.Abs(got.Y) > limit+1e-15 {
				t.Fatalf("force %v exceeds %g", got, limit)
			}
			b.ApplyForce(got.Scale(-1))
		})
	}
}

func TestFieldDeterministic(t *testing.T) {
	run := func() []dynamo.Vec {
		w, reg, _ := newScene(t, config.DefaultConfig(), 42, dynamo.V(0, 0), dynamo.V(0.2, 0.1), dynamo.V(2, 2))
		for i := 0; i < 30; i++ {
			w.Step()
		}
		var out []dynamo.Vec
		reg.Each(func(b *physics.Body) { out = append(out, b.Position(), b.Velocity()) })
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded runs diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFloorStepIncreasesSpeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Field.Current = 0
	vels := []dynamo.Vec{dynamo.V(0, 0), dynamo.V(0.1, 0), dynamo.V(0, -0.3), dynamo.V(0.3, 0.39)}
	w, reg, _ := newScene(t, cfg, 5, vels...)

	for step := 0; step < 20; step++ {
		before := map[string]float64{}
		reg.Each(func(b *physics.Body) { before[b.ID()] = b.Velocity().LenSq() })
		w.Step()
		reg.Each(func(b *physics.Body) {
			pre := before[b.ID()]
			if pre >= cfg.Field.FloorSpeedSq {
				return
			}
			if post := b.Velocity().LenSq(); post <= pre {
				t.Fatalf("step %d body %s: speed² %g did not exceed %g", step, b.ID(), post, pre)
			}
		})
	}
}

func TestCeilingStepSlowsFastBodies(t *testing.T) {
	cfg, _ := config.GetPreset("brisk")
	cfg.Field.Current = 0
	w, reg, f := newScene(t, cfg, 9, dynamo.V(6, 0))
	if f.Governor().Name() != config.GovernorCeiling {
		t.Fatalf("expected ceiling governor, got %s", f.Governor().Name())
	}

	w.Step()
	b, _ := reg.Body("a")
	want := 6 * cfg.Field.CeilingDamp * (1 - cfg.Bodies.FrictionAir)
	if got := b.Velocity().X; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestFieldUse(t *testing.T) {
	_, _, f := newScene(t, config.DefaultConfig(), 1)
	cfg := config.DefaultConfig().Field
	cfg.Governor = config.GovernorCeiling
	gov, err := NewGovernor(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.Use(gov, 0)
	if f.Governor().Name() != config.GovernorCeiling {
		t.Errorf("use did not swap governor")
	}
	cfg.Governor = "bogus"
	if _, err := NewGovernor(cfg); err == nil {
		t.Error("expected error for unknown governor")
	}
}
