package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
)

const tick = 1.0

type World struct {
	space   *cp.Space
	gain    float64
	scale   float64
	gravity dynamo.Vec
	hooks   []func()
	steps   uint64
}

func NewWorld(timing config.TimingConfig, grav config.GravityConfig) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &World{space: space, gain: timing.ForceGain, scale: grav.Scale}
}

// ForceGain is the factor between scene force units and engine units.
func (w *World) ForceGain() float64 { return w.gain }

func (w *World) Gravity() dynamo.Vec { return w.gravity }

// SetGravity sets the normalised gravity direction, each axis in [-1, 1].
func (w *World) SetGravity(g dynamo.Vec) {
	w.gravity = g
	s := w.scale * w.gain
	w.space.SetGravity(cp.Vector{X: g.X * s, Y: g.Y * s})
}

// Tune applies new gain and gravity scale without touching bodies.
func (w *World) Tune(timing config.TimingConfig, grav config.GravityConfig) {
	w.gain = timing.ForceGain
	w.scale = grav.Scale
	w.SetGravity(w.gravity)
}

// BeforeStep registers fn to run immediately before every engine step.
func (w *World) BeforeStep(fn func()) {
	w.hooks = append(w.hooks, fn)
}

func (w *World) Step() {
	for _, fn := range w.hooks {
		fn()
	}
	w.space.Step(tick)
	w.steps++
}

func (w *World) Steps() uint64 { return w.steps }

// StaticCount reports the static bodies installed in the space.
func (w *World) StaticCount() int {
	n := 0
	w.space.EachBody(func(b *cp.Body) {
		if b.GetType() == cp.BODY_STATIC {
			n++
		}
	})
	return n
}

// DynamicCount reports the dynamic bodies installed in the space.
func (w *World) DynamicCount() int {
	n := 0
	w.space.EachBody(func(b *cp.Body) {
		if b.GetType() == cp.BODY_DYNAMIC {
			n++
		}
	})
	return n
}

func vec(v cp.Vector) dynamo.Vec { return dynamo.Vec{X: v.X, Y: v.Y} }
func cpv(v dynamo.Vec) cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }
