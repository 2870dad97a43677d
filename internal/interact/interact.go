// Package interact turns taps into ripples and radial pushes.
package interact

import (
	"time"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/expiry"
	"github.com/san-kum/seaglass/internal/physics"
)

// Origin is the kind of UI element a tap landed on.
type Origin int

const (
	OriginScene Origin = iota
	OriginButton
	OriginInput
	OriginTextArea
)

func (o Origin) Interactive() bool { return o != OriginScene }

func (o Origin) String() string {
	switch o {
	case OriginScene:
		return "scene"
	case OriginButton:
		return "button"
	case OriginInput:
		return "input"
	case OriginTextArea:
		return "textarea"
	}
	return "unknown"
}

// Ripple is a purely visual marker; the physics step never reads it.
type Ripple struct {
	ID      uint64
	At      dynamo.Vec
	Born    time.Time
	Expires time.Time
}

// Push records the force one tap applied to one body, in scene units.
type Push struct {
	ID       string
	Distance float64
	Force    dynamo.Vec
}

type Dispatcher struct {
	reg      *physics.Registry
	radius   float64
	strength float64
	ripples  *expiry.Set[Ripple]
}

func New(reg *physics.Registry, cfg config.InteractionConfig) *Dispatcher {
	return &Dispatcher{
		reg:      reg,
		radius:   cfg.PushRadius,
		strength: cfg.PushStrength,
		ripples:  expiry.New[Ripple](cfg.RippleTTL),
	}
}

func (d *Dispatcher) Tune(cfg config.InteractionConfig) {
	d.radius = cfg.PushRadius
	d.strength = cfg.PushStrength
	d.ripples.SetTTL(cfg.RippleTTL)
}

// Tap handles a pointer press at p. Taps on interactive controls are
// ignored and report false. Otherwise a ripple is recorded and every
// dynamic body closer than the push radius receives a force of
// (1 - dist/radius) * strength * mass directed away from p.
func (d *Dispatcher) Tap(p dynamo.Vec, origin Origin, now time.Time) ([]Push, bool) {
	if origin.Interactive() || !p.IsValid() {
		return nil, false
	}

	d.ripples.Insert(Ripple{At: p, Born: now}, now)

	var pushes []Push
	d.reg.Each(func(b *physics.Body) {
		if b.Static() {
			return
		}
		delta := b.Position().Sub(p)
		dist := delta.Len()
		if dist >= d.radius {
			return
		}
		mag := (1 - dist/d.radius) * d.strength * b.Mass()
		denom := dist
		if denom == 0 {
			denom = 1
		}
		f := delta.Scale(mag / denom)
		b.ApplyForce(f)
		pushes = append(pushes, Push{ID: b.ID(), Distance: dist, Force: f})
	})
	return pushes, true
}

// Ripples returns the ripples alive at now, oldest first.
func (d *Dispatcher) Ripples(now time.Time) []Ripple {
	items := d.ripples.Items(now)
	out := make([]Ripple, len(items))
	for i, it := range items {
		r := it.Value
		r.ID, r.Expires = it.ID, it.Expires
		out[i] = r
	}
	return out
}

// Sweep forgets expired ripples. Reads are correct without it.
func (d *Dispatcher) Sweep(now time.Time) int { return d.ripples.Sweep(now) }

// NextExpiry reports when the oldest live ripple should disappear.
func (d *Dispatcher) NextExpiry() (time.Time, bool) { return d.ripples.NextExpiry() }
