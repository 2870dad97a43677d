package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/san-kum/seaglass/internal/dynamo"
)

// BodySpec describes a shard body at creation time. Zero restitution and
// air friction fall back to the registry defaults.
type BodySpec struct {
	ID          string
	Pos         dynamo.Vec
	Vel         dynamo.Vec
	Radius      float64
	Restitution float64
	FrictionAir float64
}

// Body is a dynamic circle. Its radius and mass are fixed for its lifetime.
type Body struct {
	id          string
	world       *World
	body        *cp.Body
	shape       *cp.Shape
	radius      float64
	frictionAir float64
}

const shardFriction = 0.1

func newBody(w *World, spec BodySpec, density float64) *Body {
	mass := density * cp.AreaForCircle(0, spec.Radius)
	cb := cp.NewBody(mass, cp.MomentForCircle(mass, 0, spec.Radius, cp.Vector{}))
	cb.SetPosition(cpv(spec.Pos))
	cb.SetVelocityVector(cpv(spec.Vel))

	air := spec.FrictionAir
	cb.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(b, gravity, damping*(1-air), dt)
	})

	shape := cp.NewCircle(cb, spec.Radius, cp.Vector{})
	shape.SetElasticity(spec.Restitution)
	shape.SetFriction(shardFriction)

	b := &Body{id: spec.ID, world: w, body: cb, shape: shape, radius: spec.Radius, frictionAir: air}
	cb.UserData = b
	return b
}

func (b *Body) attach() {
	b.world.space.AddBody(b.body)
	b.world.space.AddShape(b.shape)
}

func (b *Body) detach() {
	b.world.space.RemoveShape(b.shape)
	b.world.space.RemoveBody(b.body)
}

func (b *Body) ID() string               { return b.id }
func (b *Body) Radius() float64          { return b.radius }
func (b *Body) Mass() float64            { return b.body.Mass() }
func (b *Body) Angle() float64           { return b.body.Angle() }
func (b *Body) Restitution() float64     { return b.shape.Elasticity() }
func (b *Body) FrictionAir() float64     { return b.frictionAir }
func (b *Body) Static() bool             { return b.body.GetType() == cp.BODY_STATIC }
func (b *Body) Position() dynamo.Vec     { return vec(b.body.Position()) }
func (b *Body) Velocity() dynamo.Vec     { return vec(b.body.Velocity()) }
func (b *Body) SetPosition(p dynamo.Vec) { b.body.SetPosition(cpv(p)) }
func (b *Body) SetVelocity(v dynamo.Vec) { b.body.SetVelocityVector(cpv(v)) }

// ApplyForce accumulates f at the centre of mass until the next step.
func (b *Body) ApplyForce(f dynamo.Vec) {
	g := b.world.gain
	b.body.ApplyForceAtWorldPoint(cp.Vector{X: f.X * g, Y: f.Y * g}, b.body.Position())
}

// Force is the force accumulated since the last step, in scene units.
func (b *Body) Force() dynamo.Vec {
	return vec(b.body.Force()).Scale(1 / b.world.gain)
}

func (b *Body) State() dynamo.BodyState {
	return dynamo.BodyState{
		ID:     b.id,
		Pos:    b.Position(),
		Vel:    b.Velocity(),
		Angle:  b.Angle(),
		Radius: b.radius,
		Mass:   b.Mass(),
		Static: b.Static(),
	}
}
