// Package physics adapts the Chipmunk2D port (github.com/jakecoffman/cp) to
// the shard scene.
//
//   - [World]: the space, its gravity field and the pre-step hooks
//   - [Body]: one circular shard body
//   - [Registry]: the id-keyed set of bodies and their mounted visuals
//   - [Boundary]: the four static walls enclosing the play area
//
// The space is stepped with dt = 1, so velocities are units per tick. Forces
// are given in per-millisecond² units and scaled by the world's force gain
// before they reach the engine:
//
//	w := physics.NewWorld(cfg.Timing, cfg.Gravity)
//	reg := physics.NewRegistry(w, cfg.Bodies)
//	b, _ := reg.AddBody(physics.BodySpec{ID: "a", Pos: dynamo.V(100, 100), Radius: 40})
//	b.ApplyForce(dynamo.V(0.001, 0))
//	w.Step()
package physics
