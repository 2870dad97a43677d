// Package dynamo provides the core primitives shared by the shard scene.
//
// The package defines the small value types every other package speaks:
//
//   - [Vec]: 2D vector in scene units (y grows downward, like screen space)
//   - [Rect]: axis-aligned rectangle, used for the viewport and play area
//   - [BodyState]: read-only snapshot of one simulated body
//   - [Ring]: precomputed unit circle used to rasterise round shapes
//
// # Units
//
// Positions are layout units (pixels in a browser, sub-cells in a terminal).
// Velocities are units per physics tick, so the governor thresholds read the
// same regardless of the step rate.
package dynamo
