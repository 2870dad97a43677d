// Package viz is the terminal front-end of the shard scene.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Live]: the scene model; taps, tilt, notes and motion toggle
//   - [Canvas]: Braille-based pixel canvas with per-cell tint
//   - [CanvasProjector]: render target fed by the scene's synchronizer
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	click - Ripple and push nearby shards
//	A     - Write a note (Tab cycles the category)
//	D     - Delete the selected note
//	M     - Toggle motion gravity
//	←↑↓→  - Tilt
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
