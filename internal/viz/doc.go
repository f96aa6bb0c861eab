// Package viz draws worlds in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Canvas]: braille dot grid; it satisfies body.Surface so bodies and
//     springs draw themselves onto it
//   - [Model]: live view that steps a scene, with mouse dragging
//   - a preset picker that tunes a config before launching the live view
//   - theme selection with four built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	V     - Reverse every bot
//	F     - Fire the next configured projectile
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
//
// # Recording
//
// The live view records sessions as GIF animations with the G key. Frames
// are written to botsim.gif unless SetGIFPath says otherwise.
package viz
