// Package viz renders a running trampball world in the terminal.
//
// The live view is a Bubble Tea program that draws the stage, walls,
// trampoline meshes and balls on a braille [Canvas] and ticks the world
// from its own update loop, so rendering and simulation never overlap.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	N          - Single step while paused
//	R          - Rebuild the world from its scene
//	Left/Right - Tilt gravity
//	Up/Down    - Strengthen/weaken gravity
//	+/-        - Slow motion divider
//	T          - Cycle themes
//	?          - Help
//	Q          - Quit
package viz
