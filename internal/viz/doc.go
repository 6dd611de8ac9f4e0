// Package viz renders the particle background in the terminal.
//
// [Model] is a Bubble Tea model that advances a particle system on every
// tick, composites its surface over the page gradient and draws the result
// with a braille [Canvas] beside a status panel.
//
// # Key Bindings
//
//	←/→   - Previous/next section (pattern)
//	1-5   - Jump to a section
//	Space - Pause/Resume
//	G     - Toggle GIF recording
//	T     - Cycle color themes
//	?     - Show help overlay
//
// # Recording
//
// Recordings are saved to the output directory as chladni-<run>.gif.
package viz
