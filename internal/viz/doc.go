// Package viz draws SIS trajectories in the terminal.
//
// [RenderChart] returns a static asciigraph chart of the susceptible and
// infected curves. [Show] wraps the same chart in a Bubble Tea program that
// stays open until the user quits.
//
// # Key Bindings
//
//	s     - Toggle the susceptible curve
//	i     - Toggle the infected curve
//	q/Esc - Quit
package viz
