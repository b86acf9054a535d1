// Package viz draws pursuit runs in the terminal with Bubble Tea.
//
//   - [Model]: live view of one experiment stepped in virtual time
//   - [Canvas]: Braille dot canvas with line and circle primitives
//   - [NewApp]: preset picker that opens the live view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the run
//	Tab   - Cycle gains, J/K lower/raise the selected one
//	WASD  - Drive a manual target
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
