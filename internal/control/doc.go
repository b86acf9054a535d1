// Package control implements the pursuit control law.
//
// Given the pose of the controlled agent and the pose of the target, a
// [Pursuit] computes a [Command] in one of two modes:
//
//   - [Approaching]: distance >= tolerance. Linear speed is proportional to
//     distance, angular speed is proportional to the heading error.
//   - [Holding]: distance < tolerance. The command is a full stop.
//
// The heading error is bearing minus agent heading and is not wrapped into
// (-pi, pi] unless [Gains.WrapHeading] is set.
//
// # Usage
//
//	law := control.NewPursuit(control.Gains{Speed: 1, Angular: 5, Tolerance: 1})
//	cmd := law.Compute(agent, target)
//
// Pursuit supports live tuning through Params and SetParam. It is not safe
// for concurrent use; tune it from the goroutine that evaluates it.
package control
