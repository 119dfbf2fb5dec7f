// Package control turns operator intent into drivetrain velocity commands.
//
// Controllers implement [Controller] and are polled once per tick with the
// latest sensor snapshot:
//
//   - [Teleop]: stick axes shaped by sensitivity curves
//   - [DriveForward]: timed robot-centric autonomous drive
//   - [None]: always commands zero velocity
//
// # Usage
//
//	sticks := control.NewManualAxes()
//	teleop, _ := control.NewTeleop(control.DefaultTeleopConfig(), trans, rot, sticks)
//	sticks.Set(control.Axes{LeftY: -1})
//	cmd := teleop.Compute(snap, t)
package control
