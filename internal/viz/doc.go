// Package viz is the terminal driver station.
//
// [Station] is a Bubble Tea model that steps a live simulator once per
// control period and draws the robot on a braille [Canvas] that follows
// it around the field. The side panel shows enable and safety state,
// battery voltage, commands, current draw and a speed history.
//
// # Key Bindings
//
//	W/A/S/D - Translate
//	Q/E     - Rotate
//	Space   - Emergency stop
//	R       - Reset e-stop (honoured only while disabled)
//	T       - Toggle enabled
//	[ / ]   - Battery voltage down/up
//	O       - Reset pose to the origin
//	Tab     - Cycle tunable curve parameters
//	Up/Down - Scale the selected parameter by ±5%
//	P       - Pause
//	C       - Cycle palettes
//	?       - Show help overlay
//	Esc     - Quit
package viz
