// Package curve shapes raw joystick axis values before they become
// velocity commands.
//
// Two shapes are provided:
//
//   - [Piecewise]: deadzone followed by two linear segments meeting at a
//     configurable middle point
//   - [Hybrid]: deadzone, a proportional region up to a cusp, then a
//     quadratic blended for value and slope continuity at the cusp
//
// Both are odd-symmetric and clamp to a configured maximum. A shape is
// immutable once built; Reconfigure swaps the whole shape atomically so
// a concurrent Transfer never sees a half-updated parameter set.
package curve
