package dynamo

import (
	"fmt"
	"math"
)

// State is a plant state vector. For a motor axis it is
// [position rad, velocity rad/s] on the mechanism side of the gearbox.
type State []float64

// Finite reports whether every entry is a real number.
func (s State) Finite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is a plant input vector, volts for a motor.
type Control []float64

// System is dX/dt = f(X, u, t). Derive writes the derivative into dx,
// which has StateDim entries and never aliases x.
type System interface {
	Derive(dx, x State, u Control, t float64)
	StateDim() int
	ControlDim() int
}

// Integrator advances x by dt and writes the result into dst. dst may
// alias x.
type Integrator interface {
	Step(sys System, dst, x State, u Control, t, dt float64)
}

// Check verifies x and u match the dimensions sys declares.
func Check(sys System, x State, u Control) error {
	if len(x) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d values, system wants %d", ErrDimensionMismatch, len(x), sys.StateDim())
	}
	if len(u) != sys.ControlDim() {
		return fmt.Errorf("%w: control has %d values, system wants %d", ErrDimensionMismatch, len(u), sys.ControlDim())
	}
	return nil
}

// Advance steps x in place. A step that produces NaN or Inf is discarded,
// x keeps its previous value and ErrInvalidState is returned.
func Advance(integ Integrator, sys System, x State, u Control, t, dt float64, scratch State) error {
	integ.Step(sys, scratch, x, u, t, dt)
	if !scratch.Finite() {
		return fmt.Errorf("%w at t=%.4f", ErrInvalidState, t)
	}
	copy(x, scratch)
	return nil
}
