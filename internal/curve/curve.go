package curve

import (
	"errors"
	"math"
)

var (
	// ErrInvalidCurve indicates curve parameters outside their valid domain.
	ErrInvalidCurve = errors.New("curve: invalid parameters")

	// ErrDegenerateCusp indicates a hybrid cusp at full scale, which leaves
	// no room for the quadratic segment.
	ErrDegenerateCusp = errors.New("curve: cusp at full scale has no quadratic segment")
)

// Curve maps a raw axis value to a shaped output.
type Curve interface {
	Transfer(x float64) float64
}

// Func adapts a plain function to Curve.
type Func func(x float64) float64

func (f Func) Transfer(x float64) float64 { return f(x) }

// Identity passes values through unchanged.
var Identity Curve = Func(func(x float64) float64 { return x })

// MinLimit raises any non-zero value whose magnitude is below minValue to
// ±minValue. Zero passes through.
func MinLimit(value, minValue float64) float64 {
	abs := math.Abs(value)
	if abs > 0 && abs < minValue {
		if value > 0 {
			return minValue
		}
		return -minValue
	}
	return value
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func withSign(x, mag float64) float64 {
	if x >= 0 {
		return mag
	}
	return -mag
}
