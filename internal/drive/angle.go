package drive

import "math"

// Rotation is a planar angle in radians.
type Rotation float64

func RotationFromDegrees(deg float64) Rotation {
	return Rotation(deg * math.Pi / 180)
}

func (r Rotation) Radians() float64 { return float64(r) }

func (r Rotation) Degrees() float64 { return float64(r) * 180 / math.Pi }

// Wrapped returns r normalized into [-π, π).
func (r Rotation) Wrapped() Rotation { return Rotation(WrapRadians(float64(r))) }

// WrapDegrees normalizes an angle of any magnitude into [-180, 180).
func WrapDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d >= 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// WrapRadians normalizes an angle of any magnitude into [-π, π).
func WrapRadians(rad float64) float64 {
	r := math.Mod(rad, 2*math.Pi)
	if r >= math.Pi {
		r -= 2 * math.Pi
	} else if r < -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
