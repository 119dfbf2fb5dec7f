// Package kinematics maps between chassis velocity and per-module wheel
// velocity vectors for a four-corner swerve layout.
package kinematics

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

const modules = 4

var ErrSingularLayout = errors.New("kinematics: module layout is singular")

// Layout holds module offsets from the robot centre, ordered FL, FR, BL,
// BR, and the precomputed least-squares inverse used by Forward.
type Layout struct {
	Offsets [modules]r2.Point
	pinv    *mat.Dense
}

// NewLayout places modules at the corners of a wheelBase × trackWidth
// rectangle: x forward, y left.
func NewLayout(wheelBase, trackWidth float64) (*Layout, error) {
	hb, ht := wheelBase/2, trackWidth/2
	return NewLayoutFromOffsets([modules]r2.Point{
		{X: hb, Y: ht},
		{X: hb, Y: -ht},
		{X: -hb, Y: ht},
		{X: -hb, Y: -ht},
	})
}

func NewLayoutFromOffsets(offsets [modules]r2.Point) (*Layout, error) {
	a := mat.NewDense(2*modules, 3, nil)
	for i, off := range offsets {
		a.SetRow(2*i, []float64{1, 0, -off.Y})
		a.SetRow(2*i+1, []float64{0, 1, off.X})
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularLayout, err)
	}
	pinv := mat.NewDense(3, 2*modules, nil)
	pinv.Mul(&inv, a.T())

	return &Layout{Offsets: offsets, pinv: pinv}, nil
}

// Inverse returns each module's velocity vector in the robot frame for a
// chassis velocity (vx, vy) and yaw rate omega.
func (l *Layout) Inverse(vx, vy, omega float64) [modules]r2.Point {
	var out [modules]r2.Point
	for i, off := range l.Offsets {
		out[i] = r2.Point{X: vx - omega*off.Y, Y: vy + omega*off.X}
	}
	return out
}

// Forward solves for the chassis velocity that best explains the module
// vectors in the least-squares sense.
func (l *Layout) Forward(v [modules]r2.Point) (vx, vy, omega float64) {
	b := mat.NewVecDense(2*modules, nil)
	for i, p := range v {
		b.SetVec(2*i, p.X)
		b.SetVec(2*i+1, p.Y)
	}
	var x mat.VecDense
	x.MulVec(l.pinv, b)
	return x.AtVec(0), x.AtVec(1), x.AtVec(2)
}

// Rotate turns v counter-clockwise by theta radians.
func Rotate(v r2.Point, theta float64) r2.Point {
	sin, cos := math.Sincos(theta)
	return r2.Point{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// ToRobotFrame expresses a field-frame vector in a robot frame whose
// heading is theta.
func ToRobotFrame(v r2.Point, theta float64) r2.Point {
	return Rotate(v, -theta)
}

// ToFieldFrame is the inverse of ToRobotFrame.
func ToFieldFrame(v r2.Point, theta float64) r2.Point {
	return Rotate(v, theta)
}

// Polar returns a vector of length speed pointing at angle.
func Polar(speed, angle float64) r2.Point {
	sin, cos := math.Sincos(angle)
	return r2.Point{X: speed * cos, Y: speed * sin}
}
