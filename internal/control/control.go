package control

import (
	"github.com/san-kum/swervesim/internal/drive"
)

type Controller interface {
	Compute(snap drive.SensorSnapshot, t float64) drive.Command
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(snap drive.SensorSnapshot, t float64) drive.Command

func (f ControllerFunc) Compute(snap drive.SensorSnapshot, t float64) drive.Command {
	return f(snap, t)
}

// Resetter is implemented by controllers that carry state between ticks.
type Resetter interface {
	Reset()
}

type None struct{}

func NewNone() *None { return &None{} }

func (n *None) Compute(drive.SensorSnapshot, float64) drive.Command {
	return drive.Command{Frame: drive.FieldCentric}
}
