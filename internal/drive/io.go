// Package drive defines the boundary between control logic and whatever
// moves the robot: the physics engine, a real-hardware adapter, or a test
// double. Implementations are chosen once at startup and used through IO.
package drive

import (
	"errors"
	"fmt"
	"math"
)

// IO is the capability set every drivetrain implementation provides.
// No method blocks or fails.
type IO interface {
	// UpdateInputs reads the latest sensor state without side effects.
	UpdateInputs() SensorSnapshot
	// DriveFieldCentric records a field-frame velocity command.
	DriveFieldCentric(vx, vy, omega float64)
	// DriveRobotCentric records a robot-frame velocity command.
	DriveRobotCentric(vx, vy, omega float64)
	// ResetOdometry forces the pose and gyro yaw. Visible on the next read.
	ResetOdometry(p Pose)
	// Stop commands zero velocity. Idempotent.
	Stop()
	SetOperatorPerspective(r Rotation)
	OperatorPerspective() Rotation
}

// Simulated is an IO whose time only advances when stepped.
type Simulated interface {
	IO
	Step(dt float64)
}

type Frame int

const (
	FieldCentric Frame = iota
	RobotCentric
)

func (f Frame) String() string {
	if f == RobotCentric {
		return "robot"
	}
	return "field"
}

func ParseFrame(s string) (Frame, error) {
	switch s {
	case "", "field":
		return FieldCentric, nil
	case "robot":
		return RobotCentric, nil
	}
	return FieldCentric, fmt.Errorf("drive: unknown frame %q", s)
}

// Command is one tick's velocity request in m/s and rad/s.
type Command struct {
	Vx    float64
	Vy    float64
	Omega float64
	Frame Frame
}

func (c Command) IsZero() bool {
	return c.Vx == 0 && c.Vy == 0 && c.Omega == 0
}

// Scale multiplies every velocity component by m.
func (c Command) Scale(m float64) Command {
	c.Vx *= m
	c.Vy *= m
	c.Omega *= m
	return c
}

// Apply issues cmd to io in the command's frame.
func Apply(io IO, cmd Command) {
	if cmd.Frame == RobotCentric {
		io.DriveRobotCentric(cmd.Vx, cmd.Vy, cmd.Omega)
		return
	}
	io.DriveFieldCentric(cmd.Vx, cmd.Vy, cmd.Omega)
}

var ErrInvalidGeometry = errors.New("drive: invalid robot geometry")

// Geometry is static drivetrain configuration shared by every
// implementation.
type Geometry struct {
	TrackWidth     float64 `yaml:"track_width" json:"track_width"`
	WheelBase      float64 `yaml:"wheel_base" json:"wheel_base"`
	WheelRadius    float64 `yaml:"wheel_radius" json:"wheel_radius"`
	DriveGearRatio float64 `yaml:"drive_gear_ratio" json:"drive_gear_ratio"`
	SteerGearRatio float64 `yaml:"steer_gear_ratio" json:"steer_gear_ratio"`
	MaxSpeed       float64 `yaml:"max_speed" json:"max_speed"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		TrackWidth:     0.5842,
		WheelBase:      0.5842,
		WheelRadius:    0.0508,
		DriveGearRatio: 6.394736842105262,
		SteerGearRatio: 12.1,
		MaxSpeed:       4.99,
	}
}

func (g Geometry) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"track_width", g.TrackWidth},
		{"wheel_base", g.WheelBase},
		{"wheel_radius", g.WheelRadius},
		{"drive_gear_ratio", g.DriveGearRatio},
		{"steer_gear_ratio", g.SteerGearRatio},
		{"max_speed", g.MaxSpeed},
	}
	for _, f := range fields {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidGeometry, f.name, f.v)
		}
	}
	return nil
}

// MaxWheelRate is the wheel angular rate at MaxSpeed, in rad/s.
func (g Geometry) MaxWheelRate() float64 {
	return g.MaxSpeed / g.WheelRadius
}
