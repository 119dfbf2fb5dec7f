package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/swervesim/internal/curve"
	"github.com/san-kum/swervesim/internal/drive"
)

var ErrInvalidTeleop = errors.New("control: invalid teleop configuration")

type TeleopConfig struct {
	// MaxSpeed is the translation speed at full stick, m/s.
	MaxSpeed float64 `yaml:"max_speed"`
	// MaxAngularRate is the rotation rate at full stick, rad/s.
	MaxAngularRate float64 `yaml:"max_angular_rate"`
	// MinOutput raises non-zero shaped outputs to at least this magnitude.
	MinOutput float64 `yaml:"min_output"`
	// Deadband is the fraction of max speed and max rate below which the
	// command is dropped to zero.
	Deadband float64 `yaml:"deadband"`
}

func DefaultTeleopConfig() TeleopConfig {
	return TeleopConfig{
		MaxSpeed:       drive.DefaultGeometry().MaxSpeed,
		MaxAngularRate: 0.75 * 2 * math.Pi,
		Deadband:       0.1,
	}
}

func (c TeleopConfig) Validate() error {
	if !(c.MaxSpeed > 0) || !(c.MaxAngularRate > 0) {
		return fmt.Errorf("%w: max speed %.3f and max angular rate %.3f must be positive",
			ErrInvalidTeleop, c.MaxSpeed, c.MaxAngularRate)
	}
	if c.MinOutput < 0 || c.MinOutput > 1 {
		return fmt.Errorf("%w: min output %.3f outside [0,1]", ErrInvalidTeleop, c.MinOutput)
	}
	if c.Deadband < 0 || c.Deadband >= 1 {
		return fmt.Errorf("%w: deadband %.3f outside [0,1)", ErrInvalidTeleop, c.Deadband)
	}
	return nil
}

// Teleop maps stick axes to a field-centric command:
//
//	vx    = -MaxSpeed * T(LeftY)
//	vy    = -MaxSpeed * T(LeftX)
//	omega =  MaxAngularRate * R(-RightX)
//
// where T and R are the translation and rotation curves.
type Teleop struct {
	cfg         TeleopConfig
	translation curve.Curve
	rotation    curve.Curve
	source      AxisSource
}

func NewTeleop(cfg TeleopConfig, translation, rotation curve.Curve, source AxisSource) (*Teleop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if translation == nil {
		translation = curve.Identity
	}
	if rotation == nil {
		rotation = curve.Identity
	}
	return &Teleop{cfg: cfg, translation: translation, rotation: rotation, source: source}, nil
}

func (t *Teleop) Config() TeleopConfig { return t.cfg }

func (t *Teleop) Compute(_ drive.SensorSnapshot, _ float64) drive.Command {
	if t.source == nil {
		return drive.Command{Frame: drive.FieldCentric}
	}
	return t.Command(t.source.Axes())
}

// Command shapes one stick reading.
func (t *Teleop) Command(a Axes) drive.Command {
	a = a.Clamped()
	cmd := drive.Command{
		Vx:    -t.cfg.MaxSpeed * t.shape(t.translation, a.LeftY),
		Vy:    -t.cfg.MaxSpeed * t.shape(t.translation, a.LeftX),
		Omega: t.cfg.MaxAngularRate * t.shape(t.rotation, -a.RightX),
		Frame: drive.FieldCentric,
	}
	if math.Hypot(cmd.Vx, cmd.Vy) < t.cfg.Deadband*t.cfg.MaxSpeed {
		cmd.Vx, cmd.Vy = 0, 0
	}
	if math.Abs(cmd.Omega) < t.cfg.Deadband*t.cfg.MaxAngularRate {
		cmd.Omega = 0
	}
	return cmd
}

func (t *Teleop) shape(c curve.Curve, x float64) float64 {
	y := c.Transfer(x)
	if t.cfg.MinOutput > 0 {
		y = curve.MinLimit(y, t.cfg.MinOutput)
	}
	return y
}
