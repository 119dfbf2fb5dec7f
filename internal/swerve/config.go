package swerve

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/motor"
)

var ErrInvalidConfig = errors.New("swerve: invalid engine configuration")

// Strategy selects how each module's axes are advanced.
type Strategy string

const (
	// StrategyMotor drives each axis with a voltage into a DC motor model.
	StrategyMotor Strategy = "motor"
	// StrategyKinematic sets axis motion directly from the target.
	StrategyKinematic Strategy = "kinematic"
)

func Strategies() []Strategy { return []Strategy{StrategyMotor, StrategyKinematic} }

type Config struct {
	Geometry   drive.Geometry `yaml:"geometry"`
	Strategy   Strategy       `yaml:"strategy"`
	Integrator string         `yaml:"integrator"`

	DriveMotor     string  `yaml:"drive_motor"`
	SteerMotor     string  `yaml:"steer_motor"`
	DriveInertia   float64 `yaml:"drive_inertia"`
	SteerInertia   float64 `yaml:"steer_inertia"`
	NominalVoltage float64 `yaml:"nominal_voltage"`
	// SteerKP is volts per radian of wrapped steer error.
	SteerKP float64 `yaml:"steer_kp"`

	// SteerEpsilon is the module speed (m/s) below which the steer target
	// is held.
	SteerEpsilon float64 `yaml:"steer_epsilon"`
	// MaxSubstep caps the internal integration step in seconds.
	MaxSubstep float64 `yaml:"max_substep"`

	KinematicSteerGain    float64 `yaml:"kinematic_steer_gain"`
	KinematicMaxSteerRate float64 `yaml:"kinematic_max_steer_rate"`

	// Stator limits used to scale the kinematic current estimate.
	DriveCurrentLimit float64 `yaml:"drive_current_limit"`
	SteerCurrentLimit float64 `yaml:"steer_current_limit"`
}

func DefaultConfig() Config {
	return Config{
		Geometry:              drive.DefaultGeometry(),
		Strategy:              StrategyMotor,
		Integrator:            "rk4",
		DriveMotor:            motor.KrakenX60.Name,
		SteerMotor:            motor.Falcon500.Name,
		DriveInertia:          0.01,
		SteerInertia:          0.01,
		NominalVoltage:        12,
		SteerKP:               12,
		SteerEpsilon:          0.001,
		MaxSubstep:            0.005,
		KinematicSteerGain:    20,
		KinematicMaxSteerRate: 4 * math.Pi,
		DriveCurrentLimit:     40,
		SteerCurrentLimit:     20,
	}
}

func (c Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	switch c.Strategy {
	case StrategyMotor, StrategyKinematic:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, name := range []string{c.DriveMotor, c.SteerMotor} {
		if _, err := motor.Lookup(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"drive_inertia", c.DriveInertia},
		{"steer_inertia", c.SteerInertia},
		{"nominal_voltage", c.NominalVoltage},
		{"steer_kp", c.SteerKP},
		{"max_substep", c.MaxSubstep},
		{"kinematic_steer_gain", c.KinematicSteerGain},
		{"kinematic_max_steer_rate", c.KinematicMaxSteerRate},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.SteerEpsilon < 0 || c.DriveCurrentLimit < 0 || c.SteerCurrentLimit < 0 {
		return fmt.Errorf("%w: steer_epsilon and current limits must be non-negative", ErrInvalidConfig)
	}
	return nil
}
