// Package config loads the robot, simulation, safety and operator settings
// from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/curve"
	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/logging"
	"github.com/san-kum/swervesim/internal/motor"
	"github.com/san-kum/swervesim/internal/safety"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	DefaultPeriod     = 0.02
	DefaultDuration   = 10.0
	DefaultMaxSubstep = 0.005
	// DefaultMaxAngularRate is three quarters of a rotation per second.
	DefaultMaxAngularRate = 0.75 * 2 * math.Pi
	// MinTriggerThreshold keeps a resting trigger from reading as pressed.
	MinTriggerThreshold = 0.05
)

const (
	CurvePiecewise = "piecewise"
	CurveHybrid    = "hybrid"
)

type Config struct {
	Robot    RobotConfig    `yaml:"robot"`
	Motors   MotorConfig    `yaml:"motors"`
	Sim      SimConfig      `yaml:"sim"`
	Safety   SafetyConfig   `yaml:"safety"`
	Operator OperatorConfig `yaml:"operator"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type RobotConfig struct {
	drive.Geometry `yaml:",inline"`
	MaxAngularRate float64 `yaml:"max_angular_rate"`
}

type MotorConfig struct {
	Drive          string  `yaml:"drive"`
	Steer          string  `yaml:"steer"`
	DriveInertia   float64 `yaml:"drive_inertia"`
	SteerInertia   float64 `yaml:"steer_inertia"`
	NominalVoltage float64 `yaml:"nominal_voltage"`
	SteerKP        float64 `yaml:"steer_kp"`
}

type SimConfig struct {
	Strategy              swerve.Strategy `yaml:"strategy"`
	Integrator            string          `yaml:"integrator"`
	Period                float64         `yaml:"period"`
	Duration              float64         `yaml:"duration"`
	MaxSubstep            float64         `yaml:"max_substep"`
	SteerEpsilon          float64         `yaml:"steer_epsilon"`
	KinematicSteerGain    float64         `yaml:"kinematic_steer_gain"`
	KinematicMaxSteerRate float64         `yaml:"kinematic_max_steer_rate"`
}

// SafetyConfig carries the brownout thresholds and the motor current
// limits. The limits are reported against, not enforced.
type SafetyConfig struct {
	safety.Config `yaml:",inline"`

	DriveCurrentLimit float64 `yaml:"drive_current_limit"`
	DrivePeakCurrent  float64 `yaml:"drive_peak_current"`
	DrivePeakDuration float64 `yaml:"drive_peak_duration"`
	DriveSupplyLimit  float64 `yaml:"drive_supply_limit"`
	SteerCurrentLimit float64 `yaml:"steer_current_limit"`
	SteerPeakCurrent  float64 `yaml:"steer_peak_current"`
}

type OperatorConfig struct {
	// Curve selects piecewise or hybrid shaping.
	Curve             string                `yaml:"curve"`
	Translation       curve.PiecewiseConfig `yaml:"translation"`
	Rotation          curve.PiecewiseConfig `yaml:"rotation"`
	TranslationHybrid curve.HybridConfig    `yaml:"translation_hybrid"`
	RotationHybrid    curve.HybridConfig    `yaml:"rotation_hybrid"`
	MinOutput         float64               `yaml:"min_output"`
	Deadband          float64               `yaml:"deadband"`
	TwoControllers    bool                  `yaml:"two_controllers"`
	TriggerThreshold  float64               `yaml:"trigger_threshold"`
}

type LoggingConfig struct {
	// Level is debug, info, warn, error or off.
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Logger builds the zap logger these settings describe.
func (l LoggingConfig) Logger() (*zap.Logger, error) {
	return logging.New(l.Level, l.Development)
}

func DefaultConfig() *Config {
	return &Config{
		Robot: RobotConfig{
			Geometry:       drive.DefaultGeometry(),
			MaxAngularRate: DefaultMaxAngularRate,
		},
		Motors: MotorConfig{
			Drive:          motor.KrakenX60.Name,
			Steer:          motor.Falcon500.Name,
			DriveInertia:   0.01,
			SteerInertia:   0.01,
			NominalVoltage: 12,
			SteerKP:        12,
		},
		Sim: SimConfig{
			Strategy:              swerve.StrategyMotor,
			Integrator:            "rk4",
			Period:                DefaultPeriod,
			Duration:              DefaultDuration,
			MaxSubstep:            DefaultMaxSubstep,
			SteerEpsilon:          0.001,
			KinematicSteerGain:    20,
			KinematicMaxSteerRate: 4 * math.Pi,
		},
		Safety: SafetyConfig{
			Config:            safety.DefaultConfig(),
			DriveCurrentLimit: 40,
			DrivePeakCurrent:  60,
			DrivePeakDuration: 0.1,
			DriveSupplyLimit:  35,
			SteerCurrentLimit: 20,
			SteerPeakCurrent:  30,
		},
		Operator: OperatorConfig{
			Curve:             CurvePiecewise,
			Translation:       curve.PiecewiseConfig{XStart: 0.02, XMiddle: 0.6, YStart: 0.1, YMiddle: 0.4, YMax: 0.8},
			Rotation:          curve.PiecewiseConfig{XStart: 0.02, XMiddle: 0.6, YStart: 0.1, YMiddle: 0.6, YMax: 1.0},
			TranslationHybrid: curve.HybridConfig{Threshold: 0, CuspX: 0.9, LinCoef: 0.15, Limit: 1},
			RotationHybrid:    curve.HybridConfig{Threshold: 0, CuspX: 0.5, LinCoef: 0.2, Limit: 1},
			Deadband:          0.1,
			TwoControllers:    true,
			TriggerThreshold:  0.2,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load overlays the YAML file at path on the defaults.
func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads the YAML file at path over base, modifying it, and
// validates the result.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Safety.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Teleop().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !(c.Sim.Period > 0) || !(c.Sim.Duration > 0) {
		return fmt.Errorf("%w: sim period %v and duration %v must be positive", ErrInvalidConfig, c.Sim.Period, c.Sim.Duration)
	}
	switch c.Operator.Curve {
	case CurvePiecewise, CurveHybrid:
	default:
		return fmt.Errorf("%w: unknown curve type %q", ErrInvalidConfig, c.Operator.Curve)
	}
	for _, pc := range []curve.PiecewiseConfig{c.Operator.Translation, c.Operator.Rotation} {
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	for _, hc := range []curve.HybridConfig{c.Operator.TranslationHybrid, c.Operator.RotationHybrid} {
		if err := hc.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if t := c.Operator.TriggerThreshold; !(t >= MinTriggerThreshold && t <= 1) {
		return fmt.Errorf("%w: trigger_threshold %v outside [%v, 1]", ErrInvalidConfig, t, MinTriggerThreshold)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Engine returns the physics engine settings.
func (c *Config) Engine() swerve.Config {
	return swerve.Config{
		Geometry:              c.Robot.Geometry,
		Strategy:              c.Sim.Strategy,
		Integrator:            c.Sim.Integrator,
		DriveMotor:            c.Motors.Drive,
		SteerMotor:            c.Motors.Steer,
		DriveInertia:          c.Motors.DriveInertia,
		SteerInertia:          c.Motors.SteerInertia,
		NominalVoltage:        c.Motors.NominalVoltage,
		SteerKP:               c.Motors.SteerKP,
		SteerEpsilon:          c.Sim.SteerEpsilon,
		MaxSubstep:            c.Sim.MaxSubstep,
		KinematicSteerGain:    c.Sim.KinematicSteerGain,
		KinematicMaxSteerRate: c.Sim.KinematicMaxSteerRate,
		DriveCurrentLimit:     c.Safety.DriveCurrentLimit,
		SteerCurrentLimit:     c.Safety.SteerCurrentLimit,
	}
}

func (c *Config) Loop() sim.Config {
	return sim.Config{Period: c.Sim.Period, Duration: c.Sim.Duration}
}

func (c *Config) Teleop() control.TeleopConfig {
	return control.TeleopConfig{
		MaxSpeed:       c.Robot.MaxSpeed,
		MaxAngularRate: c.Robot.MaxAngularRate,
		MinOutput:      c.Operator.MinOutput,
		Deadband:       c.Operator.Deadband,
	}
}

// Curve key prefixes in a tuning table.
const (
	TranslationPrefix = "translation/"
	RotationPrefix    = "rotation/"
)

// Curves builds the translation and rotation curves. With a table,
// piecewise curves are tunable through it under TranslationPrefix and
// RotationPrefix; hybrid curves are fixed.
func (c *Config) Curves(table *curve.Table, logger *zap.Logger) (translation, rotation curve.Curve, err error) {
	if c.Operator.Curve == CurveHybrid {
		t, err := curve.NewHybrid(c.Operator.TranslationHybrid)
		if err != nil {
			return nil, nil, err
		}
		r, err := curve.NewHybrid(c.Operator.RotationHybrid)
		if err != nil {
			return nil, nil, err
		}
		return t, r, nil
	}

	if table == nil {
		t, err := curve.NewPiecewise(c.Operator.Translation)
		if err != nil {
			return nil, nil, err
		}
		r, err := curve.NewPiecewise(c.Operator.Rotation)
		if err != nil {
			return nil, nil, err
		}
		return t, r, nil
	}

	t, err := curve.NewTuner(TranslationPrefix, c.Operator.Translation, table, logger)
	if err != nil {
		return nil, nil, err
	}
	r, err := curve.NewTuner(RotationPrefix, c.Operator.Rotation, table, logger)
	if err != nil {
		return nil, nil, err
	}
	return t, r, nil
}
