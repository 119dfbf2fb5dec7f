// Package safety gates outgoing velocity commands behind an emergency stop
// and de-rates them while the battery sags.
package safety

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("safety: invalid configuration")

// Config holds brownout thresholds. Voltage below Low activates de-rating;
// only a reading at or above High clears it.
type Config struct {
	BrownoutLow        float64 `yaml:"brownout_low" json:"brownout_low"`
	BrownoutHigh       float64 `yaml:"brownout_high" json:"brownout_high"`
	BrownoutMultiplier float64 `yaml:"brownout_multiplier" json:"brownout_multiplier"`
}

func DefaultConfig() Config {
	return Config{
		BrownoutLow:        10.5,
		BrownoutHigh:       11.0,
		BrownoutMultiplier: 0.5,
	}
}

func (c Config) Validate() error {
	if c.BrownoutLow <= 0 {
		return fmt.Errorf("%w: brownout_low %.2f must be positive", ErrInvalidConfig, c.BrownoutLow)
	}
	if c.BrownoutHigh <= c.BrownoutLow {
		return fmt.Errorf("%w: brownout_high %.2f must exceed brownout_low %.2f", ErrInvalidConfig, c.BrownoutHigh, c.BrownoutLow)
	}
	if c.BrownoutMultiplier < 0 || c.BrownoutMultiplier > 1 || math.IsNaN(c.BrownoutMultiplier) {
		return fmt.Errorf("%w: brownout_multiplier %.2f outside [0, 1]", ErrInvalidConfig, c.BrownoutMultiplier)
	}
	return nil
}

// State is a point-in-time view of the interlock.
type State struct {
	EmergencyStop   bool    `json:"emergency_stop"`
	Brownout        bool    `json:"brownout"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
}

// Stopper is the part of a drivetrain the interlock needs to hold it still.
type Stopper interface {
	Stop()
}

// Interlock owns the safety state for one drivetrain.
//
// The emergency stop flag may be triggered from any goroutine. Brownout
// state belongs to the control tick and must only be touched from it.
type Interlock struct {
	cfg    Config
	logger *zap.Logger

	estop      atomic.Bool
	brownout   bool
	multiplier float64
}

func New(cfg Config, logger *zap.Logger) (*Interlock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interlock{cfg: cfg, logger: logger, multiplier: 1.0}, nil
}

// MustNew is New for configurations known to be valid, such as
// DefaultConfig. It panics on an invalid one.
func MustNew(cfg Config, logger *zap.Logger) *Interlock {
	i, err := New(cfg, logger)
	if err != nil {
		panic(err)
	}
	return i
}

// Trigger latches the emergency stop. It reports whether this call
// changed the state; repeated triggers return false.
func (i *Interlock) Trigger() bool {
	if !i.estop.CompareAndSwap(false, true) {
		return false
	}
	i.logger.Warn("emergency stop activated")
	return true
}

// Reset clears the emergency stop, but only while the robot is disabled.
// Called while driving it leaves the stop latched and returns false.
func (i *Interlock) Reset(disabled bool) bool {
	if !disabled {
		if i.estop.Load() {
			i.logger.Debug("emergency stop reset ignored while enabled")
		}
		return false
	}
	if !i.estop.CompareAndSwap(true, false) {
		return false
	}
	i.logger.Info("emergency stop reset, drivetrain operational")
	return true
}

func (i *Interlock) EmergencyStopActive() bool {
	return i.estop.Load()
}

// UpdateBrownout feeds one battery voltage reading through the hysteresis.
func (i *Interlock) UpdateBrownout(voltage float64) {
	if math.IsNaN(voltage) {
		return
	}
	if !i.brownout {
		if voltage < i.cfg.BrownoutLow {
			i.brownout = true
			i.multiplier = i.cfg.BrownoutMultiplier
			i.logger.Warn("low battery, speed reduced",
				zap.Float64("voltage", voltage),
				zap.Float64("multiplier", i.multiplier))
		}
		return
	}
	if voltage >= i.cfg.BrownoutHigh {
		i.brownout = false
		i.multiplier = 1.0
		i.logger.Info("battery recovered, full speed restored", zap.Float64("voltage", voltage))
	}
}

func (i *Interlock) SpeedMultiplier() float64 { return i.multiplier }

func (i *Interlock) BrownoutActive() bool { return i.brownout }

func (i *Interlock) State() State {
	return State{
		EmergencyStop:   i.estop.Load(),
		Brownout:        i.brownout,
		SpeedMultiplier: i.multiplier,
	}
}

// Gate applies the interlock to a velocity triple. With the emergency stop
// latched it returns zeros and false; otherwise every component is scaled
// by the speed multiplier.
func (i *Interlock) Gate(vx, vy, omega float64) (float64, float64, float64, bool) {
	if i.estop.Load() {
		return 0, 0, 0, false
	}
	m := i.multiplier
	return vx * m, vy * m, omega * m, true
}

// Enforce stops s when the emergency stop is latched and reports whether
// it did.
func (i *Interlock) Enforce(s Stopper) bool {
	if !i.estop.Load() {
		return false
	}
	s.Stop()
	return true
}
