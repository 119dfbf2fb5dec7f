package sim

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/safety"
)

// Simulator owns the control tick for one drivetrain. Each tick it reads
// the environment, updates the interlock, asks the controller for a
// command, gates it, issues it, steps the drivetrain if it is simulated,
// and reads the result back.
type Simulator struct {
	io         drive.IO
	stepper    drive.Simulated
	interlock  *safety.Interlock
	controller control.Controller
	env        Environment
	metrics    []Metric
	observers  []Observer
	logger     *zap.Logger

	t float64
}

func New(io drive.IO, interlock *safety.Interlock, controller control.Controller, env Environment, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if env == nil {
		env = Steady{Voltage: 12.5}
	}
	if controller == nil {
		controller = control.NewNone()
	}
	if interlock == nil {
		interlock = safety.MustNew(safety.DefaultConfig(), logger)
	}
	stepper, _ := io.(drive.Simulated)
	return &Simulator{
		io:         io,
		stepper:    stepper,
		interlock:  interlock,
		controller: controller,
		env:        env,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Interlock() *safety.Interlock { return s.interlock }

func (s *Simulator) IO() drive.IO { return s.io }

// Time is the simulated time at the start of the next tick.
func (s *Simulator) Time() float64 { return s.t }

// Tick runs one control period of length dt.
func (s *Simulator) Tick(dt float64) Sample {
	cond := s.env.Conditions(s.t)

	if cond.ResetPose != nil {
		s.io.ResetOdometry(*cond.ResetPose)
		s.logger.Debug("pose reset", zap.Float64("x", cond.ResetPose.X), zap.Float64("y", cond.ResetPose.Y))
	}
	if cond.TriggerEStop {
		s.interlock.Trigger()
	}
	if cond.ResetEStop {
		s.interlock.Reset(cond.Disabled)
	}
	s.interlock.UpdateBrownout(cond.BatteryVoltage)

	req := s.controller.Compute(s.io.UpdateInputs(), s.t)
	applied := drive.Command{Frame: req.Frame}

	switch {
	case s.interlock.Enforce(s.io):
	case cond.Disabled:
		s.io.Stop()
	default:
		vx, vy, omega, _ := s.interlock.Gate(req.Vx, req.Vy, req.Omega)
		applied.Vx, applied.Vy, applied.Omega = vx, vy, omega
		drive.Apply(s.io, applied)
	}

	if s.stepper != nil {
		s.stepper.Step(dt)
	}
	s.t += dt

	sample := Sample{
		Time:      s.t,
		Requested: req,
		Applied:   applied,
		Snapshot:  s.io.UpdateInputs(),
		Voltage:   cond.BatteryVoltage,
		Disabled:  cond.Disabled,
		Safety:    s.interlock.State(),
	}
	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, o := range s.observers {
		o.OnSample(sample)
	}
	return sample
}

// Run ticks for cfg.Duration and collects every sample. On cancellation it
// returns the partial result with the context error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Period))
	result := &Result{
		Samples: make([]Sample, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sample := s.Tick(cfg.Period)
		result.Samples = append(result.Samples, sample)
		result.StepsTaken++

		if !sample.Snapshot.Gyro.Connected {
			s.logger.Warn("gyro disconnected", zap.Float64("t", sample.Time))
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("run complete",
		zap.Int("steps", result.StepsTaken),
		zap.Float64("duration", s.t))
	return result, nil
}

// Reset rewinds the loop clock and clears metric and controller state. It
// does not touch the drivetrain or the interlock.
func (s *Simulator) Reset() {
	s.t = 0
	for _, m := range s.metrics {
		m.Reset()
	}
	if r, ok := s.controller.(control.Resetter); ok {
		r.Reset()
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Period > 0) || math.IsInf(cfg.Period, 0) {
		return fmt.Errorf("%w: period must be positive, got %f", ErrInvalidLoop, cfg.Period)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidLoop, cfg.Duration)
	}
	if cfg.Duration < cfg.Period {
		return fmt.Errorf("%w: duration %f shorter than one period %f", ErrInvalidLoop, cfg.Duration, cfg.Period)
	}
	return nil
}
