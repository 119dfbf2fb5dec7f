// Package experiment assembles a configured drivetrain, its safety
// interlock and a controller into a runnable simulation.
package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/curve"
	"github.com/san-kum/swervesim/internal/metrics"
	"github.com/san-kum/swervesim/internal/safety"
	"github.com/san-kum/swervesim/internal/scenario"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

type Spec struct {
	Name   string
	Config *config.Config
	// Scenario, when set, drives the run and fixes its duration.
	// Controller is ignored.
	Scenario   *scenario.Scenario
	Controller string
	// Axes feeds the teleop controller. Defaults to a centered ManualAxes.
	Axes control.AxisSource
	// Table makes piecewise curves tunable while running.
	Table *curve.Table
	// Env replaces the steady nominal battery when no scenario is set.
	Env sim.Environment
}

type Experiment struct {
	spec      Spec
	loop      sim.Config
	engine    *swerve.Engine
	interlock *safety.Interlock
	teleop    *control.Teleop
	script    *scenario.Script
	simulator *sim.Simulator
}

func New(spec Spec, reg *Registry, logger *zap.Logger) (*Experiment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = NewRegistry()
	}
	cfg := spec.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if spec.Axes == nil {
		spec.Axes = control.NewManualAxes()
	}
	if spec.Controller == "" {
		spec.Controller = ControllerNone
	}

	engine, err := swerve.New(cfg.Engine(), logger)
	if err != nil {
		return nil, err
	}
	interlock, err := safety.New(cfg.Safety.Config, logger)
	if err != nil {
		return nil, err
	}
	translation, rotation, err := cfg.Curves(spec.Table, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	teleop, err := control.NewTeleop(cfg.Teleop(), translation, rotation, spec.Axes)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		spec:      spec,
		loop:      cfg.Loop(),
		engine:    engine,
		interlock: interlock,
		teleop:    teleop,
	}

	var (
		controller control.Controller
		env        sim.Environment = sim.Steady{Voltage: scenario.NominalVoltage}
	)
	if spec.Scenario != nil {
		script, err := scenario.Compile(spec.Scenario, teleop)
		if err != nil {
			return nil, err
		}
		e.script = script
		e.loop.Duration = script.Duration()
		controller, env = script, script
	} else {
		if spec.Env != nil {
			env = spec.Env
		}
		controller, err = reg.GetController(spec.Controller, cfg, teleop)
		if err != nil {
			return nil, err
		}
	}

	named := logger
	if spec.Name != "" {
		named = logger.With(zap.String("run", spec.Name))
	}
	e.simulator = sim.New(engine, interlock, controller, env, named)
	for _, m := range metrics.Standard(cfg.Safety.DriveCurrentLimit, cfg.Safety.SteerCurrentLimit) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.loop)
}

// Job wraps a spec for sim.RunBatch. Each build gets its own engine.
func Job(spec Spec, reg *Registry, logger *zap.Logger) sim.Job {
	return sim.Job{
		Name: spec.Name,
		Build: func() (*sim.Simulator, sim.Config, error) {
			e, err := New(spec, reg, logger)
			if err != nil {
				return nil, sim.Config{}, err
			}
			return e.simulator, e.loop, nil
		},
	}
}

func (e *Experiment) Simulator() *sim.Simulator    { return e.simulator }
func (e *Experiment) Engine() *swerve.Engine       { return e.engine }
func (e *Experiment) Interlock() *safety.Interlock { return e.interlock }
func (e *Experiment) Teleop() *control.Teleop      { return e.teleop }
func (e *Experiment) Loop() sim.Config             { return e.loop }

// Script is nil unless the experiment runs a scenario.
func (e *Experiment) Script() *scenario.Script { return e.script }
