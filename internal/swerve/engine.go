// Package swerve is the physics stand-in for a four-module swerve
// drivetrain. Engine implements drive.IO and advances only when stepped.
package swerve

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/kinematics"
)

// Engine simulates the drivetrain. It is not safe for concurrent use; the
// control loop owns it.
type Engine struct {
	cfg    Config
	layout *kinematics.Layout
	adv    advancer
	logger *zap.Logger

	cmd         drive.Command
	modules     [drive.ModuleCount]module
	steerTarget [drive.ModuleCount]float64

	yawDeg      float64
	yawRateDeg  float64
	x, y        float64
	perspective drive.Rotation
	t           float64
}

var _ drive.Simulated = (*Engine)(nil)

func New(cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	layout, err := kinematics.NewLayout(cfg.Geometry.WheelBase, cfg.Geometry.TrackWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var adv advancer
	switch cfg.Strategy {
	case StrategyMotor:
		integ, err := integrators.New(cfg.Integrator)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		ma, err := newMotorAdvancer(cfg, integ)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		adv = ma
	case StrategyKinematic:
		adv = newKinematicAdvancer(cfg)
	}

	logger.Debug("swerve engine ready",
		zap.String("strategy", string(cfg.Strategy)),
		zap.String("integrator", cfg.Integrator),
		zap.Float64("max_substep", cfg.MaxSubstep))

	return &Engine{cfg: cfg, layout: layout, adv: adv, logger: logger}, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) DriveFieldCentric(vx, vy, omega float64) {
	e.cmd = drive.Command{Vx: vx, Vy: vy, Omega: omega, Frame: drive.FieldCentric}
}

func (e *Engine) DriveRobotCentric(vx, vy, omega float64) {
	e.cmd = drive.Command{Vx: vx, Vy: vy, Omega: omega, Frame: drive.RobotCentric}
}

func (e *Engine) Stop() {
	e.cmd.Vx, e.cmd.Vy, e.cmd.Omega = 0, 0, 0
}

func (e *Engine) ResetOdometry(p drive.Pose) {
	e.x, e.y = p.X, p.Y
	e.yawDeg = drive.WrapDegrees(p.Heading.Degrees())
}

func (e *Engine) SetOperatorPerspective(r drive.Rotation) { e.perspective = r }

func (e *Engine) OperatorPerspective() drive.Rotation { return e.perspective }

// Command returns the velocity request currently in effect.
func (e *Engine) Command() drive.Command { return e.cmd }

func (e *Engine) UpdateInputs() drive.SensorSnapshot {
	var s drive.SensorSnapshot
	s.Gyro = drive.GyroState{
		YawDeg:           e.yawDeg,
		YawRateDegPerSec: e.yawRateDeg,
		Connected:        true,
	}
	for i, m := range e.modules {
		s.SetModule(i, drive.ModuleState{
			DrivePositionRad:       m.drive.pos,
			DriveVelocityRadPerSec: m.drive.vel,
			DriveAppliedVolts:      m.drive.volts,
			DriveCurrentAmps:       m.drive.amps,
			SteerPositionRad:       m.steer.pos,
			SteerVelocityRadPerSec: m.steer.vel,
			SteerAppliedVolts:      m.steer.volts,
			SteerCurrentAmps:       m.steer.amps,
		})
	}
	s.OdometryX = e.x
	s.OdometryY = e.y
	s.OdometryRotationRad = e.heading()
	return s
}

func (e *Engine) heading() float64 {
	return drive.WrapRadians(e.yawDeg * math.Pi / 180)
}

// MaxSubsteps bounds the substeps a single Step may take.
const MaxSubsteps = 1 << 20

// Step advances the simulation by dt seconds, split into substeps no
// longer than MaxSubstep. Non-positive or NaN dt is ignored, as is a dt
// that would need more than MaxSubsteps substeps.
func (e *Engine) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	steps := math.Ceil(dt/e.cfg.MaxSubstep - 1e-9)
	if steps > MaxSubsteps {
		e.logger.Warn("step too long, ignored", zap.Float64("dt", dt), zap.Float64("max_substep", e.cfg.MaxSubstep))
		return
	}
	n := max(int(steps), 1)
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		e.substep(h)
	}
}

func (e *Engine) substep(dt float64) {
	v := r2.Point{X: e.cmd.Vx, Y: e.cmd.Vy}
	if e.cmd.Frame == drive.FieldCentric {
		v = kinematics.ToRobotFrame(v, e.heading())
	}

	targets := e.layout.Inverse(v.X, v.Y, e.cmd.Omega)
	radius := e.cfg.Geometry.WheelRadius
	var actual [drive.ModuleCount]r2.Point
	for i := range e.modules {
		speed := targets[i].Norm()
		if speed > e.cfg.SteerEpsilon {
			e.steerTarget[i] = math.Atan2(targets[i].Y, targets[i].X)
		}
		m := &e.modules[i]
		e.adv.advance(m, speed/radius, e.steerTarget[i], e.t, dt)
		actual[i] = kinematics.Polar(m.drive.vel*radius, m.steer.pos)
	}

	vx, vy, _ := e.layout.Forward(actual)

	e.yawRateDeg = e.cmd.Omega * 180 / math.Pi
	e.yawDeg = drive.WrapDegrees(e.yawDeg + e.yawRateDeg*dt)

	field := kinematics.ToFieldFrame(r2.Point{X: vx, Y: vy}, e.heading())
	e.x += field.X * dt
	e.y += field.Y * dt
	e.t += dt
}

// Pose returns the integrated field pose.
func (e *Engine) Pose() drive.Pose {
	return drive.Pose{X: e.x, Y: e.y, Heading: drive.Rotation(e.heading())}
}

func (e *Engine) YawDegrees() float64 { return e.yawDeg }

// Time is the simulated time accumulated by Step.
func (e *Engine) Time() float64 { return e.t }

// SteerTargets returns the held steer target for each module.
func (e *Engine) SteerTargets() [drive.ModuleCount]float64 { return e.steerTarget }

// TotalCurrentAmps sums drive and steer current across all modules.
func (e *Engine) TotalCurrentAmps() float64 {
	total := 0.0
	for _, m := range e.modules {
		total += m.drive.amps + m.steer.amps
	}
	return total
}

// Reset returns the engine to rest at the origin with no command.
func (e *Engine) Reset() {
	e.cmd = drive.Command{}
	e.modules = [drive.ModuleCount]module{}
	e.steerTarget = [drive.ModuleCount]float64{}
	e.yawDeg, e.yawRateDeg = 0, 0
	e.x, e.y = 0, 0
	e.t = 0
}
