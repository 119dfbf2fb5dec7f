package swerve

import (
	"math"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/dynamo"
	"github.com/san-kum/swervesim/internal/motor"
)

// axis is one actuated degree of freedom, mechanism side.
type axis struct {
	pos, vel, volts, amps float64
}

type module struct {
	drive, steer axis
}

// advancer moves one module toward a wheel speed (rad/s) and steer angle
// over dt.
type advancer interface {
	advance(m *module, wheelRate, steerTarget, t, dt float64)
}

func clamp(v, lim float64) float64 {
	return math.Max(-lim, math.Min(lim, v))
}

type motorAdvancer struct {
	drivePlant, steerPlant *motor.Plant
	integ                  dynamo.Integrator
	x, scratch             dynamo.State
	u                      dynamo.Control
	volts                  float64
	steerKP                float64
	maxWheelRate           float64
}

func newMotorAdvancer(cfg Config, integ dynamo.Integrator) (*motorAdvancer, error) {
	driveSpec, err := motor.Lookup(cfg.DriveMotor)
	if err != nil {
		return nil, err
	}
	steerSpec, err := motor.Lookup(cfg.SteerMotor)
	if err != nil {
		return nil, err
	}
	dp, err := motor.NewPlant(driveSpec, cfg.Geometry.DriveGearRatio, cfg.DriveInertia)
	if err != nil {
		return nil, err
	}
	sp, err := motor.NewPlant(steerSpec, cfg.Geometry.SteerGearRatio, cfg.SteerInertia)
	if err != nil {
		return nil, err
	}
	return &motorAdvancer{
		drivePlant:   dp,
		steerPlant:   sp,
		integ:        integ,
		x:            make(dynamo.State, 2),
		scratch:      make(dynamo.State, 2),
		u:            make(dynamo.Control, 1),
		volts:        cfg.NominalVoltage,
		steerKP:      cfg.SteerKP,
		maxWheelRate: cfg.Geometry.MaxWheelRate(),
	}, nil
}

func (a *motorAdvancer) advance(m *module, wheelRate, steerTarget, t, dt float64) {
	steerErr := drive.WrapRadians(steerTarget - m.steer.pos)
	sv := clamp(a.steerKP*steerErr, a.volts)
	m.steer = a.step(a.steerPlant, m.steer, sv, t, dt)

	dv := clamp(wheelRate/a.maxWheelRate*a.volts, a.volts)
	m.drive = a.step(a.drivePlant, m.drive, dv, t, dt)
}

// step advances one axis. A diverged step leaves the axis where it was.
func (a *motorAdvancer) step(p *motor.Plant, ax axis, volts, t, dt float64) axis {
	a.x[0], a.x[1] = ax.pos, ax.vel
	a.u[0] = volts
	if err := dynamo.Advance(a.integ, p, a.x, a.u, t, dt, a.scratch); err != nil {
		return ax
	}
	return axis{
		pos:   a.x[0],
		vel:   a.x[1],
		volts: volts,
		amps:  math.Abs(p.Current(a.x[1], volts)),
	}
}

type kinematicAdvancer struct {
	gain, maxSteerRate     float64
	volts                  float64
	maxWheelRate           float64
	driveLimit, steerLimit float64
}

func newKinematicAdvancer(cfg Config) *kinematicAdvancer {
	return &kinematicAdvancer{
		gain:         cfg.KinematicSteerGain,
		maxSteerRate: cfg.KinematicMaxSteerRate,
		volts:        cfg.NominalVoltage,
		maxWheelRate: cfg.Geometry.MaxWheelRate(),
		driveLimit:   cfg.DriveCurrentLimit,
		steerLimit:   cfg.SteerCurrentLimit,
	}
}

func (k *kinematicAdvancer) advance(m *module, wheelRate, steerTarget, t, dt float64) {
	steerErr := drive.WrapRadians(steerTarget - m.steer.pos)
	rate := clamp(k.gain*steerErr, k.maxSteerRate)
	steerFrac := rate / k.maxSteerRate
	m.steer = axis{
		pos:   m.steer.pos + rate*dt,
		vel:   rate,
		volts: steerFrac * k.volts,
		amps:  math.Abs(steerFrac) * k.steerLimit,
	}

	// Cosine compensation: a wheel still turning toward its target only
	// drives the component along it, and not at all past 90 degrees.
	residual := drive.WrapRadians(steerTarget - m.steer.pos)
	wheelRate = clamp(wheelRate*math.Max(0, math.Cos(residual)), k.maxWheelRate)
	driveFrac := wheelRate / k.maxWheelRate
	m.drive = axis{
		pos:   m.drive.pos + wheelRate*dt,
		vel:   wheelRate,
		volts: driveFrac * k.volts,
		amps:  math.Abs(driveFrac) * k.driveLimit,
	}
}
