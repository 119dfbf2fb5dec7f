// Package motor models brushless DC motors driving a geared mechanism.
package motor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/swervesim/internal/dynamo"
)

var ErrInvalidMotor = errors.New("motor: invalid motor model")

const rpmToRadPerSec = 2 * math.Pi / 60

// Spec is a motor datasheet at nominal voltage.
type Spec struct {
	Name           string
	NominalVoltage float64 // V
	StallTorque    float64 // N·m
	StallCurrent   float64 // A
	FreeCurrent    float64 // A
	FreeSpeed      float64 // rad/s
}

// Resistance is the winding resistance in ohms.
func (s Spec) Resistance() float64 { return s.NominalVoltage / s.StallCurrent }

// Kv is the velocity constant in rad/s per volt.
func (s Spec) Kv() float64 {
	return s.FreeSpeed / (s.NominalVoltage - s.Resistance()*s.FreeCurrent)
}

// Kt is the torque constant in N·m per amp.
func (s Spec) Kt() float64 { return s.StallTorque / s.StallCurrent }

func (s Spec) Validate() error {
	if !(s.NominalVoltage > 0 && s.StallTorque > 0 && s.StallCurrent > 0 && s.FreeSpeed > 0) {
		return fmt.Errorf("%w: %s needs positive voltage, torque, current and speed", ErrInvalidMotor, s.Name)
	}
	if s.FreeCurrent < 0 || s.FreeCurrent >= s.StallCurrent {
		return fmt.Errorf("%w: %s free current %.2f A outside [0, stall)", ErrInvalidMotor, s.Name, s.FreeCurrent)
	}
	return nil
}

var (
	KrakenX60 = Spec{
		Name:           "kraken_x60",
		NominalVoltage: 12,
		StallTorque:    7.09,
		StallCurrent:   366,
		FreeCurrent:    2,
		FreeSpeed:      6000 * rpmToRadPerSec,
	}
	Falcon500 = Spec{
		Name:           "falcon_500",
		NominalVoltage: 12,
		StallTorque:    4.69,
		StallCurrent:   257,
		FreeCurrent:    1.5,
		FreeSpeed:      6380 * rpmToRadPerSec,
	}
)

var catalog = map[string]Spec{
	KrakenX60.Name: KrakenX60,
	Falcon500.Name: Falcon500,
}

func Lookup(name string) (Spec, error) {
	s, ok := catalog[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: unknown motor %q (have %v)", ErrInvalidMotor, name, Names())
	}
	return s, nil
}

func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Plant is one motor turning a mechanism through a reduction. State is
// [position rad, velocity rad/s] of the mechanism; control is [volts].
type Plant struct {
	Spec    Spec
	Gearing float64 // motor turns per mechanism turn
	Inertia float64 // mechanism moment of inertia, kg·m²

	a, b float64
}

var _ dynamo.System = (*Plant)(nil)

func NewPlant(spec Spec, gearing, inertia float64) (*Plant, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if !(gearing > 0) || !(inertia > 0) {
		return nil, fmt.Errorf("%w: gearing %.3f and inertia %.4f must be positive", ErrInvalidMotor, gearing, inertia)
	}
	r, kv, kt := spec.Resistance(), spec.Kv(), spec.Kt()
	return &Plant{
		Spec:    spec,
		Gearing: gearing,
		Inertia: inertia,
		a:       -gearing * gearing * kt / (kv * r * inertia),
		b:       gearing * kt / (r * inertia),
	}, nil
}

func (p *Plant) StateDim() int   { return 2 }
func (p *Plant) ControlDim() int { return 1 }

func (p *Plant) Derive(dx, x dynamo.State, u dynamo.Control, t float64) {
	dx[0] = x[1]
	dx[1] = p.a*x[1] + p.b*u[0]
}

// Current is the signed current drawn at mechanism speed w under volts.
func (p *Plant) Current(w, volts float64) float64 {
	return (volts - w*p.Gearing/p.Spec.Kv()) / p.Spec.Resistance()
}

// FreeSpeed is the steady-state mechanism speed at nominal voltage.
func (p *Plant) FreeSpeed() float64 {
	return -p.b * p.Spec.NominalVoltage / p.a
}
