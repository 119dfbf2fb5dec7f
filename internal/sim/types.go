package sim

import (
	"errors"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/safety"
)

var ErrInvalidLoop = errors.New("sim: invalid loop configuration")

// Conditions is what the outside world looks like for one tick.
type Conditions struct {
	BatteryVoltage float64
	Disabled       bool
	// TriggerEStop latches the emergency stop this tick.
	TriggerEStop bool
	// ResetEStop asks to clear the emergency stop; honoured only while
	// Disabled.
	ResetEStop bool
	// ResetPose, when set, forces odometry before the controller runs.
	ResetPose *drive.Pose
}

// Environment supplies the conditions at time t.
type Environment interface {
	Conditions(t float64) Conditions
}

// Steady is an enabled robot on a constant battery voltage.
type Steady struct {
	Voltage  float64
	Disabled bool
}

func (s Steady) Conditions(float64) Conditions {
	return Conditions{BatteryVoltage: s.Voltage, Disabled: s.Disabled}
}

// Sample is the record of one tick, taken after the drivetrain has been
// stepped.
type Sample struct {
	Time      float64
	Requested drive.Command
	Applied   drive.Command
	Snapshot  drive.SensorSnapshot
	Voltage   float64
	Disabled  bool
	Safety    safety.State
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	// Period is the control tick length in seconds.
	Period   float64 `yaml:"period"`
	Duration float64 `yaml:"duration"`
}

func DefaultConfig() Config {
	return Config{
		Period:   0.02,
		Duration: 10.0,
	}
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last sample, or the zero Sample for an empty result.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
