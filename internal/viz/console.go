package viz

import (
	"math"
	"sync"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

// Voltage range the console can dial.
const (
	MinConsoleVoltage = 6.0
	MaxConsoleVoltage = 13.0
)

// Console is an operator-controlled environment. Enable state and
// battery voltage persist; e-stop, reset and pose requests are delivered
// to the next tick only.
type Console struct {
	mu        sync.Mutex
	voltage   float64
	disabled  bool
	trigger   bool
	reset     bool
	resetPose *drive.Pose
}

func NewConsole(voltage float64) *Console {
	return &Console{voltage: voltage}
}

func (c *Console) Conditions(float64) sim.Conditions {
	c.mu.Lock()
	defer c.mu.Unlock()
	cond := sim.Conditions{
		BatteryVoltage: c.voltage,
		Disabled:       c.disabled,
		TriggerEStop:   c.trigger,
		ResetEStop:     c.reset,
		ResetPose:      c.resetPose,
	}
	c.trigger, c.reset, c.resetPose = false, false, nil
	return cond
}

func (c *Console) TriggerEStop() {
	c.mu.Lock()
	c.trigger = true
	c.mu.Unlock()
}

// RequestReset asks to clear the e-stop. The interlock refuses it unless
// the robot is disabled on that tick.
func (c *Console) RequestReset() {
	c.mu.Lock()
	c.reset = true
	c.mu.Unlock()
}

func (c *Console) ResetPose(p drive.Pose) {
	c.mu.Lock()
	c.resetPose = &p
	c.mu.Unlock()
}

func (c *Console) ToggleDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = !c.disabled
	return c.disabled
}

func (c *Console) Disabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

// AdjustVoltage shifts the battery voltage by delta within the console
// range and returns the new value.
func (c *Console) AdjustVoltage(delta float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voltage = math.Max(MinConsoleVoltage, math.Min(MaxConsoleVoltage, c.voltage+delta))
	return c.voltage
}

func (c *Console) Voltage() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voltage
}
