package control

import (
	"math"
	"sync"
)

// Axes holds one reading of the driver's sticks, each in [-1, 1]. Forward on
// the left stick is negative LeftY, matching gamepad conventions.
type Axes struct {
	LeftX  float64 `yaml:"left_x" json:"left_x"`
	LeftY  float64 `yaml:"left_y" json:"left_y"`
	RightX float64 `yaml:"right_x" json:"right_x"`
}

// Clamped limits every axis to [-1, 1] and zeroes NaN.
func (a Axes) Clamped() Axes {
	return Axes{LeftX: clampUnit(a.LeftX), LeftY: clampUnit(a.LeftY), RightX: clampUnit(a.RightX)}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// AxisSource supplies the current stick reading.
type AxisSource interface {
	Axes() Axes
}

// ManualAxes is an AxisSource set from another goroutine, such as a
// keyboard handler.
type ManualAxes struct {
	mu   sync.Mutex
	axes Axes
}

func NewManualAxes() *ManualAxes {
	return &ManualAxes{}
}

func (m *ManualAxes) Set(a Axes) {
	m.mu.Lock()
	m.axes = a.Clamped()
	m.mu.Unlock()
}

func (m *ManualAxes) Axes() Axes {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.axes
}

// Decay scales every axis toward zero by factor and snaps small values to
// zero, so released keys let the sticks settle.
func (m *ManualAxes) Decay(factor float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.axes.LeftX = decay(m.axes.LeftX, factor)
	m.axes.LeftY = decay(m.axes.LeftY, factor)
	m.axes.RightX = decay(m.axes.RightX, factor)
}

func decay(v, factor float64) float64 {
	v *= factor
	if math.Abs(v) < 0.01 {
		return 0
	}
	return v
}
