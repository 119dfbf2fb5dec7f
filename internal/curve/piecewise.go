package curve

import (
	"fmt"
	"math"
	"sync/atomic"
)

// PiecewiseConfig describes a deadzone followed by two linear segments:
// (XStart, YStart) to (XMiddle, YMiddle), then (XMiddle, YMiddle) to (1, YMax).
type PiecewiseConfig struct {
	XStart  float64 `yaml:"x_start" json:"x_start"`
	XMiddle float64 `yaml:"x_middle" json:"x_middle"`
	YStart  float64 `yaml:"y_start" json:"y_start"`
	YMiddle float64 `yaml:"y_middle" json:"y_middle"`
	YMax    float64 `yaml:"y_max" json:"y_max"`
}

func (c PiecewiseConfig) Validate() error {
	if !finite(c.XStart, c.XMiddle, c.YStart, c.YMiddle, c.YMax) {
		return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidCurve, c)
	}
	if c.XStart < 0 || c.XStart >= 1 {
		return fmt.Errorf("%w: x_start %.3f outside [0, 1)", ErrInvalidCurve, c.XStart)
	}
	if c.XMiddle <= c.XStart || c.XMiddle > 1 {
		return fmt.Errorf("%w: x_middle %.3f must lie in (x_start=%.3f, 1]", ErrInvalidCurve, c.XMiddle, c.XStart)
	}
	if c.YStart < 0 || c.YMiddle < 0 || c.YMax < 0 {
		return fmt.Errorf("%w: outputs must be non-negative", ErrInvalidCurve)
	}
	return nil
}

type piecewiseShape struct {
	cfg            PiecewiseConfig
	slope1, slope2 float64
}

func newPiecewiseShape(cfg PiecewiseConfig) *piecewiseShape {
	s := &piecewiseShape{cfg: cfg}
	if cfg.XStart < cfg.XMiddle {
		s.slope1 = (cfg.YMiddle - cfg.YStart) / (cfg.XMiddle - cfg.XStart)
	}
	if cfg.XMiddle < 1 {
		s.slope2 = (cfg.YMax - cfg.YMiddle) / (1 - cfg.XMiddle)
	}
	return s
}

// Piecewise is a two-segment linear curve. Safe for concurrent use.
type Piecewise struct {
	shape atomic.Pointer[piecewiseShape]
}

func NewPiecewise(cfg PiecewiseConfig) (*Piecewise, error) {
	p := &Piecewise{}
	if err := p.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Reconfigure validates cfg and replaces the whole shape. On error the
// previous shape stays in effect.
func (p *Piecewise) Reconfigure(cfg PiecewiseConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.shape.Store(newPiecewiseShape(cfg))
	return nil
}

func (p *Piecewise) Config() PiecewiseConfig {
	return p.shape.Load().cfg
}

func (p *Piecewise) Transfer(x float64) float64 {
	if x == 0 || math.IsNaN(x) {
		return 0
	}
	s := p.shape.Load()
	c := s.cfg
	xabs := math.Abs(x)

	var y float64
	switch {
	case xabs < c.XStart:
		return 0
	case xabs < c.XMiddle:
		y = c.YStart + s.slope1*(xabs-c.XStart)
	case xabs < 1:
		y = c.YMiddle + s.slope2*(xabs-c.XMiddle)
	default:
		y = c.YMax
	}
	return withSign(x, y)
}
