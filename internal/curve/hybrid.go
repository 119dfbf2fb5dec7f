package curve

import (
	"fmt"
	"math"
	"sync/atomic"
)

// HybridConfig describes a proportional region up to CuspX followed by a
// quadratic that reaches 1 at full scale, clamped to Limit.
//
// A negative Threshold does not create a deadzone; it shifts the input
// magnitude up by -Threshold instead.
type HybridConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	CuspX     float64 `yaml:"cusp_x" json:"cusp_x"`
	LinCoef   float64 `yaml:"lin_coef" json:"lin_coef"`
	Limit     float64 `yaml:"limit" json:"limit"`
}

func (c HybridConfig) Validate() error {
	if !finite(c.Threshold, c.CuspX, c.LinCoef, c.Limit) {
		return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidCurve, c)
	}
	if c.CuspX == 1 {
		return fmt.Errorf("%w: cusp_x=1", ErrDegenerateCusp)
	}
	if c.CuspX < 0 || c.CuspX > 1 {
		return fmt.Errorf("%w: cusp_x %.3f outside [0, 1)", ErrInvalidCurve, c.CuspX)
	}
	if c.Threshold <= -1 || c.Threshold >= 1 {
		return fmt.Errorf("%w: threshold %.3f outside (-1, 1)", ErrInvalidCurve, c.Threshold)
	}
	// Above 1 the quadratic turns over past full scale and flips sign.
	if c.LinCoef < 0 || c.LinCoef > 1 {
		return fmt.Errorf("%w: lin_coef %.3f outside [0, 1]", ErrInvalidCurve, c.LinCoef)
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit %.3f is negative", ErrInvalidCurve, c.Limit)
	}
	return nil
}

type hybridShape struct {
	cfg     HybridConfig
	a, b, c float64
}

// newHybridShape solves a·x²+b·x+c for value and slope continuity with
// lin_coef·x at the cusp and f(1) = 1.
func newHybridShape(cfg HybridConfig) *hybridShape {
	x0 := cfg.CuspX
	lc := cfg.LinCoef
	denom := (1 - x0) * (1 - x0)

	s := &hybridShape{cfg: cfg}
	s.a = (1 - lc) / denom
	s.c = s.a * x0 * x0
	s.b = (lc + (lc*x0-2)*x0) / denom
	return s
}

// Hybrid is a linear/quadratic curve. Safe for concurrent use.
type Hybrid struct {
	shape atomic.Pointer[hybridShape]
}

func NewHybrid(cfg HybridConfig) (*Hybrid, error) {
	h := &Hybrid{}
	if err := h.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return h, nil
}

// Reconfigure validates cfg and replaces the whole shape. On error the
// previous shape stays in effect.
func (h *Hybrid) Reconfigure(cfg HybridConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	h.shape.Store(newHybridShape(cfg))
	return nil
}

func (h *Hybrid) Config() HybridConfig {
	return h.shape.Load().cfg
}

// Coefficients returns the quadratic segment's a, b, c.
func (h *Hybrid) Coefficients() (a, b, c float64) {
	s := h.shape.Load()
	return s.a, s.b, s.c
}

func (h *Hybrid) Transfer(x float64) float64 {
	if x == 0 || math.IsNaN(x) {
		return 0
	}
	s := h.shape.Load()
	cfg := s.cfg
	xabs := math.Abs(x)

	if cfg.Threshold < 0 {
		xabs -= cfg.Threshold
		if xabs <= 0 {
			return 0
		}
	} else if xabs < cfg.Threshold {
		return 0
	}

	var y float64
	if xabs <= cfg.CuspX {
		y = cfg.LinCoef * xabs
	} else {
		y = s.a*xabs*xabs + s.b*xabs + s.c
	}
	if y > cfg.Limit {
		y = cfg.Limit
	}
	return withSign(x, y)
}
