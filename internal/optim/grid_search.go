// Package optim sweeps configuration parameters over a grid and picks the
// combination that minimises a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/experiment"
	"github.com/san-kum/swervesim/internal/sim"
)

var (
	ErrUnknownParam  = errors.New("optim: unknown parameter")
	ErrUnknownMetric = errors.New("optim: unknown metric")
	ErrEmptyAxis     = errors.New("optim: axis has no values")
)

// Params are the configuration knobs a sweep can vary.
var Params = map[string]func(c *config.Config, v float64){
	"steer_kp":            func(c *config.Config, v float64) { c.Motors.SteerKP = v },
	"drive_inertia":       func(c *config.Config, v float64) { c.Motors.DriveInertia = v },
	"steer_inertia":       func(c *config.Config, v float64) { c.Motors.SteerInertia = v },
	"max_substep":         func(c *config.Config, v float64) { c.Sim.MaxSubstep = v },
	"brownout_multiplier": func(c *config.Config, v float64) { c.Safety.BrownoutMultiplier = v },
	"deadband":            func(c *config.Config, v float64) { c.Operator.Deadband = v },
	"min_output":          func(c *config.Config, v float64) { c.Operator.MinOutput = v },
	"translation_y_max":   func(c *config.Config, v float64) { c.Operator.Translation.YMax = v },
	"rotation_y_max":      func(c *config.Config, v float64) { c.Operator.Rotation.YMax = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("optim: axis %q is not name=v1,v2", s)
	}
	ax := Axis{Name: strings.TrimSpace(name)}
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Axis{}, fmt.Errorf("optim: axis %s: %w", ax.Name, err)
		}
		ax.Values = append(ax.Values, v)
	}
	return ax, nil
}

// Point is one evaluated grid combination.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	axes []Axis
}

func NewGridSearch(axes []Axis) (*GridSearch, error) {
	for _, ax := range axes {
		if _, ok := Params[ax.Name]; !ok {
			return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownParam, ax.Name, ParamNames())
		}
		if len(ax.Values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyAxis, ax.Name)
		}
	}
	return &GridSearch{axes: axes}, nil
}

// Combinations enumerates the grid, first axis outermost.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.combine(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.axes) {
		*out = append(*out, current)
		return
	}

	ax := g.axes[depth]
	for _, val := range ax.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[ax.Name] = val
		g.combine(depth+1, next, out)
	}
}

// Search runs spec once per combination, concurrently, and returns the
// combination with the lowest metric alongside every evaluated point in
// grid order. spec.Config is the base; it is not modified.
func (g *GridSearch) Search(ctx context.Context, spec experiment.Spec, metric string, logger *zap.Logger) (Point, []Point, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := spec.Config
	if base == nil {
		base = config.DefaultConfig()
	}

	combos := g.Combinations()
	registry := experiment.NewRegistry()
	jobs := make([]sim.Job, len(combos))
	for i, params := range combos {
		cfg := *base
		for name, v := range params {
			Params[name](&cfg, v)
		}
		s := spec
		s.Config = &cfg
		s.Name = fmt.Sprintf("sweep-%d", i)
		jobs[i] = experiment.Job(s, registry, logger)
	}

	results, err := sim.RunBatch(ctx, jobs)
	if err != nil {
		return Point{}, nil, err
	}

	best := Point{Value: math.Inf(1)}
	points := make([]Point, len(results))
	for i, res := range results {
		val, ok := res.Metrics[metric]
		if !ok {
			return Point{}, nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
		}
		points[i] = Point{Params: combos[i], Value: val}
		if val < best.Value {
			best = points[i]
		}
	}
	logger.Info("sweep complete", zap.Int("points", len(points)), zap.String("metric", metric), zap.Float64("best", best.Value))
	return best, points, nil
}
