package curve

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Table is a concurrent table of named numbers that operators edit while
// the robot runs. Tuners read their curve parameters from it.
type Table struct {
	mu   sync.RWMutex
	vals map[string]float64
}

func NewTable() *Table {
	return &Table{vals: make(map[string]float64)}
}

func (t *Table) Put(key string, v float64) {
	t.mu.Lock()
	t.vals[key] = v
	t.mu.Unlock()
}

// Number returns the value stored under key, or fallback when absent.
func (t *Table) Number(key string, fallback float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.vals[key]; ok {
		return v
	}
	return fallback
}

func (t *Table) Keys() []string {
	t.mu.RLock()
	keys := make([]string, 0, len(t.vals))
	for k := range t.vals {
		keys = append(keys, k)
	}
	t.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

const (
	KeyStartX  = "Start_X"
	KeyMiddleX = "Middle_X"
	KeyStartY  = "Start_Y"
	KeyMiddleY = "Middle_Y"
	KeyMaxY    = "Max_Y"
)

// Tuner is a Piecewise curve whose parameters live in a Table under a key
// prefix. Each Transfer picks up edits; rejected edits keep the last good
// shape.
type Tuner struct {
	prefix string
	table  *Table
	curve  *Piecewise
	last   PiecewiseConfig
	logger *zap.Logger
}

// NewTuner publishes cfg to table under prefix and returns a tuner bound
// to those keys.
func NewTuner(prefix string, cfg PiecewiseConfig, table *Table, logger *zap.Logger) (*Tuner, error) {
	p, err := NewPiecewise(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tuner{prefix: prefix, table: table, curve: p, last: cfg, logger: logger}
	table.Put(prefix+KeyStartX, cfg.XStart)
	table.Put(prefix+KeyMiddleX, cfg.XMiddle)
	table.Put(prefix+KeyStartY, cfg.YStart)
	table.Put(prefix+KeyMiddleY, cfg.YMiddle)
	table.Put(prefix+KeyMaxY, cfg.YMax)
	return t, nil
}

func (t *Tuner) Transfer(x float64) float64 {
	t.refresh()
	return t.curve.Transfer(x)
}

func (t *Tuner) Config() PiecewiseConfig {
	return t.curve.Config()
}

func (t *Tuner) refresh() {
	next := PiecewiseConfig{
		XStart:  t.table.Number(t.prefix+KeyStartX, t.last.XStart),
		XMiddle: t.table.Number(t.prefix+KeyMiddleX, t.last.XMiddle),
		YStart:  t.table.Number(t.prefix+KeyStartY, t.last.YStart),
		YMiddle: t.table.Number(t.prefix+KeyMiddleY, t.last.YMiddle),
		YMax:    t.table.Number(t.prefix+KeyMaxY, t.last.YMax),
	}
	if next == t.last {
		return
	}
	t.last = next
	if err := t.curve.Reconfigure(next); err != nil {
		t.logger.Warn("rejected curve edit", zap.String("prefix", t.prefix), zap.Error(err))
		return
	}
	t.logger.Debug("curve reconfigured", zap.String("prefix", t.prefix), zap.Any("config", next))
}
