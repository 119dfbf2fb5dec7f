package metrics

import "github.com/san-kum/swervesim/internal/sim"

// BrownoutFraction is the share of samples taken with brownout active.
type BrownoutFraction struct {
	name     string
	brownout int
	samples  int
}

func NewBrownoutFraction() *BrownoutFraction {
	return &BrownoutFraction{name: "brownout_fraction"}
}

func (b *BrownoutFraction) Name() string { return b.name }

func (b *BrownoutFraction) Observe(s sim.Sample) {
	if s.Safety.Brownout {
		b.brownout++
	}
	b.samples++
}

func (b *BrownoutFraction) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return float64(b.brownout) / float64(b.samples)
}

func (b *BrownoutFraction) Reset() {
	b.brownout = 0
	b.samples = 0
}

// Standard returns the metric set recorded for every run.
func Standard(driveLimit, steerLimit float64) []sim.Metric {
	return []sim.Metric{
		NewPathLength(),
		NewPeakSpeed(),
		NewCurrentDraw(),
		NewBrownoutFraction(),
		NewCurrentLimitExceedances(driveLimit, steerLimit),
	}
}
