package metrics

import (
	"math"

	"github.com/san-kum/swervesim/internal/sim"
)

// PathLength is the distance travelled by the odometry pose.
type PathLength struct {
	name   string
	total  float64
	prevX  float64
	prevY  float64
	primed bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(s sim.Sample) {
	x, y := s.Snapshot.OdometryX, s.Snapshot.OdometryY
	if p.primed {
		p.total += math.Hypot(x-p.prevX, y-p.prevY)
	}
	p.prevX, p.prevY = x, y
	p.primed = true
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() {
	p.total = 0
	p.primed = false
}

// PeakSpeed is the largest field speed seen between consecutive samples.
type PeakSpeed struct {
	name   string
	peak   float64
	prevX  float64
	prevY  float64
	prevT  float64
	primed bool
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s sim.Sample) {
	x, y := s.Snapshot.OdometryX, s.Snapshot.OdometryY
	if p.primed {
		if dt := s.Time - p.prevT; dt > 0 {
			p.peak = math.Max(p.peak, math.Hypot(x-p.prevX, y-p.prevY)/dt)
		}
	}
	p.prevX, p.prevY, p.prevT = x, y, s.Time
	p.primed = true
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() {
	p.peak = 0
	p.primed = false
}
