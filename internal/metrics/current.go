package metrics

import (
	"math"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

// CurrentDraw is the mean total drivetrain current in amps.
type CurrentDraw struct {
	name    string
	sum     float64
	samples int
}

func NewCurrentDraw() *CurrentDraw {
	return &CurrentDraw{name: "current_draw"}
}

func (c *CurrentDraw) Name() string { return c.name }

func (c *CurrentDraw) Observe(s sim.Sample) {
	c.sum += s.Snapshot.TotalCurrentAmps()
	c.samples++
}

func (c *CurrentDraw) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *CurrentDraw) Reset() {
	c.sum = 0
	c.samples = 0
}

// CurrentLimitExceedances counts samples where any motor ran above its
// stator limit. The limits are not enforced by the simulation.
type CurrentLimitExceedances struct {
	name                   string
	driveLimit, steerLimit float64
	count                  int
}

func NewCurrentLimitExceedances(driveLimit, steerLimit float64) *CurrentLimitExceedances {
	return &CurrentLimitExceedances{
		name:       "current_limit_exceedances",
		driveLimit: driveLimit,
		steerLimit: steerLimit,
	}
}

func (c *CurrentLimitExceedances) Name() string { return c.name }

func (c *CurrentLimitExceedances) Observe(s sim.Sample) {
	for i := 0; i < drive.ModuleCount; i++ {
		if math.Abs(s.Snapshot.DriveCurrentAmps[i]) > c.driveLimit ||
			math.Abs(s.Snapshot.SteerCurrentAmps[i]) > c.steerLimit {
			c.count++
			return
		}
	}
}

func (c *CurrentLimitExceedances) Value() float64 { return float64(c.count) }

func (c *CurrentLimitExceedances) Reset() { c.count = 0 }
