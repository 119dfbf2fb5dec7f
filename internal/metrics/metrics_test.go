package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/safety"
	"github.com/san-kum/swervesim/internal/sim"
)

func at(t, x, y float64) sim.Sample {
	var s sim.Sample
	s.Time = t
	s.Snapshot.OdometryX = x
	s.Snapshot.OdometryY = y
	return s
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()
	m.Observe(at(0.02, 0, 0))
	m.Observe(at(0.04, 3, 4))
	m.Observe(at(0.06, 3, 0))

	if got := m.Value(); math.Abs(got-9) > 1e-9 {
		t.Errorf("expected path length 9, got %f", got)
	}

	m.Reset()
	m.Observe(at(0.08, 10, 10))
	if got := m.Value(); got != 0 {
		t.Errorf("expected 0 after reset, got %f", got)
	}
}

func TestPeakSpeed(t *testing.T) {
	m := NewPeakSpeed()
	m.Observe(at(0.0, 0, 0))
	m.Observe(at(0.5, 1, 0))
	m.Observe(at(1.0, 1, 2))

	if got := m.Value(); math.Abs(got-4) > 1e-9 {
		t.Errorf("expected peak speed 4, got %f", got)
	}
}

func TestCurrentDraw(t *testing.T) {
	m := NewCurrentDraw()
	var s sim.Sample
	for i := 0; i < drive.ModuleCount; i++ {
		s.Snapshot.DriveCurrentAmps[i] = 10
		s.Snapshot.SteerCurrentAmps[i] = 2.5
	}
	m.Observe(s)
	m.Observe(sim.Sample{})

	if got := m.Value(); math.Abs(got-25) > 1e-9 {
		t.Errorf("expected mean current 25, got %f", got)
	}
}

func TestCurrentLimitExceedances(t *testing.T) {
	m := NewCurrentLimitExceedances(40, 20)

	tests := []struct {
		name         string
		drive, steer float64
		want         float64
	}{
		{"within limits", 39, 19, 0},
		{"drive over", 41, 0, 1},
		{"steer over", 0, 21, 2},
		{"both over counts once", 50, 50, 3},
	}
	for _, tt := range tests {
		var s sim.Sample
		s.Snapshot.DriveCurrentAmps[drive.BackLeft] = tt.drive
		s.Snapshot.SteerCurrentAmps[drive.BackLeft] = tt.steer
		m.Observe(s)
		if got := m.Value(); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestBrownoutFraction(t *testing.T) {
	m := NewBrownoutFraction()
	for i := 0; i < 4; i++ {
		m.Observe(sim.Sample{Safety: safety.State{Brownout: i == 0}})
	}
	if got := m.Value(); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
}

func TestStandardNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard(40, 20) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}
