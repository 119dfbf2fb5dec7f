package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/experiment"
	"github.com/san-kum/swervesim/internal/scenario"
)

func TestParseAxis(t *testing.T) {
	ax, err := ParseAxis("steer_kp=4, 8,12")
	if err != nil {
		t.Fatal(err)
	}
	if ax.Name != "steer_kp" || len(ax.Values) != 3 || ax.Values[2] != 12 {
		t.Errorf("unexpected axis %+v", ax)
	}

	for _, bad := range []string{"steer_kp", "steer_kp=fast"} {
		if _, err := ParseAxis(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch([]Axis{{Name: "warp", Values: []float64{1}}}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := NewGridSearch([]Axis{{Name: "steer_kp"}}); !errors.Is(err, ErrEmptyAxis) {
		t.Errorf("expected ErrEmptyAxis, got %v", err)
	}
}

func TestCombinations(t *testing.T) {
	g, err := NewGridSearch([]Axis{
		{Name: "steer_kp", Values: []float64{4, 8}},
		{Name: "deadband", Values: []float64{0.05, 0.1, 0.15}},
	})
	if err != nil {
		t.Fatal(err)
	}
	combos := g.Combinations()
	if len(combos) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(combos))
	}
	if combos[0]["steer_kp"] != 4 || combos[0]["deadband"] != 0.05 {
		t.Errorf("unexpected first combination %v", combos[0])
	}
	if combos[5]["steer_kp"] != 8 || combos[5]["deadband"] != 0.15 {
		t.Errorf("unexpected last combination %v", combos[5])
	}
}

func brownoutDrive() *scenario.Scenario {
	return &scenario.Scenario{
		Name: "brownout_drive",
		Segments: []scenario.Segment{
			{Name: "sag", Duration: 1, Velocity: &scenario.Velocity{Vx: 1}, BatteryVoltage: 10},
		},
	}
}

func TestSearchPicksLowestMetric(t *testing.T) {
	g, err := NewGridSearch([]Axis{{Name: "brownout_multiplier", Values: []float64{1, 0.25, 0.5}}})
	if err != nil {
		t.Fatal(err)
	}
	base := config.DefaultConfig()

	best, points, err := g.Search(context.Background(), experiment.Spec{Config: base, Scenario: brownoutDrive()}, "path_length", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if best.Params["brownout_multiplier"] != 0.25 {
		t.Errorf("expected the slowest multiplier to travel least, got %v", best.Params)
	}
	if !(points[1].Value < points[2].Value && points[2].Value < points[0].Value) {
		t.Errorf("expected path length to grow with the multiplier, got %v", points)
	}
	if base.Safety.BrownoutMultiplier != config.DefaultConfig().Safety.BrownoutMultiplier {
		t.Error("base config must not be modified")
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	g, err := NewGridSearch([]Axis{{Name: "steer_kp", Values: []float64{12}}})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = g.Search(context.Background(), experiment.Spec{Scenario: brownoutDrive()}, "happiness", nil)
	if !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}
}
