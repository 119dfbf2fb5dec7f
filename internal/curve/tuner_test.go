package curve

import (
	"math"
	"testing"
)

func TestTunerPicksUpEdits(t *testing.T) {
	table := NewTable()
	tuner, err := NewTuner("Rot_", PiecewiseConfig{XStart: 0.1, XMiddle: 0.5, YStart: 0.1, YMiddle: 0.5, YMax: 1.0}, table, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := table.Number("Rot_Max_Y", 0); got != 1.0 {
		t.Errorf("expected published max 1.0, got %.2f", got)
	}
	if got := tuner.Transfer(1.0); got != 1.0 {
		t.Errorf("expected 1.0, got %.4f", got)
	}

	table.Put("Rot_Max_Y", 0.6)
	if got := tuner.Transfer(1.0); math.Abs(got-0.6) > tol {
		t.Errorf("expected edited max 0.6, got %.4f", got)
	}
}

func TestTunerKeepsLastGoodShape(t *testing.T) {
	table := NewTable()
	tuner, err := NewTuner("", PiecewiseConfig{XStart: 0.1, XMiddle: 0.5, YStart: 0.1, YMiddle: 0.5, YMax: 1.0}, table, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table.Put(KeyMiddleX, 0.05)
	if got := tuner.Transfer(0.3); math.Abs(got-0.3) > tol {
		t.Errorf("expected previous shape output 0.3, got %.4f", got)
	}
	if tuner.Config().XMiddle != 0.5 {
		t.Errorf("expected middle to stay 0.5, got %.2f", tuner.Config().XMiddle)
	}
}

func TestTunersWithDifferentPrefixes(t *testing.T) {
	table := NewTable()
	a, _ := NewTuner("A_", PiecewiseConfig{XStart: 0.1, XMiddle: 0.5, YStart: 0.1, YMiddle: 0.5, YMax: 1.0}, table, nil)
	b, _ := NewTuner("B_", PiecewiseConfig{XStart: 0.2, XMiddle: 0.6, YStart: 0.2, YMiddle: 0.4, YMax: 0.8}, table, nil)

	if a.Transfer(0.15) <= 0 {
		t.Error("expected output above first deadzone")
	}
	if got := b.Transfer(0.15); got != 0 {
		t.Errorf("expected 0 inside second deadzone, got %.4f", got)
	}
	if len(table.Keys()) != 10 {
		t.Errorf("expected 10 published keys, got %d", len(table.Keys()))
	}
}
