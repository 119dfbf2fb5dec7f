package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func TestInverseMatchesRigidBody(t *testing.T) {
	l, err := NewLayout(0.6, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := l.Inverse(1, 0, 0)
	for i, p := range v {
		if p.X != 1 || p.Y != 0 {
			t.Errorf("module %d: expected pure translation, got %+v", i, p)
		}
	}

	v = l.Inverse(0, 0, 2)
	fl, br := v[0], v[3]
	if math.Abs(fl.X-(-0.5)) > 1e-12 || math.Abs(fl.Y-0.6) > 1e-12 {
		t.Errorf("front-left: expected (-0.5, 0.6), got %+v", fl)
	}
	if math.Abs(br.X-0.5) > 1e-12 || math.Abs(br.Y-(-0.6)) > 1e-12 {
		t.Errorf("back-right: expected (0.5, -0.6), got %+v", br)
	}
}

func TestForwardRoundTrip(t *testing.T) {
	l, err := NewLayout(0.5842, 0.5842)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name          string
		vx, vy, omega float64
	}{
		{"still", 0, 0, 0},
		{"forward", 2, 0, 0},
		{"strafe", 0, -1.5, 0},
		{"spin", 0, 0, 3},
		{"mixed", 1.2, -0.7, -2.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vx, vy, omega := l.Forward(l.Inverse(tt.vx, tt.vy, tt.omega))
			if math.Abs(vx-tt.vx) > 1e-9 || math.Abs(vy-tt.vy) > 1e-9 || math.Abs(omega-tt.omega) > 1e-9 {
				t.Errorf("expected (%.3f, %.3f, %.3f), got (%.3f, %.3f, %.3f)", tt.vx, tt.vy, tt.omega, vx, vy, omega)
			}
		})
	}
}

func TestForwardAveragesDisagreement(t *testing.T) {
	l, _ := NewLayout(0.5, 0.5)
	v := [4]r2.Point{{X: 1}, {X: 1}, {X: 1}, {X: 3}}
	vx, vy, _ := l.Forward(v)
	if math.Abs(vx-1.5) > 1e-9 {
		t.Errorf("expected mean forward speed 1.5, got %.4f", vx)
	}
	if math.Abs(vy) > 1e-9 {
		t.Errorf("expected no lateral speed, got %.4f", vy)
	}
}

func TestSingularLayout(t *testing.T) {
	_, err := NewLayout(0, 0)
	if !errors.Is(err, ErrSingularLayout) {
		t.Errorf("expected ErrSingularLayout, got %v", err)
	}
}

func TestFrameRotation(t *testing.T) {
	v := r2.Point{X: 1, Y: 0}
	r := ToRobotFrame(v, math.Pi/2)
	if math.Abs(r.X) > 1e-12 || math.Abs(r.Y+1) > 1e-12 {
		t.Errorf("expected (0, -1), got %+v", r)
	}
	back := ToFieldFrame(r, math.Pi/2)
	if math.Abs(back.X-1) > 1e-12 || math.Abs(back.Y) > 1e-12 {
		t.Errorf("expected (1, 0), got %+v", back)
	}
	if p := Polar(2, math.Pi); math.Abs(p.X+2) > 1e-12 {
		t.Errorf("expected (-2, 0), got %+v", p)
	}
}
