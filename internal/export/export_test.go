package export

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

func track(n int) []sim.Sample {
	samples := make([]sim.Sample, n)
	for i := range samples {
		s := &samples[i]
		s.Time = float64(i+1) * 0.02
		s.Snapshot.OdometryX = float64(i) * 0.02
		s.Snapshot.OdometryY = float64(i) * 0.01
		s.Snapshot.Gyro.YawDeg = float64(i)
		for m := 0; m < drive.ModuleCount; m++ {
			s.Snapshot.DriveVelocityRadPerSec[m] = float64(i + m)
			s.Snapshot.DriveCurrentAmps[m] = 5
		}
	}
	return samples
}

func TestPathToSVG(t *testing.T) {
	pts := PathFromSamples(track(20))
	if len(pts) != 20 {
		t.Fatalf("expected 20 points, got %d", len(pts))
	}
	if d := pts[19].Sub(r2.Point{X: 0.38, Y: 0.19}).Norm(); d > 1e-12 {
		t.Errorf("unexpected final point %v", pts[19])
	}

	svg := PathToSVG(pts, 0, 400, 300, "#00ffff")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete svg document")
	}
	if strings.Count(svg, " L") != 19 {
		t.Errorf("expected 19 line segments, got %d", strings.Count(svg, " L"))
	}
	if !strings.Contains(svg, "#00ffff") || !strings.Contains(svg, "<circle") {
		t.Error("expected stroke color and start marker")
	}
}

func TestPathToSVGDegenerate(t *testing.T) {
	if svg := PathToSVG(nil, 0, 100, 100, "#fff"); svg != "" {
		t.Error("expected empty svg for no points")
	}
	still := []r2.Point{{X: 1, Y: 1}, {X: 1, Y: 1}}
	if svg := PathToSVG(still, 0, 100, 100, "#fff"); strings.Contains(svg, "NaN") {
		t.Error("expected finite coordinates for a stationary path")
	}
}

func TestSavePlots(t *testing.T) {
	dir := t.TempDir()
	files, err := SavePlots(dir, track(50))
	if err != nil {
		t.Fatalf("SavePlots: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 charts, got %d", len(files))
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, pngMagic) {
			t.Errorf("%s is not a png", f)
		}
	}

	if _, err := SavePlots(dir, nil); err == nil {
		t.Error("expected error for empty run")
	}
}
