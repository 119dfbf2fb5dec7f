package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

// DPI of the rendered charts.
const DPI = 150

type series struct {
	name   string
	xs, ys []float64
}

// SavePlots renders the standard charts of a run into dir and returns the
// files written.
func SavePlots(dir string, samples []sim.Sample) ([]string, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("export: no samples to plot")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create directory: %w", err)
	}

	n := len(samples)
	t := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	yaw := make([]float64, n)
	amps := make([]float64, n)
	var wheel [drive.ModuleCount][]float64
	for m := range wheel {
		wheel[m] = make([]float64, n)
	}
	for i, s := range samples {
		t[i] = s.Time
		x[i] = s.Snapshot.OdometryX
		y[i] = s.Snapshot.OdometryY
		yaw[i] = s.Snapshot.Gyro.YawDeg
		amps[i] = s.Snapshot.TotalCurrentAmps()
		for m := range wheel {
			wheel[m][i] = s.Snapshot.DriveVelocityRadPerSec[m]
		}
	}

	wheels := make([]series, drive.ModuleCount)
	for m := range wheels {
		wheels[m] = series{name: drive.ModuleNames[m], xs: t, ys: wheel[m]}
	}

	charts := []struct {
		file, title, xlabel, ylabel string
		lines                       []series
	}{
		{"odometry_path.png", "Odometry Path", "x (m)", "y (m)", []series{{"path", x, y}}},
		{"yaw.png", "Gyro Yaw", "time (s)", "yaw (deg)", []series{{"yaw", t, yaw}}},
		{"drive_velocity.png", "Drive Velocity", "time (s)", "wheel (rad/s)", wheels},
		{"total_current.png", "Total Current", "time (s)", "current (A)", []series{{"current", t, amps}}},
	}

	files := make([]string, 0, len(charts))
	for _, c := range charts {
		p, err := linePlot(c.title, c.xlabel, c.ylabel, c.lines)
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, c.file)
		if err := savePlotPNG(p, 8.0, 6.0, path); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func linePlot(title, xlabel, ylabel string, lines []series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)
	p.Add(plotter.NewGrid())

	for i, s := range lines {
		pts := make(plotter.XYs, len(s.xs))
		for j := range s.xs {
			pts[j].X = s.xs[j]
			pts[j].Y = s.ys[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(2.0)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		if len(lines) > 1 {
			p.Legend.Add(s.name, line)
		}
	}
	p.Legend.Top = true
	return p, nil
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)

	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Padding = vg.Points(12)
	p.Y.Padding = vg.Points(12)

	p.X.Tick.Label.Font.Size = vg.Points(12)
	p.Y.Tick.Label.Font.Size = vg.Points(12)
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
