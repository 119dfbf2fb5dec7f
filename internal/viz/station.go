package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/curve"
	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	viewSpan        = 8.0
	historyCapacity = 300
	trailCapacity   = 400
	axisDecay       = 0.85
	voltageStep     = 0.5
)

type TickMsg time.Time

type StationConfig struct {
	Title    string
	Period   float64
	Geometry drive.Geometry
	Palette  string
}

// Station is a keyboard driver station for a live simulator. Each tick
// message advances the simulator by one period.
type Station struct {
	sim     *sim.Simulator
	axes    *control.ManualAxes
	table   *curve.Table
	console *Console
	layout  *kinematics.Layout
	cfg     StationConfig

	canvas   *Canvas
	styles   styles
	palette  int
	running  bool
	showHelp bool
	keys     []string
	selected int

	last           sim.Sample
	speedHistory   []float64
	currentHistory []float64
	trail          []r2.Point
}

// NewStation binds a simulator to keyboard axes, a console environment and
// an optional tuning table. The simulator must have been built with axes
// as its teleop source and console as its environment.
func NewStation(s *sim.Simulator, axes *control.ManualAxes, table *curve.Table, console *Console, cfg StationConfig) (Station, error) {
	if !(cfg.Period > 0) {
		return Station{}, fmt.Errorf("%w: period %v", sim.ErrInvalidLoop, cfg.Period)
	}
	layout, err := kinematics.NewLayout(cfg.Geometry.WheelBase, cfg.Geometry.TrackWidth)
	if err != nil {
		return Station{}, err
	}
	var keys []string
	if table != nil {
		keys = table.Keys()
	}
	palette := PaletteIndex(cfg.Palette)
	return Station{
		sim:            s,
		axes:           axes,
		table:          table,
		console:        console,
		layout:         layout,
		cfg:            cfg,
		canvas:         NewCanvas(canvasWidth, canvasHeight),
		styles:         newStyles(Palettes[palette]),
		palette:        palette,
		running:        true,
		keys:           keys,
		speedHistory:   make([]float64, 0, historyCapacity),
		currentHistory: make([]float64, 0, historyCapacity),
		trail:          make([]r2.Point, 0, trailCapacity),
	}, nil
}

func (m Station) Init() tea.Cmd { return m.tick() }

func (m Station) tick() tea.Cmd {
	d := time.Duration(m.cfg.Period * float64(time.Second))
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Station) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "w":
			m.push(func(a *control.Axes) { a.LeftY = -1 })
		case "s":
			m.push(func(a *control.Axes) { a.LeftY = 1 })
		case "a":
			m.push(func(a *control.Axes) { a.LeftX = -1 })
		case "d":
			m.push(func(a *control.Axes) { a.LeftX = 1 })
		case "q":
			m.push(func(a *control.Axes) { a.RightX = -1 })
		case "e":
			m.push(func(a *control.Axes) { a.RightX = 1 })
		case " ":
			m.console.TriggerEStop()
		case "r":
			m.console.RequestReset()
		case "t":
			m.console.ToggleDisabled()
		case "[":
			m.console.AdjustVoltage(-voltageStep)
		case "]":
			m.console.AdjustVoltage(voltageStep)
		case "o":
			m.console.ResetPose(drive.Pose{})
			m.trail = m.trail[:0]
		case "tab":
			m.cycleKey()
		case "up", "k":
			m.tune(1.05)
		case "down", "j":
			m.tune(0.95)
		case "p":
			m.running = !m.running
		case "c":
			m.palette = (m.palette + 1) % len(Palettes)
			m.styles = newStyles(Palettes[m.palette])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// push applies a stick deflection. Terminals report no key release, so
// the axes decay back to centre between presses.
func (m *Station) push(fn func(a *control.Axes)) {
	a := m.axes.Axes()
	fn(&a)
	m.axes.Set(a)
}

func (m *Station) cycleKey() {
	if len(m.keys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.keys)
}

func (m *Station) tune(factor float64) {
	if len(m.keys) == 0 {
		return
	}
	key := m.keys[m.selected]
	m.table.Put(key, m.table.Number(key, 0)*factor)
}

func (m *Station) step() {
	m.axes.Decay(axisDecay)
	s := m.sim.Tick(m.cfg.Period)
	m.last = s

	m.speedHistory = appendCapped(m.speedHistory, wheelSpeed(s.Snapshot, m.cfg.Geometry.WheelRadius), historyCapacity)
	m.currentHistory = appendCapped(m.currentHistory, s.Snapshot.TotalCurrentAmps(), historyCapacity)

	p := s.Snapshot.Pose()
	m.trail = append(m.trail, r2.Point{X: p.X, Y: p.Y})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func appendCapped(xs []float64, v float64, capacity int) []float64 {
	xs = append(xs, v)
	if len(xs) > capacity {
		xs = xs[1:]
	}
	return xs
}

// wheelSpeed is the mean module ground speed in m/s.
func wheelSpeed(snap drive.SensorSnapshot, wheelRadius float64) float64 {
	var sum float64
	for _, w := range snap.DriveVelocityRadPerSec {
		sum += math.Abs(w)
	}
	return sum / drive.ModuleCount * wheelRadius
}

func (m Station) draw() {
	pose := m.last.Snapshot.Pose()
	view := FitWidth(m.canvas, viewSpan)
	view.Center = r2.Point{X: pose.X, Y: pose.Y}

	m.canvas.Clear()
	DrawGrid(m.canvas, view)
	DrawTrail(m.canvas, view, m.trail)
	DrawRobot(m.canvas, view, m.layout, pose, m.last.Snapshot)
}

func (m Station) status() string {
	st := m.styles
	var badges []string
	switch {
	case m.last.Safety.EmergencyStop:
		badges = append(badges, st.stop.Render("E-STOP"))
	case m.console.Disabled():
		badges = append(badges, st.disabled.Render("DISABLED"))
	default:
		badges = append(badges, st.enabled.Render("ENABLED"))
	}
	if m.last.Safety.Brownout {
		badges = append(badges, st.warning.Render("BROWNOUT"))
	}
	if !m.running {
		badges = append(badges, st.disabled.Render("PAUSED"))
	}
	return strings.Join(badges, " ")
}

func (m Station) View() string {
	m.draw()
	st := m.styles
	s := m.last

	row := func(label, value string) string {
		return st.label.Render(label) + st.value.Render(value) + "\n"
	}
	cmd := func(c drive.Command) string {
		return fmt.Sprintf("%+.2f %+.2f %+.2f", c.Vx, c.Vy, c.Omega)
	}

	var b strings.Builder
	title := m.cfg.Title
	if title == "" {
		title = "swervesim"
	}
	b.WriteString(st.header.Render(strings.ToUpper(title)) + "\n")
	b.WriteString(m.status() + "\n\n")

	pose := s.Snapshot.Pose()
	b.WriteString(row("Time", fmt.Sprintf("%.2fs", m.sim.Time())))
	b.WriteString(row("Pose", fmt.Sprintf("%.2f, %.2f  %.1f°", pose.X, pose.Y, pose.Heading.Degrees())))
	b.WriteString(row("Gyro", fmt.Sprintf("%.1f°", s.Snapshot.Gyro.YawDeg)))
	volts := m.console.Voltage()
	b.WriteString(row("Battery", fmt.Sprintf("%s %.1fV", Meter(volts/MaxConsoleVoltage, 12), volts)))
	b.WriteString(row("Multiplier", fmt.Sprintf("%.2f", s.Safety.SpeedMultiplier)))
	b.WriteString(row("Requested", cmd(s.Requested)))
	b.WriteString(row("Applied", cmd(s.Applied)))
	b.WriteString(row("Current", fmt.Sprintf("%s %.0fA", Sparkline(m.currentHistory, 16), s.Snapshot.TotalCurrentAmps())))

	if len(m.speedHistory) > 1 {
		chart := asciigraph.Plot(m.speedHistory, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("speed m/s"))
		b.WriteString("\n" + st.graph.Render(chart) + "\n")
	}

	b.WriteString("\nCURVES\n")
	if len(m.keys) == 0 {
		b.WriteString(st.label.Render("  (fixed)") + "\n")
	}
	for i, k := range m.keys {
		line := fmt.Sprintf("%-22s %.3f", k, m.table.Number(k, 0))
		if i == m.selected {
			b.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	b.WriteString(st.help.Render("WASD:Drive Q/E:Turn SP:E-Stop T:Enable\nR:Reset []:Volts O:Origin ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(b.String()))
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  W/S      - Drive forward/back       ║
║  A/D      - Strafe left/right        ║
║  Q/E      - Rotate left/right        ║
║  Space    - Emergency stop           ║
║  R        - Reset e-stop (disabled)  ║
║  T        - Toggle enabled           ║
║  [ / ]    - Battery voltage -/+      ║
║  O        - Reset pose to origin     ║
║  Tab      - Cycle curve parameter    ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  P        - Pause                    ║
║  C        - Cycle palette            ║
║  Esc      - Quit                     ║
╚══════════════════════════════════════╝`
