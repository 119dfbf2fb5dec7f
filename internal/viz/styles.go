package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas   lipgloss.Style
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	active   lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	enabled  lipgloss.Style
	disabled lipgloss.Style
	warning  lipgloss.Style
	stop     lipgloss.Style
}

func newStyles(p Palette) styles {
	badge := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(c).Padding(0, 1)
	}
	return styles{
		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Border).
			Padding(0, 2).
			Width(46),
		header:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(p.Muted).Width(12),
		value:    lipgloss.NewStyle().Foreground(p.Text),
		active:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		graph:    lipgloss.NewStyle().Foreground(p.Accent),
		help:     lipgloss.NewStyle().Foreground(p.Muted).Italic(true).MarginTop(1),
		enabled:  badge(p.Enabled),
		disabled: badge(p.Disabled),
		warning:  badge(p.Warning),
		stop:     badge(p.Stop).Blink(true),
	}
}

// Meter renders frac of width as a filled bar.
func Meter(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders the last width values as block heights scaled to
// their own range.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
