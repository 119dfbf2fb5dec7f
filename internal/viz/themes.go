package viz

import "github.com/charmbracelet/lipgloss"

// Palette is the station colour scheme.
type Palette struct {
	Name     string
	Accent   lipgloss.Color
	Border   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Enabled  lipgloss.Color
	Disabled lipgloss.Color
	Warning  lipgloss.Color
	Stop     lipgloss.Color
}

var Palettes = []Palette{
	{
		Name:     "field",
		Accent:   lipgloss.Color("#00ffff"),
		Border:   lipgloss.Color("#444466"),
		Text:     lipgloss.Color("#e0e0e0"),
		Muted:    lipgloss.Color("#666688"),
		Enabled:  lipgloss.Color("#00ff88"),
		Disabled: lipgloss.Color("#ffaa00"),
		Warning:  lipgloss.Color("#ffcc00"),
		Stop:     lipgloss.Color("#ff4444"),
	},
	{
		Name:     "night",
		Accent:   lipgloss.Color("#0088ff"),
		Border:   lipgloss.Color("#223344"),
		Text:     lipgloss.Color("#a0b0c0"),
		Muted:    lipgloss.Color("#4a5a6a"),
		Enabled:  lipgloss.Color("#00aa55"),
		Disabled: lipgloss.Color("#aa7700"),
		Warning:  lipgloss.Color("#aa8800"),
		Stop:     lipgloss.Color("#cc2222"),
	},
	{
		Name:     "mono",
		Accent:   lipgloss.Color("#ffffff"),
		Border:   lipgloss.Color("#888888"),
		Text:     lipgloss.Color("#cccccc"),
		Muted:    lipgloss.Color("#777777"),
		Enabled:  lipgloss.Color("#ffffff"),
		Disabled: lipgloss.Color("#aaaaaa"),
		Warning:  lipgloss.Color("#dddddd"),
		Stop:     lipgloss.Color("#ffffff"),
	},
}

func PaletteNames() []string {
	names := make([]string, len(Palettes))
	for i, p := range Palettes {
		names[i] = p.Name
	}
	return names
}

// PaletteIndex returns the index of the named palette, or 0.
func PaletteIndex(name string) int {
	for i, p := range Palettes {
		if p.Name == name {
			return i
		}
	}
	return 0
}
