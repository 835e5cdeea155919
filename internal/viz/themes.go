package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI. Bands colour particles from low to
// high density.
type Theme struct {
	Name   string
	Header lipgloss.Color
	Graph  lipgloss.Color
	Muted  lipgloss.Color
	Bands  []lipgloss.Color
}

// Available themes
var (
	ThemeThermal = Theme{
		Name:   "thermal",
		Header: lipgloss.Color("86"),
		Graph:  lipgloss.Color("49"),
		Muted:  lipgloss.Color("240"),
		Bands: []lipgloss.Color{
			lipgloss.Color("#3355ff"),
			lipgloss.Color("#00ccff"),
			lipgloss.Color("#00ff88"),
			lipgloss.Color("#ffcc00"),
			lipgloss.Color("#ff4444"),
		},
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Header: lipgloss.Color("#00ff00"),
		Graph:  lipgloss.Color("#00cc00"),
		Muted:  lipgloss.Color("#005500"),
		Bands: []lipgloss.Color{
			lipgloss.Color("#005500"),
			lipgloss.Color("#00aa00"),
			lipgloss.Color("#00ff00"),
			lipgloss.Color("#88ff88"),
		},
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Header: lipgloss.Color("#00a8cc"),
		Graph:  lipgloss.Color("#ffd700"),
		Muted:  lipgloss.Color("#4488aa"),
		Bands: []lipgloss.Color{
			lipgloss.Color("#0077be"),
			lipgloss.Color("#00a8cc"),
			lipgloss.Color("#e0f0ff"),
		},
	}

	// All available themes
	Themes = []Theme{
		ThemeThermal,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeThermal
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Next returns the theme after t, wrapping around.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func (t Theme) BandStyles() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(t.Bands))
	for i, c := range t.Bands {
		styles[i] = lipgloss.NewStyle().Foreground(c)
	}
	return styles
}
