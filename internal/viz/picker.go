package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/sphsim/internal/config"
)

var presetInfo = map[string]string{
	"default":  "1000 particles, cube",
	"small":    "quick look",
	"lattice":  "regular start",
	"dense":    "grid accelerated",
	"pressure": "pressure force on",
	"realtime": "drops old frames",
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Picker is a menu of config presets.
type Picker struct {
	presets  []string
	cursor   int
	selected string
}

func NewPicker() Picker {
	return Picker{presets: config.ListPresets()}
}

// Selected is the chosen preset, empty if the user quit.
func (p Picker) Selected() string { return p.selected }

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		p.selected = p.presets[p.cursor]
		return p, tea.Quit
	}
	return p, nil
}

func (p Picker) View() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("SPHSIM") + "\n    " + subStyle.Render("particle density stream") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range p.presets {
		cfg := config.GetPreset(name)
		desc := presetInfo[name]
		if cfg != nil {
			desc = fmt.Sprintf("%-22s %s/%d", desc, cfg.Kernel, cfg.Particles)
		}
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDescStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + subStyle.Render(" navigate  ") + keyStyle.Render("enter") + subStyle.Render(" select  ") + keyStyle.Render("q") + subStyle.Render(" quit") + "\n")
	return b.String()
}

// PickPreset shows the menu and returns the chosen preset name, or "" when
// the user quit without choosing.
func PickPreset() (string, error) {
	final, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(Picker).Selected(), nil
}
