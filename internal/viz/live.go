package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/metrics"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	graphWindow     = 120
)

// Source is the receiving side of the snapshot stream. CloseReceive tells
// the producer nobody is listening any more.
type Source interface {
	Receive(ctx context.Context) (dynamo.Snapshot, error)
	CloseReceive()
}

// bufferStats is implemented by sources that can report their fill level.
type bufferStats interface {
	Len() int
	Capacity() int
	Dropped() uint64
}

type snapshotMsg dynamo.Snapshot

type streamEndMsg struct{ err error }

// Model shows the latest snapshot received from a Source. It only asks for
// the next snapshot after drawing the previous one, and stops asking while
// paused.
type Model struct {
	ctx        context.Context
	src        Source
	title      string
	canvas     *Canvas
	camera     *Camera
	theme      Theme
	snap       dynamo.Snapshot
	extent     float64
	maxHistory []float64
	received   uint64
	waiting    bool
	paused     bool
	done       bool
	err        error
	showHelp   bool
}

func NewModel(ctx context.Context, src Source, title string) Model {
	return Model{
		ctx:        ctx,
		src:        src,
		title:      title,
		canvas:     NewCanvas(width/2, height),
		camera:     NewCamera(),
		theme:      ThemeThermal,
		maxHistory: make([]float64, 0, historyCapacity),
		waiting:    true,
	}
}

// Init issues the first receive; NewModel already counts it as waiting.
func (m Model) Init() tea.Cmd {
	return m.receiveCmd()
}

func (m *Model) receive() tea.Cmd {
	m.waiting = true
	return m.receiveCmd()
}

func (m Model) receiveCmd() tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		snap, err := src.Receive(ctx)
		if err != nil {
			return streamEndMsg{err: err}
		}
		return snapshotMsg(snap)
	}
}

// Update handles input events and incoming snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.src.CloseReceive()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused && !m.waiting && !m.done {
				return m, m.receive()
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = m.theme.Next()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
		m.draw()
	case tea.WindowSizeMsg:
		w := max(msg.Width-50, 20) / 2
		h := max(msg.Height-4, 8)
		m.canvas = NewCanvas(w, h)
		m.draw()
	case snapshotMsg:
		m.waiting = false
		m.snap = dynamo.Snapshot(msg)
		m.received++
		_, hi := m.snap.DensityRange()
		m.maxHistory = append(m.maxHistory, hi)
		if len(m.maxHistory) > historyCapacity {
			m.maxHistory = m.maxHistory[1:]
		}
		if m.extent == 0 {
			m.extent = Extent(m.snap.Records)
		}
		m.draw()
		if !m.paused {
			return m, m.receive()
		}
	case streamEndMsg:
		m.waiting = false
		m.done = true
		if !errors.Is(msg.err, dynamo.ErrProducerGone) {
			m.err = msg.err
		}
	}
	return m, nil
}

func (m *Model) draw() {
	m.canvas.Clear()
	DrawSnapshot(m.canvas, m.camera, m.snap, m.extent, len(m.theme.Bands))
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.BandStyles()))

	var s strings.Builder
	s.WriteString(headerStyle(m.theme).Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.maxHistory) > 1 {
		hist := m.maxHistory[max(0, len(m.maxHistory)-graphWindow):]
		chart := asciigraph.Plot(hist, asciigraph.Height(6), asciigraph.Width(30), asciigraph.Caption("max density"))
		s.WriteString(graphStyle(m.theme).Render(chart) + "\n\n")
	}

	lo, hi := m.snap.DensityRange()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.snap.Tick))
	row("Time", fmt.Sprintf("%.3f", m.snap.Time))
	row("Particles", fmt.Sprintf("%d", m.snap.Len()))
	row("Density", fmt.Sprintf("%.2f .. %.2f", lo, hi))
	row("Mean", fmt.Sprintf("%.2f", metrics.TickMeanDensity(m.snap)))
	row("Received", fmt.Sprintf("%d", m.received))

	if bs, ok := m.src.(bufferStats); ok {
		fill := float64(bs.Len()) / float64(max(bs.Capacity(), 1))
		row("Buffer", ProgressBar(fill, 16))
		if d := bs.Dropped(); d > 0 {
			s.WriteString(labelStyle.Render("Dropped") + warnStyle.Render(fmt.Sprintf("%d", d)) + "\n")
		}
	}

	s.WriteString(helpStyle(m.theme).Render("─────────────────────\nSP:Pause Q:Quit T:Theme\nxyz:Rotate +-:Zoom ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume stream      ║
║  Q        - Quit                     ║
║  x y z    - Rotate (shift reverses)  ║
║  + -      - Zoom in/out              ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return warnStyle.Render("ERROR: " + m.err.Error())
	case m.done:
		return "FINISHED"
	case m.paused:
		return "PAUSED"
	}
	return "RUNNING"
}

// Run shows src until the user quits. The receive side is closed on return,
// so a producer still running stops with dynamo.ErrConsumerGone.
func Run(ctx context.Context, src Source, title string) error {
	defer src.CloseReceive()
	_, err := tea.NewProgram(NewModel(ctx, src, title), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
