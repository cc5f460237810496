package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/boilersim/internal/logging"
	"github.com/san-kum/boilersim/internal/params"
	"github.com/san-kum/boilersim/internal/sim"
	"github.com/san-kum/boilersim/internal/stats"
)

const (
	tankWidth       = 16
	tankHeight      = 12
	historyCapacity = 120
	gaugeWidth      = 10
)

type physicsTickMsg time.Time

type clockTickMsg time.Time

// Model is the live view of one session.
type Model struct {
	session  *sim.Session
	pacing   sim.Pacing
	panel    params.Panel
	keys     []string
	selected int
	running  bool
	showHelp bool
	elapsed  float64
	canvas   *Canvas
	theme    Theme
	styles   styles
	logger   *slog.Logger
	err      error

	levelWin, tempWin *stats.Window
	levelHist         []float64
	tempHist          []float64
}

type Option func(*Model)

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

// NewModel builds a live view over s. The panel starts from the session's
// current parameters and setpoints.
func NewModel(s *sim.Session, pacing sim.Pacing, opts ...Option) (Model, error) {
	if err := pacing.Validate(); err != nil {
		return Model{}, err
	}
	levelWin, err := stats.NewWindow(stats.DefaultCapacity)
	if err != nil {
		return Model{}, err
	}
	tempWin, err := stats.NewWindow(stats.DefaultCapacity)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		session:   s,
		pacing:    pacing,
		panel:     params.Panel{Parameters: s.Parameters(), Setpoints: s.Setpoints()},
		keys:      params.Keys(),
		running:   true,
		canvas:    NewCanvas(tankWidth, tankHeight),
		theme:     Themes[0],
		logger:    logging.Discard(),
		levelWin:  levelWin,
		tempWin:   tempWin,
		levelHist: make([]float64, 0, historyCapacity),
		tempHist:  make([]float64, 0, historyCapacity),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.styles = newStyles(m.theme)
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.physicsTick(), m.clockTick())
}

func (m Model) physicsTick() tea.Cmd {
	return tea.Tick(m.pacing.TickInterval, func(t time.Time) tea.Msg { return physicsTickMsg(t) })
}

func (m Model) clockTick() tea.Cmd {
	return tea.Tick(m.pacing.ClockInterval, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.keys)
		case "shift+tab":
			m.selected = (m.selected + len(m.keys) - 1) % len(m.keys)
		case "up", "k":
			m.nudge(1)
		case "down", "j":
			m.nudge(-1)
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case physicsTickMsg:
		if m.running {
			m.step()
		}
		return m, m.physicsTick()
	case clockTickMsg:
		if m.running {
			m.elapsed += m.pacing.ClockAdvance(m.panel.Parameters.TimeStep)
			m.levelHist = appendCapped(m.levelHist, m.levelWin.Average())
			m.tempHist = appendCapped(m.tempHist, m.tempWin.Average())
		}
		return m, m.clockTick()
	}
	return m, nil
}

// step runs one physics tick. A failed tick pauses the view.
func (m *Model) step() {
	dt := m.pacing.SimulatedStep(m.panel.Parameters.TimeStep)
	sample, err := m.session.Tick(dt)
	if err != nil {
		m.err = err
		m.running = false
		m.logger.Error("tick failed", "err", err)
		return
	}
	m.err = nil
	m.levelWin.Push(sample.State.Level)
	m.tempWin.Push(sample.State.Temperature)
}

func (m *Model) nudge(dir int) {
	key := m.keys[m.selected]
	panel, err := m.panel.Nudge(key, dir)
	if err != nil {
		m.err = err
		return
	}
	if err := m.session.SetParameters(panel.Parameters); err != nil {
		m.err = err
		return
	}
	if err := m.session.SetSetpoints(panel.Setpoints); err != nil {
		m.err = err
		return
	}
	m.panel = panel
	m.err = nil
}

func (m *Model) reset() {
	m.session.Reset()
	m.elapsed = 0
	m.err = nil
	m.levelWin.Reset()
	m.tempWin.Reset()
	m.levelHist = m.levelHist[:0]
	m.tempHist = m.tempHist[:0]
	m.logger.Info("boiler reset")
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m Model) View() string {
	snap := m.session.Snapshot()
	st := m.styles

	maxLevel := 2.0
	if d, err := params.Lookup("required_level"); err == nil {
		maxLevel = d.Max
	}
	m.canvas.DrawTank(snap.State.Level / maxLevel)
	tank := st.water.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render("BOILER") + "\n")
	if m.running {
		s.WriteString(st.running.Render("RUNNING"))
	} else {
		s.WriteString(st.paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Elapsed", formatElapsed(m.elapsed))
	row("Level", fmt.Sprintf("%.2f m", params.Round2(snap.State.Level)))
	row("Temperature", fmt.Sprintf("%.2f °C", params.Round2(snap.State.Temperature)))
	row("Inflow", fmt.Sprintf("%.2f l/s", params.Round2(snap.State.Inflow*1000)))
	row("Outflow", fmt.Sprintf("%.2f l/s", params.Round2(snap.State.Outflow*1000)))
	row("Heater", fmt.Sprintf("%.2f kW", params.Round2(snap.State.Power/1000)))

	var sat []string
	if snap.Commands.InflowSaturated(snap.Params) {
		sat = append(sat, "inflow")
	}
	if snap.Commands.PowerSaturated(snap.Params) {
		sat = append(sat, "heater")
	}
	if len(sat) > 0 {
		s.WriteString(st.warning.Render("at limit: "+strings.Join(sat, ", ")) + "\n")
	}

	if len(m.levelHist) > 1 {
		s.WriteString("\n" + st.graph.Render(asciigraph.Plot(m.levelHist,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Level avg (m)"))) + "\n")
		s.WriteString("\n" + st.graph.Render(asciigraph.Plot(m.tempHist,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Temperature avg (°C)"))) + "\n")
	}

	s.WriteString(m.renderPanel())

	if m.err != nil {
		s.WriteString("\n" + st.errorMsg.Render(m.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit T:Theme\nTab:Select ↑↓:Adjust ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, tank, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) renderPanel() string {
	st := m.styles
	var s strings.Builder
	group := params.Group(-1)
	for i, d := range params.Catalogue() {
		if d.Group != group {
			group = d.Group
			s.WriteString(st.group.Render(strings.ToUpper(group.String())) + "\n")
		}
		v, _ := m.panel.Get(d.Key)
		frac := 0.0
		if d.Max > d.Min {
			frac = (v - d.Min) / (d.Max - d.Min)
		}
		line := fmt.Sprintf("%-24s %s %g %s", d.Name, gauge(frac, gaugeWidth), params.Round2(v), d.Unit)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}
	return s.String()
}

func formatElapsed(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, mins, secs)
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Pause/Resume            ║
║  R         - Reset the tank          ║
║  Q         - Quit                    ║
║  Tab       - Next parameter          ║
║  Shift+Tab - Previous parameter      ║
║  Up/K      - Increase one step       ║
║  Down/J    - Decrease one step       ║
║  T         - Cycle themes            ║
║  ?         - Toggle this help        ║
╚══════════════════════════════════════╝`
