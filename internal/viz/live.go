package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaser/internal/config"
	"github.com/san-kum/chaser/internal/control"
	"github.com/san-kum/chaser/internal/experiment"
	"github.com/san-kum/chaser/internal/kinematics"
	"github.com/san-kum/chaser/internal/metrics"
	"github.com/san-kum/chaser/internal/pose"
	"github.com/san-kum/chaser/internal/sim"
)

const (
	width           = 56
	height          = 22
	trailCapacity   = 400
	historyCapacity = 600

	nudgeStep  = 0.25
	turnStep   = 0.3
	headingLen = 0.6
)

type TickMsg time.Time

// Model runs a pursuit experiment in virtual time, one control tick per
// TickMsg, and draws the arena next to a stats panel.
type Model struct {
	cfg  *config.Config
	name string

	exp     *experiment.Experiment
	teleop  *kinematics.Manual
	hold    *metrics.HoldRatio
	capture *metrics.CaptureTime
	dt      float64

	canvas      *Canvas
	view        Viewport
	agentTrail  []pose.Pose
	targetTrail []pose.Pose
	distHistory []float64
	angHistory  []float64
	last        sim.Tick
	stepped     bool

	initialParams map[string]float64
	paramKeys     []string
	selected      int

	running  bool
	showHelp bool
	err      error
}

// NewModel builds the experiment described by cfg. A "manual" target motion
// is driven from the keyboard.
func NewModel(cfg *config.Config, name string) (Model, error) {
	m := Model{
		cfg:       cfg.Clone(),
		name:      name,
		canvas:    NewCanvas(width, height),
		paramKeys: control.ParamNames(),
		running:   true,
	}
	if err := m.build(); err != nil {
		return Model{}, err
	}
	m.initialParams = m.Law().Params()
	return m, nil
}

func (m *Model) build() error {
	exp := experiment.New(m.cfg.Clone(), nil)
	if err := exp.Setup(nil); err != nil {
		return err
	}
	m.hold, m.capture = metrics.NewHoldRatio(), metrics.NewCaptureTime()
	exp.Simulator().AddMetric(m.hold)
	exp.Simulator().AddMetric(m.capture)

	m.exp = exp
	m.teleop, _ = exp.Motion().(*kinematics.Manual)
	m.dt = 1 / m.cfg.Rate

	arena := m.cfg.Sim.Arena
	if arena <= 0 {
		arena = config.DefaultArena
	}
	m.view = NewViewport(m.canvas, 0, 0, arena, arena)

	m.agentTrail = make([]pose.Pose, 0, trailCapacity)
	m.targetTrail = make([]pose.Pose, 0, trailCapacity)
	m.distHistory = make([]float64, 0, historyCapacity)
	m.angHistory = make([]float64, 0, historyCapacity)
	m.last, m.stepped, m.err = sim.Tick{}, false, nil
	return nil
}

func (m Model) Law() *control.Pursuit { return m.exp.Simulator().Law() }

// Last is the most recent tick; ok is false before the first one.
func (m Model) Last() (sim.Tick, bool) { return m.last, m.stepped }

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.dt*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
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
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "k", "+":
			m.adjustParam(1.05)
		case "j", "-":
			m.adjustParam(0.95)
		case "up", "w":
			m.drive(nudgeStep, 0)
		case "down", "s":
			m.drive(-nudgeStep, 0)
		case "left", "a":
			m.drive(0, turnStep)
		case "right", "d":
			m.drive(0, -turnStep)
		case "t":
			NextTheme()
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

func (m *Model) step() {
	t, err := m.exp.Simulator().Step(m.dt)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last, m.stepped = t, true
	m.agentTrail = appendCapped(m.agentTrail, t.Agent, trailCapacity)
	m.targetTrail = appendCapped(m.targetTrail, t.Target, trailCapacity)
	m.distHistory = appendCapped(m.distHistory, t.Distance, historyCapacity)
	m.angHistory = appendCapped(m.angHistory, t.Command.Angular, historyCapacity)
}

func (m *Model) reset() {
	if err := m.build(); err != nil {
		m.err = err
		m.running = false
	}
}

func (m *Model) drive(forward, turn float64) {
	if m.teleop == nil {
		return
	}
	m.teleop.Nudge(forward, turn)
}

func (m *Model) adjustParam(factor float64) {
	key := m.paramKeys[m.selected]
	val := m.Law().Params()[key]
	if val == 0 {
		val = m.initialParams[key] * 0.1
		if val == 0 {
			val = 0.1
		}
		factor = 1
	}
	if err := m.Law().SetParam(key, val*factor); err != nil {
		m.err = err
	}
}

func appendCapped[T any](s []T, v T, limit int) []T {
	if len(s) >= limit {
		s = append(s[:0], s[1:]...)
	}
	return append(s, v)
}

func (m *Model) draw() {
	c := m.canvas
	c.Clear()

	right, bottom := c.Width*2-1, c.Height*4-1
	c.DrawLine(0, 0, right, 0)
	c.DrawLine(right, 0, right, bottom)
	c.DrawLine(right, bottom, 0, bottom)
	c.DrawLine(0, bottom, 0, 0)

	for _, p := range m.targetTrail {
		c.Set(m.view.Project(p.X, p.Y))
	}
	for i := 1; i < len(m.agentTrail); i++ {
		x0, y0 := m.view.Project(m.agentTrail[i-1].X, m.agentTrail[i-1].Y)
		x1, y1 := m.view.Project(m.agentTrail[i].X, m.agentTrail[i].Y)
		c.DrawLine(x0, y0, x1, y1)
	}

	agent, target := m.exp.Simulator().World().Poses()

	tx, ty := m.view.Project(target.X, target.Y)
	c.DrawCircle(tx, ty, m.view.Scale(m.Law().Gains().Tolerance))
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(tx+dx, ty+dy)
		}
	}

	ax, ay := m.view.Project(agent.X, agent.Y)
	sin, cos := math.Sincos(agent.Theta)
	hx, hy := m.view.Project(agent.X+headingLen*cos, agent.Y+headingLen*sin)
	c.DrawCircle(ax, ay, 1)
	c.DrawLine(ax, ay, hx, hy)
}

// View renders the TUI interface.
func (m Model) View() string {
	if m.showHelp {
		return helpView
	}

	m.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Agent).Render(m.canvas.String())

	var s strings.Builder
	header := lipgloss.NewStyle().Foreground(CurrentTheme.Header).Bold(true).MarginBottom(1)
	s.WriteString(header.Render(strings.ToUpper(m.name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.stepped {
		status += "  " + ModeBadge(m.last.Mode)
	}
	s.WriteString(status + "\n")
	if m.err != nil {
		s.WriteString(SparkLow.Render(m.err.Error()) + "\n")
	}

	if len(m.distHistory) > 1 {
		chart := asciigraph.Plot(m.distHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Distance"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	agent, target := m.exp.Simulator().World().Poses()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.exp.Simulator().World().Time()))
	row("Distance", fmt.Sprintf("%.3f", m.last.Distance))
	row("Heading err", fmt.Sprintf("%+.3f", m.last.HeadingError))
	row("Command", m.last.Command.String())
	row("Agent", agent.String())
	row("Target", target.String())
	if at := m.capture.Value(); at != metrics.NotCaptured {
		row("Captured", fmt.Sprintf("%.2fs", at))
	} else {
		row("Captured", "-")
	}
	s.WriteString(labelStyle.Render("Hold") + ProgressBar(m.hold.Value(), 20) + "\n")
	s.WriteString(labelStyle.Render("Angular") + SparklineChart(m.angHistory, 30) + "\n")

	s.WriteString("\nGAINS\n")
	params := m.Law().Params()
	for i, k := range m.paramKeys {
		val, initial := params[k], m.initialParams[k]
		barWidth, ratio := 10, 0.0
		if initial > 0 {
			ratio = math.Max(0, math.Min(1, val/(2*initial)))
		}
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-18s %s %.2f", k, bar, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.UnsetWidth().Render(line) + "\n")
		}
	}

	hint := "SP:Pause R:Reset Q:Quit\nT:Theme Tab/J/K:Tune ?:Help"
	if m.teleop != nil {
		hint += "\nWASD/arrows: move target"
	}
	s.WriteString(helpStyle.Render(Separator(30) + "\n" + hint))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

const helpView = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset run                ║
║  Q        - Quit                     ║
║  Tab      - Cycle gains              ║
║  K / +    - Raise selected gain 5%   ║
║  J / -    - Lower selected gain 5%   ║
║  WASD     - Drive a manual target    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`
