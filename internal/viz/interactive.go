package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/chaser/internal/config"
	"github.com/san-kum/chaser/internal/control"
)

// manualEntry is the menu item for a keyboard-driven target.
const manualEntry = "manual"

var presetInfo = map[string]string{
	"turtlesim":  "static target, unit gain",
	"gentle":     "slow circling target",
	"aggressive": "high gains, wide circle",
	"evasive":    "random wandering target",
	manualEntry:  "drive the target yourself",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

const paramRate = "rate"

type app struct {
	state, cursor int
	entries       []string
	selected      string
	params        map[string]float64
	paramNames    []string
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	live          Model
}

// NewApp is the preset picker that leads into the live view.
func NewApp() *app {
	return &app{
		state:      stateMenu,
		entries:    append(config.ListPresets(), manualEntry),
		paramNames: append([]string{paramRate}, control.ParamNames()...),
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key)
		case stateConfig:
			return m.configKey(key)
		}
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.entries[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
		m.params = paramsFor(m.baseConfig())
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.params[m.paramNames[m.paramCursor]] = v
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.params[m.paramNames[m.paramCursor]], 'f', -1, 64)
	case "left", "h":
		m.params[m.paramNames[m.paramCursor]] -= 0.1
	case "right", "l":
		m.params[m.paramNames[m.paramCursor]] += 0.1
	case "s":
		return m.start()
	}
	return m, nil
}

func (m app) baseConfig() *config.Config {
	if m.selected == manualEntry {
		cfg := config.DefaultConfig()
		cfg.Controller.SpeedGain = config.Float(1)
		cfg.Sim.Target = config.MotionConfig{Motion: "manual", Center: cfg.Initial.Target}
		return cfg
	}
	return config.GetPreset(m.selected)
}

func paramsFor(cfg *config.Config) map[string]float64 {
	params := control.NewPursuit(cfg.Gains()).Params()
	params[paramRate] = cfg.Rate
	return params
}

func (m app) start() (app, tea.Cmd) {
	cfg := m.baseConfig()
	cfg.Rate = m.params[paramRate]
	cfg.Controller.SpeedGain = config.Float(m.params[control.ParamSpeedGain])
	cfg.Controller.AngularGain = m.params[control.ParamAngularGain]
	cfg.Controller.DistanceTolerance = m.params[control.ParamTolerance]

	live, err := NewModel(cfg, m.selected)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state = live, stateSim
	return m, m.live.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func (m app) title(name, sub string) string {
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Header).Bold(true)
	return "\n\n    " + h.Render(name) + "\n    " + Subtle.Render(sub) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n"
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString(m.title("CHASER", "pursuit controller"))
	for i, name := range m.entries {
		desc := presetInfo[name]
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-12s", name)), descStyle.Render(desc))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", name)), idleDescStyle.Render(desc))
		}
	}
	b.WriteString(keyHints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString(m.title(strings.ToUpper(m.selected), presetInfo[m.selected]))
	for i, name := range m.paramNames {
		valStr := fmt.Sprintf("%8.3f", m.params[name])
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-18s", name)), descStyle.Bold(true).Render(valStr))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-18s", name)), idleDescStyle.Render(valStr))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + SparkLow.Render(m.err.Error()) + "\n")
	}
	b.WriteString(keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive starts the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen()).Run()
	return err
}

// RunLive shows cfg directly in the live view.
func RunLive(cfg *config.Config, name string) error {
	m, err := NewModel(cfg, name)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
