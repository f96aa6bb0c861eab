package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/logging"
)

var sceneInfo = map[string]string{
	"arena":  "wheeled bots on the floor",
	"stack":  "boxes piled up",
	"rubble": "noise-placed debris",
	"chain":  "jointed links",
	"volley": "launched projectiles",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// tunable is a config field editable before launch.
type tunable struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var tunables = []tunable{
	{"dt", func(c *config.Config) float64 { return c.Run.Dt }, func(c *config.Config, v float64) { c.Run.Dt = v }},
	{"gravity", func(c *config.Config) float64 { return c.World.Gravity }, func(c *config.Config, v float64) { c.World.Gravity = v }},
	{"restitution", func(c *config.Config) float64 { return c.Solver.Restitution }, func(c *config.Config, v float64) { c.Solver.Restitution = v }},
	{"friction", func(c *config.Config) float64 { return c.Solver.Friction }, func(c *config.Config, v float64) { c.Solver.Friction = v }},
	{"damping", func(c *config.Config) float64 { return c.World.LinearDamping }, func(c *config.Config, v float64) { c.World.LinearDamping = v }},
	{"seed", func(c *config.Config) float64 { return float64(c.Run.Seed) }, func(c *config.Config, v float64) { c.Run.Seed = int64(v) }},
}

// entry is one row of the menu: a preset and the scene it belongs to.
type entry struct {
	scene, preset string
}

type model struct {
	state, cursor int
	entries       []entry
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	log           *logging.Logger
	liveModel     Model
}

func NewInteractiveApp(log *logging.Logger) *model {
	if log == nil {
		log = logging.Nop()
	}
	m := &model{state: stateMenu, width: 80, height: 24, log: log}
	for _, scene := range config.ListScenes() {
		for _, p := range config.ListPresets(scene) {
			m.entries = append(m.entries, entry{scene: scene, preset: p})
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			m.liveModel.resize(msg.Width, msg.Height)
		}
		return m, nil
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
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
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		cfg, err := config.GetPreset(e.scene, e.preset)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.cfg, m.err = cfg, nil
		m.state, m.paramCursor = stateConfig, 0
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				tunables[m.paramCursor].set(m.cfg, v)
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
		m.state, m.err = stateMenu, nil
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(tunables)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", tunables[m.paramCursor].get(m.cfg))
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.nudge(0.9)
	case "right", "l":
		m.nudge(1.1)
	}
	return m, nil
}

// nudge scales the selected value; zero steps by a fixed amount instead.
func (m *model) nudge(factor float64) {
	t := tunables[m.paramCursor]
	v := t.get(m.cfg)
	switch {
	case t.name == "seed" && factor > 1:
		v++
	case t.name == "seed":
		v--
	case v == 0 && factor > 1:
		v = 0.1
	default:
		v *= factor
	}
	t.set(m.cfg, v)
}

func (m *model) start() tea.Cmd {
	live, err := NewModel(m.cfg, m.log)
	if err != nil {
		m.err = err
		return nil
	}
	live.resize(m.width, m.height)
	m.liveModel, m.state, m.err = live, stateSim, nil
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuAccent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keys(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("BOTSIM") + "\n    " + menuSub.Render("rigid body sandbox") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, e := range m.entries {
		desc := sceneInfo[e.scene]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", e.preset)), menuSub.Render(fmt.Sprintf("%-7s", e.scene)), menuAccent.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", e.preset)), menuIdleDesc.Render(fmt.Sprintf("%-7s", e.scene)), menuIdleDesc.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + fg(CurrentTheme.Bad).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keys("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.cfg.Scene)) + "\n    " + menuSub.Render(sceneInfo[m.cfg.Scene]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, t := range tunables {
		valStr := fmt.Sprintf("%8.3f", t.get(m.cfg))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-12s", t.name)), menuAccent.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-12s", t.name)), menuIdleDesc.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + fg(CurrentTheme.Bad).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keys("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive(log *logging.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(log), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
