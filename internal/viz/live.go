package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/metrics"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/world"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 120
	statsWidth      = 45
)

// BodyState is the kinematic part of a body, enough to put it back.
type BodyState struct {
	ID              body.ID
	Position        geom.Vector
	Velocity        geom.Vector
	Rotation        geom.Rotation
	AngularVelocity float64
}

// Snapshot stores the world at a specific time for replay.
type Snapshot struct {
	Bodies []BodyState
	Time   float64
	Energy float64
}

func snapshot(w *world.World) Snapshot {
	bs := w.Bodies()
	snap := Snapshot{Bodies: make([]BodyState, 0, len(bs)), Time: w.Time(), Energy: metrics.MechanicalEnergy(w)}
	for _, b := range bs {
		snap.Bodies = append(snap.Bodies, BodyState{
			ID:              b.ID,
			Position:        b.Position,
			Velocity:        b.Velocity,
			Rotation:        b.Rotation,
			AngularVelocity: b.AngularVelocity,
		})
	}
	return snap
}

// restore writes snap back onto w. Bodies added or removed since are left
// alone.
func restore(w *world.World, snap Snapshot) {
	for _, s := range snap.Bodies {
		b, ok := w.Body(s.ID)
		if !ok {
			continue
		}
		b.Position, b.Velocity = s.Position, s.Velocity
		b.Rotation, b.AngularVelocity = s.Rotation, s.AngularVelocity
	}
}

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(statsWidth)
	headerStyle      = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

// canvas origin inside the rendered view, set by canvasStyle's padding
const (
	canvasOffsetX = 2
	canvasOffsetY = 1
)

type TickMsg time.Time

// Model steps a scene and renders it to a braille canvas next to a stats
// panel. The scene is rebuilt from cfg on reset.
type Model struct {
	cfg           *config.Config
	log           *logging.Logger
	scene         *scenario.Scene
	dt            float64
	width, height int
	canvas        *Canvas
	info          body.RenderingInfo
	trail         []geom.Vector
	running       bool
	paramKeys     []string
	selected      int
	energyHistory []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	showHelp      bool
	drag          *world.DragHandle
	status        string
	err           error
}

// NewModel builds the scene described by cfg.
func NewModel(cfg *config.Config, log *logging.Logger) (Model, error) {
	if log == nil {
		log = logging.Nop()
	}
	scene, err := scenario.Build(cfg, log)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		cfg:           cfg.Clone(),
		log:           log,
		scene:         scene,
		dt:            cfg.Run.Dt,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		trail:         make([]geom.Vector, 0, trailCapacity),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		gifPath:       "botsim.gif",
	}
	if len(scene.Bots) > 0 {
		m.paramKeys = []string{"torque", "governor"}
	}
	m.draw()
	return m, nil
}

// SetGIFPath changes where recordings are written.
func (m *Model) SetGIFPath(path string) { m.gifPath = path }

func (m Model) Scene() *scenario.Scene { return m.scene }

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
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
		case "v":
			m.scene.Reverse()
		case "f":
			m.fire()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.status = "theme: " + NextTheme().Name
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw, ch := w-statsWidth-2*canvasOffsetX-4, h-2*canvasOffsetY
	if cw < 20 {
		cw = 20
	}
	if ch < 8 {
		ch = 8
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	m.draw()
}

// step advances the world by one dt and records history.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	if err := m.scene.World.Step(m.dt); err != nil {
		m.err = err
		m.running = false
		m.log.Error("live step failed", logging.Err(err))
		return
	}

	snap := snapshot(m.scene.World)
	m.energyHistory = append(m.energyHistory, snap.Energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if p, ok := m.tracked(); ok {
		m.trail = append(m.trail, p)
		if len(m.trail) > trailCapacity {
			m.trail = m.trail[1:]
		}
	}
}

// tracked is the point the trail follows: the first bot's chassis, else the
// first dynamic body.
func (m *Model) tracked() (geom.Vector, bool) {
	if len(m.scene.Bots) > 0 {
		return m.scene.Bots[0].Chassis.Position, true
	}
	for _, b := range m.scene.World.Bodies() {
		if !b.Static() {
			return b.Position, true
		}
	}
	return geom.Vector{}, false
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the scene from the stored config.
func (m *Model) reset() {
	scene, err := scenario.Build(m.cfg, m.log)
	if err != nil {
		m.err = err
		return
	}
	m.scene, m.err, m.drag = scene, nil, nil
	m.trail = m.trail[:0]
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.status = "reset"
}

func (m *Model) fire() {
	if len(m.cfg.Projectiles) == 0 {
		m.status = "no projectile configured"
		return
	}
	spec := m.cfg.Projectiles[len(m.scene.Projectiles)%len(m.cfg.Projectiles)]
	if _, err := m.scene.Fire(spec); err != nil {
		m.status = "fire: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("fired #%d", len(m.scene.Projectiles))
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected motor parameter on every bot.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	for _, b := range m.scene.Bots {
		switch m.paramKeys[m.selected] {
		case "torque":
			b.Motor.Torque *= factor
		case "governor":
			b.Motor.Governor *= factor
		}
	}
}

func (m *Model) paramValue(key string) float64 {
	if len(m.scene.Bots) == 0 {
		return 0
	}
	mo := m.scene.Bots[0].Motor
	if key == "governor" {
		return mo.Governor
	}
	return mo.Torque
}

// mouse drags bodies with the left button.
func (m *Model) mouse(msg tea.MouseMsg) {
	if m.showHelp || m.playHead != -1 {
		return
	}
	x := float64((msg.X-canvasOffsetX)*2 + 1)
	y := float64((msg.Y-canvasOffsetY)*4 + 2)
	p := ToWorld(m.info, x, y)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.drag != nil {
			return
		}
		h, ok, err := m.scene.World.BeginDrag(p)
		if err != nil {
			m.status = "drag: " + err.Error()
			return
		}
		if ok {
			m.drag = h
		}
	case msg.Action == tea.MouseActionMotion && m.drag != nil:
		m.drag.Move(p)
	case msg.Action == tea.MouseActionRelease && m.drag != nil:
		if err := m.scene.World.EndDrag(m.drag); err != nil {
			m.status = "drag: " + err.Error()
		}
		m.drag = nil
	}
}

// draw renders the world, or the replayed snapshot under the play head.
func (m *Model) draw() {
	w := m.scene.World
	if m.playHead != -1 && m.playHead < len(m.history) {
		current := snapshot(w)
		restore(w, m.history[m.playHead])
		defer restore(w, current)
	}
	m.info = RenderWorld(m.canvas, w)
	RenderTrail(m.canvas, m.info, m.trail)
}

// View renders the TUI interface.
func (m Model) View() string {
	w := m.scene.World
	t, status := w.Time(), "RUNNING"
	if m.playHead >= 0 && m.playHead < len(m.history) {
		t = m.history[m.playHead].Time
		back := t - m.history[len(m.history)-1].Time
		if m.running {
			status = fmt.Sprintf("REPLAYING (%.1fs)", back)
		} else {
			status = fmt.Sprintf("REPLAY PAUSED (%.1fs)", back)
		}
	} else if m.err != nil {
		status = "HALTED"
	} else if !m.running {
		status = "PAUSED"
	}
	if m.recording {
		status += "  " + recordingBadge()
	}

	canvasView := canvasStyle.Foreground(CurrentTheme.Canvas).Render(m.canvas.String())
	var s strings.Builder
	title := strings.ToUpper(m.cfg.Scene)
	s.WriteString(headerStyle.Foreground(CurrentTheme.Title).Render(title) + "\n")
	s.WriteString(fmt.Sprintf("%s\n\n", status))
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	stats := w.ResolverStats()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", t)) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", w.StepCount())) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f", metrics.MechanicalEnergy(w))) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", len(w.Bodies()))) + "\n")
	s.WriteString(labelStyle.Render("Contacts") + valueStyle.Render(fmt.Sprintf("%d", stats.Contacts)) + "\n")
	s.WriteString(labelStyle.Render("Iterations") + valueStyle.Render(fmt.Sprintf("%d/%d", stats.PositionIterations, stats.VelocityIterations)) + "\n")
	for _, b := range m.scene.Bots {
		dir := "reverse"
		if b.Forward() {
			dir = "forward"
		}
		s.WriteString(labelStyle.Render(b.Assembly.Name) + valueStyle.Render(fmt.Sprintf("%s ω=%.2f", dir, b.Wheels[0].AngularVelocity)) + "\n")
	}

	s.WriteString("\nMOTORS\n")
	if len(m.paramKeys) > 0 {
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-10s %.2f", k, m.paramValue(k))
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + fg(CurrentTheme.Bad).Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + fg(CurrentTheme.Muted).Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nV:Reverse F:Fire G:Record\n[ ]:Time-Travel ↑↓:Tune ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Rebuild the scene        ║
║  V        - Reverse every bot        ║
║  F        - Fire a projectile        ║
║  Mouse    - Drag a body              ║
║  Tab      - Cycle motor parameter    ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	if err := m.saveGIF(); err != nil {
		m.status = "gif: " + err.Error()
	} else if len(m.frames) > 0 {
		m.status = "saved " + m.gifPath
	}
	m.recording = false
	m.frames = nil
}

// captureFrame rasterizes the canvas with every braille dot as a block.
func (m *Model) captureFrame() {
	m.frames = append(m.frames, rasterize(m.canvas))
}

func rasterize(c *Canvas) *image.Paletted {
	const charW, charH = 8, 16
	const dotW, dotH = charW / 2, charH / 4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	for y := 0; y < c.SubHeight(); y++ {
		for x := 0; x < c.SubWidth(); x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive opens the live view full screen with mouse tracking.
func RunLive(cfg *config.Config, log *logging.Logger) error {
	m, err := NewModel(cfg, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
