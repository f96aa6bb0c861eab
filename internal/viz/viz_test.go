package viz

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/geom"
)

func dots(c *Canvas) int {
	n := 0
	for y := 0; y < c.SubHeight(); y++ {
		for x := 0; x < c.SubWidth(); x++ {
			if c.IsSet(x, y) {
				n++
			}
		}
	}
	return n
}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.Equal(t, 8, c.SubWidth())
	assert.Equal(t, 8, c.SubHeight())

	c.Set(3, 5)
	assert.True(t, c.IsSet(3, 5))
	assert.Equal(t, rune(blank|0x10), c.Grid[1][1])

	c.Set(-1, 0)
	c.Set(100, 100)
	assert.Equal(t, 1, dots(c))

	c.Unset(3, 5)
	assert.False(t, c.IsSet(3, 5))
	assert.Equal(t, rune(blank), c.Grid[1][1])
}

func TestCanvasLineAndCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.Line(0, 0, 10, 0)
	for x := 0; x <= 10; x++ {
		assert.True(t, c.IsSet(x, 0), "x=%d", x)
	}

	c.Clear()
	assert.Equal(t, 0, dots(c))

	c.Circle(20, 20, 0.4)
	assert.Equal(t, 1, dots(c))

	c.Clear()
	c.Circle(20, 20, 6)
	assert.True(t, c.IsSet(26, 20))
	assert.True(t, c.IsSet(14, 20))
	assert.True(t, c.IsSet(20, 14))
	assert.False(t, c.IsSet(20, 20))
}

func TestCanvasLineClipsFarEndpoints(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Line(-1e9, 2, 1e9, 2)
	for x := 0; x < c.SubWidth(); x++ {
		assert.True(t, c.IsSet(x, 2))
	}
}

func TestFitKeepsAspect(t *testing.T) {
	c := NewCanvas(10, 5) // 20 x 20 dots
	info := Fit(c, 100, 50)
	assert.InDelta(t, 0.2, info.Scale, 1e-12)
	assert.Equal(t, 50.0, info.Height)

	p := ToWorld(info, info.X(30), info.Y(12))
	assert.True(t, p.ApproxEqual(geom.V(30, 12), 1e-9))
}

func TestRenderWorldDrawsEveryPreset(t *testing.T) {
	for _, scene := range config.ListScenes() {
		for _, name := range config.ListPresets(scene) {
			cfg, err := config.GetPreset(scene, name)
			require.NoError(t, err)
			m, err := NewModel(cfg, nil)
			require.NoError(t, err, "%s/%s", scene, name)
			assert.Positive(t, dots(m.canvas), "%s/%s", scene, name)
		}
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func duel(t *testing.T) Model {
	t.Helper()
	cfg, err := config.GetPreset("arena", "duel")
	require.NoError(t, err)
	m, err := NewModel(cfg, nil)
	require.NoError(t, err)
	return m
}

func TestModelTickStepsAndPauses(t *testing.T) {
	m := duel(t)
	m = update(t, m, TickMsg{})
	m = update(t, m, TickMsg{})
	assert.Equal(t, 2, m.scene.World.StepCount())
	assert.Len(t, m.history, 2)
	assert.Len(t, m.energyHistory, 2)
	assert.Len(t, m.trail, 2)

	m = update(t, m, key(" "))
	m = update(t, m, TickMsg{})
	assert.Equal(t, 2, m.scene.World.StepCount())
	assert.Contains(t, m.View(), "PAUSED")
}

func TestModelReverseAndTune(t *testing.T) {
	m := duel(t)
	left := m.scene.Bots[0]
	before := left.Motor.Torque

	m = update(t, m, key("v"))
	assert.Equal(t, -before, left.Motor.Torque)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.InDelta(t, -before*1.05, left.Motor.Torque, 1e-9)

	gov := left.Motor.Governor
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.InDelta(t, gov*0.95, left.Motor.Governor, 1e-9)
}

func TestModelScrubRestoresLiveState(t *testing.T) {
	m := duel(t)
	for i := 0; i < 5; i++ {
		m = update(t, m, TickMsg{})
	}
	live := m.scene.Bots[0].Chassis.Position

	m = update(t, m, key("["))
	assert.Equal(t, 3, m.playHead)
	assert.False(t, m.running)
	assert.Contains(t, m.View(), "REPLAY PAUSED")

	m = update(t, m, TickMsg{})
	assert.Equal(t, live, m.scene.Bots[0].Chassis.Position)
	assert.Equal(t, 5, m.scene.World.StepCount())

	m = update(t, m, key("]"))
	m = update(t, m, key("]"))
	assert.Equal(t, -1, m.playHead)
}

func TestModelResetRebuilds(t *testing.T) {
	m := duel(t)
	old := m.scene
	m = update(t, m, TickMsg{})
	m = update(t, m, key("r"))
	assert.NotSame(t, old, m.scene)
	assert.Zero(t, m.scene.World.StepCount())
	assert.Empty(t, m.history)
}

func TestModelFire(t *testing.T) {
	m := duel(t)
	m = update(t, m, key("f"))
	assert.Empty(t, m.scene.Projectiles)
	assert.Equal(t, "no projectile configured", m.status)

	cfg, err := config.GetPreset("volley", "volley")
	require.NoError(t, err)
	m, err = NewModel(cfg, nil)
	require.NoError(t, err)
	n := len(m.scene.World.Bodies())
	m = update(t, m, key("f"))
	assert.Len(t, m.scene.World.Bodies(), n+2)
}

func TestModelMouseDrag(t *testing.T) {
	m := duel(t)
	chassis := m.scene.Bots[0].Chassis
	col := int(m.info.X(chassis.Position.X)) / 2
	row := int(m.info.Y(chassis.Position.Y)) / 4
	n := len(m.scene.World.Bodies())

	press := tea.MouseMsg{X: col + canvasOffsetX, Y: row + canvasOffsetY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m = update(t, m, press)
	require.NotNil(t, m.drag)
	assert.Equal(t, chassis.ID, m.drag.Target)
	assert.Len(t, m.scene.World.Bodies(), n+1)

	motion := tea.MouseMsg{X: col + canvasOffsetX + 5, Y: row + canvasOffsetY - 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
	m = update(t, m, motion)
	assert.Greater(t, m.drag.Anchor().X, chassis.Position.X)

	release := tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	m = update(t, m, release)
	assert.Nil(t, m.drag)
	assert.Len(t, m.scene.World.Bodies(), n)
}

func TestRecordingWritesGIF(t *testing.T) {
	m := duel(t)
	path := filepath.Join(t.TempDir(), "out.gif")
	m.SetGIFPath(path)

	m = update(t, m, key("g"))
	m = update(t, m, TickMsg{})
	m = update(t, m, TickMsg{})
	assert.Len(t, m.frames, 2)
	m = update(t, m, key("g"))
	assert.False(t, m.recording)
	assert.FileExists(t, path)
	assert.Equal(t, "saved "+path, m.status)
}

func TestRasterizeScalesDots(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(1, 3)
	img := rasterize(c)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
	assert.Equal(t, uint8(1), img.ColorIndexAt(4, 12))
	assert.Equal(t, uint8(0), img.ColorIndexAt(0, 0))
}

func TestResizeHasFloor(t *testing.T) {
	m := duel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 4})
	assert.Equal(t, 20, m.canvas.Width)
	assert.Equal(t, 8, m.canvas.Height)
}

func TestInteractiveMenuStartsPreset(t *testing.T) {
	app := NewInteractiveApp(nil)
	require.NotEmpty(t, app.entries)

	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(model)
	require.Equal(t, stateConfig, m.state)
	require.NotNil(t, m.cfg)

	dt := m.cfg.Run.Dt
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(model)
	assert.InDelta(t, dt*1.1, m.cfg.Run.Dt, 1e-12)

	next, _ = m.Update(key("s"))
	m = next.(model)
	assert.Equal(t, stateSim, m.state)
	assert.False(t, math.IsNaN(m.liveModel.dt))
}

func TestThemeCycle(t *testing.T) {
	defer SetTheme(ThemeArena.Name)
	m := duel(t)
	m = update(t, m, key("t"))
	assert.Equal(t, ThemeNames()[1], CurrentTheme.Name)
	assert.Equal(t, "theme: "+ThemeNames()[1], m.status)

	SetTheme("nope")
	assert.Equal(t, ThemeArena.Name, CurrentTheme.Name)
	for range Themes {
		NextTheme()
	}
	assert.Equal(t, ThemeArena.Name, CurrentTheme.Name)
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, Sparkline([]float64{1}, 0))
	assert.Contains(t, Sparkline(nil, 3), "───")

	// buckets of two: means 0.5, 2.5 and 4.5
	out := Sparkline([]float64{0, 1, 2, 3, 4, 5}, 3)
	assert.Contains(t, out, "▁")
	assert.Contains(t, out, "▄")
	assert.Contains(t, out, "█")
}

func TestMeterAndRule(t *testing.T) {
	assert.Equal(t, 10, strings.Count(Meter(1.5, 10), "█"))
	assert.Equal(t, 10, strings.Count(Meter(-1, 10), "░"))
	assert.Equal(t, 5, strings.Count(Meter(0.5, 10), "█"))
	assert.Contains(t, Rule("x", 11), " x ")
}

func TestGradientText(t *testing.T) {
	assert.Empty(t, GradientText("", ThemeArena.Title, ThemeArena.Accent))
	assert.Equal(t, "abc", GradientText("abc", "red", ThemeArena.Accent))
	assert.Contains(t, GradientText("a", ThemeArena.Title, ThemeArena.Accent), "a")
}
