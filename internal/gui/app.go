// Package gui is a desktop window for the scenes, drawn with raylib.
package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/metrics"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/world"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

const (
	screenW      = 1280
	screenH      = 720
	hudHeight    = 90
	maxTelemetry = 200
	maxTrail     = 120
)

type entry struct{ scene, preset string }

type App struct {
	log   *logging.Logger
	cfg   *config.Config
	scene *scenario.Scene
	view  View

	Running  bool
	InMenu   bool
	Menu     []entry
	Selected int

	drag      *world.DragHandle
	trail     []geom.Vector
	Telemetry []float64
	status    string
	err       error
}

// initWindow opens a 1280x720 window at 60 FPS with no exit key.
func initWindow() {
	rl.InitWindow(screenW, screenH, "botsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// NewApp starts on cfg, or on the preset menu when cfg is nil.
func NewApp(cfg *config.Config, log *logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{log: log, InMenu: cfg == nil}
	for _, scene := range config.ListScenes() {
		for _, preset := range config.ListPresets(scene) {
			a.Menu = append(a.Menu, entry{scene, preset})
		}
	}
	if cfg != nil {
		if err := a.load(cfg); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Run opens the window and blocks until it is closed or q is pressed.
func Run(cfg *config.Config, log *logging.Logger) error {
	initWindow()
	defer rl.CloseWindow()
	a, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	a.RunLoop()
	return a.err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) load(cfg *config.Config) error {
	scene, err := scenario.Build(cfg, a.log)
	if err != nil {
		return err
	}
	a.cfg, a.scene = cfg, scene
	a.view = Fit(screenW, screenH-hudHeight, cfg.World.Width, cfg.World.Height)
	a.drag = nil
	a.trail = a.trail[:0]
	a.Telemetry = a.Telemetry[:0]
	a.Running = true
	a.InMenu = false
	a.err = nil
	a.status = ""
	return nil
}

// step advances one frame and records the energy and chassis trail.
func (a *App) step() {
	if err := a.scene.World.Step(a.cfg.Run.Dt); err != nil {
		a.err = err
		a.Running = false
		a.log.Error("gui step failed", logging.Err(err))
		return
	}
	a.Telemetry = append(a.Telemetry, metrics.MechanicalEnergy(a.scene.World))
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
	if len(a.scene.Bots) > 0 {
		a.trail = append(a.trail, a.scene.Bots[0].Chassis.Position)
		if len(a.trail) > maxTrail {
			a.trail = a.trail[1:]
		}
	}
}

func (a *App) fire() {
	if len(a.cfg.Projectiles) == 0 {
		a.status = "no projectile configured"
		return
	}
	spec := a.cfg.Projectiles[len(a.scene.Projectiles)%len(a.cfg.Projectiles)]
	if _, err := a.scene.Fire(spec); err != nil {
		a.status = "fire: " + err.Error()
		return
	}
	a.status = fmt.Sprintf("fired #%d", len(a.scene.Projectiles))
}

// Update handles input and steps the world. It reports false once the user
// asks to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if a.InMenu {
		if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
			a.Selected = (a.Selected + 1) % len(a.Menu)
		}
		if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
			a.Selected = (a.Selected - 1 + len(a.Menu)) % len(a.Menu)
		}
		if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
			e := a.Menu[a.Selected]
			cfg, err := config.GetPreset(e.scene, e.preset)
			if err == nil {
				err = a.load(cfg)
			}
			if err != nil {
				a.status = err.Error()
			}
		}
		return true
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		a.Running = false
		return true
	}

	a.handleMouse()

	if rl.IsKeyPressed(rl.KeySpace) && a.err == nil {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.load(a.cfg); err != nil {
			a.err = err
		}
	}
	if rl.IsKeyPressed(rl.KeyV) {
		a.scene.Reverse()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		a.fire()
	}

	if a.Running {
		a.step()
	}
	return true
}

// handleMouse drags bodies with the left button.
func (a *App) handleMouse() {
	m := rl.GetMousePosition()
	p := a.view.ToWorld(float64(m.X), float64(m.Y))

	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton) && a.drag == nil:
		h, ok, err := a.scene.World.BeginDrag(p)
		if err != nil {
			a.status = "drag: " + err.Error()
			return
		}
		if ok {
			a.drag = h
		}
	case rl.IsMouseButtonReleased(rl.MouseLeftButton) && a.drag != nil:
		if err := a.scene.World.EndDrag(a.drag); err != nil {
			a.status = "drag: " + err.Error()
		}
		a.drag = nil
	case a.drag != nil:
		a.drag.Move(p)
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.renderTrail()
		a.renderWorld(a.scene.World)
		a.renderCursor()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	top := int32(screenH - hudHeight)
	rl.DrawRectangle(0, top, screenW, hudHeight, rl.NewColor(18, 18, 18, 255))

	rl.DrawText("botsim", 30, top+12, 24, ColSelect)
	rl.DrawText(":: "+a.cfg.Scene, 130, top+18, 16, ColText)

	status, col := "RUNNING", ColSelect
	switch {
	case a.err != nil:
		status, col = "HALTED: "+a.err.Error(), rl.Red
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	rl.DrawText(status, 30, top+44, 16, col)
	if a.status != "" {
		rl.DrawText(a.status, 30, top+66, 14, ColTextDim)
	}

	w := a.scene.World
	stats := fmt.Sprintf("t %.2fs  steps %d  bodies %d  contacts %d", w.Time(), w.StepCount(), len(w.Bodies()), w.ResolverStats().Contacts)
	rl.DrawText(stats, 300, top+18, 16, ColText)
	for i, b := range a.scene.Bots {
		dir := "<"
		if b.Forward() {
			dir = ">"
		}
		rl.DrawText(fmt.Sprintf("%s %s %.1f rad/s", b.Assembly.Name, dir, b.Wheels[0].AngularVelocity), 300+int32(i)*220, top+44, 14, ColText)
	}

	a.DrawTelemetry(880, top+12, 240, 60)
	rl.DrawText("[SPACE] PAUSE  [R] RESET  [V] REVERSE  [F] FIRE  [ESC] MENU  [Q] QUIT", 300, top+68, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), screenW-80, top+68, 14, ColTextDim)
}

func (a *App) DrawTelemetry(rectX, rectY, width, height int32) {
	if len(a.Telemetry) < 2 {
		return
	}

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + float32(i)/float32(maxTelemetry)*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	rl.DrawText(fmt.Sprintf("E %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawMenu() {
	rl.DrawText("botsim", 50, 50, 40, ColSelect)
	rl.DrawText("Select Preset", 50, 100, 16, ColTextDim)

	limit := 18
	startIdx := 0
	if a.Selected >= limit {
		startIdx = a.Selected - limit + 1
	}

	y := int32(160)
	for i := startIdx; i < len(a.Menu) && i < startIdx+limit; i++ {
		e := a.Menu[i]
		if i == a.Selected {
			rl.DrawText(fmt.Sprintf("> %s/%s", e.scene, e.preset), 50, y, 20, ColSelect)
		} else {
			rl.DrawText(fmt.Sprintf("  %s/%s", e.scene, e.preset), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.status != "" {
		rl.DrawText(a.status, 50, screenH-70, 14, rl.Red)
	}

	rl.DrawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}
