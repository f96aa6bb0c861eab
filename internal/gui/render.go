package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

// View places a world inside a window: the world is scaled to fit and
// centred, with y pointing up.
type View struct {
	Info    body.RenderingInfo
	OffsetX float64
	OffsetY float64
}

// Fit scales a worldW x worldH world into a screenW x screenH area.
func Fit(screenW, screenH, worldW, worldH float64) View {
	if worldW <= 0 || worldH <= 0 || screenW <= 0 || screenH <= 0 {
		return View{Info: body.RenderingInfo{Scale: 1, Height: worldH}}
	}
	scale := math.Min(screenW/worldW, screenH/worldH)
	return View{
		Info:    body.RenderingInfo{Scale: scale, Height: worldH},
		OffsetX: (screenW - worldW*scale) / 2,
		OffsetY: (screenH - worldH*scale) / 2,
	}
}

func (v View) ToScreen(p geom.Vector) (float64, float64) {
	return v.Info.X(p.X) + v.OffsetX, v.Info.Y(p.Y) + v.OffsetY
}

func (v View) ToWorld(x, y float64) geom.Vector {
	x -= v.OffsetX
	y -= v.OffsetY
	return geom.V(x/v.Info.Scale, v.Info.Height-y/v.Info.Scale)
}

// Surface draws into the current raylib frame.
type Surface struct {
	View  View
	Color rl.Color
	Thick float32
}

func (s Surface) Line(x0, y0, x1, y1 float64) {
	a := rl.NewVector2(float32(x0+s.View.OffsetX), float32(y0+s.View.OffsetY))
	b := rl.NewVector2(float32(x1+s.View.OffsetX), float32(y1+s.View.OffsetY))
	rl.DrawLineEx(a, b, s.Thick, s.Color)
}

func (s Surface) Circle(cx, cy, r float64) {
	rl.DrawCircleLines(int32(math.Round(cx+s.View.OffsetX)), int32(math.Round(cy+s.View.OffsetY)), float32(r), s.Color)
}

func (a *App) renderWorld(w *world.World) {
	bodies := Surface{View: a.view, Color: ColAccent, Thick: 2}
	for _, b := range w.Bodies() {
		if a.drag != nil && b.ID == a.drag.Target {
			bodies.Color = ColSelect
		} else {
			bodies.Color = ColAccent
		}
		b.DrawSelf(bodies, a.view.Info)
	}
	springs := Surface{View: a.view, Color: ColText, Thick: 1}
	for _, s := range w.Springs() {
		s.DrawSelf(springs, a.view.Info, w)
	}
}

func (a *App) renderTrail() {
	for i, p := range a.trail {
		x, y := a.view.ToScreen(p)
		alpha := uint8(40 + 160*i/len(a.trail))
		rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), 1.5, rl.NewColor(255, 255, 255, alpha))
	}
}

func (a *App) renderCursor() {
	if a.drag == nil {
		return
	}
	m := rl.GetMousePosition()
	rl.DrawCircleLines(int32(m.X), int32(m.Y), 6, rl.NewColor(255, 255, 255, 100))
	rl.DrawCircleLines(int32(m.X), int32(m.Y), 12, rl.NewColor(255, 255, 255, 50))
}
