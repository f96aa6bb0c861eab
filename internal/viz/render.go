package viz

import (
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

// Fit returns the rendering transform that scales a width x height world
// onto the canvas while keeping its aspect ratio. Braille dots are roughly
// square so no extra correction is applied.
func Fit(c *Canvas, width, height float64) body.RenderingInfo {
	if width <= 0 || height <= 0 {
		return body.RenderingInfo{Scale: 1, Height: height}
	}
	scale := math.Min(float64(c.SubWidth())/width, float64(c.SubHeight())/height)
	return body.RenderingInfo{Scale: scale, Height: height}
}

// ToWorld inverts info for a sub-pixel coordinate.
func ToWorld(info body.RenderingInfo, x, y float64) geom.Vector {
	return geom.V(x/info.Scale, info.Height-y/info.Scale)
}

// RenderWorld clears c and draws every body and spring of w onto it.
func RenderWorld(c *Canvas, w *world.World) body.RenderingInfo {
	cfg := w.Config()
	info := Fit(c, cfg.Width, cfg.Height)
	c.Clear()
	for _, b := range w.Bodies() {
		b.DrawSelf(c, info)
	}
	for _, s := range w.Springs() {
		s.DrawSelf(c, info, w)
	}
	return info
}

// RenderTrail marks each point of a world-space path.
func RenderTrail(c *Canvas, info body.RenderingInfo, trail []geom.Vector) {
	for _, p := range trail {
		c.Set(round(info.X(p.X)), round(info.Y(p.Y)))
	}
}
