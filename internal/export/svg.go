// Package export renders worlds and trajectories as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/sim"
	"github.com/san-kum/botsim/internal/viz"
	"github.com/san-kum/botsim/internal/world"
)

const (
	background = "#0a0a0a"
	foreground = "#00ff88"
)

func header(sb *strings.Builder, width, height float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// Surface collects drawing calls as SVG elements.
type Surface struct {
	sb strings.Builder
}

func (s *Surface) Line(x0, y0, x1, y1 float64) {
	s.sb.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>
`, x0, y0, x1, y1))
}

func (s *Surface) Circle(cx, cy, r float64) {
	s.sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f"/>
`, cx, cy, r))
}

// WorldToSVG draws every body and spring of w at pxPerUnit pixels per world
// unit.
func WorldToSVG(w *world.World, pxPerUnit float64) string {
	cfg := w.Config()
	info := body.RenderingInfo{Scale: pxPerUnit, Height: cfg.Height}

	var surface Surface
	for _, b := range w.Bodies() {
		b.DrawSelf(&surface, info)
	}
	for _, s := range w.Springs() {
		s.DrawSelf(&surface, info, w)
	}

	var sb strings.Builder
	header(&sb, cfg.Width*pxPerUnit, cfg.Height*pxPerUnit)
	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="1">
`, foreground))
	sb.WriteString(surface.sb.String())
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.SubWidth())*scale, float64(canvas.SubHeight())*scale)
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", foreground))

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Path returns the sampled positions of one body, looked up by id or label.
func Path(result *sim.Result, ref string) ([]geom.Vector, error) {
	id, ok := result.Find(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", sim.ErrUnknownBody, ref)
	}
	xs, err := result.Series(id, "x")
	if err != nil {
		return nil, err
	}
	ys, err := result.Series(id, "y")
	if err != nil {
		return nil, err
	}
	points := make([]geom.Vector, len(xs))
	for i := range xs {
		points[i] = geom.V(xs[i], ys[i])
	}
	return points, nil
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []geom.Vector, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
