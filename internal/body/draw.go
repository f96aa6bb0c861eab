package body

import "github.com/san-kum/botsim/internal/geom"

// Surface is anything a body can draw itself onto, in surface coordinates.
type Surface interface {
	Line(x0, y0, x1, y1 float64)
	Circle(cx, cy, r float64)
}

// RenderingInfo maps world coordinates to surface coordinates. World y
// points up; surface y points down.
type RenderingInfo struct {
	Scale  float64
	Height float64
}

func (r RenderingInfo) X(x float64) float64 { return x * r.Scale }
func (r RenderingInfo) Y(y float64) float64 { return (r.Height - y) * r.Scale }

func (r RenderingInfo) line(s Surface, a, b geom.Vector) {
	s.Line(r.X(a.X), r.Y(a.Y), r.X(b.X), r.Y(b.Y))
}

const unboundedPlaneExtent = 1000

func (b *Body) DrawSelf(s Surface, info RenderingInfo) {
	switch b.Shape.Kind {
	case Disc:
		s.Circle(info.X(b.Position.X), info.Y(b.Position.Y), b.Shape.Radius*info.Scale)
		spoke := b.ToWorld(geom.V(b.Shape.Radius, 0))
		info.line(s, b.Position, spoke)
	case Box:
		c := b.Corners()
		info.line(s, c[0], c[1])
		info.line(s, c[1], c[3])
		info.line(s, c[3], c[2])
		info.line(s, c[2], c[0])
	case Plane:
		hw := b.Shape.HalfWidth
		if !b.Shape.Bounded() {
			hw = unboundedPlaneExtent
		}
		t := b.Tangent().Scale(hw)
		info.line(s, b.Position.Sub(t), b.Position.Add(t))
	case Particle:
		s.Circle(info.X(b.Position.X), info.Y(b.Position.Y), 0.5)
	}
}
