package contact

import (
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
)

// withinPlane reports whether point projects onto the plane's finite extent.
func withinPlane(plane *body.Body, point geom.Vector) bool {
	if !plane.Shape.Bounded() {
		return true
	}
	return math.Abs(plane.Tangent().Dot(point.Sub(plane.Position))) <= plane.Shape.HalfWidth
}

func PlaneDisc(plane, disc *body.Body) ([]Data, error) {
	n := plane.Shape.Normal
	distance := n.Dot(disc.Position) - disc.Shape.Radius - plane.Shape.Offset
	if distance >= 0 || !withinPlane(plane, disc.Position) {
		return nil, nil
	}
	return []Data{{
		Normal:      n.Neg(),
		Point:       disc.Position.Sub(n.Scale(disc.Shape.Radius)),
		Penetration: -distance,
	}}, nil
}

// PlaneBox tests each box corner against the plane independently.
func PlaneBox(plane, box *body.Body) ([]Data, error) {
	n := plane.Shape.Normal
	var out []Data
	for _, corner := range box.Corners() {
		distance := n.Dot(corner) - plane.Shape.Offset
		if distance >= 0 || !withinPlane(plane, corner) {
			continue
		}
		out = append(out, Data{
			Normal:      n.Neg(),
			Point:       corner,
			Penetration: -distance,
		})
	}
	return out, nil
}
