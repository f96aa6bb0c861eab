package contact

import (
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
)

// axisBias keeps the earlier axis when two overlaps agree to rounding.
const axisBias = 1e-9

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func BoxDisc(box, disc *body.Body) ([]Data, error) {
	hx, hy := box.Shape.HalfX, box.Shape.HalfY
	r := disc.Shape.Radius

	local := box.ToLocal(disc.Position)
	closest := geom.V(clamp(local.X, -hx, hx), clamp(local.Y, -hy, hy))
	separation := local.Sub(closest)

	if separation.SquareMagnitude() > r*r {
		return nil, nil
	}
	if separation.IsZero() {
		return discInsideBox(box, local, r), nil
	}

	worldClosest := box.ToWorld(closest)
	normal, err := worldClosest.Sub(disc.Position).Normalize()
	if err != nil {
		return nil, ErrDegenerateGeometry
	}
	return []Data{{
		Normal:      normal,
		Point:       worldClosest,
		Penetration: r - separation.Magnitude(),
	}}, nil
}

// discInsideBox pushes the disc out through the face nearest its center.
func discInsideBox(box *body.Body, local geom.Vector, r float64) []Data {
	depthX := box.Shape.HalfX - math.Abs(local.X)
	depthY := box.Shape.HalfY - math.Abs(local.Y)

	var face, outward geom.Vector
	depth := depthX
	if depthY < depthX {
		depth = depthY
		s := sign(local.Y)
		face = geom.V(local.X, s*box.Shape.HalfY)
		outward = geom.V(0, s)
	} else {
		s := sign(local.X)
		face = geom.V(s*box.Shape.HalfX, local.Y)
		outward = geom.V(s, 0)
	}

	return []Data{{
		Normal:      box.Rotation.Rotate(outward).Neg(),
		Point:       box.ToWorld(face),
		Penetration: r + depth,
	}}
}

// BoxBox runs the separating axis test over both boxes' face normals. The
// box that does not own the minimum-overlap axis contributes its deepest
// vertex as the contact point.
func BoxBox(b1, b2 *body.Body) ([]Data, error) {
	axes := [4]geom.Vector{b1.Axis(0), b1.Axis(1), b2.Axis(0), b2.Axis(1)}
	delta := b2.Position.Sub(b1.Position)

	best := -1
	bestPen := math.Inf(1)
	for i, axis := range axes {
		pen := b1.ProjectOnto(axis) + b2.ProjectOnto(axis) - math.Abs(delta.Dot(axis))
		if pen <= 0 {
			return nil, nil
		}
		if pen < bestPen-axisBias {
			best, bestPen = i, pen
		}
	}

	vertexBox, faceBox := b2, b1
	if best >= 2 {
		vertexBox, faceBox = b1, b2
	}

	toFace := faceBox.Position.Sub(vertexBox.Position)
	dir := axes[best]
	if dir.Dot(toFace) < 0 {
		dir = dir.Neg()
	}

	var signs [2]float64
	for k := 0; k < 2; k++ {
		ax := vertexBox.Axis(k)
		d := ax.Dot(dir)
		if math.Abs(d) < axisBias {
			d = ax.Dot(toFace)
		}
		signs[k] = sign(d)
	}
	vertex := geom.V(signs[0]*vertexBox.Shape.HalfX, signs[1]*vertexBox.Shape.HalfY)

	normal := dir
	if vertexBox == b1 {
		normal = dir.Neg()
	}
	return []Data{{
		Normal:      normal,
		Point:       vertexBox.ToWorld(vertex),
		Penetration: bestPen,
	}}, nil
}
