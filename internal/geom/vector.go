package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroVector is returned when a zero-length vector has no direction.
var ErrZeroVector = errors.New("geom: cannot normalize zero vector")

// Vector is a 2D vector with value semantics.
type Vector struct {
	X, Y float64
}

func V(x, y float64) Vector { return Vector{X: x, Y: y} }

func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }
func (v Vector) Neg() Vector            { return Vector{-v.X, -v.Y} }
func (v Vector) Dot(o Vector) float64   { return v.X*o.X + v.Y*o.Y }

// Cross returns the scalar z component of the 3D cross product.
func (v Vector) Cross(o Vector) float64 { return v.X*o.Y - o.X*v.Y }

// Perp returns v rotated a quarter turn counter-clockwise.
func (v Vector) Perp() Vector { return Vector{-v.Y, v.X} }

func (v Vector) SquareMagnitude() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vector) Magnitude() float64       { return math.Sqrt(v.SquareMagnitude()) }

func (v Vector) Normalize() (Vector, error) {
	m := v.Magnitude()
	if m == 0 {
		return Vector{}, ErrZeroVector
	}
	return Vector{v.X / m, v.Y / m}, nil
}

func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

func (v Vector) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ApproxEqual reports whether both components differ by less than eps.
func (v Vector) ApproxEqual(o Vector, eps float64) bool {
	return math.Abs(v.X-o.X) < eps && math.Abs(v.Y-o.Y) < eps
}

func (v Vector) String() string { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }
