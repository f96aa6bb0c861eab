package geom

import "errors"

var ErrSingularMatrix = errors.New("geom: matrix is singular")

// Matrix is a row-major 2x2 matrix:
//
//	| A B |
//	| C D |
type Matrix struct {
	A, B, C, D float64
}

func FromRotation(r Rotation) Matrix {
	return Matrix{A: r.C, B: -r.S, C: r.S, D: r.C}
}

// ContactFrame builds the orthonormal basis that maps the local x axis onto
// normal and the local y axis onto its counter-clockwise tangent.
func ContactFrame(normal Vector) Matrix {
	return Matrix{A: normal.X, B: -normal.Y, C: normal.Y, D: normal.X}
}

func (m Matrix) Transform(v Vector) Vector {
	return Vector{m.A*v.X + m.B*v.Y, m.C*v.X + m.D*v.Y}
}

// TransformTranspose multiplies by the transpose, which inverts an orthonormal matrix.
func (m Matrix) TransformTranspose(v Vector) Vector {
	return Vector{m.A*v.X + m.C*v.Y, m.B*v.X + m.D*v.Y}
}

func (m Matrix) Transpose() Matrix { return Matrix{A: m.A, B: m.C, C: m.B, D: m.D} }

func (m Matrix) Add(o Matrix) Matrix {
	return Matrix{A: m.A + o.A, B: m.B + o.B, C: m.C + o.C, D: m.D + o.D}
}

func (m Matrix) Scale(s float64) Matrix {
	return Matrix{A: m.A * s, B: m.B * s, C: m.C * s, D: m.D * s}
}

func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.B*o.C,
		B: m.A*o.B + m.B*o.D,
		C: m.C*o.A + m.D*o.C,
		D: m.C*o.B + m.D*o.D,
	}
}

func (m Matrix) Determinant() float64 { return m.A*m.D - m.B*m.C }

func (m Matrix) Inverse() (Matrix, error) {
	det := m.Determinant()
	if det == 0 {
		return Matrix{}, ErrSingularMatrix
	}
	inv := 1 / det
	return Matrix{A: m.D * inv, B: -m.B * inv, C: -m.C * inv, D: m.A * inv}, nil
}
