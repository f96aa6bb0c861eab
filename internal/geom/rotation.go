package geom

import (
	"fmt"
	"math"
)

// Rotation is an orientation stored as the unit complex number cos θ + i sin θ.
// Composition is complex multiplication followed by renormalization.
type Rotation struct {
	C, S float64
}

// Identity is the zero rotation.
var Identity = Rotation{C: 1, S: 0}

func FromAngle(theta float64) Rotation {
	return Rotation{C: math.Cos(theta), S: math.Sin(theta)}
}

// Compose returns r followed by o, renormalized.
func (r Rotation) Compose(o Rotation) Rotation {
	return Rotation{
		C: r.C*o.C - r.S*o.S,
		S: r.C*o.S + r.S*o.C,
	}.Normalize()
}

// Normalize rescales r to unit length. A degenerate rotation collapses to Identity.
func (r Rotation) Normalize() Rotation {
	m := math.Hypot(r.C, r.S)
	if m == 0 {
		return Identity
	}
	return Rotation{C: r.C / m, S: r.S / m}
}

// Inverse is the conjugate of r.
func (r Rotation) Inverse() Rotation { return Rotation{C: r.C, S: -r.S} }

// Rotate applies r to v.
func (r Rotation) Rotate(v Vector) Vector {
	return Vector{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

// Theta returns the angle in (-π, π]. Used for display only.
func (r Rotation) Theta() float64 { return math.Atan2(r.S, r.C) }

func (r Rotation) String() string { return fmt.Sprintf("%.3frad", r.Theta()) }
