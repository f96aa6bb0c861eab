package body

import (
	"fmt"
	"math"

	"github.com/san-kum/botsim/internal/geom"
)

// Kind tags the closed set of body shapes.
type Kind int

const (
	Disc Kind = iota
	Box
	Plane
	Particle
	numKinds
)

// NumKinds is the number of shape kinds, for tables indexed by Kind.
const NumKinds = int(numKinds)

func (k Kind) String() string {
	switch k {
	case Disc:
		return "disc"
	case Box:
		return "box"
	case Plane:
		return "plane"
	case Particle:
		return "particle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	for k := Kind(0); k < numKinds; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown body kind %q", s)
}

// Shape carries the geometry for one Kind. Only the fields of the active
// kind are meaningful.
type Shape struct {
	Kind Kind

	// Disc
	Radius float64

	// Box
	HalfX, HalfY float64

	// Plane. Normal is unit length, Offset = Normal·point. HalfWidth bounds
	// the plane along its tangent; zero or +Inf means unbounded.
	Normal    geom.Vector
	Offset    float64
	HalfWidth float64
}

func (s Shape) validate() error {
	switch s.Kind {
	case Disc:
		if !(s.Radius > 0) {
			return fmt.Errorf("disc radius must be positive, got %f", s.Radius)
		}
	case Box:
		if !(s.HalfX > 0) || !(s.HalfY > 0) {
			return fmt.Errorf("box half extents must be positive, got (%f, %f)", s.HalfX, s.HalfY)
		}
	case Plane:
		if math.Abs(s.Normal.Magnitude()-1) > 1e-9 {
			return fmt.Errorf("plane normal must be unit length, got %v", s.Normal)
		}
	case Particle:
	default:
		return fmt.Errorf("unknown shape %v", s.Kind)
	}
	return nil
}

// momentOfInertia for a body of the given mass about its center.
func (s Shape) momentOfInertia(mass float64) float64 {
	switch s.Kind {
	case Disc:
		return mass * s.Radius * s.Radius / 2
	case Box:
		w, h := 2*s.HalfX, 2*s.HalfY
		return mass * (w*w + h*h) / 12
	default:
		return math.Inf(1)
	}
}

// Bounded reports whether the plane has a finite half width.
func (s Shape) Bounded() bool {
	return s.HalfWidth > 0 && !math.IsInf(s.HalfWidth, 1)
}
