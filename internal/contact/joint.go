package contact

import (
	"fmt"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
)

// Store resolves body ids.
type Store interface {
	Body(id body.ID) (*body.Body, bool)
}

// Joint keeps two body-local points coincident. When they drift further
// apart than Threshold it produces a pseudo-contact pulling them together.
type Joint struct {
	Body1, Body2   body.ID
	Local1, Local2 geom.Vector
	Threshold      float64
}

func NewJoint(threshold float64, b1 body.ID, l1 geom.Vector, b2 body.ID, l2 geom.Vector) *Joint {
	return &Joint{Body1: b1, Body2: b2, Local1: l1, Local2: l2, Threshold: threshold}
}

func (j *Joint) Involves(id body.ID) bool { return j.Body1 == id || j.Body2 == id }

// Displacement returns p2 - p1 and p1 in world space.
func (j *Joint) Displacement(store Store) (geom.Vector, geom.Vector, error) {
	o1, ok := store.Body(j.Body1)
	if !ok {
		return geom.Vector{}, geom.Vector{}, fmt.Errorf("joint body %s not found", j.Body1)
	}
	o2, ok := store.Body(j.Body2)
	if !ok {
		return geom.Vector{}, geom.Vector{}, fmt.Errorf("joint body %s not found", j.Body2)
	}
	p1 := o1.ToWorld(j.Local1)
	return o2.ToWorld(j.Local2).Sub(p1), p1, nil
}

// Contact returns the pseudo-contact if the joint is stretched past its
// threshold.
func (j *Joint) Contact(store Store) (Contact, bool, error) {
	d, p1, err := j.Displacement(store)
	if err != nil {
		return Contact{}, false, err
	}
	if d.SquareMagnitude() <= j.Threshold*j.Threshold {
		return Contact{}, false, nil
	}
	pen := d.Magnitude()
	return Contact{
		Data: Data{
			Normal:      d.Scale(1 / pen),
			Point:       p1,
			Penetration: pen,
		},
		Body1: j.Body1,
		Body2: j.Body2,
	}, true, nil
}
