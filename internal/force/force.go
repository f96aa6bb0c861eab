// Package force holds the per-step force generators. Generators refer to
// bodies by id and resolve them through a Store when applied.
package force

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
)

var ErrMissingBody = errors.New("force: referenced body not found")

// Store resolves body ids.
type Store interface {
	Body(id body.ID) (*body.Body, bool)
}

func lookup(s Store, id body.ID) (*body.Body, error) {
	b, ok := s.Body(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingBody, id)
	}
	return b, nil
}

// Spring pulls two body-local attachment points toward its rest length.
type Spring struct {
	Body1, Body2   body.ID
	Local1, Local2 geom.Vector
	K              float64
	RestLength     float64
}

func NewSpring(b1 body.ID, l1 geom.Vector, b2 body.ID, l2 geom.Vector, k, rest float64) *Spring {
	return &Spring{Body1: b1, Body2: b2, Local1: l1, Local2: l2, K: k, RestLength: rest}
}

// Endpoints returns the world-space attachment points.
func (s *Spring) Endpoints(store Store) (geom.Vector, geom.Vector, error) {
	o1, err := lookup(store, s.Body1)
	if err != nil {
		return geom.Vector{}, geom.Vector{}, err
	}
	o2, err := lookup(store, s.Body2)
	if err != nil {
		return geom.Vector{}, geom.Vector{}, err
	}
	return o1.ToWorld(s.Local1), o2.ToWorld(s.Local2), nil
}

// Involves reports whether the spring is attached to id.
func (s *Spring) Involves(id body.ID) bool { return s.Body1 == id || s.Body2 == id }

// Apply accumulates the spring force on both bodies.
func (s *Spring) Apply(store Store) error {
	o1, err := lookup(store, s.Body1)
	if err != nil {
		return err
	}
	o2, err := lookup(store, s.Body2)
	if err != nil {
		return err
	}
	p1, p2 := o1.ToWorld(s.Local1), o2.ToWorld(s.Local2)

	d := p2.Sub(p1)
	dir, err := d.Normalize()
	if err != nil {
		// coincident endpoints
		return nil
	}
	f := dir.Scale(s.K * (d.Magnitude() - s.RestLength))
	o1.AccumulateForceAt(f, p1)
	o2.AccumulateForceAt(f.Neg(), p2)
	return nil
}

func (s *Spring) DrawSelf(surface body.Surface, info body.RenderingInfo, store Store) {
	p1, p2, err := s.Endpoints(store)
	if err != nil {
		return
	}
	surface.Line(info.X(p1.X), info.Y(p1.Y), info.X(p2.X), info.Y(p2.Y))
}

// TorqueGenerator is a speed-governed motor. It contributes Torque only while
// the driven body's angular speed is within Governor.
type TorqueGenerator struct {
	Torque   float64
	Governor float64
}

func NewTorqueGenerator(torque, governor float64) *TorqueGenerator {
	return &TorqueGenerator{Torque: torque, Governor: governor}
}

func (g *TorqueGenerator) TorqueFor(angularVelocity float64) float64 {
	if math.Abs(angularVelocity) > g.Governor {
		return 0
	}
	return g.Torque
}

// Apply adds the governed torque to b's accumulator.
func (g *TorqueGenerator) Apply(b *body.Body) {
	b.AccumulateTorque(g.TorqueFor(b.AngularVelocity))
}

// Reverse flips the motor direction.
func (g *TorqueGenerator) Reverse() { g.Torque = -g.Torque }

// Gravity pulls finite-mass bodies toward -y.
type Gravity struct {
	G float64
}

func (g Gravity) Apply(b *body.Body) {
	if b.Static() {
		return
	}
	b.AccumulateForce(geom.V(0, -g.G*b.Mass))
}
