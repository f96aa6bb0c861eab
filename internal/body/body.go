package body

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/san-kum/botsim/internal/geom"
)

const (
	DefaultLinearDamping  = 0.99
	DefaultAngularDamping = 0.80
)

// ID identifies a body for the lifetime of the process.
type ID string

func NewID() ID { return ID(uuid.NewString()) }

// TorqueSource supplies motor torque given the driven body's angular velocity.
// A single source may drive several bodies.
type TorqueSource interface {
	TorqueFor(angularVelocity float64) float64
}

// Body is a rigid body. Mass may be +Inf for immovable bodies.
type Body struct {
	ID    ID
	Label string
	Shape Shape

	Position     geom.Vector
	Velocity     geom.Vector
	Acceleration geom.Vector

	Rotation            geom.Rotation
	AngularVelocity     float64
	AngularAcceleration float64

	Mass float64

	Force  geom.Vector
	Torque float64

	LinearDamping  float64
	AngularDamping float64

	Motor TorqueSource
}

func newBody(pos geom.Vector, mass float64, shape Shape) *Body {
	return &Body{
		ID:             NewID(),
		Shape:          shape,
		Position:       pos,
		Rotation:       geom.Identity,
		Mass:           mass,
		LinearDamping:  DefaultLinearDamping,
		AngularDamping: DefaultAngularDamping,
	}
}

func NewDisc(pos geom.Vector, radius, mass float64) *Body {
	return newBody(pos, mass, Shape{Kind: Disc, Radius: radius})
}

func NewBox(pos geom.Vector, halfX, halfY, mass float64) *Body {
	return newBody(pos, mass, Shape{Kind: Box, HalfX: halfX, HalfY: halfY})
}

// NewPlane returns an immovable plane through point with the given normal.
func NewPlane(point, normal geom.Vector, halfWidth float64) (*Body, error) {
	n, err := normal.Normalize()
	if err != nil {
		return nil, fmt.Errorf("plane normal: %w", err)
	}
	return newBody(point, math.Inf(1), Shape{
		Kind:      Plane,
		Normal:    n,
		Offset:    n.Dot(point),
		HalfWidth: halfWidth,
	}), nil
}

// NewParticle returns an immovable, zero-extent anchor.
func NewParticle(pos geom.Vector) *Body {
	return newBody(pos, math.Inf(1), Shape{Kind: Particle})
}

func (b *Body) Kind() Kind { return b.Shape.Kind }

// Validate checks the body can be simulated.
func (b *Body) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("body has no id")
	}
	if math.IsNaN(b.Mass) || b.Mass <= 0 {
		return fmt.Errorf("body %s: mass must be positive, got %f", b.ID, b.Mass)
	}
	if b.LinearDamping <= 0 || b.LinearDamping > 1 || b.AngularDamping <= 0 || b.AngularDamping > 1 {
		return fmt.Errorf("body %s: damping must be in (0, 1]", b.ID)
	}
	if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
		return fmt.Errorf("body %s: non-finite state", b.ID)
	}
	if err := b.Shape.validate(); err != nil {
		return fmt.Errorf("body %s: %w", b.ID, err)
	}
	return nil
}

func (b *Body) InverseMass() float64 {
	if math.IsInf(b.Mass, 1) {
		return 0
	}
	return 1 / b.Mass
}

// MomentOfInertia is +Inf for immovable bodies.
func (b *Body) MomentOfInertia() float64 {
	if math.IsInf(b.Mass, 1) {
		return math.Inf(1)
	}
	return b.Shape.momentOfInertia(b.Mass)
}

func (b *Body) InverseInertia() float64 {
	i := b.MomentOfInertia()
	if math.IsInf(i, 1) || i == 0 {
		return 0
	}
	return 1 / i
}

func (b *Body) Static() bool { return math.IsInf(b.Mass, 1) }

func (b *Body) ClearAccumulators() {
	b.Force = geom.Vector{}
	b.Torque = 0
}

// AccumulateForce adds a force acting through the center of mass.
func (b *Body) AccumulateForce(f geom.Vector) {
	b.Force = b.Force.Add(f)
}

// AccumulateForceAt adds a world-space force at a world-space point.
func (b *Body) AccumulateForceAt(f, point geom.Vector) {
	b.Force = b.Force.Add(f)
	if b.Shape.Kind == Particle {
		return
	}
	b.Torque += point.Sub(b.Position).Cross(f)
}

func (b *Body) AccumulateTorque(t float64) { b.Torque += t }

// Integrate advances the body by dt with semi-implicit Euler.
func (b *Body) Integrate(dt float64) {
	b.Acceleration = b.Force.Scale(b.InverseMass())
	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))

	if b.Motor != nil {
		b.Torque += b.Motor.TorqueFor(b.AngularVelocity)
	}
	b.AngularAcceleration = b.Torque * b.InverseInertia()
	b.AngularVelocity += b.AngularAcceleration * dt

	b.Velocity = b.Velocity.Scale(math.Pow(b.LinearDamping, dt))
	b.AngularVelocity *= math.Pow(b.AngularDamping, dt)

	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Rotation = b.Rotation.Compose(geom.FromAngle(b.AngularVelocity * dt))
}

// Rotate composes an additional rotation of theta radians.
func (b *Body) Rotate(theta float64) {
	if theta == 0 {
		return
	}
	b.Rotation = b.Rotation.Compose(geom.FromAngle(theta))
}

func (b *Body) ToLocal(p geom.Vector) geom.Vector {
	return b.Rotation.Inverse().Rotate(p.Sub(b.Position))
}

func (b *Body) ToWorld(local geom.Vector) geom.Vector {
	return b.Rotation.Rotate(local).Add(b.Position)
}

// VelocityAtPoint is the velocity of a point at rel from the center of mass.
func (b *Body) VelocityAtPoint(rel geom.Vector) geom.Vector {
	return b.Velocity.Add(rel.Perp().Scale(b.AngularVelocity))
}

// IsInside reports whether p lies within the body. Planes and particles
// contain nothing.
func (b *Body) IsInside(p geom.Vector) bool {
	switch b.Shape.Kind {
	case Disc:
		return p.Sub(b.Position).SquareMagnitude() <= b.Shape.Radius*b.Shape.Radius
	case Box:
		l := b.ToLocal(p)
		return math.Abs(l.X) <= b.Shape.HalfX && math.Abs(l.Y) <= b.Shape.HalfY
	default:
		return false
	}
}

// Axis returns the box's local x (i = 0) or y (i = 1) axis in world space.
func (b *Body) Axis(i int) geom.Vector {
	return b.Rotation.Rotate(geom.V(float64(1-i), float64(i)))
}

// Corners returns the box corners in world space: top left, top right,
// bottom left, bottom right.
func (b *Body) Corners() [4]geom.Vector {
	hx, hy := b.Shape.HalfX, b.Shape.HalfY
	return [4]geom.Vector{
		b.ToWorld(geom.V(-hx, hy)),
		b.ToWorld(geom.V(hx, hy)),
		b.ToWorld(geom.V(-hx, -hy)),
		b.ToWorld(geom.V(hx, -hy)),
	}
}

// ProjectOnto is the half-length of the box's shadow on axis.
func (b *Body) ProjectOnto(axis geom.Vector) float64 {
	return b.Shape.HalfX*math.Abs(axis.Dot(b.Axis(0))) + b.Shape.HalfY*math.Abs(axis.Dot(b.Axis(1)))
}

// Tangent is the plane's direction vector.
func (b *Body) Tangent() geom.Vector { return b.Shape.Normal.Perp().Neg() }

// KineticEnergy is zero for immovable bodies.
func (b *Body) KineticEnergy() float64 {
	if b.Static() {
		return 0
	}
	return 0.5*b.Mass*b.Velocity.SquareMagnitude() + 0.5*b.MomentOfInertia()*b.AngularVelocity*b.AngularVelocity
}

func (b *Body) String() string {
	name := string(b.ID)
	if b.Label != "" {
		name = b.Label
	}
	return fmt.Sprintf("%s %s pos=%v rot=%v", b.Shape.Kind, name, b.Position, b.Rotation)
}
