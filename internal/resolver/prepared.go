package resolver

import (
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/contact"
	"github.com/san-kum/botsim/internal/geom"
)

// Prepared is a contact with the per-step quantities the solver reuses.
// Penetration, Velocity and Desired are updated in place as neighbouring
// contacts are resolved.
type Prepared struct {
	contact.Contact

	Bodies [2]*body.Body
	// Frame maps contact coordinates (x along the normal) to world coordinates.
	Frame geom.Matrix
	// Relative holds the contact point relative to each body's center.
	Relative [2]geom.Vector
	// Velocity is body1's minus body2's velocity at the contact, in contact
	// coordinates.
	Velocity geom.Vector
	// Desired is the normal velocity change that resolves the contact.
	Desired float64
}

// PositionChange is the correction applied to each body of a contact.
type PositionChange struct {
	Linear  [2]geom.Vector
	Angular [2]float64
}

// VelocityChange is the impulse response applied to each body of a contact.
type VelocityChange struct {
	Linear  [2]geom.Vector
	Angular [2]float64
}

// DesiredDeltaVelocity is the normal velocity change needed to stop or
// bounce a contact closing at contactVelocity.X.
func DesiredDeltaVelocity(contactVelocity geom.Vector, restitution, velocityLimit float64) float64 {
	if math.Abs(contactVelocity.X) < velocityLimit {
		restitution = 0
	}
	return -contactVelocity.X * (1 + restitution)
}

func newPrepared(c contact.Contact, b1, b2 *body.Body, cfg Config) *Prepared {
	p := &Prepared{
		Contact: c,
		Bodies:  [2]*body.Body{b1, b2},
		Frame:   geom.ContactFrame(c.Normal),
		Relative: [2]geom.Vector{
			c.Point.Sub(b1.Position),
			c.Point.Sub(b2.Position),
		},
	}
	p.Velocity = p.localVelocity(0).Sub(p.localVelocity(1))
	p.Desired = DesiredDeltaVelocity(p.Velocity, cfg.Restitution, cfg.VelocityLimit)
	return p
}

func (p *Prepared) localVelocity(i int) geom.Vector {
	return p.Frame.TransformTranspose(p.Bodies[i].VelocityAtPoint(p.Relative[i]))
}

// PositionChange splits the penetration between linear and angular moves
// of both bodies in proportion to their inertia along the normal. Body1
// moves along the normal and body2 against it.
func (p *Prepared) PositionChange(angularLimit float64) PositionChange {
	var (
		out        PositionChange
		linInertia [2]float64
		angInertia [2]float64
		rn         [2]float64
		total      float64
	)
	n := p.Normal

	for i, b := range p.Bodies {
		rn[i] = p.Relative[i].Cross(n)
		linInertia[i] = b.InverseMass()
		angInertia[i] = rn[i] * rn[i] * b.InverseInertia()
		total += linInertia[i] + angInertia[i]
	}
	if total == 0 {
		return out
	}

	for i := range p.Bodies {
		sign := 1.0
		if i == 1 {
			sign = -1
		}
		linearMove := sign * p.Penetration * linInertia[i] / total
		angularMove := sign * p.Penetration * angInertia[i] / total

		projection := p.Relative[i].Sub(n.Scale(p.Relative[i].Dot(n)))
		limit := angularLimit * projection.Magnitude()
		if math.Abs(angularMove) > limit {
			totalMove := linearMove + angularMove
			angularMove = math.Copysign(limit, angularMove)
			linearMove = totalMove - angularMove
		}

		out.Linear[i] = n.Scale(linearMove)
		if angInertia[i] != 0 {
			out.Angular[i] = angularMove / rn[i]
		}
	}
	return out
}

// Impulse computes the contact-frame impulse that achieves Desired along
// the normal while removing tangential sliding, clamped to the friction cone.
func (p *Prepared) Impulse(friction float64) geom.Vector {
	var w geom.Matrix
	for i, b := range p.Bodies {
		r := p.Relative[i]
		invM, invI := b.InverseMass(), b.InverseInertia()
		w = w.Add(geom.Matrix{
			A: invM + invI*r.Y*r.Y,
			B: -invI * r.X * r.Y,
			C: -invI * r.X * r.Y,
			D: invM + invI*r.X*r.X,
		})
	}
	k := p.Frame.Transpose().Mul(w).Mul(p.Frame)

	frictionless := geom.V(p.Desired/k.A, 0)
	inv, err := k.Inverse()
	if err != nil {
		return frictionless
	}
	j := inv.Transform(geom.V(p.Desired, -p.Velocity.Y))

	if math.Abs(j.Y) > friction*j.X {
		dir := math.Copysign(1, j.Y)
		denom := k.A + k.B*friction*dir
		if denom <= 0 {
			return frictionless
		}
		j.X = p.Desired / denom
		j.Y = friction * dir * j.X
	}
	return j
}

// ApplyVelocityChange applies the friction impulse to both bodies.
func (p *Prepared) ApplyVelocityChange(friction float64) VelocityChange {
	var out VelocityChange
	impulse := p.Frame.Transform(p.Impulse(friction))

	b1, b2 := p.Bodies[0], p.Bodies[1]
	out.Linear[0] = impulse.Scale(b1.InverseMass())
	out.Angular[0] = p.Relative[0].Cross(impulse) * b1.InverseInertia()
	out.Linear[1] = impulse.Scale(-b2.InverseMass())
	out.Angular[1] = impulse.Cross(p.Relative[1]) * b2.InverseInertia()

	for i, b := range p.Bodies {
		b.Velocity = b.Velocity.Add(out.Linear[i])
		b.AngularVelocity += out.Angular[i]
	}
	return out
}

func applyPositionChange(p *Prepared, ch PositionChange) {
	for i, b := range p.Bodies {
		b.Position = b.Position.Add(ch.Linear[i])
		b.Rotate(ch.Angular[i])
	}
}

// PropagatePosition updates the penetration of every contact sharing a body
// with resolved, including resolved itself, by the movement of the contact
// point along each contact's normal.
func PropagatePosition(contacts []*Prepared, resolved *Prepared, ch PositionChange) {
	for _, c := range contacts {
		for k, b := range c.Bodies {
			for d, moved := range resolved.Bodies {
				if b != moved {
					continue
				}
				rel := c.Relative[k]
				delta := ch.Linear[d].Add(geom.FromAngle(ch.Angular[d]).Rotate(rel)).Sub(rel)
				if k == 0 {
					c.Penetration -= delta.Dot(c.Normal)
				} else {
					c.Penetration += delta.Dot(c.Normal)
				}
			}
		}
	}
}

// PropagateVelocity updates the closing velocity and desired velocity change
// of every contact sharing a body with resolved.
func PropagateVelocity(contacts []*Prepared, resolved *Prepared, ch VelocityChange, cfg Config) {
	for _, c := range contacts {
		touched := false
		for k, b := range c.Bodies {
			for d, moved := range resolved.Bodies {
				if b != moved {
					continue
				}
				dv := ch.Linear[d].Add(c.Relative[k].Perp().Scale(ch.Angular[d]))
				local := c.Frame.TransformTranspose(dv)
				if k == 0 {
					c.Velocity = c.Velocity.Add(local)
				} else {
					c.Velocity = c.Velocity.Sub(local)
				}
				touched = true
			}
		}
		if touched {
			c.Desired = DesiredDeltaVelocity(c.Velocity, cfg.Restitution, cfg.VelocityLimit)
		}
	}
}
