package scenario

import (
	"errors"
	"fmt"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/contact"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

// ProjectileJointThreshold is how far the shaft and tip may drift apart
// before the joint pulls them back.
const ProjectileJointThreshold = 0.1

var ErrShortProjectile = errors.New("scenario: projectile shorter than it is tall")

// Projectile is a box shaft whose leading end is jointed to a disc tip.
// Both parts leave the spawn point at the muzzle velocity.
type Projectile struct {
	Assembly *world.Assembly
	Shaft    *body.Body
	Tip      *body.Body
}

func NewProjectile(spec config.ProjectileConfig) (*Projectile, error) {
	if spec.Length < spec.Height {
		return nil, fmt.Errorf("%w: length %g, height %g", ErrShortProjectile, spec.Length, spec.Height)
	}

	rot := geom.FromAngle(spec.Angle)
	dir := rot.Rotate(geom.V(1, 0))
	spawn := geom.V(spec.X, spec.Y)
	shaftLength := spec.Length - spec.Height/2

	a := world.NewAssembly("projectile")
	p := &Projectile{Assembly: a}
	p.Shaft = a.AddBody(body.NewBox(spawn.Add(dir.Scale(shaftLength/2)), shaftLength/2, spec.Height/2, spec.Mass))
	p.Tip = a.AddBody(body.NewDisc(spawn.Add(dir.Scale(shaftLength)), spec.Height/2, spec.Mass))
	p.Shaft.Label = "projectile/shaft"
	p.Tip.Label = "projectile/tip"

	for _, b := range a.Bodies() {
		b.Rotation = rot
		b.Velocity = dir.Scale(spec.Speed)
	}

	a.AddJoint(contact.NewJoint(ProjectileJointThreshold,
		p.Shaft.ID, geom.V(shaftLength/2, 0),
		p.Tip.ID, geom.Vector{}))
	return p, nil
}

// Parts returns the shaft and tip.
func (p *Projectile) Parts() []*body.Body { return []*body.Body{p.Shaft, p.Tip} }

// Fire launches another projectile into a built scene.
func (s *Scene) Fire(spec config.ProjectileConfig) (*Projectile, error) {
	p, err := NewProjectile(spec)
	if err != nil {
		return nil, err
	}
	if err := s.World.AddAssembly(p.Assembly); err != nil {
		return nil, err
	}
	for _, b := range p.Parts() {
		b.LinearDamping = s.damping.LinearDamping
		b.AngularDamping = s.damping.AngularDamping
	}
	s.Projectiles = append(s.Projectiles, p)
	return p, nil
}

func buildProjectiles(s *Scene, cfg *config.Config) error {
	for i, spec := range cfg.Projectiles {
		if _, err := s.Fire(spec); err != nil {
			return fmt.Errorf("projectile %d: %w", i, err)
		}
	}
	return nil
}
