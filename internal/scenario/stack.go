package scenario

import (
	"fmt"
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/contact"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

// ChainJointThreshold is the slack allowed at each chain link joint.
const ChainJointThreshold = 0.05

// LinkHeight is the thickness of a chain link.
const LinkHeight = 1.0

// Stack places loose square boxes one on top of another, resting on the
// floor. Stacked boxes are independent bodies, not an assembly.
func Stack(w *world.World, spec config.StackConfig) ([]*body.Body, error) {
	if spec.Count <= 0 {
		return nil, nil
	}
	if spec.Size <= 0 || spec.Mass <= 0 {
		return nil, fmt.Errorf("stack: size and mass must be positive")
	}
	half := spec.Size / 2
	boxes := make([]*body.Body, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		b := body.NewBox(geom.V(spec.X, half+float64(i)*spec.Size), half, half, spec.Mass)
		b.Label = fmt.Sprintf("stack-%d", i)
		if _, err := w.AddObject(b); err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

func buildStack(s *Scene, cfg *config.Config) error {
	_, err := Stack(s.World, cfg.Stack)
	return err
}

// Chain is a run of thin boxes jointed end to end and hung from a fixed
// particle anchor.
type Chain struct {
	Assembly *world.Assembly
	Anchor   *body.Body
	Links    []*body.Body
}

// NewChain lays the chain out in a straight line from the anchor, Angle
// radians from hanging straight down.
func NewChain(spec config.ChainConfig) (*Chain, error) {
	if spec.Links <= 0 || spec.LinkWidth <= 0 || spec.Mass <= 0 {
		return nil, fmt.Errorf("chain: links, link width and mass must be positive")
	}

	anchor := geom.V(spec.AnchorX, spec.AnchorY)
	dir := geom.V(math.Sin(spec.Angle), -math.Cos(spec.Angle))
	rot := geom.FromAngle(math.Atan2(dir.Y, dir.X))
	half := spec.LinkWidth / 2

	a := world.NewAssembly("chain")
	c := &Chain{Assembly: a}
	c.Anchor = a.AddBody(body.NewParticle(anchor))
	c.Anchor.Label = "chain/anchor"

	prev, prevLocal := c.Anchor, geom.Vector{}
	for i := 0; i < spec.Links; i++ {
		link := body.NewBox(anchor.Add(dir.Scale((float64(i)+0.5)*spec.LinkWidth)), half, LinkHeight/2, spec.Mass)
		link.Rotation = rot
		link.Label = fmt.Sprintf("chain/link-%d", i)
		a.AddBody(link)
		a.AddJoint(contact.NewJoint(ChainJointThreshold, prev.ID, prevLocal, link.ID, geom.V(-half, 0)))

		c.Links = append(c.Links, link)
		prev, prevLocal = link, geom.V(half, 0)
	}
	return c, nil
}

func buildChain(s *Scene, cfg *config.Config) error {
	if cfg.Chain.Links == 0 {
		return nil
	}
	c, err := NewChain(cfg.Chain)
	if err != nil {
		return err
	}
	if err := s.World.AddAssembly(c.Assembly); err != nil {
		return err
	}
	s.Chain = c
	return nil
}
