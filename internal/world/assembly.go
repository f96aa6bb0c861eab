package world

import (
	"slices"

	"github.com/google/uuid"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/contact"
	"github.com/san-kum/botsim/internal/force"
)

// Assembly groups bodies with the springs and joints between them. Bodies in
// one assembly never collide with each other. Once added, the World owns the
// bodies; the Assembly keeps only their ids.
type Assembly struct {
	ID      string
	Name    string
	pending []*body.Body
	ids     []body.ID
	members map[body.ID]struct{}
	Springs []*force.Spring
	Joints  []*contact.Joint
}

func NewAssembly(name string) *Assembly {
	return &Assembly{
		ID:      uuid.NewString(),
		Name:    name,
		members: make(map[body.ID]struct{}),
	}
}

func (a *Assembly) AddBody(b *body.Body) *body.Body {
	a.pending = append(a.pending, b)
	a.ids = append(a.ids, b.ID)
	a.members[b.ID] = struct{}{}
	return b
}

func (a *Assembly) AddSpring(s *force.Spring) { a.Springs = append(a.Springs, s) }
func (a *Assembly) AddJoint(j *contact.Joint) { a.Joints = append(a.Joints, j) }

func (a *Assembly) Contains(id body.ID) bool {
	_, ok := a.members[id]
	return ok
}

// IDs returns member ids in the order they were added.
func (a *Assembly) IDs() []body.ID { return slices.Clone(a.ids) }

// Bodies returns the bodies not yet handed to a World. It is empty once the
// assembly has been added; look members up by id from then on.
func (a *Assembly) Bodies() []*body.Body { return a.pending }

// release drops the body pointers after the World has taken them.
func (a *Assembly) release() { a.pending = nil }

// remove forgets id along with any spring or joint attached to it.
func (a *Assembly) remove(id body.ID) {
	delete(a.members, id)
	a.ids = slices.DeleteFunc(a.ids, func(o body.ID) bool { return o == id })
	a.Springs = slices.DeleteFunc(a.Springs, func(s *force.Spring) bool { return s.Involves(id) })
	a.Joints = slices.DeleteFunc(a.Joints, func(j *contact.Joint) bool { return j.Involves(id) })
}
