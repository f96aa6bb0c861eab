package contact

import (
	"fmt"

	"github.com/san-kum/botsim/internal/body"
)

// Table maps an ordered kind pair to its pair function.
type Table [body.NumKinds][body.NumKinds]PairFunc

// DefaultTable covers every kind pair. Pairs involving a particle, and
// plane against plane, never touch.
func DefaultTable() Table {
	var t Table
	t[body.Disc][body.Disc] = DiscDisc
	t[body.Disc][body.Plane] = Flip(PlaneDisc)
	t[body.Disc][body.Box] = Flip(BoxDisc)

	t[body.Plane][body.Disc] = PlaneDisc
	t[body.Plane][body.Plane] = None
	t[body.Plane][body.Box] = PlaneBox

	t[body.Box][body.Disc] = BoxDisc
	t[body.Box][body.Plane] = Flip(PlaneBox)
	t[body.Box][body.Box] = BoxBox

	for k := 0; k < body.NumKinds; k++ {
		t[k][body.Particle] = None
		t[body.Particle][k] = None
	}
	return t
}

// Scene is the view of a world the generator scans.
type Scene interface {
	Store
	// Bodies returns all bodies in insertion order.
	Bodies() []*body.Body
	Joints() []*Joint
	SameAssembly(a, b body.ID) bool
}

type Generator struct {
	table Table
}

func NewGenerator() *Generator {
	return &Generator{table: DefaultTable()}
}

func NewGeneratorWithTable(t Table) *Generator {
	return &Generator{table: t}
}

// Pair computes the contacts between a and b with normals pointing toward a.
func (g *Generator) Pair(a, b *body.Body) ([]Data, error) {
	ka, kb := int(a.Kind()), int(b.Kind())
	if ka < 0 || ka >= body.NumKinds || kb < 0 || kb >= body.NumKinds || g.table[ka][kb] == nil {
		return nil, fmt.Errorf("%w: %v/%v", ErrUnhandledPair, a.Kind(), b.Kind())
	}
	return g.table[ka][kb](a, b)
}

// Detect scans every unordered body pair outside a shared assembly, then
// every joint, and returns the resulting contacts.
func (g *Generator) Detect(scene Scene) ([]Contact, error) {
	bodies := scene.Bodies()
	var contacts []Contact

	for i, o1 := range bodies {
		for _, o2 := range bodies[i+1:] {
			if scene.SameAssembly(o1.ID, o2.ID) {
				continue
			}
			data, err := g.Pair(o1, o2)
			if err != nil {
				return nil, err
			}
			for _, d := range data {
				contacts = append(contacts, Contact{Data: d, Body1: o1.ID, Body2: o2.ID})
			}
		}
	}

	for _, j := range scene.Joints() {
		c, ok, err := j.Contact(scene)
		if err != nil {
			return nil, err
		}
		if ok {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}
