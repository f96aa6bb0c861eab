// Package contact is the narrow phase. Every pairwise function follows one
// convention: the contact normal points away from its second argument toward
// its first, so moving the first body along the normal separates the pair.
package contact

import (
	"errors"
	"fmt"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
)

var (
	// ErrDegenerateGeometry is returned when no contact normal can be derived,
	// such as two disc centers that coincide exactly.
	ErrDegenerateGeometry = errors.New("contact: degenerate geometry")

	// ErrUnhandledPair is returned for a shape pair with no registered function.
	ErrUnhandledPair = errors.New("contact: unhandled shape pair")
)

// Data is one point of contact between two shapes.
type Data struct {
	Normal      geom.Vector
	Point       geom.Vector
	Penetration float64
}

// Contact is Data bound to the two bodies it was generated for. Body1 is
// pushed along Normal and Body2 against it.
type Contact struct {
	Data
	Body1, Body2 body.ID
}

func (c Contact) Involves(id body.ID) bool { return c.Body1 == id || c.Body2 == id }

func (c Contact) String() string {
	return fmt.Sprintf("%s/%s n=%v p=%v pen=%.4f", c.Body1, c.Body2, c.Normal, c.Point, c.Penetration)
}

// PairFunc computes the contacts between two bodies of fixed kinds.
type PairFunc func(a, b *body.Body) ([]Data, error)

// Flip adapts f to take its arguments in the opposite order.
func Flip(f PairFunc) PairFunc {
	return func(a, b *body.Body) ([]Data, error) {
		data, err := f(b, a)
		if err != nil {
			return nil, err
		}
		for i := range data {
			data[i].Normal = data[i].Normal.Neg()
		}
		return data, nil
	}
}

// None is the pair function for kinds that can never touch.
func None(a, b *body.Body) ([]Data, error) { return nil, nil }
