package contact

import (
	"fmt"

	"github.com/san-kum/botsim/internal/body"
)

func DiscDisc(d1, d2 *body.Body) ([]Data, error) {
	midline := d1.Position.Sub(d2.Position)
	distance := midline.Magnitude()
	if distance == 0 {
		return nil, fmt.Errorf("%w: discs %s and %s share a center", ErrDegenerateGeometry, d1.ID, d2.ID)
	}
	if distance >= d1.Shape.Radius+d2.Shape.Radius {
		return nil, nil
	}

	normal := midline.Scale(1 / distance)
	return []Data{{
		Normal:      normal,
		Point:       d2.Position.Add(normal.Scale(d2.Shape.Radius)),
		Penetration: d1.Shape.Radius + d2.Shape.Radius - distance,
	}}, nil
}
