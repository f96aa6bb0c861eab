package world

import (
	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/force"
	"github.com/san-kum/botsim/internal/geom"
)

const (
	DragStiffness  = 100.0
	DragRestLength = 5.0
)

// DragHandle pulls a body toward a movable anchor through a spring.
type DragHandle struct {
	anchor *body.Body
	Target body.ID
	Spring *force.Spring
}

// Move relocates the anchor.
func (h *DragHandle) Move(p geom.Vector) { h.anchor.Position = p }

func (h *DragHandle) Anchor() geom.Vector { return h.anchor.Position }

// BeginDrag attaches a handle to the body under p, if any.
func (w *World) BeginDrag(p geom.Vector) (*DragHandle, bool, error) {
	local, id, ok := w.ObjectUnderPoint(p)
	if !ok {
		return nil, false, nil
	}
	anchor := body.NewParticle(p)
	anchor.Label = "drag"
	if _, err := w.AddObject(anchor); err != nil {
		return nil, false, err
	}
	s := force.NewSpring(anchor.ID, geom.Vector{}, id, local, DragStiffness, DragRestLength)
	if err := w.AddSpring(s); err != nil {
		_ = w.RemoveObject(anchor.ID)
		return nil, false, err
	}
	return &DragHandle{anchor: anchor, Target: id, Spring: s}, true, nil
}

// EndDrag removes the anchor and its spring.
func (w *World) EndDrag(h *DragHandle) error {
	return w.RemoveObject(h.anchor.ID)
}
