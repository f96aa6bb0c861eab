// Package resolver implements a sequential-impulse contact solver. Each step
// first removes interpenetration one contact at a time, worst first, and then
// removes closing velocity with friction the same way.
package resolver

import (
	"errors"
	"fmt"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/contact"
)

var (
	ErrConvergence = errors.New("resolver: iteration limit reached")
	ErrMissingBody = errors.New("resolver: contact references unknown body")
)

// ConvergenceError reports which phase ran out of iterations.
type ConvergenceError struct {
	Phase      string
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("resolver: %s phase did not converge after %d iterations", e.Phase, e.Iterations)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

// Store resolves body ids.
type Store interface {
	Body(id body.ID) (*body.Body, bool)
}

// Stats describes the work done by the last Resolve call.
type Stats struct {
	Contacts           int
	PositionIterations int
	VelocityIterations int
	MaxPenetration     float64
}

type Resolver struct {
	cfg  Config
	last Stats
}

func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

func (r *Resolver) Config() Config { return r.cfg }
func (r *Resolver) Stats() Stats   { return r.last }

// Resolve corrects positions and then velocities of the bodies in contacts.
func (r *Resolver) Resolve(contacts []contact.Contact, store Store) error {
	r.last = Stats{}
	if len(contacts) == 0 {
		return nil
	}

	prepared, err := r.Prepare(contacts, store)
	if err != nil {
		return err
	}
	r.last.Contacts = len(prepared)
	for _, p := range prepared {
		if p.Penetration > r.last.MaxPenetration {
			r.last.MaxPenetration = p.Penetration
		}
	}

	if r.last.PositionIterations, err = r.AdjustPositions(prepared); err != nil {
		return err
	}
	r.last.VelocityIterations, err = r.AdjustVelocities(prepared)
	return err
}

// Prepare binds contacts to their bodies. Contacts between two immovable
// bodies are dropped.
func (r *Resolver) Prepare(contacts []contact.Contact, store Store) ([]*Prepared, error) {
	out := make([]*Prepared, 0, len(contacts))
	for _, c := range contacts {
		b1, ok := store.Body(c.Body1)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingBody, c.Body1)
		}
		b2, ok := store.Body(c.Body2)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingBody, c.Body2)
		}
		if b1.Static() && b2.Static() {
			continue
		}
		out = append(out, newPrepared(c, b1, b2, r.cfg))
	}
	return out, nil
}

// AdjustPositions repeatedly resolves the deepest contact until every
// penetration is below tolerance. It returns the number of corrections made.
func (r *Resolver) AdjustPositions(contacts []*Prepared) (int, error) {
	for iter := 0; ; iter++ {
		var worst *Prepared
		for _, c := range contacts {
			if worst == nil || c.Penetration > worst.Penetration {
				worst = c
			}
		}
		if worst == nil || worst.Penetration < r.cfg.Tolerance {
			return iter, nil
		}
		if iter >= r.cfg.MaxPositionIterations {
			return iter, &ConvergenceError{Phase: "position", Iterations: iter}
		}

		ch := worst.PositionChange(r.cfg.AngularLimit)
		applyPositionChange(worst, ch)
		PropagatePosition(contacts, worst, ch)
	}
}

// AdjustVelocities repeatedly applies an impulse at the contact needing the
// largest velocity change until none exceeds the velocity epsilon.
func (r *Resolver) AdjustVelocities(contacts []*Prepared) (int, error) {
	for iter := 0; ; iter++ {
		var worst *Prepared
		largest := r.cfg.VelocityEpsilon
		for _, c := range contacts {
			if c.Desired > largest {
				worst, largest = c, c.Desired
			}
		}
		if worst == nil {
			return iter, nil
		}
		if iter >= r.cfg.MaxVelocityIterations {
			return iter, &ConvergenceError{Phase: "velocity", Iterations: iter}
		}

		ch := worst.ApplyVelocityChange(r.cfg.Friction)
		PropagateVelocity(contacts, worst, ch, r.cfg)
	}
}
