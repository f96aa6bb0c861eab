package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/world"
)

// Sample is the kinematic state of one body at one instant.
type Sample struct {
	ID    body.ID
	Label string
	Kind  body.Kind
	X     float64
	Y     float64
	Theta float64
	VX    float64
	VY    float64
	Omega float64
}

func SampleOf(b *body.Body) Sample {
	return Sample{
		ID:    b.ID,
		Label: b.Label,
		Kind:  b.Kind(),
		X:     b.Position.X,
		Y:     b.Position.Y,
		Theta: b.Rotation.Theta(),
		VX:    b.Velocity.X,
		VY:    b.Velocity.Y,
		Omega: b.AngularVelocity,
	}
}

func (s Sample) IsValid() bool {
	for _, v := range [...]float64{s.X, s.Y, s.Theta, s.VX, s.VY, s.Omega} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Component returns one named field: x, y, theta, vx, vy or omega.
func (s Sample) Component(name string) (float64, error) {
	switch name {
	case "x":
		return s.X, nil
	case "y":
		return s.Y, nil
	case "theta":
		return s.Theta, nil
	case "vx":
		return s.VX, nil
	case "vy":
		return s.VY, nil
	case "omega":
		return s.Omega, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
}

var Components = []string{"x", "y", "theta", "vx", "vy", "omega"}

type Frame struct {
	Step   int
	Time   float64
	Bodies []Sample
}

type Metric interface {
	Name() string
	Observe(w *world.World)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *world.World)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(w *world.World)

func (f ObserverFunc) OnStep(w *world.World) { f(w) }

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64

	// SampleEvery records a frame every n steps. Zero behaves as one.
	SampleEvery int
	// IncludeStatic records infinite-mass bodies such as walls.
	IncludeStatic bool
}

type Result struct {
	Frames      []Frame
	Metrics     map[string]float64
	StepsTaken  int
	Fingerprint uint64
}

func (r *Result) Times() []float64 {
	times := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		times[i] = f.Time
	}
	return times
}

// Series extracts one component of one body across every frame. Frames in
// which the body is absent are skipped.
func (r *Result) Series(id body.ID, component string) ([]float64, error) {
	if _, err := (Sample{}).Component(component); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(r.Frames))
	for _, f := range r.Frames {
		for _, s := range f.Bodies {
			if s.ID != id {
				continue
			}
			v, _ := s.Component(component)
			out = append(out, v)
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	return out, nil
}

// Find resolves a body by id or label in the first frame.
func (r *Result) Find(ref string) (body.ID, bool) {
	if len(r.Frames) == 0 {
		return "", false
	}
	for _, s := range r.Frames[0].Bodies {
		if string(s.ID) == ref || s.Label == ref {
			return s.ID, true
		}
	}
	return "", false
}
