// Package world owns every body, spring, joint and assembly of a simulation
// and runs the per-step pipeline over them.
package world

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/contact"
	"github.com/san-kum/botsim/internal/force"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/resolver"
)

const (
	DefaultGravity = 9.81
	DefaultWidth   = 137.0
	DefaultHeight  = 100.0
)

type Config struct {
	Gravity  float64
	Width    float64
	Height   float64
	Resolver resolver.Config
}

func DefaultConfig() Config {
	return Config{
		Gravity:  DefaultGravity,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Resolver: resolver.DefaultConfig(),
	}
}

// State of a World. Step moves Idle to Stepping and back.
type State int

const (
	Idle State = iota
	Stepping
)

func (s State) String() string {
	if s == Stepping {
		return "stepping"
	}
	return "idle"
}

type Option func(*World)

func WithLogger(l *logging.Logger) Option {
	return func(w *World) { w.log = l }
}

// WithContactTable replaces the narrow-phase dispatch table.
func WithContactTable(t contact.Table) Option {
	return func(w *World) { w.generator = contact.NewGeneratorWithTable(t) }
}

// World is not safe for concurrent use. Independent worlds may run on
// separate goroutines.
type World struct {
	cfg       Config
	log       *logging.Logger
	gravity   force.Gravity
	generator *contact.Generator
	resolver  *resolver.Resolver

	state State

	bodies     map[body.ID]*body.Body
	order      []body.ID
	springs    []*force.Spring
	joints     []*contact.Joint
	assemblies []*Assembly
	assemblyOf map[body.ID]*Assembly
	walls      []body.ID

	contacts []contact.Contact
	steps    int
	time     float64
}

// New returns an idle world enclosed by four walls.
func New(cfg Config, opts ...Option) (*World, error) {
	w := &World{
		cfg:       cfg,
		log:       logging.Nop(),
		gravity:   force.Gravity{G: cfg.Gravity},
		generator: contact.NewGenerator(),
		resolver:  resolver.New(cfg.Resolver),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.reset(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) Config() Config { return w.cfg }
func (w *World) State() State   { return w.state }
func (w *World) StepCount() int { return w.steps }
func (w *World) Time() float64  { return w.time }

// Reset discards every body, spring, joint and assembly and re-adds the walls.
func (w *World) Reset() error {
	if w.state != Idle {
		return ErrBusy
	}
	return w.reset()
}

func (w *World) reset() error {
	w.bodies = make(map[body.ID]*body.Body)
	w.order = nil
	w.springs = nil
	w.joints = nil
	w.assemblies = nil
	w.assemblyOf = make(map[body.ID]*Assembly)
	w.contacts = nil
	w.walls = nil
	w.steps = 0
	w.time = 0

	width, height := w.cfg.Width, w.cfg.Height
	walls := []struct {
		label  string
		point  geom.Vector
		normal geom.Vector
		half   float64
	}{
		{"floor", geom.V(width/2, 0), geom.V(0, 1), width / 2},
		{"ceiling", geom.V(width/2, height), geom.V(0, -1), width / 2},
		{"left wall", geom.V(0, height/2), geom.V(1, 0), height / 2},
		{"right wall", geom.V(width, height/2), geom.V(-1, 0), height / 2},
	}
	for _, spec := range walls {
		p, err := body.NewPlane(spec.point, spec.normal, spec.half)
		if err != nil {
			return err
		}
		p.Label = spec.label
		if _, err := w.AddObject(p); err != nil {
			return err
		}
		w.walls = append(w.walls, p.ID)
	}
	return nil
}

// Walls returns the boundary plane ids: floor, ceiling, left, right.
func (w *World) Walls() []body.ID { return w.walls }

// AddObject takes ownership of b.
func (w *World) AddObject(b *body.Body) (body.ID, error) {
	if w.state != Idle {
		return "", ErrBusy
	}
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if _, ok := w.bodies[b.ID]; ok {
		return "", fmt.Errorf("%w: body %s", ErrDuplicateID, b.ID)
	}
	w.bodies[b.ID] = b
	w.order = append(w.order, b.ID)
	return b.ID, nil
}

// RemoveObject deletes a body along with every spring and joint attached to
// it and its assembly membership.
func (w *World) RemoveObject(id body.ID) error {
	if w.state != Idle {
		return ErrBusy
	}
	if _, ok := w.bodies[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	delete(w.bodies, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	springs := make([]*force.Spring, 0, len(w.springs))
	for _, s := range w.springs {
		if !s.Involves(id) {
			springs = append(springs, s)
		}
	}
	w.springs = springs

	joints := make([]*contact.Joint, 0, len(w.joints))
	for _, j := range w.joints {
		if !j.Involves(id) {
			joints = append(joints, j)
		}
	}
	w.joints = joints

	if a, ok := w.assemblyOf[id]; ok {
		a.remove(id)
		delete(w.assemblyOf, id)
	}
	return nil
}

// AddAssembly adds every body of a along with its springs and joints. It
// either adds everything or nothing.
func (w *World) AddAssembly(a *Assembly) error {
	if w.state != Idle {
		return ErrBusy
	}
	for _, o := range w.assemblies {
		if o.ID == a.ID {
			return fmt.Errorf("%w: assembly %s", ErrDuplicateID, a.ID)
		}
	}

	seen := make(map[body.ID]bool, len(a.pending))
	for _, b := range a.pending {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		if _, ok := w.bodies[b.ID]; ok || seen[b.ID] {
			return fmt.Errorf("%w: body %s", ErrDuplicateID, b.ID)
		}
		seen[b.ID] = true
	}
	known := func(id body.ID) bool {
		_, ok := w.bodies[id]
		return ok || seen[id]
	}
	for _, s := range a.Springs {
		if !known(s.Body1) || !known(s.Body2) {
			return fmt.Errorf("%w: spring in assembly %s", ErrUnknownBody, a.Name)
		}
	}
	for _, j := range a.Joints {
		if !known(j.Body1) || !known(j.Body2) {
			return fmt.Errorf("%w: joint in assembly %s", ErrUnknownBody, a.Name)
		}
	}

	for _, b := range a.pending {
		w.bodies[b.ID] = b
		w.order = append(w.order, b.ID)
		w.assemblyOf[b.ID] = a
	}
	w.springs = append(w.springs, a.Springs...)
	w.joints = append(w.joints, a.Joints...)
	w.assemblies = append(w.assemblies, a)
	a.release()

	w.log.Debug("assembly added",
		logging.String("assembly", a.Name),
		logging.Int("bodies", len(a.ids)),
		logging.Int("springs", len(a.Springs)),
		logging.Int("joints", len(a.Joints)))
	return nil
}

func (w *World) AddSpring(s *force.Spring) error {
	if w.state != Idle {
		return ErrBusy
	}
	if err := w.requireBodies(s.Body1, s.Body2); err != nil {
		return err
	}
	w.springs = append(w.springs, s)
	return nil
}

func (w *World) AddJoint(j *contact.Joint) error {
	if w.state != Idle {
		return ErrBusy
	}
	if err := w.requireBodies(j.Body1, j.Body2); err != nil {
		return err
	}
	w.joints = append(w.joints, j)
	return nil
}

func (w *World) requireBodies(ids ...body.ID) error {
	for _, id := range ids {
		if _, ok := w.bodies[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBody, id)
		}
	}
	return nil
}

func (w *World) Body(id body.ID) (*body.Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Bodies returns all bodies in insertion order.
func (w *World) Bodies() []*body.Body {
	out := make([]*body.Body, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.bodies[id])
	}
	return out
}

func (w *World) Springs() []*force.Spring { return w.springs }
func (w *World) Joints() []*contact.Joint { return w.joints }

// Assemblies returns the added assemblies in insertion order.
func (w *World) Assemblies() []*Assembly { return slices.Clone(w.assemblies) }

// SameAssembly reports whether a and b belong to one assembly.
func (w *World) SameAssembly(a, b body.ID) bool {
	aa, ok := w.assemblyOf[a]
	return ok && aa.Contains(b)
}

// Contacts returns a copy of the contacts detected by the last step.
func (w *World) Contacts() []contact.Contact {
	out := make([]contact.Contact, len(w.contacts))
	copy(out, w.contacts)
	return out
}

func (w *World) ResolverStats() resolver.Stats { return w.resolver.Stats() }

// Step advances the world by dt seconds: clear accumulators, accumulate
// forces, integrate, detect contacts, resolve them.
func (w *World) Step(dt float64) error {
	if w.state != Idle {
		return ErrBusy
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}
	w.state = Stepping
	defer func() { w.state = Idle }()

	bodies := w.Bodies()

	for _, b := range bodies {
		b.ClearAccumulators()
	}
	for _, s := range w.springs {
		if err := s.Apply(w); err != nil {
			return w.fail(StageForces, err)
		}
	}
	for _, b := range bodies {
		w.gravity.Apply(b)
	}

	for _, b := range bodies {
		b.Integrate(dt)
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
			return w.fail(StageIntegrate, fmt.Errorf("body %s diverged", b.ID))
		}
	}

	contacts, err := w.generator.Detect(w)
	if err != nil {
		return w.fail(StageDetect, err)
	}
	w.contacts = contacts

	if err := w.resolver.Resolve(contacts, w); err != nil {
		return w.fail(StageResolve, err)
	}

	w.steps++
	w.time += dt

	stats := w.resolver.Stats()
	w.log.Debug("step",
		logging.Int("step", w.steps),
		logging.Int("contacts", len(contacts)),
		logging.Int("position_iterations", stats.PositionIterations),
		logging.Int("velocity_iterations", stats.VelocityIterations))
	return nil
}

func (w *World) fail(stage Stage, err error) error {
	se := &StepError{Step: w.steps, Time: w.time, Stage: stage, Wrapped: err}
	w.log.Error("step failed", logging.Err(se))
	return se
}

// ObjectUnderPoint returns the first body, in insertion order, containing p
// and p in that body's local coordinates.
func (w *World) ObjectUnderPoint(p geom.Vector) (geom.Vector, body.ID, bool) {
	for _, id := range w.order {
		b := w.bodies[id]
		if b.IsInside(p) {
			return b.ToLocal(p), id, true
		}
	}
	return geom.Vector{}, "", false
}

// Stats returns one line per non-plane body.
func (w *World) Stats() []string {
	var out []string
	for _, b := range w.Bodies() {
		if b.Kind() == body.Plane {
			continue
		}
		name := string(b.ID)
		if b.Label != "" {
			name = b.Label
		}
		out = append(out, fmt.Sprintf("%s %s: position (%.2f, %.2f) rotation %.2f",
			b.Kind(), name, b.Position.X, b.Position.Y, b.Rotation.Theta()))
	}
	return out
}

// Fingerprint hashes the kinematic state of every body in insertion order.
// Two worlds built and stepped identically share a fingerprint.
func (w *World) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	for _, b := range w.Bodies() {
		h.WriteString(b.Kind().String())
		put(b.Position.X)
		put(b.Position.Y)
		put(b.Velocity.X)
		put(b.Velocity.Y)
		put(b.Rotation.C)
		put(b.Rotation.S)
		put(b.AngularVelocity)
	}
	return h.Sum64()
}
