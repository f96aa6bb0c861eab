package metrics

import (
	"math"

	"github.com/san-kum/botsim/internal/world"
)

// ContactCount averages the number of contacts detected per step.
type ContactCount struct {
	name    string
	sum     int
	samples int
}

func NewContactCount() *ContactCount {
	return &ContactCount{name: "contacts"}
}

func (c *ContactCount) Name() string { return c.name }

func (c *ContactCount) Observe(w *world.World) {
	c.sum += len(w.Contacts())
	c.samples++
}

func (c *ContactCount) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *ContactCount) Reset() {
	c.sum = 0
	c.samples = 0
}

// MaxPenetration is the deepest penetration the resolver was handed over
// the run.
type MaxPenetration struct {
	name string
	max  float64
}

func NewMaxPenetration() *MaxPenetration {
	return &MaxPenetration{name: "max_penetration"}
}

func (m *MaxPenetration) Name() string { return m.name }

func (m *MaxPenetration) Observe(w *world.World) {
	m.max = math.Max(m.max, w.ResolverStats().MaxPenetration)
}

func (m *MaxPenetration) Value() float64 { return m.max }
func (m *MaxPenetration) Reset()         { m.max = 0 }

// SolverIterations averages position plus velocity iterations per step.
type SolverIterations struct {
	name    string
	sum     int
	samples int
}

func NewSolverIterations() *SolverIterations {
	return &SolverIterations{name: "solver_iterations"}
}

func (s *SolverIterations) Name() string { return s.name }

func (s *SolverIterations) Observe(w *world.World) {
	stats := w.ResolverStats()
	s.sum += stats.PositionIterations + stats.VelocityIterations
	s.samples++
}

func (s *SolverIterations) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.samples)
}

func (s *SolverIterations) Reset() {
	s.sum = 0
	s.samples = 0
}
