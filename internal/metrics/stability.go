package metrics

import (
	"github.com/san-kum/botsim/internal/world"
)

// Stability is the fraction of observed steps in which every finite-mass
// body moved slower than threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *world.World) {
	s.samples++
	for _, b := range w.Bodies() {
		if b.Static() {
			continue
		}
		if b.Velocity.Magnitude() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
