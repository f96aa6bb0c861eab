package metrics

import (
	"math"

	"github.com/san-kum/botsim/internal/world"
)

// MechanicalEnergy is kinetic energy plus gravitational potential energy
// measured from y = 0, summed over finite-mass bodies.
func MechanicalEnergy(w *world.World) float64 {
	g := w.Config().Gravity
	total := 0.0
	for _, b := range w.Bodies() {
		if b.Static() || b.Mass == 0 {
			continue
		}
		total += b.KineticEnergy() + b.Mass*g*b.Position.Y
	}
	return total
}

// KineticEnergy sums KineticEnergy over finite-mass bodies.
func KineticEnergy(w *world.World) float64 {
	total := 0.0
	for _, b := range w.Bodies() {
		if b.Static() {
			continue
		}
		total += b.KineticEnergy()
	}
	return total
}

type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *world.World) {
	e.totalEnergy += MechanicalEnergy(w)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the first observed
// mechanical energy. Damping and inelastic contacts make it grow; a value
// well above one usually means a motor is feeding energy in or the solver
// is injecting it.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *world.World) {
	energy := MechanicalEnergy(w)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
