package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/force"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

func newWorld(t *testing.T, bodies ...*body.Body) *world.World {
	t.Helper()
	w, err := world.New(world.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bodies {
		if _, err := w.AddObject(b); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func TestMechanicalEnergy(t *testing.T) {
	b := body.NewDisc(geom.V(10, 20), 1, 2)
	b.Velocity = geom.V(3, 4)
	w := newWorld(t, b)

	expected := 0.5*2*25 + 2*9.81*20
	if got := MechanicalEnergy(w); math.Abs(got-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, got)
	}
	if got := KineticEnergy(w); math.Abs(got-25) > 1e-9 {
		t.Errorf("expected kinetic energy 25, got %f", got)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy()
	w := newWorld(t, body.NewDisc(geom.V(10, 20), 1, 1))

	m.Observe(w)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDriftFreeFall(t *testing.T) {
	w := newWorld(t, body.NewDisc(geom.V(50, 80), 1, 1))
	m := NewEnergyDrift()

	m.Observe(w)
	for i := 0; i < 50; i++ {
		if err := w.Step(0.01); err != nil {
			t.Fatal(err)
		}
		m.Observe(w)
	}

	// linear damping bleeds a little energy; integration error adds a little
	if d := m.Value(); d <= 0 || d > 0.05 {
		t.Errorf("expected small non-zero drift in free fall, got %f", d)
	}
}

func TestStability(t *testing.T) {
	moving := body.NewDisc(geom.V(50, 50), 1, 1)
	w := newWorld(t, moving)
	s := NewStability(1.0)

	s.Observe(w)
	moving.Velocity = geom.V(5, 0)
	s.Observe(w)

	if got := s.Value(); got != 0.5 {
		t.Errorf("expected stability 0.5, got %f", got)
	}

	s.Reset()
	if s.Value() != 1.0 {
		t.Error("expected stability 1 after reset")
	}
}

func TestMotorEffort(t *testing.T) {
	wheel := body.NewDisc(geom.V(50, 50), 1, 1)
	wheel.Motor = force.NewTorqueGenerator(500, 6)
	w := newWorld(t, wheel)
	m := NewMotorEffort()

	m.Observe(w)
	wheel.AngularVelocity = 7
	m.Observe(w)

	if got := m.Value(); got != 250 {
		t.Errorf("expected mean effort 250, got %f", got)
	}
}

func TestContactMetrics(t *testing.T) {
	w := newWorld(t, body.NewBox(geom.V(50, 0.9), 2, 1, 1))
	count := NewContactCount()
	pen := NewMaxPenetration()
	iters := NewSolverIterations()

	if err := w.Step(0.016); err != nil {
		t.Fatal(err)
	}
	for _, m := range []interface{ Observe(*world.World) }{count, pen, iters} {
		m.Observe(w)
	}

	if count.Value() < 1 {
		t.Errorf("expected the box to touch the floor, got %f contacts", count.Value())
	}
	if pen.Value() <= 0 {
		t.Errorf("expected positive penetration, got %f", pen.Value())
	}
	if iters.Value() < 1 {
		t.Errorf("expected solver work, got %f iterations", iters.Value())
	}

	count.Reset()
	pen.Reset()
	iters.Reset()
	if count.Value() != 0 || pen.Value() != 0 || iters.Value() != 0 {
		t.Error("expected zero after reset")
	}
}
