package world_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/contact"
	"github.com/san-kum/botsim/internal/force"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/resolver"
	"github.com/san-kum/botsim/internal/world"
)

func newWorld(cfg world.Config) *world.World {
	w, err := world.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return w
}

type reentrantMotor struct {
	w   *world.World
	err error
}

func (m *reentrantMotor) TorqueFor(float64) float64 {
	_, m.err = m.w.AddObject(body.NewDisc(geom.V(10, 10), 1, 1))
	return 0
}

var _ = Describe("World", func() {
	var w *world.World

	BeforeEach(func() {
		w = newWorld(world.DefaultConfig())
	})

	Describe("construction", func() {
		It("starts idle with four walls and no stats", func() {
			Expect(w.State()).To(Equal(world.Idle))
			Expect(w.Walls()).To(HaveLen(4))
			Expect(w.Bodies()).To(HaveLen(4))
			Expect(w.Stats()).To(BeEmpty())
		})
	})

	Describe("AddObject", func() {
		It("rejects duplicate ids", func() {
			d := body.NewDisc(geom.V(50, 50), 1, 1)
			_, err := w.AddObject(d)
			Expect(err).NotTo(HaveOccurred())

			_, err = w.AddObject(d)
			Expect(err).To(MatchError(world.ErrDuplicateID))
		})

		It("rejects bodies that cannot be simulated", func() {
			_, err := w.AddObject(body.NewDisc(geom.V(50, 50), 1, 0))
			Expect(err).To(MatchError(world.ErrInvalidBody))
		})
	})

	Describe("Step", func() {
		It("accelerates a free body by gravity only", func() {
			d := body.NewDisc(geom.V(50, 50), 1, 2)
			_, err := w.AddObject(d)
			Expect(err).NotTo(HaveOccurred())

			dt := 0.01
			Expect(w.Step(dt)).To(Succeed())

			want := -world.DefaultGravity * dt * math.Pow(body.DefaultLinearDamping, dt)
			Expect(d.Velocity.Y).To(BeNumerically("~", want, 1e-12))
			Expect(d.Velocity.X).To(BeZero())
			Expect(d.Position.X).To(Equal(50.0))
			Expect(w.StepCount()).To(Equal(1))
			Expect(w.Time()).To(BeNumerically("~", dt, 1e-12))
		})

		It("rejects a non-positive timestep", func() {
			Expect(w.Step(0)).To(MatchError(world.ErrInvalidStep))
			Expect(w.Step(math.NaN())).To(MatchError(world.ErrInvalidStep))
		})

		It("brings a dropped disc to rest on the floor", func() {
			d := body.NewDisc(geom.V(50, 5), 1, 1)
			_, err := w.AddObject(d)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 600; i++ {
				Expect(w.Step(0.01)).To(Succeed())
			}
			Expect(d.Position.Y).To(BeNumerically(">", 1-2*resolver.DefaultTolerance))
			Expect(d.Position.Y).To(BeNumerically("<", 1.01))
			Expect(math.Abs(d.Velocity.Y)).To(BeNumerically("<", 0.2))
		})

		It("surfaces degenerate geometry with the failing stage", func() {
			_, err := w.AddObject(body.NewDisc(geom.V(50, 50), 1, 1))
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddObject(body.NewDisc(geom.V(50, 50), 1, 1))
			Expect(err).NotTo(HaveOccurred())

			err = w.Step(0.01)
			Expect(err).To(MatchError(contact.ErrDegenerateGeometry))
			var se *world.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(world.StageDetect))
			Expect(w.State()).To(Equal(world.Idle))
		})

		It("surfaces solver non-convergence", func() {
			cfg := world.DefaultConfig()
			cfg.Resolver.MaxPositionIterations = 0
			w = newWorld(cfg)
			_, err := w.AddObject(body.NewDisc(geom.V(50, 50), 1, 1))
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddObject(body.NewDisc(geom.V(50, 51), 1, 1))
			Expect(err).NotTo(HaveOccurred())

			err = w.Step(0.01)
			Expect(err).To(MatchError(resolver.ErrConvergence))
		})

		It("refuses mutation from inside a step", func() {
			d := body.NewDisc(geom.V(50, 50), 1, 1)
			m := &reentrantMotor{w: w}
			d.Motor = m
			_, err := w.AddObject(d)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.Step(0.01)).To(Succeed())
			Expect(m.err).To(MatchError(world.ErrBusy))
		})
	})

	Describe("assemblies", func() {
		It("never reports contacts between members", func() {
			a := world.NewAssembly("pair")
			b1 := a.AddBody(body.NewDisc(geom.V(50, 50), 1, 1))
			b2 := a.AddBody(body.NewDisc(geom.V(50, 50.5), 1, 1))
			Expect(w.AddAssembly(a)).To(Succeed())
			Expect(w.SameAssembly(b1.ID, b2.ID)).To(BeTrue())

			Expect(w.Step(0.01)).To(Succeed())
			for _, c := range w.Contacts() {
				Expect(c.Involves(b1.ID) && c.Involves(b2.ID)).To(BeFalse())
			}
		})

		It("keeps only ids once added and lists assemblies in order", func() {
			var added []*world.Assembly
			for _, name := range []string{"c", "a", "d", "b", "e"} {
				a := world.NewAssembly(name)
				a.AddBody(body.NewDisc(geom.V(20+float64(len(added))*10, 50), 1, 1))
				Expect(a.Bodies()).To(HaveLen(1))
				Expect(w.AddAssembly(a)).To(Succeed())
				Expect(a.Bodies()).To(BeEmpty())
				Expect(a.IDs()).To(HaveLen(1))
				added = append(added, a)
			}
			for range 3 {
				Expect(w.Assemblies()).To(Equal(added))
			}
			Expect(w.AddAssembly(added[0])).To(MatchError(world.ErrDuplicateID))
		})

		It("adds nothing when a member is invalid", func() {
			a := world.NewAssembly("broken")
			a.AddBody(body.NewDisc(geom.V(50, 50), 1, 1))
			a.AddBody(body.NewBox(geom.V(60, 50), 0, 1, 1))
			Expect(w.AddAssembly(a)).To(MatchError(world.ErrInvalidBody))
			Expect(w.Bodies()).To(HaveLen(4))
		})

		It("turns a stretched joint into a pseudo-contact", func() {
			a := world.NewAssembly("jointed")
			b1 := a.AddBody(body.NewBox(geom.V(50, 50), 1, 1, 1))
			b2 := a.AddBody(body.NewDisc(geom.V(55, 50), 0.5, 1))
			a.AddJoint(contact.NewJoint(0.1, b1.ID, geom.V(1, 0), b2.ID, geom.V(0, 0)))
			Expect(w.AddAssembly(a)).To(Succeed())

			Expect(w.Step(0.001)).To(Succeed())
			contacts := w.Contacts()
			Expect(contacts).To(HaveLen(1))
			Expect(contacts[0].Penetration).To(BeNumerically("~", 4, 0.01))

			// the solver pulled the joint points together
			b1Now, _ := w.Body(b1.ID)
			b2Now, _ := w.Body(b2.ID)
			gap := b2Now.ToWorld(geom.V(0, 0)).Sub(b1Now.ToWorld(geom.V(1, 0))).Magnitude()
			Expect(gap).To(BeNumerically("<", resolver.DefaultTolerance))
		})
	})

	Describe("RemoveObject", func() {
		It("prunes springs, joints and membership", func() {
			a := world.NewAssembly("bot")
			b1 := a.AddBody(body.NewBox(geom.V(50, 50), 2, 1, 5))
			b2 := a.AddBody(body.NewDisc(geom.V(48, 48), 1, 1))
			a.AddSpring(force.NewSpring(b1.ID, geom.V(-2, 0), b2.ID, geom.V(0, 0), 10, 2))
			a.AddJoint(contact.NewJoint(0.1, b1.ID, geom.V(-2, -2), b2.ID, geom.V(0, 0)))
			Expect(w.AddAssembly(a)).To(Succeed())

			Expect(w.RemoveObject(b2.ID)).To(Succeed())
			Expect(w.Springs()).To(BeEmpty())
			Expect(w.Joints()).To(BeEmpty())
			Expect(a.Contains(b2.ID)).To(BeFalse())
			Expect(a.IDs()).To(ConsistOf(b1.ID))
			Expect(a.Springs).To(BeEmpty())
			Expect(a.Joints).To(BeEmpty())
			_, ok := w.Body(b2.ID)
			Expect(ok).To(BeFalse())

			Expect(w.RemoveObject(b2.ID)).To(MatchError(world.ErrUnknownBody))
		})
	})

	Describe("ObjectUnderPoint", func() {
		It("returns the first body in insertion order", func() {
			first := body.NewDisc(geom.V(50, 50), 2, 1)
			second := body.NewBox(geom.V(51, 50), 2, 2, 1)
			_, _ = w.AddObject(first)
			_, _ = w.AddObject(second)

			local, id, ok := w.ObjectUnderPoint(geom.V(51, 50))
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(first.ID))
			Expect(local.X).To(BeNumerically("~", 1, 1e-12))

			_, _, ok = w.ObjectUnderPoint(geom.V(10, 10))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("clears everything but the walls", func() {
			_, _ = w.AddObject(body.NewDisc(geom.V(50, 50), 1, 1))
			Expect(w.Step(0.01)).To(Succeed())

			Expect(w.Reset()).To(Succeed())
			Expect(w.Bodies()).To(HaveLen(4))
			Expect(w.StepCount()).To(BeZero())
			Expect(w.Contacts()).To(BeEmpty())
		})
	})

	Describe("dragging", func() {
		It("pulls the grabbed body and cleans up afterwards", func() {
			d := body.NewDisc(geom.V(50, 50), 2, 1)
			_, _ = w.AddObject(d)

			h, ok, err := w.BeginDrag(geom.V(50, 51))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(h.Target).To(Equal(d.ID))
			Expect(w.Springs()).To(HaveLen(1))

			h.Move(geom.V(80, 51))
			for i := 0; i < 10; i++ {
				Expect(w.Step(0.01)).To(Succeed())
			}
			Expect(d.Velocity.X).To(BeNumerically(">", 0))

			Expect(w.EndDrag(h)).To(Succeed())
			Expect(w.Springs()).To(BeEmpty())
			Expect(w.Bodies()).To(HaveLen(5))
		})

		It("does nothing on empty space", func() {
			_, ok, err := w.BeginDrag(geom.V(10, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Stats", func() {
		It("lists non-plane bodies", func() {
			d := body.NewDisc(geom.V(50, 50), 1, 1)
			d.Label = "wheel"
			_, _ = w.AddObject(d)
			stats := w.Stats()
			Expect(stats).To(HaveLen(1))
			Expect(stats[0]).To(ContainSubstring("wheel"))
			Expect(stats[0]).To(ContainSubstring("50.00"))
		})
	})

	Describe("Fingerprint", func() {
		build := func() *world.World {
			nw := newWorld(world.DefaultConfig())
			_, _ = nw.AddObject(body.NewBox(geom.V(30, 20), 2, 1, 3))
			_, _ = nw.AddObject(body.NewDisc(geom.V(31, 25), 1, 1))
			for i := 0; i < 50; i++ {
				Expect(nw.Step(0.016)).To(Succeed())
			}
			return nw
		}

		It("is reproducible for identical worlds", func() {
			Expect(build().Fingerprint()).To(Equal(build().Fingerprint()))
		})

		It("changes as the world moves", func() {
			nw := build()
			before := nw.Fingerprint()
			Expect(nw.Step(0.016)).To(Succeed())
			Expect(nw.Fingerprint()).NotTo(Equal(before))
		})
	})
})
