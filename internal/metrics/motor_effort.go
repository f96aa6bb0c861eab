package metrics

import (
	"math"

	"github.com/san-kum/botsim/internal/world"
)

// MotorEffort averages, per step, the summed magnitude of torque the motors
// would apply at each driven body's current angular velocity. Governed
// motors above their limit contribute nothing.
type MotorEffort struct {
	name    string
	sum     float64
	samples int
}

func NewMotorEffort() *MotorEffort {
	return &MotorEffort{
		name: "motor_effort",
	}
}

func (c *MotorEffort) Name() string {
	return c.name
}

func (c *MotorEffort) Observe(w *world.World) {
	for _, b := range w.Bodies() {
		if b.Motor == nil {
			continue
		}
		c.sum += math.Abs(b.Motor.TorqueFor(b.AngularVelocity))
	}
	c.samples++
}

func (c *MotorEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *MotorEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
