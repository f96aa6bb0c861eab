package control

import (
	"math"

	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/world"
)

// DefaultMaxTorque caps the cruise output when the bot's motor has none.
const DefaultMaxTorque = 500.0

func DefaultGains() Gains { return Gains{Kp: 150, Ki: 20, Kd: 0} }

// Cruise holds a bot's chassis at a horizontal speed by rewriting its
// motor torque after every step. Positive speeds are toward +x.
type Cruise struct {
	bot *scenario.Bot
	pid *PID
}

func NewCruise(bot *scenario.Bot, speed float64, g Gains) *Cruise {
	limit := math.Abs(bot.Motor.Torque)
	if limit == 0 {
		limit = DefaultMaxTorque
	}
	return &Cruise{bot: bot, pid: NewPID(g, speed).Limit(limit)}
}

func (c *Cruise) PID() *PID { return c.pid }

func (c *Cruise) MaxTorque() float64 { return c.pid.OutMax }

// OnStep implements sim.Observer.
func (c *Cruise) OnStep(w *world.World) {
	u := c.pid.Compute(c.bot.Chassis.Velocity.X, w.Time())
	// negative wheel torque rolls toward +x
	c.bot.Motor.Torque = -u
}
