package scenario

import (
	"fmt"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/force"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

// Bot is a box chassis riding on two disc wheels. Each wheel hangs from a
// pair of springs and both wheels share one governed motor.
type Bot struct {
	Assembly *world.Assembly
	Chassis  *body.Body
	Wheels   [2]*body.Body
	Motor    *force.TorqueGenerator
}

func NewBot(spec config.BotConfig) (*Bot, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	p := geom.V(spec.X, spec.Y)
	rot := geom.FromAngle(spec.Rotation)
	place := func(local geom.Vector) geom.Vector { return p.Add(rot.Rotate(local)) }

	a := world.NewAssembly(spec.Name)
	bot := &Bot{Assembly: a}

	bot.Chassis = a.AddBody(body.NewBox(p, spec.Body.Width/2, spec.Body.Height/2, spec.Body.Mass))
	bot.Chassis.Label = spec.Name + "/chassis"

	for i, side := range [2]float64{-1, 1} {
		offset := geom.V(side*spec.Wheel.OffsetX, spec.Wheel.OffsetY)
		wheel := body.NewDisc(place(offset), spec.Wheel.Radius, spec.Wheel.Mass)
		wheel.Label = fmt.Sprintf("%s/wheel-%d", spec.Name, i)
		bot.Wheels[i] = a.AddBody(wheel)

		for _, s := range [2]float64{-1, 1} {
			anchor := geom.V(
				side*spec.Wheel.OffsetX+s*spec.Spring.OffsetX,
				spec.Wheel.OffsetY+spec.Spring.OffsetY,
			)
			a.AddSpring(force.NewSpring(bot.Chassis.ID, anchor, wheel.ID, geom.Vector{}, spec.Spring.K, spec.Spring.RestLength))
		}
	}

	for _, b := range a.Bodies() {
		b.Rotate(spec.Rotation)
	}

	// positive torque spins wheels counter-clockwise, which rolls towards -x
	bot.Motor = force.NewTorqueGenerator(-spec.Motor.Torque, spec.Motor.Governor)
	if spec.Motor.Reverse {
		bot.Motor.Reverse()
	}
	for _, w := range bot.Wheels {
		w.Motor = bot.Motor
	}
	return bot, nil
}

func (b *Bot) Reverse() { b.Motor.Reverse() }

// Forward reports whether the bot currently drives towards +x.
func (b *Bot) Forward() bool { return b.Motor.Torque < 0 }

func buildBots(s *Scene, cfg *config.Config) error {
	for _, spec := range cfg.Bots {
		bot, err := NewBot(spec)
		if err != nil {
			return err
		}
		if err := s.World.AddAssembly(bot.Assembly); err != nil {
			return fmt.Errorf("bot %q: %w", spec.Name, err)
		}
		s.Bots = append(s.Bots, bot)
	}
	return nil
}
