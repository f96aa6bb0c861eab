package scenario

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

const eps = 1e-9

func emptyWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.DefaultConfig())
	require.NoError(t, err)
	return w
}

func TestNewBot(t *testing.T) {
	bot, err := NewBot(config.DefaultBot())
	require.NoError(t, err)

	assert.Len(t, bot.Assembly.Bodies(), 3)
	assert.Len(t, bot.Assembly.Springs, 4)

	assert.InDelta(t, 15, bot.Chassis.Position.X, eps)
	assert.InDelta(t, 10, bot.Chassis.Shape.HalfX, eps)
	assert.InDelta(t, 4, bot.Chassis.Shape.HalfY, eps)
	assert.InDelta(t, 10, bot.Wheels[0].Position.X, eps)
	assert.InDelta(t, 20, bot.Wheels[1].Position.X, eps)
	assert.InDelta(t, 8, bot.Wheels[0].Position.Y, eps)
	assert.Equal(t, "bot/wheel-1", bot.Wheels[1].Label)

	anchors := []geom.Vector{geom.V(-7, 0), geom.V(-3, 0), geom.V(3, 0), geom.V(7, 0)}
	for i, s := range bot.Assembly.Springs {
		assert.Equal(t, bot.Chassis.ID, s.Body1)
		assert.True(t, s.Local1.ApproxEqual(anchors[i], eps), "spring %d anchor %v", i, s.Local1)
		assert.True(t, s.Local2.IsZero())
	}
	assert.Equal(t, bot.Wheels[0].ID, bot.Assembly.Springs[1].Body2)
	assert.Equal(t, bot.Wheels[1].ID, bot.Assembly.Springs[2].Body2)
}

func TestBotSharedMotor(t *testing.T) {
	bot, err := NewBot(config.DefaultBot())
	require.NoError(t, err)

	assert.Same(t, bot.Motor, bot.Wheels[0].Motor)
	assert.Same(t, bot.Motor, bot.Wheels[1].Motor)
	assert.Nil(t, bot.Chassis.Motor)
	assert.True(t, bot.Forward())
	assert.InDelta(t, -500, bot.Motor.Torque, eps)

	bot.Reverse()
	assert.False(t, bot.Forward())
	assert.InDelta(t, 500, bot.Wheels[1].Motor.TorqueFor(0), eps)
}

func TestBotReversedSpec(t *testing.T) {
	spec := config.DefaultBot()
	spec.Motor.Reverse = true
	bot, err := NewBot(spec)
	require.NoError(t, err)
	assert.False(t, bot.Forward())
}

func TestBotRotated(t *testing.T) {
	spec := config.DefaultBot()
	spec.Rotation = math.Pi / 2
	bot, err := NewBot(spec)
	require.NoError(t, err)

	// wheel offset (-5, -4) turned a quarter counter-clockwise is (4, -5)
	assert.InDelta(t, 19, bot.Wheels[0].Position.X, 1e-9)
	assert.InDelta(t, 7, bot.Wheels[0].Position.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, bot.Chassis.Rotation.Theta(), 1e-9)
}

func TestBotInvalid(t *testing.T) {
	spec := config.DefaultBot()
	spec.Wheel.Mass = 0
	_, err := NewBot(spec)
	assert.Error(t, err)
}

func TestNewProjectile(t *testing.T) {
	p, err := NewProjectile(config.ProjectileConfig{
		X: 10, Y: 20, Angle: math.Pi / 2, Speed: 30, Length: 4, Height: 1, Mass: 0.1,
	})
	require.NoError(t, err)

	assert.InDelta(t, 10, p.Shaft.Position.X, 1e-9)
	assert.InDelta(t, 21.75, p.Shaft.Position.Y, 1e-9)
	assert.InDelta(t, 1.75, p.Shaft.Shape.HalfX, eps)
	assert.InDelta(t, 0.5, p.Shaft.Shape.HalfY, eps)
	assert.InDelta(t, 23.5, p.Tip.Position.Y, 1e-9)
	assert.InDelta(t, 0.5, p.Tip.Shape.Radius, eps)

	for _, b := range p.Assembly.Bodies() {
		assert.InDelta(t, 0, b.Velocity.X, 1e-9)
		assert.InDelta(t, 30, b.Velocity.Y, 1e-9)
	}

	require.Len(t, p.Assembly.Joints, 1)
	w := emptyWorld(t)
	require.NoError(t, w.AddAssembly(p.Assembly))
	d, _, err := p.Assembly.Joints[0].Displacement(w)
	require.NoError(t, err)
	assert.InDelta(t, 0, d.Magnitude(), 1e-9)
}

func TestProjectileTooShort(t *testing.T) {
	_, err := NewProjectile(config.ProjectileConfig{Length: 1, Height: 2, Mass: 1})
	assert.ErrorIs(t, err, ErrShortProjectile)
}

func TestSceneFire(t *testing.T) {
	cfg, err := config.GetPreset("arena", "solo")
	require.NoError(t, err)
	scene, err := Build(cfg, nil)
	require.NoError(t, err)
	before := len(scene.World.Bodies())

	spec := config.ProjectileConfig{X: 30, Y: 40, Angle: math.Pi / 2, Speed: 10, Length: 4, Height: 1, Mass: 0.5}
	p, err := scene.Fire(spec)
	require.NoError(t, err)
	assert.Len(t, scene.Projectiles, 1)
	assert.Len(t, scene.World.Bodies(), before+2)
	assert.Empty(t, p.Assembly.Bodies())
	assert.Len(t, p.Assembly.IDs(), 2)
	for _, b := range p.Parts() {
		assert.Equal(t, cfg.World.LinearDamping, b.LinearDamping)
		assert.Equal(t, cfg.World.AngularDamping, b.AngularDamping)
		assert.InDelta(t, 10, b.Velocity.Y, eps)
	}

	_, err = scene.Fire(config.ProjectileConfig{Length: 1, Height: 2, Mass: 1})
	assert.ErrorIs(t, err, ErrShortProjectile)
	assert.Len(t, scene.Projectiles, 1)
	assert.Len(t, scene.World.Bodies(), before+2)
}

func TestStack(t *testing.T) {
	w := emptyWorld(t)
	boxes, err := Stack(w, config.StackConfig{Count: 3, Size: 4, Mass: 2, X: 50})
	require.NoError(t, err)
	require.Len(t, boxes, 3)

	for i, b := range boxes {
		assert.InDelta(t, 2+4*float64(i), b.Position.Y, eps)
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, w.Step(0.016))
	}
	assert.InDelta(t, 10, boxes[2].Position.Y, 0.5, "top box should stay put")
	assert.InDelta(t, 50, boxes[2].Position.X, 0.5)
}

func TestStackEmpty(t *testing.T) {
	boxes, err := Stack(emptyWorld(t), config.StackConfig{})
	assert.NoError(t, err)
	assert.Empty(t, boxes)
}

func TestNewChain(t *testing.T) {
	c, err := NewChain(config.ChainConfig{Links: 4, LinkWidth: 6, Mass: 1, AnchorX: 60, AnchorY: 90})
	require.NoError(t, err)

	assert.Equal(t, body.Particle, c.Anchor.Kind())
	require.Len(t, c.Links, 4)
	require.Len(t, c.Assembly.Joints, 4)
	assert.InDelta(t, 90-3, c.Links[0].Position.Y, 1e-9)
	assert.InDelta(t, 90-21, c.Links[3].Position.Y, 1e-9)

	w := emptyWorld(t)
	require.NoError(t, w.AddAssembly(c.Assembly))
	for _, j := range c.Assembly.Joints {
		d, _, err := j.Displacement(w)
		require.NoError(t, err)
		assert.InDelta(t, 0, d.Magnitude(), 1e-9)
	}
}

func TestChainSwingsAndHolds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bots = nil
	cfg.Chain = config.ChainConfig{Links: 3, LinkWidth: 6, Mass: 1, AnchorX: 60, AnchorY: 90, Angle: math.Pi / 3}

	s, err := Build(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, s.Chain)

	startX := s.Chain.Links[2].Position.X
	for i := 0; i < 60; i++ {
		require.NoError(t, s.World.Step(0.016))
	}
	assert.Less(t, s.Chain.Links[2].Position.X, startX, "the chain should swing back towards vertical")
	assert.InDelta(t, 60, s.Chain.Anchor.Position.X, eps)

	for _, j := range s.Chain.Assembly.Joints {
		d, _, err := j.Displacement(s.World)
		require.NoError(t, err)
		assert.Less(t, d.Magnitude(), 1.0)
	}
}

func TestRubbleDeterministic(t *testing.T) {
	spec := config.RubbleConfig{Count: 8, MinSize: 1, MaxSize: 3, Height: 40}

	a, err := Rubble(emptyWorld(t), spec, 7)
	require.NoError(t, err)
	b, err := Rubble(emptyWorld(t), spec, 7)
	require.NoError(t, err)
	c, err := Rubble(emptyWorld(t), spec, 8)
	require.NoError(t, err)

	require.Len(t, a, 8)
	differs := false
	for i := range a {
		assert.Equal(t, a[i].Position, b[i].Position)
		assert.Equal(t, a[i].Kind(), b[i].Kind())
		if a[i].Position != c[i].Position {
			differs = true
		}
		assert.Greater(t, a[i].Position.X, 10.0)
		assert.Less(t, a[i].Position.X, 127.0)
		assert.Less(t, a[i].Position.Y, 100.0)
	}
	assert.True(t, differs, "a different seed should give a different pile")
	assert.Equal(t, body.Disc, a[0].Kind())
	assert.Equal(t, body.Box, a[1].Kind())
}

func TestRubbleInvalid(t *testing.T) {
	_, err := Rubble(emptyWorld(t), config.RubbleConfig{Count: 3, MinSize: 2, MaxSize: 1}, 1)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"bots", "chain", "projectiles", "rubble", "stack"}, r.List())

	_, err := r.Get("lasers")
	assert.Error(t, err)

	var order []string
	r.Register("marker", func(s *Scene, cfg *config.Config) error {
		order = append(order, "marker")
		assert.Len(t, s.Bots, 1, "custom builders run after the built-ins")
		return nil
	})
	_, err = r.Build(config.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"marker"}, order)
}

func TestBuildAppliesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.World.Gravity = 3
	cfg.World.LinearDamping = 0.5
	cfg.Solver.Friction = 0.9

	s, err := Build(cfg, nil)
	require.NoError(t, err)

	assert.InDelta(t, 3, s.World.Config().Gravity, eps)
	assert.InDelta(t, 0.9, s.World.Config().Resolver.Friction, eps)
	for _, b := range s.World.Bodies() {
		if !b.Static() {
			assert.InDelta(t, 0.5, b.LinearDamping, eps)
		}
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.Dt = 0
	_, err := Build(cfg, nil)
	assert.Error(t, err)
}

func TestEveryPresetBuildsAndSteps(t *testing.T) {
	for _, scene := range config.ListScenes() {
		for _, name := range config.ListPresets(scene) {
			t.Run(scene+"/"+name, func(t *testing.T) {
				cfg, err := config.GetPreset(scene, name)
				require.NoError(t, err)

				s, err := Build(cfg, nil)
				require.NoError(t, err)
				for i := 0; i < 20; i++ {
					require.NoError(t, s.World.Step(cfg.Run.Dt))
				}
			})
		}
	}
}

func TestDuelBotsDriveTowardsEachOther(t *testing.T) {
	cfg, err := config.GetPreset("arena", "duel")
	require.NoError(t, err)
	s, err := Build(cfg, nil)
	require.NoError(t, err)
	require.Len(t, s.Bots, 2)

	left, right := s.Bots[0].Chassis.Position.X, s.Bots[1].Chassis.Position.X
	for i := 0; i < 180; i++ {
		require.NoError(t, s.World.Step(cfg.Run.Dt))
	}
	assert.Greater(t, s.Bots[0].Chassis.Position.X, left+1)
	assert.Less(t, s.Bots[1].Chassis.Position.X, right-1)
}
