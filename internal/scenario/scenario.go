// Package scenario turns a config into a populated world: wheeled bots,
// projectiles, box stacks, jointed chains and rubble.
package scenario

import (
	"fmt"
	"sort"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/resolver"
	"github.com/san-kum/botsim/internal/world"
)

// Scene is a built world plus handles on the assemblies a caller may want
// to drive afterwards.
type Scene struct {
	Name        string
	World       *world.World
	Bots        []*Bot
	Projectiles []*Projectile
	Chain       *Chain

	damping config.WorldConfig
}

// Builder adds one kind of content to a scene. Builders with nothing
// configured must leave the scene untouched.
type Builder func(s *Scene, cfg *config.Config) error

type Registry struct {
	builders map[string]Builder
	order    []string
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	r.Register("stack", buildStack)
	r.Register("rubble", buildRubble)
	r.Register("chain", buildChain)
	r.Register("bots", buildBots)
	r.Register("projectiles", buildProjectiles)

	return r
}

// Register adds or replaces a builder. New builders run after existing ones.
func (r *Registry) Register(name string, b Builder) {
	if _, ok := r.builders[name]; !ok {
		r.order = append(r.order, name)
	}
	r.builders[name] = b
}

func (r *Registry) Get(name string) (Builder, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown builder: %s", name)
	}
	return b, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorldConfig maps file configuration onto the engine's.
func WorldConfig(cfg *config.Config) world.Config {
	return world.Config{
		Gravity: cfg.World.Gravity,
		Width:   cfg.World.Width,
		Height:  cfg.World.Height,
		Resolver: resolver.Config{
			Restitution:           cfg.Solver.Restitution,
			Tolerance:             cfg.Solver.Tolerance,
			VelocityLimit:         cfg.Solver.VelocityLimit,
			AngularLimit:          cfg.Solver.AngularLimit,
			Friction:              cfg.Solver.Friction,
			MaxPositionIterations: cfg.Solver.MaxPositionIterations,
			MaxVelocityIterations: cfg.Solver.MaxVelocityIterations,
			VelocityEpsilon:       cfg.Solver.VelocityEpsilon,
		},
	}
}

// Build creates a fresh world and runs every registered builder over it in
// registration order.
func (r *Registry) Build(cfg *config.Config, log *logging.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	w, err := world.New(WorldConfig(cfg), world.WithLogger(log))
	if err != nil {
		return nil, err
	}
	s := &Scene{Name: cfg.Scene, World: w, damping: cfg.World}

	for _, name := range r.order {
		if err := r.builders[name](s, cfg); err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
	}
	applyDamping(w, cfg.World)

	log.Info("scene built",
		logging.String("scene", cfg.Scene),
		logging.Int("bodies", len(w.Bodies())),
		logging.Int("assemblies", len(w.Assemblies())))
	return s, nil
}

// Build uses the default registry.
func Build(cfg *config.Config, log *logging.Logger) (*Scene, error) {
	return NewRegistry().Build(cfg, log)
}

func applyDamping(w *world.World, wc config.WorldConfig) {
	for _, b := range w.Bodies() {
		if b.Static() {
			continue
		}
		b.LinearDamping = wc.LinearDamping
		b.AngularDamping = wc.AngularDamping
	}
}

// Reverse flips the drive direction of every bot.
func (s *Scene) Reverse() {
	for _, b := range s.Bots {
		b.Reverse()
	}
}
