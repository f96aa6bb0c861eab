// Package experiment ties a config to a built scene and a runner.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/sim"
	"github.com/san-kum/botsim/internal/world"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      *logging.Logger
	scene    *scenario.Scene
	runner   *sim.Runner
}

func New(cfg *config.Config, log *logging.Logger) *Experiment {
	if log == nil {
		log = logging.Nop()
	}
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      log,
	}
}

// SimConfig extracts the runner settings from cfg.
func SimConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:          cfg.Run.Dt,
		Duration:    cfg.Run.Duration,
		Seed:        cfg.Run.Seed,
		SampleEvery: cfg.Run.SampleEvery,
	}
}

// Setup builds the scene and a runner carrying the given metrics, or every
// registered metric when none are named.
func (e *Experiment) Setup(metricNames ...string) error {
	scene, err := e.registry.Scenes().Build(e.cfg, e.log)
	if err != nil {
		return err
	}

	var ms []sim.Metric
	if len(metricNames) == 0 {
		ms = e.registry.DefaultMetrics()
	}
	for _, name := range metricNames {
		m, err := e.registry.GetMetric(name)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}

	e.scene = scene
	e.runner = sim.New(ms...)
	e.runner.SetLogger(e.log)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, e.scene.World, SimConfig(e.cfg))
}

func (e *Experiment) Scene() *scenario.Scene { return e.scene }

// GetRunner returns the underlying runner for adding observers.
func (e *Experiment) GetRunner() *sim.Runner { return e.runner }

func (e *Experiment) Registry() *Registry { return e.registry }

// RunEnsemble builds n copies of cfg, run i seeded with cfg.Run.Seed+i, and
// runs them concurrently with at most limit in flight.
func RunEnsemble(ctx context.Context, cfg *config.Config, n, limit int, log *logging.Logger) ([]*sim.Result, error) {
	reg := NewRegistry()
	ens := sim.NewEnsemble(reg.DefaultMetrics, limit)
	return ens.Run(ctx, n, func(run int) (*world.World, sim.Config, error) {
		c := cfg.Clone()
		c.Run.Seed = cfg.Run.Seed + int64(run)
		scene, err := scenario.NewRegistry().Build(c, log)
		if err != nil {
			return nil, sim.Config{}, err
		}
		return scene.World, SimConfig(c), nil
	})
}
