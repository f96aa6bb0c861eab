package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/botsim/internal/world"
)

// BuildFunc constructs the world and run settings for one ensemble member.
// Each call must return an independent World.
type BuildFunc func(run int) (*world.World, Config, error)

// Ensemble runs independent worlds concurrently. Metrics are created per run
// since they accumulate state.
type Ensemble struct {
	newMetrics func() []Metric
	limit      int
}

func NewEnsemble(newMetrics func() []Metric, limit int) *Ensemble {
	return &Ensemble{newMetrics: newMetrics, limit: limit}
}

func (e *Ensemble) Run(ctx context.Context, n int, build BuildFunc) ([]*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: ensemble size must be positive, got %d", ErrInvalidConfig, n)
	}
	results := make([]*Result, n)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			w, cfg, err := build(i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			var metrics []Metric
			if e.newMetrics != nil {
				metrics = e.newMetrics()
			}
			res, err := New(metrics...).Run(ctx, w, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
