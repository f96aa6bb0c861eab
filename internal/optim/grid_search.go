// Package optim searches scene parameters for the best value of a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/botsim/internal/analysis"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/experiment"
	"github.com/san-kum/botsim/internal/logging"
)

var ErrNoRuns = errors.New("optim: no run completed")

// GridSearch tries every combination of the given values. Parameter names
// are the ones analysis.Params knows how to set.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
	log        *logging.Logger
}

func NewGridSearch(params []string, ranges [][]float64, log *logging.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if _, ok := analysis.Params[p]; !ok {
			return nil, fmt.Errorf("optim: unknown parameter %s", p)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", p)
		}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &GridSearch{paramNames: params, ranges: ranges, log: log}, nil
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search runs base once per grid point and returns the parameters giving
// the lowest (or, with Maximize, highest) value of metricName. Runs that
// fail are logged and skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	if _, err := experiment.NewRegistry().GetMetric(metricName); err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoRuns
	}
	if g.Maximize {
		best = -best
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		cfg := base.Clone()
		for k, v := range current {
			analysis.Params[k](cfg, v)
		}

		exp := experiment.New(cfg, g.log)
		if err := exp.Setup(metricName); err != nil {
			g.log.Warn("grid point skipped", logging.Any("params", current), logging.Err(err))
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.log.Warn("grid point failed", logging.Any("params", current), logging.Err(err))
			return nil
		}

		val := result.Metrics[metricName]
		if g.Maximize {
			val = -val
		}
		g.log.Debug("grid point", logging.Any("params", current), logging.Float64(metricName, result.Metrics[metricName]))
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
