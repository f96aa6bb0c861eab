package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/botsim/internal/metrics"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/sim"
)

// Registry names the scene builders and metrics an experiment can use.
type Registry struct {
	scenes  *scenario.Registry
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes:  scenario.NewRegistry(),
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(0.5) }
	r.metrics["motor_effort"] = func() sim.Metric { return metrics.NewMotorEffort() }
	r.metrics["contacts"] = func() sim.Metric { return metrics.NewContactCount() }
	r.metrics["max_penetration"] = func() sim.Metric { return metrics.NewMaxPenetration() }
	r.metrics["solver_iterations"] = func() sim.Metric { return metrics.NewSolverIterations() }

	return r
}

func (r *Registry) Scenes() *scenario.Registry { return r.scenes }

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
