package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/world"
)

// Runner drives a World through fixed steps. Cancellation is checked
// between steps, never inside one.
type Runner struct {
	metrics   []Metric
	observers []Observer
	log       *logging.Logger
}

func New(metrics ...Metric) *Runner {
	return &Runner{
		metrics:   append([]Metric(nil), metrics...),
		observers: make([]Observer, 0),
		log:       logging.Nop(),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }
func (r *Runner) SetLogger(l *logging.Logger) {
	if l != nil {
		r.log = l
	}
}

func (r *Runner) Metrics() []Metric { return r.metrics }

// Steps is the number of whole steps of length dt that fit in duration.
func Steps(cfg Config) int {
	return int(cfg.Duration/cfg.Dt + 1e-9)
}

func (r *Runner) Run(ctx context.Context, w *world.World, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := Steps(cfg)
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	result := &Result{
		Frames:  make([]Frame, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	result.Frames = append(result.Frames, capture(w, cfg))
	r.log.Debug("run started",
		logging.Int("steps", steps),
		logging.Float64("dt", cfg.Dt),
		logging.Int("bodies", len(w.Bodies())))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.finish(result, w)
			return result, ctx.Err()
		default:
		}

		if err := w.Step(cfg.Dt); err != nil {
			r.finish(result, w)
			r.log.Error("run aborted", logging.Int("step", i), logging.Err(err))
			return result, err
		}
		result.StepsTaken++

		for _, m := range r.metrics {
			m.Observe(w)
		}
		for _, obs := range r.observers {
			obs.OnStep(w)
		}

		if (i+1)%every == 0 || i == steps-1 {
			result.Frames = append(result.Frames, capture(w, cfg))
		}
	}

	r.finish(result, w)
	r.log.Info("run finished",
		logging.Int("steps", result.StepsTaken),
		logging.Uint64("fingerprint", result.Fingerprint))
	return result, nil
}

func (r *Runner) finish(result *Result, w *world.World) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Fingerprint = w.Fingerprint()
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func capture(w *world.World, cfg Config) Frame {
	bodies := w.Bodies()
	f := Frame{
		Step:   w.StepCount(),
		Time:   w.Time(),
		Bodies: make([]Sample, 0, len(bodies)),
	}
	for _, b := range bodies {
		if b.Static() && !cfg.IncludeStatic {
			continue
		}
		f.Bodies = append(f.Bodies, SampleOf(b))
	}
	return f
}

// RunWithCallback steps until duration elapses, the callback returns false
// or ctx is done. Nothing is recorded.
func (r *Runner) RunWithCallback(ctx context.Context, w *world.World, cfg Config, callback func(*world.World) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	for i, steps := 0, Steps(cfg); i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(w) {
			return nil
		}
		if err := w.Step(cfg.Dt); err != nil {
			return err
		}
		for _, m := range r.metrics {
			m.Observe(w)
		}
		for _, obs := range r.observers {
			obs.OnStep(w)
		}
	}
	return nil
}
