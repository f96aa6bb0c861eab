// Package automation runs scripted batches of scenes and Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/botsim/internal/analysis"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/experiment"
	"github.com/san-kum/botsim/internal/logging"
	"github.com/san-kum/botsim/internal/sim"
	"github.com/san-kum/botsim/internal/storage"
)

// Script defines a scripted simulation sequence
type Script struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Steps       []ScriptStep `yaml:"steps"`
}

// ScriptStep is one run. The scene comes from Preset or, if set, from the
// Config file; Duration, Dt and Seed override it when non-zero and Params
// are applied last.
type ScriptStep struct {
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Seed     int64              `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
	Metrics  []string           `yaml:"metrics"`
	Save     bool               `yaml:"save"`
}

// StepResult pairs a finished run with the id it was stored under, if any.
type StepResult struct {
	Scene  string
	RunID  string
	Result *sim.Result
}

// LoadScript loads a script from a YAML file
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("script %s has no steps", path)
	}
	return &script, nil
}

// Resolve turns the step into a validated scene config.
func (s ScriptStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p, err := config.FindPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if s.Config != "" {
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if s.Duration != 0 {
		cfg.Run.Duration = s.Duration
	}
	if s.Dt != 0 {
		cfg.Run.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Run.Seed = s.Seed
	}
	for k, v := range s.Params {
		set, ok := analysis.Params[k]
		if !ok {
			return nil, fmt.Errorf("unknown parameter: %s", k)
		}
		set(cfg, v)
	}
	return cfg, cfg.Validate()
}

// RunScript executes all steps in order. Steps marked Save are written to
// st, which may be nil when nothing is saved.
func RunScript(ctx context.Context, script *Script, st *storage.Store, log *logging.Logger) ([]StepResult, error) {
	if log == nil {
		log = logging.Nop()
	}
	results := make([]StepResult, 0, len(script.Steps))

	for i, step := range script.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info("script step", logging.String("script", script.Name), logging.Int("step", i+1), logging.String("scene", cfg.Scene))

		exp := experiment.New(cfg, log)
		if err := exp.Setup(step.Metrics...); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Scene: cfg.Scene, Result: result}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			if sr.RunID, err = st.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the half-width of the uniform jitter applied to every
	// bot and projectile x position and to projectile launch angles.
	Perturbation float64
	NumTrials    int
	Seed         int64
	// SpeedLimit marks a trial unstable when any body ends faster than it.
	SpeedLimit float64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID     int
	Fingerprint uint64
	Final       []sim.Sample
	Stable      bool
	Err         error
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, log *logging.Logger) ([]MonteCarloResult, error) {
	if mc.Base == nil {
		return nil, fmt.Errorf("monte carlo needs a base config")
	}
	if log == nil {
		log = logging.Nop()
	}
	results := make([]MonteCarloResult, 0, mc.NumTrials)
	rng := rand.New(rand.NewSource(mc.Seed))
	jitter := func() float64 { return (rng.Float64() - 0.5) * 2 * mc.Perturbation }

	for trial := 0; trial < mc.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		cfg := mc.Base.Clone()
		for i := range cfg.Bots {
			cfg.Bots[i].X += jitter()
		}
		for i := range cfg.Projectiles {
			cfg.Projectiles[i].X += jitter()
			cfg.Projectiles[i].Angle += jitter()
		}

		r := MonteCarloResult{TrialID: trial}
		exp := experiment.New(cfg, log)
		if err := exp.Setup("stability"); err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}
		result, err := exp.Run(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return results, ctx.Err()
		case err != nil:
			r.Err = err
		default:
			r.Fingerprint = result.Fingerprint
			if n := len(result.Frames); n > 0 {
				r.Final = result.Frames[n-1].Bodies
			}
			r.Stable = bounded(r.Final, mc.SpeedLimit)
		}
		results = append(results, r)

		if (trial+1)%10 == 0 {
			log.Info("monte carlo progress", logging.Int("done", trial+1), logging.Int("trials", mc.NumTrials))
		}
	}

	return results, nil
}

func bounded(samples []sim.Sample, speedLimit float64) bool {
	for _, s := range samples {
		if !s.IsValid() {
			return false
		}
		if speedLimit > 0 && s.VX*s.VX+s.VY*s.VY > speedLimit*speedLimit {
			return false
		}
	}
	return true
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
