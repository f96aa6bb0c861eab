package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/scenario"
)

var ErrNothingToPerturb = errors.New("analysis: scene has no dynamic bodies")

// LyapunovExponent estimates the largest Lyapunov exponent of a scene by
// trajectory separation. Two copies are built from cfg; the first dynamic
// body of the second is nudged by perturbation along x. Separation is the
// distance between the two copies' dynamic body positions and velocities.
//
// Algorithm:
// 1. Run two nearby copies in lockstep
// 2. Measure their divergence each step
// 3. λ ≈ (1/t) * ln(|δx(t)/δx(0)|), renormalizing when δx grows past 1
func LyapunovExponent(cfg *config.Config, perturbation, duration float64) (float64, error) {
	if perturbation <= 0 {
		return 0, fmt.Errorf("perturbation must be positive, got %g", perturbation)
	}
	a, err := scenario.Build(cfg, nil)
	if err != nil {
		return 0, err
	}
	b, err := scenario.Build(cfg, nil)
	if err != nil {
		return 0, err
	}

	xs, xps := dynamic(a.World.Bodies()), dynamic(b.World.Bodies())
	if len(xs) == 0 || len(xs) != len(xps) {
		return 0, ErrNothingToPerturb
	}
	xps[0].Position.X += perturbation
	d0 := perturbation

	dt := cfg.Run.Dt
	sumLog := 0.0
	count := 0

	for t := 0.0; t < duration; t += dt {
		if err := a.World.Step(dt); err != nil {
			return 0, err
		}
		if err := b.World.Step(dt); err != nil {
			return 0, err
		}

		sep := separation(xs, xps)
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			count++
		}

		// Renormalize to prevent saturation
		if sep > 1.0 {
			renormalize(xs, xps, d0/sep)
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func dynamic(bodies []*body.Body) []*body.Body {
	out := make([]*body.Body, 0, len(bodies))
	for _, b := range bodies {
		if !b.Static() {
			out = append(out, b)
		}
	}
	return out
}

func separation(xs, xps []*body.Body) float64 {
	sum := 0.0
	for i := range xs {
		sum += xps[i].Position.Sub(xs[i].Position).SquareMagnitude()
		sum += xps[i].Velocity.Sub(xs[i].Velocity).SquareMagnitude()
	}
	return math.Sqrt(sum)
}

func renormalize(xs, xps []*body.Body, scale float64) {
	for i := range xs {
		xps[i].Position = xs[i].Position.Add(xps[i].Position.Sub(xs[i].Position).Scale(scale))
		xps[i].Velocity = xs[i].Velocity.Add(xps[i].Velocity.Sub(xs[i].Velocity).Scale(scale))
	}
}
