package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

func TestEnsembleDeterministic(t *testing.T) {
	build := func(run int) (*world.World, Config, error) {
		w, err := world.New(world.DefaultConfig())
		if err != nil {
			return nil, Config{}, err
		}
		if _, err := w.AddObject(body.NewBox(geom.V(60, 5), 2, 2, 3)); err != nil {
			return nil, Config{}, err
		}
		return w, Config{Dt: 0.016, Duration: 0.5, Seed: int64(run)}, nil
	}

	ens := NewEnsemble(func() []Metric { return []Metric{&testMetric{}} }, 2)
	results, err := ens.Run(context.Background(), 4, build)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Fingerprint != results[0].Fingerprint {
			t.Errorf("run %d diverged: %x vs %x", i, r.Fingerprint, results[0].Fingerprint)
		}
		if _, ok := r.Metrics["test"]; !ok {
			t.Errorf("run %d missing metric", i)
		}
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	ens := NewEnsemble(nil, 0)
	_, err := ens.Run(context.Background(), 3, func(run int) (*world.World, Config, error) {
		if run == 1 {
			return nil, Config{}, boom
		}
		w, err := world.New(world.DefaultConfig())
		return w, Config{Dt: 0.01, Duration: 0.1}, err
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestEnsembleInvalidSize(t *testing.T) {
	_, err := NewEnsemble(nil, 0).Run(context.Background(), 0, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
