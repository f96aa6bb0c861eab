package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/botsim/internal/config"
)

func stackConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.GetPreset("stack", "stack")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Run.Duration = 0.16
	return cfg
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linspace[%d] = %f, want %f", i, got[i], want[i])
		}
	}
	if got := Linspace(3, 9, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("single point = %v", got)
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float64
	}{
		{"length mismatch", []string{"gravity"}, nil},
		{"unknown param", []string{"warp"}, [][]float64{{1}}},
		{"empty range", []string{"gravity"}, [][]float64{{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.params, tt.ranges, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSearchMinimizesAndMaximizes(t *testing.T) {
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{5, 10, 15}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	params, low, err := g.Search(context.Background(), stackConfig(t), "energy")
	if err != nil {
		t.Fatal(err)
	}
	if params["gravity"] != 5 {
		t.Errorf("lowest energy at gravity %f, want 5", params["gravity"])
	}

	g.Maximize = true
	params, high, err := g.Search(context.Background(), stackConfig(t), "energy")
	if err != nil {
		t.Fatal(err)
	}
	if params["gravity"] != 15 {
		t.Errorf("highest energy at gravity %f, want 15", params["gravity"])
	}
	if high <= low {
		t.Errorf("max %f should exceed min %f", high, low)
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{5}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := g.Search(context.Background(), stackConfig(t), "nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSearchAllPointsFail(t *testing.T) {
	g, err := NewGridSearch([]string{"linear_damping"}, [][]float64{{-1, 2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = g.Search(context.Background(), stackConfig(t), "energy")
	if !errors.Is(err, ErrNoRuns) {
		t.Errorf("got %v, want ErrNoRuns", err)
	}
}

func TestSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{5, 10}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, stackConfig(t), "energy"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
