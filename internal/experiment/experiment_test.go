package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botsim/internal/config"
)

func TestExperimentRun(t *testing.T) {
	cfg, err := config.GetPreset("stack", "stack")
	require.NoError(t, err)
	cfg.Run.Duration = 0.5

	e := New(cfg, nil)
	_, err = e.Run(context.Background())
	assert.Error(t, err, "running before setup should fail")

	require.NoError(t, e.Setup())
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 31, res.StepsTaken)
	for _, name := range e.Registry().ListMetrics() {
		assert.Contains(t, res.Metrics, name)
	}
	assert.Greater(t, res.Metrics["contacts"], 0.0)
}

func TestExperimentNamedMetrics(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.Duration = 0.1

	e := New(cfg, nil)
	require.NoError(t, e.Setup("energy", "contacts"))
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Metrics, 2)

	assert.Error(t, New(cfg, nil).Setup("telepathy"))
}

func TestRunEnsembleSeeds(t *testing.T) {
	cfg, err := config.GetPreset("rubble", "rubble")
	require.NoError(t, err)
	cfg.Run.Duration = 0.2

	results, err := RunEnsemble(context.Background(), cfg, 3, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NotEqual(t, results[0].Fingerprint, results[1].Fingerprint, "different seeds should scatter rubble differently")

	again, err := RunEnsemble(context.Background(), cfg, 1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, results[0].Fingerprint, again[0].Fingerprint)
}
