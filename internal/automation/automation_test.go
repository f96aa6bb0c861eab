package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/storage"
)

const script = `
name: smoke
description: two short runs
steps:
  - preset: stack
    duration: 0.2
    metrics: [energy]
    save: true
  - preset: solo
    duration: 0.2
    params:
      torque: 250
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScript(t *testing.T) {
	s, err := LoadScript(writeScript(t, script))
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, []string{"energy"}, s.Steps[0].Metrics)
	assert.True(t, s.Steps[0].Save)
	assert.Equal(t, 250.0, s.Steps[1].Params["torque"])

	_, err = LoadScript(writeScript(t, "name: empty\n"))
	assert.Error(t, err)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	cfg, err := ScriptStep{Preset: "duel", Duration: 1, Dt: 0.01, Seed: 3, Params: map[string]float64{"gravity": 5}}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "arena", cfg.Scene)
	assert.Equal(t, 1.0, cfg.Run.Duration)
	assert.Equal(t, 0.01, cfg.Run.Dt)
	assert.Equal(t, int64(3), cfg.Run.Seed)
	assert.Equal(t, 5.0, cfg.World.Gravity)

	_, err = ScriptStep{Preset: "nope"}.Resolve()
	assert.ErrorIs(t, err, config.ErrUnknownPreset)

	_, err = ScriptStep{Preset: "stack", Params: map[string]float64{"warp": 1}}.Resolve()
	assert.Error(t, err)
}

func TestRunScript(t *testing.T) {
	s, err := LoadScript(writeScript(t, script))
	require.NoError(t, err)

	st := storage.New(t.TempDir())
	results, err := RunScript(context.Background(), s, st, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "stack", results[0].Scene)
	assert.NotEmpty(t, results[0].RunID)
	assert.Contains(t, results[0].Result.Metrics, "energy")
	assert.Empty(t, results[1].RunID)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunScriptSaveWithoutStore(t *testing.T) {
	s := &Script{Name: "nostore", Steps: []ScriptStep{{Preset: "stack", Duration: 0.1, Save: true}}}
	results, err := RunScript(context.Background(), s, nil, nil)
	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestRunScriptStopsAtBadStep(t *testing.T) {
	s := &Script{Steps: []ScriptStep{
		{Preset: "stack", Duration: 0.1},
		{Preset: "stack", Params: map[string]float64{"linear_damping": -1}},
	}}
	results, err := RunScript(context.Background(), s, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, results, 1)
}

func monteCarloBase(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.GetPreset("volley", "volley")
	require.NoError(t, err)
	cfg.Run.Duration = 0.3
	return cfg
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{Base: monteCarloBase(t), Perturbation: 0.5, NumTrials: 4, Seed: 1, SpeedLimit: 1000}
	results, err := RunMonteCarlo(context.Background(), mc, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.TrialID)
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.Final)
		assert.True(t, r.Stable)
	}
	assert.NotEqual(t, results[0].Fingerprint, results[1].Fingerprint)

	stable, unstable := MonteCarloStats(results)
	assert.Equal(t, 4, stable)
	assert.Equal(t, 0, unstable)

	// base config is left untouched
	assert.Equal(t, 10.0, mc.Base.Projectiles[0].X)
}

func TestRunMonteCarloReproducible(t *testing.T) {
	base := monteCarloBase(t)
	a, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base, Perturbation: 0.5, NumTrials: 2, Seed: 9}, nil)
	require.NoError(t, err)
	b, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base, Perturbation: 0.5, NumTrials: 2, Seed: 9}, nil)
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].Fingerprint, b[i].Fingerprint)
	}
}

func TestRunMonteCarloSpeedLimit(t *testing.T) {
	mc := &MonteCarloConfig{Base: monteCarloBase(t), NumTrials: 1, SpeedLimit: 1}
	results, err := RunMonteCarlo(context.Background(), mc, nil)
	require.NoError(t, err)
	assert.False(t, results[0].Stable)

	_, unstable := MonteCarloStats(results)
	assert.Equal(t, 1, unstable)
}

func TestRunMonteCarloCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := RunMonteCarlo(ctx, &MonteCarloConfig{Base: monteCarloBase(t), NumTrials: 3}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)

	_, err = RunMonteCarlo(context.Background(), &MonteCarloConfig{NumTrials: 1}, nil)
	assert.Error(t, err)
}
