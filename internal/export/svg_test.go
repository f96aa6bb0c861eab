package export

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/sim"
	"github.com/san-kum/botsim/internal/viz"
)

func TestWorldToSVG(t *testing.T) {
	cfg, err := config.GetPreset("arena", "solo")
	require.NoError(t, err)
	scene, err := scenario.Build(cfg, nil)
	require.NoError(t, err)

	svg := WorldToSVG(scene.World, 4)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `width="548"`)
	// two wheels
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	// four box edges, two spokes, four springs and the walls
	assert.GreaterOrEqual(t, strings.Count(svg, "<line"), 10)
}

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 1))

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `cx="1.0" cy="1.0"`)
	assert.Contains(t, svg, `cx="7.0" cy="7.0"`)
}

func TestTrajectoryToSVG(t *testing.T) {
	assert.Empty(t, TrajectoryToSVG([]geom.Vector{{X: 1, Y: 1}}, 100, 100, "#fff"))

	svg := TrajectoryToSVG([]geom.Vector{{X: 0, Y: 0}, {X: 1, Y: 1}}, 120, 120, "#fff")
	assert.Contains(t, svg, `d="M10.0,110.0 L110.0,10.0"`)
	assert.Contains(t, svg, `stroke="#fff"`)
}

func TestPath(t *testing.T) {
	cfg, err := config.GetPreset("stack", "stack")
	require.NoError(t, err)
	scene, err := scenario.Build(cfg, nil)
	require.NoError(t, err)
	result, err := sim.New().Run(context.Background(), scene.World, sim.Config{Dt: 0.016, Duration: 0.16, SampleEvery: 1})
	require.NoError(t, err)

	points, err := Path(result, "stack-0")
	require.NoError(t, err)
	assert.Len(t, points, len(result.Frames))

	_, err = Path(result, "nope")
	assert.ErrorIs(t, err, sim.ErrUnknownBody)
}
