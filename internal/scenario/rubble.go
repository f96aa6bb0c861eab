package scenario

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/geom"
	"github.com/san-kum/botsim/internal/world"
)

const (
	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3

	rubbleMargin = 10.0
	rubbleMass   = 1.0
)

// Rubble drops Count loose discs and boxes evenly across the arena. Drop
// heights and sizes follow 1D Perlin noise seeded from seed, so a seed
// always produces the same pile.
func Rubble(w *world.World, spec config.RubbleConfig, seed int64) ([]*body.Body, error) {
	if spec.Count <= 0 {
		return nil, nil
	}
	if spec.MinSize <= 0 || spec.MaxSize < spec.MinSize {
		return nil, fmt.Errorf("rubble: need 0 < min_size <= max_size, got %g and %g", spec.MinSize, spec.MaxSize)
	}

	width := w.Config().Width
	spacing := (width - 2*rubbleMargin) / float64(spec.Count)
	maxSize := math.Min(spec.MaxSize, 0.45*spacing)
	minSize := math.Min(spec.MinSize, maxSize)

	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed)
	out := make([]*body.Body, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		x := rubbleMargin + (float64(i)+0.5)*spacing
		h := unit(noise.Noise1D(float64(i) * 0.37))
		s := unit(noise.Noise1D(float64(i)*0.37 + 100))

		size := minSize + s*(maxSize-minSize)
		y := size + spec.Height*(0.25+0.75*h)

		var b *body.Body
		if i%2 == 0 {
			b = body.NewDisc(geom.V(x, y), size, rubbleMass*size)
		} else {
			b = body.NewBox(geom.V(x, y), size, size*0.6, rubbleMass*size)
			b.Rotate(h * math.Pi)
		}
		b.Label = fmt.Sprintf("rubble-%d", i)
		if _, err := w.AddObject(b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// unit maps noise, roughly in [-1, 1], into [0, 1].
func unit(n float64) float64 {
	return math.Max(0, math.Min(1, 0.5+0.5*n))
}

func buildRubble(s *Scene, cfg *config.Config) error {
	_, err := Rubble(s.World, cfg.Rubble, cfg.Run.Seed)
	return err
}
