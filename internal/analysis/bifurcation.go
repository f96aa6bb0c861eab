package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/sim"
)

// Params are the config values a sweep can vary.
var Params = map[string]func(c *config.Config, v float64){
	"restitution":     func(c *config.Config, v float64) { c.Solver.Restitution = v },
	"friction":        func(c *config.Config, v float64) { c.Solver.Friction = v },
	"gravity":         func(c *config.Config, v float64) { c.World.Gravity = v },
	"linear_damping":  func(c *config.Config, v float64) { c.World.LinearDamping = v },
	"angular_damping": func(c *config.Config, v float64) { c.World.AngularDamping = v },
	"torque": func(c *config.Config, v float64) {
		for i := range c.Bots {
			c.Bots[i].Motor.Torque = v
		}
	},
	"governor": func(c *config.Config, v float64) {
		for i := range c.Bots {
			c.Bots[i].Motor.Governor = v
		}
	},
	"spring_k": func(c *config.Config, v float64) {
		for i := range c.Bots {
			c.Bots[i].Spring.K = v
		}
	},
}

func ListParams() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BifurcationPoint represents a stable state for a given parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64 // distinct values seen after the transient
}

// Sweep describes a parameter sweep over one body component.
type Sweep struct {
	Param     string
	Min, Max  float64
	Steps     int
	Body      string // id or label
	Component string
	Transient float64
	Record    float64
}

// BifurcationDiagram rebuilds the scene for each parameter value, lets it
// settle for Transient seconds, then records the distinct values of the
// chosen component over Record seconds.
func BifurcationDiagram(base *config.Config, sw Sweep) ([]BifurcationPoint, error) {
	set, ok := Params[sw.Param]
	if !ok {
		return nil, fmt.Errorf("unknown parameter: %s", sw.Param)
	}
	if _, err := (sim.Sample{}).Component(sw.Component); err != nil {
		return nil, err
	}

	steps := sw.Steps
	if steps <= 1 {
		steps = 2 // Prevent division by zero
	}
	paramStep := (sw.Max - sw.Min) / float64(steps-1)
	dt := base.Run.Dt

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := sw.Min + float64(i)*paramStep
		cfg := base.Clone()
		set(cfg, param)

		scene, err := scenario.Build(cfg, nil)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sw.Param, param, err)
		}
		target := -1
		for j, b := range scene.World.Bodies() {
			if string(b.ID) == sw.Body || b.Label == sw.Body {
				target = j
				break
			}
		}
		if target < 0 {
			return nil, fmt.Errorf("%w: %s", sim.ErrUnknownBody, sw.Body)
		}
		b := scene.World.Bodies()[target]

		t := 0.0
		for ; t < sw.Transient; t += dt {
			if err := scene.World.Step(dt); err != nil {
				return nil, fmt.Errorf("%s=%g: %w", sw.Param, param, err)
			}
		}

		values := make([]float64, 0, 100)
		seen := make(map[int]bool)
		for ; t < sw.Transient+sw.Record; t += dt {
			if err := scene.World.Step(dt); err != nil {
				return nil, fmt.Errorf("%s=%g: %w", sw.Param, param, err)
			}
			val, _ := sim.SampleOf(b).Component(sw.Component)
			// Quantize to find distinct values
			key := int(val * 1000)
			if !seen[key] {
				seen[key] = true
				values = append(values, val)
			}
		}

		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
			} else {
				minVal, maxVal = min(minVal, v), max(maxVal, v)
			}
		}
	}
	if !foundFirst {
		return ""
	}

	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}

		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
