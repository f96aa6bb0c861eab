package config

import (
	"fmt"
	"math"
	"sort"
)

func preset(scene string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Scene = scene
	c.Bots = nil
	edit(c)
	return c
}

func duelists() []BotConfig {
	left := DefaultBot()
	left.Name = "left"
	left.X = 15

	right := DefaultBot()
	right.Name = "right"
	right.X = DefaultWidth - 15
	right.Motor.Reverse = true
	return []BotConfig{left, right}
}

var Presets = map[string]map[string]*Config{
	"arena": {
		"solo": preset("arena", func(c *Config) {
			c.Bots = []BotConfig{DefaultBot()}
		}),
		"duel": preset("arena", func(c *Config) {
			c.Bots = duelists()
			c.Run.Duration = 20
		}),
	},
	"stack": {
		"stack": preset("stack", func(c *Config) {
			c.Stack = StackConfig{Count: 5, Size: 8, Mass: 5, X: 68}
		}),
		"tower": preset("stack", func(c *Config) {
			c.Stack = StackConfig{Count: 10, Size: 6, Mass: 3, X: 68}
			c.Run.Duration = 15
		}),
	},
	"rubble": {
		"rubble": preset("rubble", func(c *Config) {
			c.Rubble = RubbleConfig{Count: 12, MinSize: 2, MaxSize: 5, Height: 40}
			c.Run.Seed = 7
		}),
		"bulldozer": preset("rubble", func(c *Config) {
			c.Rubble = RubbleConfig{Count: 20, MinSize: 1.5, MaxSize: 3, Height: 80}
			c.Bots = []BotConfig{DefaultBot()}
			c.Run.Seed = 11
			c.Run.Duration = 20
		}),
	},
	"chain": {
		"pendulum": preset("chain", func(c *Config) {
			c.Chain = ChainConfig{Links: 5, LinkWidth: 8, Mass: 2, AnchorX: 68, AnchorY: 90, Angle: math.Pi / 4}
			c.Run.Duration = 20
		}),
		"rope": preset("chain", func(c *Config) {
			c.Chain = ChainConfig{Links: 12, LinkWidth: 4, Mass: 0.5, AnchorX: 68, AnchorY: 95, Angle: math.Pi / 3}
			c.Run.Duration = 20
		}),
	},
	"volley": {
		"volley": preset("volley", func(c *Config) {
			c.Projectiles = []ProjectileConfig{
				{X: 10, Y: 10, Angle: math.Pi / 4, Speed: 40, Length: 4, Height: 1, Mass: 0.5},
				{X: 10, Y: 20, Angle: math.Pi / 6, Speed: 45, Length: 4, Height: 1, Mass: 0.5},
				{X: 10, Y: 30, Angle: 0, Speed: 50, Length: 4, Height: 1, Mass: 0.5},
			}
		}),
		"siege": preset("volley", func(c *Config) {
			c.Stack = StackConfig{Count: 6, Size: 8, Mass: 4, X: 110}
			c.Projectiles = []ProjectileConfig{
				{X: 10, Y: 15, Angle: math.Pi / 8, Speed: 60, Length: 6, Height: 1.5, Mass: 2},
			}
		}),
	},
}

// GetPreset returns a copy of the named preset so callers may modify it.
func GetPreset(scene, name string) (*Config, error) {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil, fmt.Errorf("%w: scene %q", ErrUnknownPreset, scene)
	}
	cfg, ok := scenePresets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, scene, name)
	}
	return cfg.Clone(), nil
}

// FindPreset looks a preset up by name alone across every scene.
func FindPreset(name string) (*Config, error) {
	for _, scene := range ListScenes() {
		if cfg, ok := Presets[scene][name]; ok {
			return cfg.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListScenes() []string {
	scenes := make([]string, 0, len(Presets))
	for scene := range Presets {
		scenes = append(scenes, scene)
	}
	sort.Strings(scenes)
	return scenes
}
