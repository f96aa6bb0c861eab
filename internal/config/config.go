package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.016
	DefaultDuration = 10.0

	DefaultGravity        = 9.81
	DefaultWidth          = 137.0
	DefaultHeight         = 100.0
	DefaultLinearDamping  = 0.99
	DefaultAngularDamping = 0.80

	DefaultRestitution           = 0.4
	DefaultTolerance             = 0.01
	DefaultVelocityLimit         = 0.25
	DefaultAngularLimit          = 0.2
	DefaultFriction              = 0.4
	DefaultMaxPositionIterations = 10000
	DefaultMaxVelocityIterations = 10000
	DefaultVelocityEpsilon       = 0.001

	DefaultWheelTorque   = 500.0
	DefaultWheelGovernor = 6.0
)

var ErrUnknownPreset = errors.New("config: unknown preset")

type Config struct {
	Scene       string             `yaml:"scene"`
	Run         RunConfig          `yaml:"run"`
	World       WorldConfig        `yaml:"world"`
	Solver      SolverConfig       `yaml:"solver"`
	Bots        []BotConfig        `yaml:"bots,omitempty"`
	Projectiles []ProjectileConfig `yaml:"projectiles,omitempty"`
	Stack       StackConfig        `yaml:"stack,omitempty"`
	Chain       ChainConfig        `yaml:"chain,omitempty"`
	Rubble      RubbleConfig       `yaml:"rubble,omitempty"`
}

// RunConfig controls the fixed-step loop. Samples are recorded every
// SampleEvery steps; zero records every step.
type RunConfig struct {
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	Seed        int64   `yaml:"seed"`
	SampleEvery int     `yaml:"sample_every"`
}

type WorldConfig struct {
	Gravity        float64 `yaml:"gravity"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
}

type SolverConfig struct {
	Restitution           float64 `yaml:"restitution"`
	Tolerance             float64 `yaml:"tolerance"`
	VelocityLimit         float64 `yaml:"velocity_limit"`
	AngularLimit          float64 `yaml:"angular_limit"`
	Friction              float64 `yaml:"friction"`
	MaxPositionIterations int     `yaml:"max_position_iterations"`
	MaxVelocityIterations int     `yaml:"max_velocity_iterations"`
	VelocityEpsilon       float64 `yaml:"velocity_epsilon"`
}

// BotConfig describes a box chassis on two sprung, motor-driven wheels.
type BotConfig struct {
	Name     string     `yaml:"name"`
	X        float64    `yaml:"x"`
	Y        float64    `yaml:"y"`
	Rotation float64    `yaml:"rotation"`
	Body     BoxSpec    `yaml:"body"`
	Wheel    WheelSpec  `yaml:"wheel"`
	Spring   SpringSpec `yaml:"wheel_spring"`
	Motor    MotorSpec  `yaml:"motor"`
}

type BoxSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Mass   float64 `yaml:"mass"`
}

type WheelSpec struct {
	Radius  float64 `yaml:"radius"`
	Mass    float64 `yaml:"mass"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

// SpringSpec places a pair of suspension springs above each wheel. The body
// anchors sit OffsetX either side of the wheel, OffsetY above its axle.
type SpringSpec struct {
	K          float64 `yaml:"k"`
	RestLength float64 `yaml:"rest_length"`
	OffsetX    float64 `yaml:"offset_x"`
	OffsetY    float64 `yaml:"offset_y"`
}

// MotorSpec drives both wheels from one governed torque source. Forward
// drives the bot towards +x; Reverse towards -x.

type MotorSpec struct {
	Torque   float64 `yaml:"torque"`
	Governor float64 `yaml:"governor"`
	Reverse  bool    `yaml:"reverse"`
}

// ProjectileConfig is a box shaft with a disc tip, launched along its axis.
// Mass applies to each of the two parts.
type ProjectileConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Angle  float64 `yaml:"angle"`
	Speed  float64 `yaml:"speed"`
	Length float64 `yaml:"length"`
	Height float64 `yaml:"height"`
	Mass   float64 `yaml:"mass"`
}

type StackConfig struct {
	Count int     `yaml:"count"`
	Size  float64 `yaml:"size"`
	Mass  float64 `yaml:"mass"`
	X     float64 `yaml:"x"`
}

// ChainConfig hangs a jointed chain of boxes from a fixed anchor.
type ChainConfig struct {
	Links     int     `yaml:"links"`
	LinkWidth float64 `yaml:"link_width"`
	Mass      float64 `yaml:"mass"`
	AnchorX   float64 `yaml:"anchor_x"`
	AnchorY   float64 `yaml:"anchor_y"`
	Angle     float64 `yaml:"angle"`
}

// RubbleConfig scatters loose bodies with heights drawn from Perlin noise.
type RubbleConfig struct {
	Count   int     `yaml:"count"`
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
	Height  float64 `yaml:"height"`
}

func DefaultBot() BotConfig {
	return BotConfig{
		Name:   "bot",
		X:      15,
		Y:      12,
		Body:   BoxSpec{Width: 20, Height: 8, Mass: 20},
		Wheel:  WheelSpec{Radius: 3, Mass: 5, OffsetX: 5, OffsetY: -4},
		Spring: SpringSpec{K: 2000, RestLength: 4.5, OffsetX: 2, OffsetY: 4},
		Motor:  MotorSpec{Torque: DefaultWheelTorque, Governor: DefaultWheelGovernor},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Scene: "arena",
		Run: RunConfig{
			Dt:          DefaultDt,
			Duration:    DefaultDuration,
			SampleEvery: 1,
		},
		World: WorldConfig{
			Gravity:        DefaultGravity,
			Width:          DefaultWidth,
			Height:         DefaultHeight,
			LinearDamping:  DefaultLinearDamping,
			AngularDamping: DefaultAngularDamping,
		},
		Solver: SolverConfig{
			Restitution:           DefaultRestitution,
			Tolerance:             DefaultTolerance,
			VelocityLimit:         DefaultVelocityLimit,
			AngularLimit:          DefaultAngularLimit,
			Friction:              DefaultFriction,
			MaxPositionIterations: DefaultMaxPositionIterations,
			MaxVelocityIterations: DefaultMaxVelocityIterations,
			VelocityEpsilon:       DefaultVelocityEpsilon,
		},
		Bots: []BotConfig{DefaultBot()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Run.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Run.Dt)
	}
	if c.Run.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Run.Duration)
	}
	if c.Run.SampleEvery < 0 {
		return fmt.Errorf("sample_every must not be negative, got %d", c.Run.SampleEvery)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %fx%f", c.World.Width, c.World.Height)
	}
	if !inUnit(c.World.LinearDamping) || !inUnit(c.World.AngularDamping) {
		return fmt.Errorf("damping must be in (0, 1], got %f and %f", c.World.LinearDamping, c.World.AngularDamping)
	}
	if c.Solver.MaxPositionIterations <= 0 || c.Solver.MaxVelocityIterations <= 0 {
		return fmt.Errorf("solver iteration caps must be positive")
	}
	for _, b := range c.Bots {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	for i, p := range c.Projectiles {
		if p.Length < p.Height {
			return fmt.Errorf("projectile %d: length %f shorter than height %f", i, p.Length, p.Height)
		}
		if p.Height <= 0 || p.Mass <= 0 {
			return fmt.Errorf("projectile %d: height and mass must be positive", i)
		}
	}
	return nil
}

func inUnit(v float64) bool { return v > 0 && v <= 1 }

func (b BotConfig) Validate() error {
	switch {
	case b.Body.Width <= 0 || b.Body.Height <= 0 || b.Body.Mass <= 0:
		return fmt.Errorf("bot %q: body dimensions and mass must be positive", b.Name)
	case b.Wheel.Radius <= 0 || b.Wheel.Mass <= 0:
		return fmt.Errorf("bot %q: wheel radius and mass must be positive", b.Name)
	case b.Spring.K <= 0:
		return fmt.Errorf("bot %q: spring constant must be positive", b.Name)
	case b.Spring.RestLength < 0:
		return fmt.Errorf("bot %q: spring rest length must not be negative", b.Name)
	case b.Motor.Governor < 0:
		return fmt.Errorf("bot %q: governor must not be negative", b.Name)
	}
	return nil
}

func (c *Config) Clone() *Config {
	out := *c
	out.Bots = append([]BotConfig(nil), c.Bots...)
	out.Projectiles = append([]ProjectileConfig(nil), c.Projectiles...)
	return &out
}
