package control

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/botsim/internal/config"
	"github.com/san-kum/botsim/internal/scenario"
	"github.com/san-kum/botsim/internal/sim"
)

func TestPID(t *testing.T) {
	ctrl := NewPID(Gains{Kp: 10, Ki: 0.1, Kd: 5}, 0)
	u := ctrl.Compute(1.0, 0.0)
	if u >= 0 {
		t.Error("PID should output negative control for positive error")
	}
	if u != -10 {
		t.Errorf("first output should be proportional only, got %f", u)
	}

	// measurement unchanged: derivative zero, integral -1 * 0.5
	u = ctrl.Compute(1.0, 0.5)
	if want := -10.05; math.Abs(u-want) > 1e-9 {
		t.Errorf("got %f, want %f", u, want)
	}

	// same timestamp: no derivative, integral kept
	if u = ctrl.Compute(2.0, 0.5); math.Abs(u+20.05) > 1e-9 {
		t.Errorf("got %f, want -20.05", u)
	}

	// derivative from the last timed sample: -(3-1)/0.5
	u = ctrl.Compute(3.0, 1.0)
	if want := -30 + 0.1*-2.0 + 5*-4.0; math.Abs(u-want) > 1e-9 {
		t.Errorf("got %f, want %f", u, want)
	}
}

func TestPIDAntiWindup(t *testing.T) {
	ctrl := NewPID(Gains{Kp: 1, Ki: 1}, 10).Limit(5)
	if u := ctrl.Compute(0, 0); u != 5 {
		t.Errorf("got %f, want clamped 5", u)
	}
	if u := ctrl.Compute(0, 1); u != 5 {
		t.Errorf("got %f, want clamped 5", u)
	}
	// the saturated second of error was not integrated
	if u := ctrl.Compute(9.5, 2); math.Abs(u-1) > 1e-9 {
		t.Errorf("got %f, want 1", u)
	}

	unlimited := NewPID(Gains{Kp: 1}, 100)
	if u := unlimited.Compute(0, 0); u != 100 {
		t.Errorf("unlimited output clamped to %f", u)
	}
}

func TestPIDParams(t *testing.T) {
	ctrl := NewPID(Gains{Kp: 1, Ki: 2, Kd: 3}, 4)
	for name, v := range map[string]float64{"kd": 7, "setpoint": 9} {
		if !ctrl.SetParam(name, v) {
			t.Errorf("SetParam(%q) not accepted", name)
		}
	}
	if ctrl.SetParam("bogus", 1) {
		t.Error("unknown parameter accepted")
	}
	p := ctrl.GetParams()
	if p["kp"] != 1 || p["ki"] != 2 || p["kd"] != 7 || p["setpoint"] != 9 {
		t.Errorf("unexpected params %v", p)
	}

	ctrl.Compute(0, 0)
	ctrl.Compute(0, 1)
	ctrl.Reset()
	if u := ctrl.Compute(9, 5); u != 0 {
		t.Errorf("reset should clear history, got %f", u)
	}
}

func soloScene(t *testing.T) *scenario.Scene {
	t.Helper()
	scene, err := scenario.Build(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(scene.Bots) != 1 {
		t.Fatalf("expected one bot, got %d", len(scene.Bots))
	}
	return scene
}

func TestCruiseOutputSign(t *testing.T) {
	scene := soloScene(t)
	bot := scene.Bots[0]
	c := NewCruise(bot, 4, DefaultGains())
	if c.MaxTorque() != config.DefaultWheelTorque {
		t.Errorf("max torque = %f", c.MaxTorque())
	}

	// at rest, below target: drive toward +x at the cap
	c.OnStep(scene.World)
	if bot.Motor.Torque != -c.MaxTorque() {
		t.Errorf("torque = %f, want %f", bot.Motor.Torque, -c.MaxTorque())
	}

	c.PID().Reset()
	bot.Chassis.Velocity.X = 4.5
	c.OnStep(scene.World)
	if bot.Motor.Torque <= 0 {
		t.Errorf("above target should brake, torque = %f", bot.Motor.Torque)
	}
	if bot.Motor.Torque > c.MaxTorque() {
		t.Errorf("torque %f exceeds cap", bot.Motor.Torque)
	}
}

func TestCruiseReversesBot(t *testing.T) {
	scene := soloScene(t)
	bot := scene.Bots[0]
	startX := bot.Chassis.Position.X

	runner := sim.New()
	runner.AddObserver(NewCruise(bot, -3, DefaultGains()))
	_, err := runner.Run(context.Background(), scene.World, sim.Config{Dt: config.DefaultDt, Duration: 3, SampleEvery: 10})
	if err != nil {
		t.Fatal(err)
	}
	if bot.Chassis.Position.X >= startX {
		t.Errorf("bot should back up: start %f, end %f", startX, bot.Chassis.Position.X)
	}
}
