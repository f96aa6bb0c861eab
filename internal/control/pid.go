package control

import "math"

type Gains struct {
	Kp, Ki, Kd float64
}

// PID drives a measured value towards Setpoint. With OutMax > OutMin the
// output is clamped to [OutMin, OutMax] and the integral is frozen while the
// output sits against a limit in the direction the error pushes.
type PID struct {
	Gains
	Setpoint float64
	OutMin   float64
	OutMax   float64

	integral     float64
	lastMeasured float64
	lastT        float64
	primed       bool
}

func NewPID(g Gains, setpoint float64) *PID {
	return &PID{Gains: g, Setpoint: setpoint}
}

// Limit sets symmetric output limits.
func (p *PID) Limit(limit float64) *PID {
	p.OutMin, p.OutMax = -math.Abs(limit), math.Abs(limit)
	return p
}

func (p *PID) clamp(u float64) float64 {
	if p.OutMax <= p.OutMin {
		return u
	}
	return math.Max(p.OutMin, math.Min(p.OutMax, u))
}

// Compute returns the output for the value measured at time t. The first
// sample, and any sample that does not advance t, has no derivative term.
func (p *PID) Compute(measured, t float64) float64 {
	e := p.Setpoint - measured

	if !p.primed {
		p.primed = true
		p.lastMeasured, p.lastT = measured, t
		return p.clamp(p.Kp*e + p.Ki*p.integral)
	}

	dt := t - p.lastT
	if dt <= 0 {
		return p.clamp(p.Kp*e + p.Ki*p.integral)
	}

	// derivative acts on the measurement, not the error
	d := -(measured - p.lastMeasured) / dt
	p.lastMeasured, p.lastT = measured, t

	integral := p.integral + e*dt
	u := p.Kp*e + p.Ki*integral + p.Kd*d
	if c := p.clamp(u); c != u && (u-c)*e > 0 {
		return c
	}
	p.integral = integral
	return u
}

func (p *PID) Reset() {
	p.integral = 0
	p.lastMeasured, p.lastT = 0, 0
	p.primed = false
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":       p.Kp,
		"ki":       p.Ki,
		"kd":       p.Kd,
		"setpoint": p.Setpoint,
	}
}

// SetParam sets one of the names GetParams reports and reports whether it
// knew the name.
func (p *PID) SetParam(name string, value float64) bool {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "setpoint":
		p.Setpoint = value
	default:
		return false
	}
	return true
}
