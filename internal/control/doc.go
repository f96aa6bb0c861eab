// Package control provides feedback controllers for bot motors.
//
//   - [PID]: Proportional-Integral-Derivative controller on a scalar error
//   - [Cruise]: steps alongside a run and retunes a bot's motor torque so
//     its chassis holds a target horizontal speed
//
// # Usage
//
//	c := control.NewCruise(bot, 4, control.DefaultGains())
//	runner.AddObserver(c)
//
// [PID] supports live tuning through GetParams and SetParam.
package control
