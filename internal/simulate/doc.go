// Package simulate provides a continuously-updating simulated live value.
//
// This package is internal to GaugeBoard and implements the triangle-wave
// value generator used when the board runs in simulated mode. A background
// goroutine advances the value between two configurable bounds, reflecting
// at each bound to produce a periodic oscillation without trigonometry.
//
// The main components are:
//
//   - [Simulator]: Owns the shared value and runs the update loop
//   - [Setting]: Functional options for live reconfiguration ([Low], [High], [Speed])
//
// All Simulator operations are safe for concurrent use and none of them can
// fail. Reads never block; bound and speed changes take effect on the next
// loop tick without restarting the loop.
//
// Users of the gaugeboard library should not need to interact with this
// package directly. The simulator is managed by the gaugeboard Board.
package simulate
