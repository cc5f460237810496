// Package viz renders a running boiler session in the terminal.
//
// The live view is a Bubble Tea model driven by two independent ticks: a
// physics tick that advances the session by the paced dt, and a clock tick
// that advances the elapsed-time counter and samples the trailing-window
// averages shown in the charts.
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	R         - Reset the tank (parameters and setpoints are kept)
//	Tab       - Next parameter
//	Shift+Tab - Previous parameter
//	Up/K      - Increase the selected parameter by one step
//	Down/J    - Decrease the selected parameter by one step
//	T         - Cycle color themes
//	?         - Toggle help
//	Q         - Quit
package viz
