// Package boiler implements the mass and energy balance of a heated water
// tank and the feed-forward controller that drives it toward its setpoints.
//
// The package is pure arithmetic; it owns no timers and performs no I/O:
//
//   - [Engine]: owns the [State] and advances it with [Engine.Step]
//   - [Controller]: derives [Commands] from state, [Setpoints] and [Parameters]
//
// # Usage
//
//	eng, _ := boiler.NewEngine(boiler.DefaultParameters())
//	ctrl := boiler.NewController()
//	cmd, _ := ctrl.Compute(eng.State(), sp, eng.Parameters(), dt)
//	_ = eng.Apply(cmd)
//	_ = eng.Step(dt)
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Hosts that edit parameters while a
// scheduler is ticking should go through sim.Session.
package boiler
