// Package ode provides the core primitives for initial value problems.
//
// An initial value problem (IVP) is defined by dy/dt = f(t, y) with
// y(t0) = y0. The package defines the fundamental types shared by the
// stepping engine and the solvers:
//
//   - [State]: vector representing the solution state
//   - [Field]: interface for the right-hand side f(t, y)
//   - [Config]: tolerances and step-size control knobs
//   - [Metric], [Observer]: hooks invoked on accepted samples
//
// # Example
//
//	f := models.NewDecay()
//	s, _ := solve.New(f, tableau.RK4(), ode.DefaultConfig())
//	result, _ := s.Run(ctx, 0, ode.State{1}, 10)
//
// # Thread Safety
//
// States are plain slices and must not be shared between concurrent
// solves. Fields and tableaus are treated as read-only by the solvers
// and may be shared freely.
package ode
