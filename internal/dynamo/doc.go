// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// solution of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator], [AdaptiveIntegrator]: numerical steppers
//   - [Simulator]: drives a stepper across a grid of output times
//
// # Example
//
//	dyn := epidemic.NewSIS(params)
//	s := dynamo.New(dyn, integrators.NewRK45())
//	times, _ := dynamo.TimeGrid(90, 1)
//	result, err := s.Solve(ctx, dyn.InitialState(), times, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Integrators keep scratch buffers,
// so concurrent solves need their own Simulator and Integrator.
package dynamo
