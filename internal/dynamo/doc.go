// Package dynamo provides core primitives shared by the simulation packages.
//
// The package defines the small vocabulary the rest of the engine is
// written in:
//
//   - [Vec2]: 2D float vector used for positions, velocities and forces
//   - [State]: flat vector of system state handed to integrators
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//
// # Errors
//
// Construction-time validation failures wrap [ErrParameterBounds]; the
// simulation tick itself never returns an error.
package dynamo
