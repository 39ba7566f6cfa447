// Package physics implements the ball/trampoline interaction engine.
//
// Components, leaf-first:
//
//   - [Ball]: free-flight integration and the direct state-override path
//   - [Stage], [Wall]: static obstacles, resolved by [CollideEdges] and [CollideWall]
//   - [CollideBalls]: pairwise ball interaction
//   - [Trampoline]: an elastic chain of anchors pinned at both ends
//
// A trampoline couples to balls through [Trampoline.Collide] (the contact
// tracker, run once per tick per ball) and [Trampoline.Advance] (the mesh
// integrator, which moves attached balls through [Ball.OverrideState]).
//
// # Units
//
// Distance is in pixels, time in seconds (tick sizes are given in
// milliseconds), mass is arbitrary. Spring constants are in s^-2 per unit
// mass, so k/m is an angular frequency squared.
//
// # Thread Safety
//
// Each Ball and each Trampoline owns a mutex guarding its mutable motion
// state. Accessors copy out under the lock; the simulation tick takes the
// lock only around the final write of each entity and never holds two
// locks at once. The tick itself must be driven from a single goroutine.
package physics
