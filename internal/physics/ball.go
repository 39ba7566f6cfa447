package physics

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/trampball/internal/dynamo"
)

const (
	DefaultBallMass   = 100.0
	DefaultBallRadius = 50.0
	DefaultBallBounce = 0.9
)

// BallID is a non-owning handle to a ball. Zero is never assigned by a World.
type BallID int

// Ball is a rigid disc.
//
// Position, velocity and applied force are guarded by mu. Radius, mass and
// bounce are fixed once the ball is added to a world. driven is written only
// by the simulation tick, under mu so presentation readers can snapshot it.
type Ball struct {
	ID BallID

	mu       sync.Mutex
	position dynamo.Vec2
	velocity dynamo.Vec2
	force    dynamo.Vec2

	radius float64
	mass   float64
	bounce float64

	driven bool
}

// BallState is a copy of a ball's observable fields.
type BallState struct {
	ID       BallID
	Position dynamo.Vec2
	Velocity dynamo.Vec2
	Radius   float64
	Mass     float64
	Driven   bool
}

func NewBall() *Ball {
	return &Ball{
		mass:   DefaultBallMass,
		radius: DefaultBallRadius,
		bounce: DefaultBallBounce,
	}
}

func (b *Ball) SetPosition(p dynamo.Vec2) {
	b.mu.Lock()
	b.position = p
	b.mu.Unlock()
}

func (b *Ball) SetVelocity(v dynamo.Vec2) {
	b.mu.Lock()
	b.velocity = v
	b.mu.Unlock()
}

// SetForce sets the externally applied force. The force persists until
// changed; the engine never resets it.
func (b *Ball) SetForce(f dynamo.Vec2) {
	b.mu.Lock()
	b.force = f
	b.mu.Unlock()
}

func (b *Ball) SetRadius(r float64) { b.radius = r }
func (b *Ball) SetMass(m float64)   { b.mass = m }
func (b *Ball) SetBounce(f float64) { b.bounce = f }

func (b *Ball) Position() dynamo.Vec2 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

func (b *Ball) Velocity() dynamo.Vec2 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.velocity
}

func (b *Ball) Force() dynamo.Vec2 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.force
}

func (b *Ball) Radius() float64 { return b.radius }
func (b *Ball) Mass() float64   { return b.mass }
func (b *Ball) Bounce() float64 { return b.bounce }

// Driven reports whether a trampoline currently owns the ball's motion.
func (b *Ball) Driven() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.driven
}

func (b *Ball) Snapshot() BallState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BallState{
		ID:       b.ID,
		Position: b.position,
		Velocity: b.velocity,
		Radius:   b.radius,
		Mass:     b.mass,
		Driven:   b.driven,
	}
}

// Validate rejects parameters the engine cannot simulate.
func (b *Ball) Validate() error {
	switch {
	case !(b.radius > 0) || math.IsInf(b.radius, 0):
		return fmt.Errorf("ball radius %v: %w", b.radius, dynamo.ErrParameterBounds)
	case !(b.mass > 0) || math.IsInf(b.mass, 0):
		return fmt.Errorf("ball mass %v: %w", b.mass, dynamo.ErrParameterBounds)
	case !(b.bounce >= 0 && b.bounce <= 1):
		return fmt.Errorf("ball bounce %v: %w", b.bounce, dynamo.ErrParameterBounds)
	case !b.position.IsFinite() || !b.velocity.IsFinite():
		return fmt.Errorf("ball motion: %w", dynamo.ErrInvalidState)
	}
	return nil
}

// Integrate advances a free ball by dt seconds under its applied force and
// gravity using a second-order Taylor step. Driven balls are left alone.
func (b *Ball) Integrate(dt float64, gravity dynamo.Vec2) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.driven {
		return
	}

	a := b.force.Scale(1 / b.mass).Add(gravity)
	b.position = b.position.Add(b.velocity.Scale(dt)).Add(a.Scale(0.5 * dt * dt))
	b.velocity = b.velocity.Add(a.Scale(dt))
}

// OverrideState sets the velocity and shifts the position, bypassing
// integration. Safe to call whether or not the ball is driven.
func (b *Ball) OverrideState(velocity, delta dynamo.Vec2) {
	b.mu.Lock()
	b.position = b.position.Add(delta)
	b.velocity = velocity
	b.mu.Unlock()
}

func (b *Ball) setDriven(driven bool) {
	b.mu.Lock()
	b.driven = driven
	b.mu.Unlock()
}

// setMotion writes back the result of a collision resolution.
func (b *Ball) setMotion(position, velocity dynamo.Vec2) {
	b.mu.Lock()
	b.position = position
	b.velocity = velocity
	b.mu.Unlock()
}

// BallResolver maps handles back to balls. Implemented by the world.
type BallResolver interface {
	Ball(id BallID) *Ball
}

// BallIndex is a map-backed BallResolver.
type BallIndex map[BallID]*Ball

func (ix BallIndex) Ball(id BallID) *Ball { return ix[id] }
