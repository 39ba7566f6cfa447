package sim

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
)

// DefaultGravity points down the screen in pixels/s^2.
var DefaultGravity = dynamo.V(0, -700)

// TickStats summarises one World tick.
type TickStats struct {
	SubSteps  int
	PeakSpeed float64
	Attached  int
}

// LogValue implements slog.LogValuer.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("sub_steps", s.SubSteps),
		slog.Float64("peak_speed", s.PeakSpeed),
		slog.Int("attached", s.Attached),
	)
}

// World owns every entity of one simulation and advances them together.
//
// tickMu serialises ticks and structural changes (adding or removing
// entities). entMu guards the entity slices for concurrent readers, and
// gravMu guards gravity, which an input collaborator may change while a
// timer goroutine is ticking.
type World struct {
	tickMu sync.Mutex
	entMu  sync.RWMutex
	gravMu sync.RWMutex

	stage       physics.Stage
	gravity     dynamo.Vec2
	balls       []*physics.Ball
	index       physics.BallIndex
	trampolines []*physics.Trampoline
	walls       []physics.Wall
	nextID      physics.BallID

	ticks   int
	elapsed float64
}

func NewWorld() *World {
	return &World{
		stage:   physics.DefaultStage(),
		gravity: DefaultGravity,
		index:   make(physics.BallIndex),
	}
}

// AddBall validates b, assigns it a fresh ID and takes ownership of it.
func (w *World) AddBall(b *physics.Ball) (physics.BallID, error) {
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("add ball: %w", err)
	}

	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.entMu.Lock()
	defer w.entMu.Unlock()

	w.nextID++
	b.ID = w.nextID
	w.balls = append(w.balls, b)
	w.index[b.ID] = b
	return b.ID, nil
}

// RemoveBall destroys the ball and every attachment that refers to it.
func (w *World) RemoveBall(id physics.BallID) error {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.entMu.Lock()
	defer w.entMu.Unlock()

	if _, ok := w.index[id]; !ok {
		return fmt.Errorf("ball %d: %w", id, dynamo.ErrUnknownEntity)
	}
	for _, t := range w.trampolines {
		t.Detach(id)
	}
	delete(w.index, id)
	for i, b := range w.balls {
		if b.ID == id {
			w.balls = append(w.balls[:i], w.balls[i+1:]...)
			break
		}
	}
	return nil
}

func (w *World) AddTrampoline(t *physics.Trampoline) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("add trampoline: %w", err)
	}
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.entMu.Lock()
	w.trampolines = append(w.trampolines, t)
	w.entMu.Unlock()
	return nil
}

func (w *World) AddWall(wall physics.Wall) error {
	if err := wall.Validate(); err != nil {
		return fmt.Errorf("add wall: %w", err)
	}
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.entMu.Lock()
	w.walls = append(w.walls, wall)
	w.entMu.Unlock()
	return nil
}

func (w *World) SetStage(s physics.Stage) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("set stage: %w", err)
	}
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	w.entMu.Lock()
	w.stage = s
	w.entMu.Unlock()
	return nil
}

// SetGravity may be called at any time, including while a tick runs. The
// new value takes effect from the next tick.
func (w *World) SetGravity(g dynamo.Vec2) error {
	if !g.IsFinite() {
		return fmt.Errorf("gravity %v: %w", g, dynamo.ErrParameterBounds)
	}
	w.gravMu.Lock()
	w.gravity = g
	w.gravMu.Unlock()
	return nil
}

func (w *World) Gravity() dynamo.Vec2 {
	w.gravMu.RLock()
	defer w.gravMu.RUnlock()
	return w.gravity
}

func (w *World) Stage() physics.Stage {
	w.entMu.RLock()
	defer w.entMu.RUnlock()
	return w.stage
}

// Balls returns the current balls in insertion order. The slice is a copy;
// the balls are shared.
func (w *World) Balls() []*physics.Ball {
	w.entMu.RLock()
	defer w.entMu.RUnlock()
	return append([]*physics.Ball(nil), w.balls...)
}

func (w *World) Trampolines() []*physics.Trampoline {
	w.entMu.RLock()
	defer w.entMu.RUnlock()
	return append([]*physics.Trampoline(nil), w.trampolines...)
}

func (w *World) Walls() []physics.Wall {
	w.entMu.RLock()
	defer w.entMu.RUnlock()
	return append([]physics.Wall(nil), w.walls...)
}

// Ball resolves a handle. It returns nil for a removed or unknown ball.
func (w *World) Ball(id physics.BallID) *physics.Ball {
	w.entMu.RLock()
	defer w.entMu.RUnlock()
	return w.index[id]
}

// Elapsed returns the number of completed ticks and the simulated time in
// seconds.
func (w *World) Elapsed() (int, float64) {
	w.entMu.RLock()
	defer w.entMu.RUnlock()
	return w.ticks, w.elapsed
}

// Step advances the world by dtMs milliseconds, waiting for any tick or
// structural change already in progress.
func (w *World) Step(dtMs float64) TickStats {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()
	return w.step(dtMs)
}

// TryStep is Step for timer callbacks: it refuses to overlap a tick that is
// still running and reports dynamo.ErrTickInProgress instead.
func (w *World) TryStep(dtMs float64) (TickStats, error) {
	if !w.tickMu.TryLock() {
		return TickStats{}, dynamo.ErrTickInProgress
	}
	defer w.tickMu.Unlock()
	return w.step(dtMs), nil
}

// step runs one tick with tickMu held. Entity slices and the ball index are
// only written under tickMu, so they are read here without entMu.
func (w *World) step(dtMs float64) TickStats {
	var stats TickStats
	g := w.Gravity()
	dt := dtMs / 1000

	for _, t := range w.trampolines {
		for _, b := range w.balls {
			t.Collide(b)
		}
	}
	if len(w.trampolines) > 1 {
		for _, b := range w.balls {
			physics.SyncDriven(b, w.trampolines)
		}
	}

	for _, t := range w.trampolines {
		s := t.Advance(dtMs, g, w.index)
		stats.SubSteps += s.SubSteps
		if s.PeakSpeed > stats.PeakSpeed {
			stats.PeakSpeed = s.PeakSpeed
		}
	}

	for i, b := range w.balls {
		if b.Driven() {
			stats.Attached++
		}
		physics.CollideEdges(b, w.stage)
		for _, wall := range w.walls {
			physics.CollideWall(b, wall)
		}
		for _, other := range w.balls[i+1:] {
			physics.CollideBalls(b, other)
		}
		b.Integrate(dt, g)
	}

	w.entMu.Lock()
	w.ticks++
	w.elapsed += dt
	w.entMu.Unlock()
	return stats
}

// Valid reports whether every ball and anchor is still finite.
func (w *World) Valid() bool {
	for _, b := range w.Balls() {
		s := b.Snapshot()
		if !s.Position.IsFinite() || !s.Velocity.IsFinite() {
			return false
		}
	}
	for _, t := range w.Trampolines() {
		for _, a := range t.Anchors() {
			if !a.Offset.IsFinite() || !a.Velocity.IsFinite() {
				return false
			}
		}
	}
	return true
}
