package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/trampball/internal/dynamo"
)

// Metric accumulates a scalar over a run. Observe is called after every
// tick with the world's simulated time.
type Metric interface {
	Name() string
	Observe(w *World, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(w *World, tick int, t float64, stats TickStats)
}

// Config controls a headless run.
type Config struct {
	IntervalMs    float64
	Duration      float64
	ValidateState bool
}

type Result struct {
	Ticks       int
	Time        float64
	SubSteps    int
	MaxSubSteps int
	Metrics     map[string]float64
	Errors      []error
}

// Runner drives a World either in a headless loop (Run) or from a
// background timer (Start). Observers and metrics are called from
// whichever goroutine runs the tick.
type Runner struct {
	world     *World
	metrics   []Metric
	observers []Observer
	log       *slog.Logger

	notifyMu sync.Mutex

	paused   atomic.Bool
	slomo    atomic.Int64
	ticks    atomic.Int64
	skipped  atomic.Int64
	lastTick atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(w *World, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	r := &Runner{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log,
	}
	r.slomo.Store(1)
	return r
}

func (r *Runner) World() *World { return r.world }

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run ticks the world every cfg.IntervalMs of simulated time until
// cfg.Duration seconds have elapsed, without waiting on a clock.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration * 1000 / cfg.IntervalMs))
	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	r.resetMetrics()

	r.log.Info("run started",
		"interval_ms", cfg.IntervalMs,
		"duration", cfg.Duration,
		"ticks", steps,
		"balls", len(r.world.Balls()),
		"trampolines", len(r.world.Trampolines()),
	)
	start := time.Now()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		stats := r.world.Step(cfg.IntervalMs)
		r.ticks.Add(1)
		_, t := r.world.Elapsed()
		r.notify(i, t, stats)

		result.Ticks++
		result.Time = t
		result.SubSteps += stats.SubSteps
		result.MaxSubSteps = max(result.MaxSubSteps, stats.SubSteps)

		if cfg.ValidateState && !r.world.Valid() {
			err := dynamo.SimError{Time: t, Step: i, Message: "non-finite ball or anchor state"}
			result.Errors = append(result.Errors, err)
			r.log.Warn("run stopped", "error", err)
			break
		}
	}

	r.collect(result)
	r.log.Info("run finished",
		"ticks", result.Ticks,
		"sim_time", result.Time,
		"sub_steps", result.SubSteps,
		"wall_time", time.Since(start),
	)
	return result, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.IntervalMs > 0) {
		return fmt.Errorf("interval must be positive, got %v ms: %w", cfg.IntervalMs, dynamo.ErrParameterBounds)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %v s: %w", cfg.Duration, dynamo.ErrParameterBounds)
	}
	return nil
}

func (r *Runner) resetMetrics() {
	for _, m := range r.metrics {
		m.Reset()
	}
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Metrics returns the current value of every metric.
func (r *Runner) Metrics() map[string]float64 {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Runner) notify(tick int, t float64, stats TickStats) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	for _, m := range r.metrics {
		m.Observe(r.world, t)
	}
	for _, o := range r.observers {
		o.OnTick(r.world, tick, t, stats)
	}
}

// Start ticks the world from a background goroutine every interval of
// wall-clock time, advancing it by the same interval. A tick that would
// overlap one still in progress is skipped and counted. Start returns an
// error if the runner is already started.
func (r *Runner) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v: %w", interval, dynamo.ErrParameterBounds)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return errors.New("runner already started")
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.resetMetrics()
	r.log.Info("timer started", "interval", interval, "slomo", r.Slomo())

	go r.loop(ctx, interval, r.done)
	return nil
}

// Stop cancels the timer goroutine and waits for its last tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	r.log.Info("timer stopped", "ticks", r.Ticks(), "skipped", r.Skipped())
}

func (r *Runner) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dtMs := float64(interval) / float64(time.Millisecond)
	counter := int64(0)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if r.paused.Load() {
			continue
		}
		counter++
		if counter < r.slomo.Load() {
			continue
		}
		counter = 0

		r.timerTick(dtMs, interval)
	}
}

func (r *Runner) timerTick(dtMs float64, interval time.Duration) {
	start := time.Now()
	stats, err := r.world.TryStep(dtMs)
	if errors.Is(err, dynamo.ErrTickInProgress) {
		r.skipped.Add(1)
		r.log.Debug("tick skipped", "reason", "overlap")
		return
	}
	took := time.Since(start)
	r.lastTick.Store(int64(took))

	n := r.ticks.Add(1)
	_, t := r.world.Elapsed()
	r.notify(int(n-1), t, stats)

	// The ticker drops the events that fire while a slow tick runs.
	if took > interval {
		missed := int64(took / interval)
		r.skipped.Add(missed)
		r.log.Warn("slow tick", "took", took, "interval", interval, "missed", missed, "stats", stats)
	}
}

// StepOnce advances the world by a single tick, used to single-step a
// paused simulation.
func (r *Runner) StepOnce(dtMs float64) TickStats {
	stats := r.world.Step(dtMs)
	n := r.ticks.Add(1)
	_, t := r.world.Elapsed()
	r.notify(int(n-1), t, stats)
	return stats
}

func (r *Runner) Paused() bool     { return r.paused.Load() }
func (r *Runner) SetPaused(p bool) { r.paused.Store(p) }
func (r *Runner) Slomo() int       { return int(r.slomo.Load()) }
func (r *Runner) Ticks() int64     { return r.ticks.Load() }
func (r *Runner) Skipped() int64   { return r.skipped.Load() }

// LastTick is the wall-clock duration of the most recent timer tick.
func (r *Runner) LastTick() time.Duration { return time.Duration(r.lastTick.Load()) }

// TogglePause flips the pause state and returns the new one.
func (r *Runner) TogglePause() bool {
	for {
		old := r.paused.Load()
		if r.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetSlomo makes the timer tick only on every nth event. Values below 1
// are treated as 1.
func (r *Runner) SetSlomo(n int) {
	if n < 1 {
		n = 1
	}
	r.slomo.Store(int64(n))
}
