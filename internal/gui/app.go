package gui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/trampball/internal/config"
	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/metrics"
	"github.com/san-kum/trampball/internal/sim"
	"github.com/san-kum/trampball/internal/worldfile"
)

var (
	ColBg         = rl.NewColor(0, 0, 0, 255)
	ColStage      = rl.NewColor(255, 255, 0, 255)
	ColWall       = rl.NewColor(0, 128, 255, 255)
	ColTrampoline = rl.NewColor(255, 255, 255, 255)
	ColAnchor     = rl.NewColor(255, 0, 0, 255)
	ColBall       = rl.NewColor(255, 0, 0, 255)
	ColGravity    = rl.NewColor(255, 128, 0, 128)
	ColHUD        = rl.NewColor(0, 200, 0, 255)
	ColPaused     = rl.NewColor(255, 60, 60, 255)
	ColTextDim    = rl.NewColor(90, 90, 90, 255)
)

const (
	maxTelemetry = 200
	tiltStep     = math.Pi / 36
	overEdge     = 1.0
)

// Options configures the window and the simulation timer.
type Options struct {
	View       config.ViewConfig
	IntervalMs float64
	Slomo      int
	Mouse      bool
}

// App is the desktop front end. The world ticks on the Runner's timer
// goroutine while the render loop reads entity snapshots through the
// locked accessors.
type App struct {
	scene *worldfile.Scene
	opts  Options
	log   *slog.Logger

	runner *sim.Runner
	cancel context.CancelFunc

	base      dynamo.Vec2 // gravity without the mouse perturbation
	captured  bool
	follow    bool
	telemetry []float64
	quit      bool
}

func NewApp(scene *worldfile.Scene, opts Options, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		scene:     scene,
		opts:      opts,
		log:       log,
		follow:    true,
		telemetry: make([]float64, 0, maxTelemetry),
	}
}

func initWindow(v config.ViewConfig) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(v.Width), int32(v.Height), "trampball")
	if v.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(int32(v.FrameRate))
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.opts.IntervalMs <= 0 {
		return fmt.Errorf("interval must be positive, got %v: %w", a.opts.IntervalMs, dynamo.ErrParameterBounds)
	}
	initWindow(a.opts.View)
	defer rl.CloseWindow()

	if err := a.start(ctx); err != nil {
		return err
	}
	defer a.stop()

	for !a.quit && !rl.WindowShouldClose() && ctx.Err() == nil {
		a.Update(ctx)
		a.Draw()
	}
	return nil
}

// start builds a fresh world and starts its timer paused, as the
// simulation waits for a click or space to begin.
func (a *App) start(ctx context.Context) error {
	w, err := a.scene.Build()
	if err != nil {
		return err
	}
	a.runner = sim.NewRunner(w, a.log)
	a.runner.SetSlomo(a.opts.Slomo)
	a.runner.SetPaused(true)
	a.base = w.Gravity()
	a.telemetry = a.telemetry[:0]

	runCtx, cancel := context.WithCancel(ctx)
	interval := time.Duration(a.opts.IntervalMs * float64(time.Millisecond))
	if err := a.runner.Start(runCtx, interval); err != nil {
		cancel()
		return err
	}
	a.cancel = cancel
	return nil
}

func (a *App) stop() {
	if a.runner == nil {
		return
	}
	a.runner.Stop()
	a.cancel()
	a.release()
}

func (a *App) world() *sim.World { return a.runner.World() }

func (a *App) Update(ctx context.Context) {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		a.quit = true
		return
	}

	if rl.IsKeyPressed(rl.KeySpace) || rl.IsKeyPressed(rl.KeyPause) {
		a.runner.TogglePause()
	}
	if !rl.IsWindowFocused() {
		a.runner.SetPaused(true)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.stop()
		if err := a.start(ctx); err != nil {
			a.log.Error("restart failed", "error", err)
			a.quit = true
			return
		}
	}
	if rl.IsKeyPressed(rl.KeyF) {
		a.follow = !a.follow
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		a.base = a.base.Rotate(-tiltStep)
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		a.base = a.base.Rotate(tiltStep)
	}

	gravity := a.base
	if a.opts.Mouse {
		gravity = a.handleMouse()
	}
	if err := a.world().SetGravity(gravity); err != nil {
		a.log.Debug("gravity rejected", "gravity", gravity, "error", err)
	}

	a.telemetry = append(a.telemetry, metrics.TotalEnergy(a.world()))
	if len(a.telemetry) > maxTelemetry {
		a.telemetry = a.telemetry[1:]
	}
}

// handleMouse captures the pointer while the simulation runs and turns
// its motion into a gravity perturbation. A click resumes a paused run.
func (a *App) handleMouse() dynamo.Vec2 {
	if a.runner.Paused() {
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			a.runner.SetPaused(false)
		}
		a.release()
		return a.base
	}
	if !a.captured {
		rl.DisableCursor()
		a.captured = true
		return a.base
	}
	d := rl.GetMouseDelta()
	dtMs := float64(rl.GetFrameTime()) * 1000
	return mouseGravity(a.base, dynamo.V(float64(d.X), float64(d.Y)), dtMs, a.opts.View.MouseScale)
}

func (a *App) release() {
	if a.captured {
		rl.EnableCursor()
		a.captured = false
	}
}

// mouseGravity adds the pointer's acceleration over one frame to base.
// delta is in screen pixels, so its y axis points down.
func mouseGravity(base, delta dynamo.Vec2, dtMs, scale float64) dynamo.Vec2 {
	if dtMs <= 0 {
		return base
	}
	k := 1e3 * scale / (dtMs * dtMs)
	return dynamo.V(base.X+delta.X*k, base.Y-delta.Y*k)
}

// origin returns the window position of world point (0, 0). The camera
// centres the first ball when following, without showing more than
// overEdge pixels past the stage, and centres stages smaller than the
// window.
func (a *App) origin() (float64, float64) {
	s := a.opts.View.Scaling
	stage := a.world().Stage()
	w, h := float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())

	focus := dynamo.V((stage.Left+stage.Right)/2, (stage.Top+stage.Bottom)/2)
	if balls := a.world().Balls(); a.follow && len(balls) > 0 {
		focus = balls[0].Position()
	}

	ox := w/2 - focus.X*s
	oy := h/2 + focus.Y*s
	ox = fit(ox, ox+stage.Left*s, w-ox-stage.Right*s, stage.Width()*s, w)
	oy = fit(oy, oy-stage.Top*s, h-oy+stage.Bottom*s, stage.Height()*s, h)
	return ox, oy
}

// fit shifts a camera coordinate given the gaps (near, far) between the
// stage edges and the window edges along one axis.
func fit(o, near, far, size, span float64) float64 {
	switch {
	case size < span:
		return o - (near-far)/2
	case near > overEdge:
		return o - (near - overEdge)
	case far > overEdge:
		return o + (far - overEdge)
	}
	return o
}
