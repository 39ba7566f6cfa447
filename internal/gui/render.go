package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/trampball/internal/dynamo"
)

type projector struct {
	ox, oy, scale float64
}

func (p projector) at(v dynamo.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(p.ox+v.X*p.scale), float32(p.oy-v.Y*p.scale))
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	ox, oy := a.origin()
	p := projector{ox, oy, a.opts.View.Scaling}
	a.drawStage(p)
	a.drawTrampolines(p)
	a.drawBalls(p)
	a.drawWalls(p)
	a.drawGravity()
	a.drawHUD()
	a.drawTelemetry()

	rl.EndDrawing()
}

func (a *App) drawStage(p projector) {
	s := a.world().Stage()
	corners := []rl.Vector2{
		p.at(dynamo.V(s.Left, s.Top)),
		p.at(dynamo.V(s.Right, s.Top)),
		p.at(dynamo.V(s.Right, s.Bottom)),
		p.at(dynamo.V(s.Left, s.Bottom)),
		p.at(dynamo.V(s.Left, s.Top)),
	}
	rl.DrawLineStrip(corners, ColStage)
}

func (a *App) drawTrampolines(p projector) {
	for _, t := range a.world().Trampolines() {
		anchors := t.AnchorPositions()
		points := make([]rl.Vector2, len(anchors))
		for i, pos := range anchors {
			points[i] = p.at(pos)
		}
		rl.DrawLineStrip(points, ColTrampoline)
		for _, pt := range points {
			rl.DrawRectangle(int32(pt.X)-1, int32(pt.Y)-1, 3, 3, ColAnchor)
		}
	}
}

func (a *App) drawBalls(p projector) {
	for _, b := range a.world().Balls() {
		st := b.Snapshot()
		c := p.at(st.Position)
		rl.DrawCircleLines(int32(c.X), int32(c.Y), float32(st.Radius*p.scale), ColBall)
	}
}

func (a *App) drawWalls(p projector) {
	for _, w := range a.world().Walls() {
		c := w.Corners()
		rl.DrawLineStrip([]rl.Vector2{p.at(c[0]), p.at(c[1]), p.at(c[2]), p.at(c[3]), p.at(c[0])}, ColWall)
	}
}

// drawGravity draws the current gravity as an arrow in the top right
// corner, 1 pixel per 20 units of acceleration.
func (a *App) drawGravity() {
	g := a.world().Gravity()
	start := dynamo.V(float64(rl.GetScreenWidth()-50), 50)
	d := dynamo.V(g.X/20, -g.Y/20)
	end := start.Add(d)

	vec := func(v dynamo.Vec2) rl.Vector2 { return rl.NewVector2(float32(v.X), float32(v.Y)) }
	rl.DrawLineV(vec(start), vec(end), ColGravity)

	u, ok := d.Normalize()
	if !ok {
		return
	}
	back := u.Scale(-5)
	side := dynamo.V(-u.Y, u.X).Scale(5)
	rl.DrawLineV(vec(end.Add(back).Add(side)), vec(end), ColGravity)
	rl.DrawLineV(vec(end.Add(back).Sub(side)), vec(end), ColGravity)
}

func (a *App) drawHUD() {
	hud := fmt.Sprintf("%d fps; calc in %.1f us; skipped %d",
		rl.GetFPS(), float64(a.runner.LastTick().Nanoseconds())/1e3, a.runner.Skipped())
	rl.DrawText(hud, 40, 10, 16, ColHUD)

	ticks, t := a.world().Elapsed()
	rl.DrawText(fmt.Sprintf("t=%.2fs  ticks=%d  slomo=1/%d", t, ticks, a.runner.Slomo()), 40, 30, 16, ColTextDim)

	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	if a.runner.Paused() {
		lines := []string{"Press SPACE to start", "Press Q to quit"}
		if a.opts.Mouse {
			lines = []string{"Control gravity with your mouse", "Click to start", "Press Q to quit"}
		}
		title := "PAUSED"
		rl.DrawText(title, int32(w/2)-rl.MeasureText(title, 48)/2, int32(h/2)-24, 48, ColPaused)
		y := int32(h/2) + 30
		for _, l := range lines {
			rl.DrawText(l, int32(w/2)-rl.MeasureText(l, 16)/2, y, 16, ColPaused)
			y += 18
		}
	}
	rl.DrawText("[SPACE] PAUSE  [R] RESET  [F] FOLLOW  [<-/->] TILT  [Q] QUIT", 40, int32(h)-24, 14, ColTextDim)
}

func (a *App) drawTelemetry() {
	if len(a.telemetry) < 2 {
		return
	}

	rectX, rectY := 40, rl.GetScreenHeight()-100
	width, height := 300, 50

	minVal, maxVal := a.telemetry[0], a.telemetry[0]
	for _, v := range a.telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.telemetry))
	for i, val := range a.telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColTextDim)
	rl.DrawText(fmt.Sprintf("E: %.3e", a.telemetry[len(a.telemetry)-1]), int32(rectX+width+10), int32(rectY+height-10), 14, ColHUD)
}
