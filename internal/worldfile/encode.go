package worldfile

import (
	"bufio"
	"io"
	"strconv"
)

// Encode writes s in world file format. Modifiers are only written when
// they differ from the defaults.
func (s *Scene) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	def := NewScene()

	line(bw, "STAGE", s.Stage.Top, s.Stage.Left, s.Stage.Bottom, s.Stage.Right)
	if s.Gravity != def.Gravity {
		line(bw, "GRAVITY", s.Gravity.X, s.Gravity.Y)
	}

	for _, t := range s.Trampolines {
		d := newTrampolineSpec(0, 0, 0, 0, 0, 0)
		bw.WriteString("TRAMPOLINE " + strconv.Itoa(t.Anchors))
		args := []float64{t.X, t.Y, t.Width}
		if t.Rise != 0 {
			args = append(args, t.Rise)
		}
		line(bw, "", args...)
		modifier(bw, "K", t.K, d.K)
		modifier(bw, "DENSITY", t.Density, d.Density)
		modifier(bw, "DAMPING", t.Damping, d.Damping)
	}

	for _, ws := range s.Walls {
		wall := ws.Wall
		line(bw, "WALL", wall.Position.X, wall.Position.Y,
			wall.Side1.X, wall.Side1.Y, wall.Side2.X, wall.Side2.Y)
	}

	for _, b := range s.Balls {
		d := newBallSpec(0, b.Position)
		line(bw, "BALL", b.Position.X, b.Position.Y)
		modifier(bw, "RADIUS", b.Radius, d.Radius)
		modifier(bw, "MASS", b.Mass, d.Mass)
		modifier(bw, "BOUNCE", b.Bounce, d.Bounce)
	}

	return bw.Flush()
}

func line(w *bufio.Writer, keyword string, values ...float64) {
	w.WriteString(keyword)
	for _, v := range values {
		w.WriteByte(' ')
		w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	w.WriteByte('\n')
}

func modifier(w *bufio.Writer, keyword string, v, def float64) {
	if v != def {
		w.WriteString("  ")
		line(w, keyword, v)
	}
}
