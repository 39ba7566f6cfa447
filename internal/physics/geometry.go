package physics

import (
	"fmt"

	"github.com/san-kum/trampball/internal/dynamo"
)

// Stage is the axis-aligned playfield boundary. Y grows upwards.
type Stage struct {
	Top    float64 `yaml:"top"`
	Left   float64 `yaml:"left"`
	Bottom float64 `yaml:"bottom"`
	Right  float64 `yaml:"right"`
}

func DefaultStage() Stage {
	return Stage{Top: 300, Left: 0, Bottom: 0, Right: 300}
}

func (s Stage) Width() float64  { return s.Right - s.Left }
func (s Stage) Height() float64 { return s.Top - s.Bottom }

func (s Stage) Validate() error {
	if !(s.Right > s.Left) || !(s.Top > s.Bottom) {
		return fmt.Errorf("stage %+v: %w", s, dynamo.ErrParameterBounds)
	}
	return nil
}

// Wall is a static parallelogram outline anchored at Position and spanned
// by Side1 and Side2. Either side may be zero, which degenerates the wall
// into a single line or a point.
type Wall struct {
	Position dynamo.Vec2
	Side1    dynamo.Vec2
	Side2    dynamo.Vec2
}

func NewWall(pos, side1, side2 dynamo.Vec2) Wall {
	return Wall{Position: pos, Side1: side1, Side2: side2}
}

// Segment is a directed line segment starting at Start.
type Segment struct {
	Start  dynamo.Vec2
	Extent dynamo.Vec2
}

func (s Segment) End() dynamo.Vec2 { return s.Start.Add(s.Extent) }

// Segments returns the four outline edges in resolution order.
func (w Wall) Segments() [4]Segment {
	return [4]Segment{
		{w.Position, w.Side1},
		{w.Position, w.Side2},
		{w.Position.Add(w.Side1), w.Side2},
		{w.Position.Add(w.Side2), w.Side1},
	}
}

// Corners returns the outline vertices in drawing order.
func (w Wall) Corners() [4]dynamo.Vec2 {
	c1 := w.Position.Add(w.Side1)
	return [4]dynamo.Vec2{
		w.Position,
		c1,
		c1.Add(w.Side2),
		w.Position.Add(w.Side2),
	}
}

func (w Wall) Validate() error {
	if !w.Position.IsFinite() || !w.Side1.IsFinite() || !w.Side2.IsFinite() {
		return fmt.Errorf("wall %+v: %w", w, dynamo.ErrParameterBounds)
	}
	return nil
}
