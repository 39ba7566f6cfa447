// Package worldfile reads the line-oriented world description format and
// builds simulation worlds from it.
//
// A world file is a sequence of lines of whitespace-separated tokens:
//
//	STAGE top left bottom right
//	GRAVITY x y
//	BALL x y
//	  RADIUS r
//	  MASS m
//	  BOUNCE f
//	TRAMPOLINE anchors x y width [rise]
//	  K spring-constant
//	  DENSITY density
//	  DAMPING damping
//	WALL x y dx1 dy1 dx2 dy2
//
// Keywords are case-insensitive. Blank lines and lines starting with '#' or
// ';' are ignored. Modifier lines apply to the most recent BALL or
// TRAMPOLINE and are an error anywhere else.
package worldfile

import (
	"fmt"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
	"github.com/san-kum/trampball/internal/sim"
)

type BallSpec struct {
	Line     int
	Position dynamo.Vec2
	Radius   float64
	Mass     float64
	Bounce   float64
}

type TrampolineSpec struct {
	Line    int
	Anchors int
	X, Y    float64
	Width   float64
	Rise    float64
	K       float64
	Density float64
	Damping float64
}

type WallSpec struct {
	Line int
	Wall physics.Wall
}

// Scene is a parsed world description. Build may be called repeatedly to
// get independent worlds.
type Scene struct {
	Stage       physics.Stage
	Gravity     dynamo.Vec2
	Balls       []BallSpec
	Trampolines []TrampolineSpec
	Walls       []WallSpec
}

func NewScene() *Scene {
	return &Scene{
		Stage:   physics.DefaultStage(),
		Gravity: sim.DefaultGravity,
	}
}

func newBallSpec(line int, pos dynamo.Vec2) BallSpec {
	return BallSpec{
		Line:     line,
		Position: pos,
		Radius:   physics.DefaultBallRadius,
		Mass:     physics.DefaultBallMass,
		Bounce:   physics.DefaultBallBounce,
	}
}

func newTrampolineSpec(line, anchors int, x, y, width, rise float64) TrampolineSpec {
	return TrampolineSpec{
		Line:    line,
		Anchors: anchors,
		X:       x,
		Y:       y,
		Width:   width,
		Rise:    rise,
		K:       physics.DefaultSpringConstant,
		Density: physics.DefaultDensity,
		Damping: physics.DefaultDamping,
	}
}

// Build constructs a fresh World. Every entity is validated on the way in;
// the first invalid one aborts the build with its source line.
func (s *Scene) Build() (*sim.World, error) {
	w := sim.NewWorld()
	if err := w.SetStage(s.Stage); err != nil {
		return nil, err
	}
	if err := w.SetGravity(s.Gravity); err != nil {
		return nil, err
	}

	for _, spec := range s.Trampolines {
		t, err := spec.build()
		if err == nil {
			err = w.AddTrampoline(t)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", spec.Line, err)
		}
	}

	for _, spec := range s.Walls {
		if err := w.AddWall(spec.Wall); err != nil {
			return nil, fmt.Errorf("line %d: %w", spec.Line, err)
		}
	}

	for _, spec := range s.Balls {
		b := physics.NewBall()
		b.SetPosition(spec.Position)
		b.SetRadius(spec.Radius)
		b.SetMass(spec.Mass)
		b.SetBounce(spec.Bounce)
		if _, err := w.AddBall(b); err != nil {
			return nil, fmt.Errorf("line %d: %w", spec.Line, err)
		}
	}

	return w, nil
}

func (spec TrampolineSpec) build() (*physics.Trampoline, error) {
	t, err := physics.NewTrampoline(spec.Anchors)
	if err != nil {
		return nil, err
	}
	t.SetPlacement(spec.X, spec.Y, spec.Width, spec.Rise)
	t.SetSpringConstant(spec.K)
	t.SetDensity(spec.Density)
	t.SetDamping(spec.Damping)
	return t, nil
}

// WithSpringFactor returns a copy of s with every trampoline's spring
// constant multiplied by f.
func (s *Scene) WithSpringFactor(f float64) *Scene {
	out := *s
	out.Balls = append([]BallSpec(nil), s.Balls...)
	out.Walls = append([]WallSpec(nil), s.Walls...)
	out.Trampolines = append([]TrampolineSpec(nil), s.Trampolines...)
	for i := range out.Trampolines {
		out.Trampolines[i].K *= f
	}
	return &out
}
