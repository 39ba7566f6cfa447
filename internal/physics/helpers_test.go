package physics

import (
	"math"
	"testing"

	"github.com/san-kum/trampball/internal/dynamo"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func nearVec(a, b dynamo.Vec2, tol float64) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol)
}

func newTestBall(id BallID, pos, vel dynamo.Vec2, radius, mass float64) *Ball {
	b := NewBall()
	b.ID = id
	b.SetPosition(pos)
	b.SetVelocity(vel)
	b.SetRadius(radius)
	b.SetMass(mass)
	return b
}

// newFlatTrampoline lays anchors out along y=0 from x=0 to x=width.
func newFlatTrampoline(t testing.TB, anchors int, width float64) *Trampoline {
	t.Helper()
	tr, err := NewTrampoline(anchors)
	if err != nil {
		t.Fatalf("NewTrampoline(%d): %v", anchors, err)
	}
	tr.SetPlacement(0, 0, width, 0)
	return tr
}

func assertPinned(t *testing.T, tr *Trampoline) {
	t.Helper()
	anchors := tr.Anchors()
	for _, i := range []int{0, len(anchors) - 1} {
		if anchors[i].Offset != (dynamo.Vec2{}) || anchors[i].Velocity != (dynamo.Vec2{}) {
			t.Fatalf("anchor %d not pinned: %+v", i, anchors[i])
		}
	}
}
