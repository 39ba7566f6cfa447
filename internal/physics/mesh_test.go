package physics

import (
	"math"
	"testing"

	"github.com/san-kum/trampball/internal/dynamo"
)

var gravity = dynamo.V(0, -700)

func TestAdvanceZeroDuration(t *testing.T) {
	tr := newFlatTrampoline(t, 11, 100)
	if stats := tr.Advance(0, gravity, BallIndex{}); stats != (StepStats{}) {
		t.Errorf("Advance(0) = %+v, want zero stats", stats)
	}
	for i, a := range tr.Anchors() {
		if a != (Anchor{}) {
			t.Errorf("anchor %d moved: %+v", i, a)
		}
	}
}

func TestAdvanceTwoAnchorsStayPinned(t *testing.T) {
	tr := newFlatTrampoline(t, 2, 100)
	stats := tr.Advance(10, gravity, BallIndex{})
	if stats.SubSteps < 1 {
		t.Errorf("SubSteps = %d, want at least 1", stats.SubSteps)
	}
	assertPinned(t, tr)
}

func TestAdvanceSagsSymmetrically(t *testing.T) {
	tr := newFlatTrampoline(t, 11, 100)
	for i := 0; i < 50; i++ {
		tr.Advance(10, gravity, BallIndex{})
		assertPinned(t, tr)
	}

	anchors := tr.Anchors()
	n := len(anchors)
	for i := 1; i < n-1; i++ {
		if anchors[i].Offset.Y >= 0 {
			t.Errorf("anchor %d did not sag: %v", i, anchors[i].Offset)
		}
		mirror := anchors[n-1-i].Offset
		if !near(anchors[i].Offset.Y, mirror.Y, 1e-6) || !near(anchors[i].Offset.X, -mirror.X, 1e-6) {
			t.Errorf("anchor %d offset %v does not mirror %v", i, anchors[i].Offset, mirror)
		}
	}
	if mid := anchors[n/2].Offset; !near(mid.X, 0, 1e-6) {
		t.Errorf("middle anchor drifted sideways: %v", mid)
	}
}

func TestSubStepsCappedByMinSubStep(t *testing.T) {
	tests := []struct {
		name string
		k    float64
		dtMs float64
		want int
	}{
		{"very stiff", 1e12, 10, 100},
		{"very stiff short tick", 1e12, 1, 10},
		{"tiny tick", 80000, 0.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFlatTrampoline(t, 11, 100)
			tr.SetSpringConstant(tt.k)
			stats := tr.Advance(tt.dtMs, gravity, BallIndex{})
			if stats.SubSteps != tt.want {
				t.Errorf("SubSteps = %d, want %d", stats.SubSteps, tt.want)
			}
		})
	}
}

func TestSubStepsGrowWithStiffness(t *testing.T) {
	soft := newFlatTrampoline(t, 11, 100)
	stiff := newFlatTrampoline(t, 11, 100)
	stiff.SetSpringConstant(soft.SpringConstant() * 100)

	s1 := soft.Advance(10, gravity, BallIndex{})
	s2 := stiff.Advance(10, gravity, BallIndex{})
	if s2.SubSteps <= s1.SubSteps {
		t.Errorf("stiff mesh took %d sub-steps, soft took %d", s2.SubSteps, s1.SubSteps)
	}
}

func TestAdvanceCarriesAttachedBall(t *testing.T) {
	tr := newFlatTrampoline(t, 21, 200)
	b := newTestBall(1, dynamo.V(100, 9), dynamo.V(0, -300), 10, 100)
	balls := BallIndex{1: b}

	if !tr.Collide(b) {
		t.Fatal("expected contact")
	}
	start := b.Position()
	tr.Advance(10, gravity, balls)

	if got := b.Position(); got.Y >= start.Y {
		t.Errorf("ball at %v did not move down with the mesh from %v", got, start)
	}
	if got := b.Velocity(); got.Y >= 0 {
		t.Errorf("ball velocity %v, want downward", got)
	}
	if !near(b.Position().X, 100, 1e-9) {
		t.Errorf("ball drifted sideways: %v", b.Position())
	}
	assertPinned(t, tr)
}

func TestPulls(t *testing.T) {
	tests := []struct {
		n, d float64
		want bool
	}{
		{1, -1, true},
		{-1, 1, true},
		{1, 1, false},
		{-1, -1, false},
		{0, 5, false},
		{1, 0, false},
	}
	for _, tt := range tests {
		if got := pulls(tt.n, tt.d); got != tt.want {
			t.Errorf("pulls(%v, %v) = %v, want %v", tt.n, tt.d, got, tt.want)
		}
	}
}

// runDrop drops a ball onto the centre of a 49-anchor mesh and ticks the
// mesh, the ball and the contact tracker together.
func runDrop(t *testing.T, k float64, ticks int, check func(tick int, tr *Trampoline, b *Ball)) {
	t.Helper()
	tr := newFlatTrampoline(t, 49, 480)
	tr.SetSpringConstant(k)
	b := newTestBall(1, dynamo.V(240, 225), dynamo.Vec2{}, 25, 100)
	balls := BallIndex{1: b}

	for i := 0; i < ticks; i++ {
		tr.Collide(b)
		stats := tr.Advance(10, gravity, balls)
		if stats.SubSteps > 100 {
			t.Fatalf("tick %d: %d sub-steps exceeds the 0.1ms floor", i, stats.SubSteps)
		}
		b.Integrate(0.01, gravity)
		check(i, tr, b)
	}
}

func TestMeshStableWhenStiff(t *testing.T) {
	for _, k := range []float64{120000, 120000 * 100} {
		runDrop(t, k, 1000, func(tick int, tr *Trampoline, b *Ball) {
			for i, a := range tr.Anchors() {
				if !a.Offset.IsFinite() || !a.Velocity.IsFinite() {
					t.Fatalf("k=%v tick %d: anchor %d diverged: %+v", k, tick, i, a)
				}
			}
			s := b.Snapshot()
			if !s.Position.IsFinite() || !s.Velocity.IsFinite() {
				t.Fatalf("k=%v tick %d: ball diverged: %+v", k, tick, s)
			}
			assertPinned(t, tr)
		})
	}
}

func TestDropEngagesMesh(t *testing.T) {
	engaged := false
	lowest := math.Inf(1)
	runDrop(t, 120000, 300, func(_ int, tr *Trampoline, b *Ball) {
		if b.Driven() {
			engaged = true
		}
		lowest = math.Min(lowest, b.Position().Y)
	})
	if !engaged {
		t.Fatal("ball never attached to the mesh")
	}
	if lowest >= 10 {
		t.Errorf("ball never depressed the mesh, lowest centre %v", lowest)
	}
}

func BenchmarkAdvanceLoaded(b *testing.B) {
	tr := newFlatTrampoline(b, 49, 480)
	ball := newTestBall(1, dynamo.V(240, 20), dynamo.V(0, -300), 25, 100)
	balls := BallIndex{1: ball}
	tr.Collide(ball)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Advance(10, gravity, balls)
	}
}
