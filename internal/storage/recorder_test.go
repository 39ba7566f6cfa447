package storage

import (
	"testing"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
	"github.com/san-kum/trampball/internal/sim"
)

func TestRecorder(t *testing.T) {
	w := sim.NewWorld()
	for _, x := range []float64{50, 150} {
		b := physics.NewBall()
		b.SetPosition(dynamo.V(x, 200))
		b.SetRadius(10)
		if _, err := w.AddBall(b); err != nil {
			t.Fatal(err)
		}
	}

	r := NewRecorder(2)
	for tick := 0; tick < 5; tick++ {
		stats := w.Step(10)
		_, now := w.Elapsed()
		r.OnTick(w, tick, now, stats)
	}

	rows := r.Rows()
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows (ticks 0, 2, 4 x 2 balls), got %d", len(rows))
	}
	if rows[0].Tick != 0 || rows[2].Tick != 2 || rows[4].Tick != 4 {
		t.Errorf("unexpected ticks in %+v", rows)
	}

	times, heights := Series(rows, 2)
	if len(times) != 3 || len(heights) != 3 {
		t.Fatalf("series for ball 2 has %d points", len(times))
	}
	if !(heights[0] > heights[2]) {
		t.Errorf("falling ball did not fall: %v", heights)
	}
}
