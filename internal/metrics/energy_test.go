package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
	"github.com/san-kum/trampball/internal/sim"
)

func newWorld(t *testing.T, gravity dynamo.Vec2, balls ...*physics.Ball) *sim.World {
	t.Helper()
	w := sim.NewWorld()
	if err := w.SetGravity(gravity); err != nil {
		t.Fatal(err)
	}
	for _, b := range balls {
		if _, err := w.AddBall(b); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func newBall(pos, vel dynamo.Vec2, radius, mass float64) *physics.Ball {
	b := physics.NewBall()
	b.SetPosition(pos)
	b.SetVelocity(vel)
	b.SetRadius(radius)
	b.SetMass(mass)
	return b
}

func TestTotalEnergy(t *testing.T) {
	w := newWorld(t, dynamo.V(0, -10),
		newBall(dynamo.V(100, 200), dynamo.V(3, 4), 10, 2),
		newBall(dynamo.V(50, 0), dynamo.Vec2{}, 10, 1),
	)

	// 0.5*2*25 + 2*10*200
	if got := TotalEnergy(w); math.Abs(got-4025) > 1e-9 {
		t.Errorf("expected energy 4025, got %f", got)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy()
	w := newWorld(t, dynamo.V(0, -10), newBall(dynamo.V(100, 200), dynamo.V(3, 4), 10, 2))

	m.Observe(w, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}
	if len(m.Samples()) != 1 {
		t.Errorf("expected 1 sample, got %d", len(m.Samples()))
	}

	m.Reset()
	if m.Value() != 0 || len(m.Samples()) != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDriftFreeFall(t *testing.T) {
	w := newWorld(t, dynamo.V(0, -700), newBall(dynamo.V(150, 250), dynamo.Vec2{}, 10, 100))
	m := NewEnergyDrift()

	for i := 0; i < 20; i++ {
		m.Observe(w, 0)
		w.Step(10)
	}

	// The Taylor step is exact under constant acceleration.
	if m.Value() > 1e-9 {
		t.Errorf("free fall drifted by %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}
