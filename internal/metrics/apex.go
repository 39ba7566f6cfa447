package metrics

import (
	"github.com/san-kum/trampball/internal/physics"
	"github.com/san-kum/trampball/internal/sim"
)

// Apex follows one ball and records its height each time its vertical
// velocity turns from rising to falling. Value is the latest apex height,
// or the starting height before the first apex.
type Apex struct {
	name string
	ball physics.BallID

	started     bool
	start       float64
	prevSign    int
	signChanges int
	apexes      []float64
}

func NewApex(ball physics.BallID) *Apex {
	return &Apex{name: "apex", ball: ball}
}

func (a *Apex) Name() string { return a.name }

func (a *Apex) Observe(w *sim.World, t float64) {
	b := w.Ball(a.ball)
	if b == nil {
		return
	}
	s := b.Snapshot()
	if !a.started {
		a.started = true
		a.start = s.Position.Y
	}

	sign := 0
	switch {
	case s.Velocity.Y > 0:
		sign = 1
	case s.Velocity.Y < 0:
		sign = -1
	}
	if sign == 0 {
		return
	}
	if a.prevSign != 0 && sign != a.prevSign {
		a.signChanges++
		if sign < 0 {
			a.apexes = append(a.apexes, s.Position.Y)
		}
	}
	a.prevSign = sign
}

func (a *Apex) Value() float64 {
	if len(a.apexes) == 0 {
		return a.start
	}
	return a.apexes[len(a.apexes)-1]
}

// Start is the height at the first observation.
func (a *Apex) Start() float64 { return a.start }

// SignChanges counts vertical velocity reversals in either direction.
func (a *Apex) SignChanges() int { return a.signChanges }

// Apexes returns every recorded apex height in order.
func (a *Apex) Apexes() []float64 { return append([]float64(nil), a.apexes...) }

func (a *Apex) Reset() {
	a.started = false
	a.start = 0
	a.prevSign = 0
	a.signChanges = 0
	a.apexes = a.apexes[:0]
}
