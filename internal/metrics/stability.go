package metrics

import (
	"github.com/san-kum/trampball/internal/sim"
)

// Stability is the fraction of ticks in which no trampoline anchor strayed
// further than threshold pixels from its rest point.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "mesh_stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *sim.World, t float64) {
	s.samples++
	limit := s.threshold * s.threshold
	for _, tr := range w.Trampolines() {
		for _, a := range tr.Anchors() {
			// Written so that NaN counts as a violation.
			if !(a.Offset.LenSq() <= limit) {
				s.violations++
				return
			}
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Attached is the mean number of balls resting on a trampoline per tick.
type Attached struct {
	name    string
	sum     float64
	samples int
}

func NewAttached() *Attached {
	return &Attached{name: "attached_mean"}
}

func (a *Attached) Name() string { return a.name }

func (a *Attached) Observe(w *sim.World, t float64) {
	for _, b := range w.Balls() {
		if b.Snapshot().Driven {
			a.sum++
		}
	}
	a.samples++
}

func (a *Attached) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Attached) Reset() {
	a.sum = 0
	a.samples = 0
}
