package metrics

import (
	"math"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/sim"
)

// TotalEnergy is the kinetic plus gravitational potential energy of every
// ball, with potential measured from the origin along gravity.
func TotalEnergy(w *sim.World) float64 {
	g := w.Gravity()
	total := 0.0
	for _, b := range w.Balls() {
		s := b.Snapshot()
		total += ballEnergy(s.Mass, s.Position, s.Velocity, g)
	}
	return total
}

func ballEnergy(mass float64, pos, vel, g dynamo.Vec2) float64 {
	return 0.5*mass*vel.LenSq() - mass*g.Dot(pos)
}

// Energy averages the total ball energy over a run and keeps every sample
// for plotting.
type Energy struct {
	name    string
	samples []float64
	total   float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *sim.World, t float64) {
	v := TotalEnergy(w)
	e.samples = append(e.samples, v)
	e.total += v
}

func (e *Energy) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return e.total / float64(len(e.samples))
}

// Samples returns the recorded energies. The slice is shared.
func (e *Energy) Samples() []float64 { return e.samples }

func (e *Energy) Reset() {
	e.samples = e.samples[:0]
	e.total = 0
}

// EnergyDrift is the largest relative change of total energy from its value
// at the first observed tick.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *sim.World, t float64) {
	energy := TotalEnergy(w)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
