package physics

import (
	"math"

	"github.com/san-kum/trampball/internal/dynamo"
)

// MinSubStep is the smallest sub-step the mesh integrator will take, in
// seconds. It bounds the work done per tick for very stiff meshes.
const MinSubStep = 1e-4

// tauSafety scales how many sub-steps fit in one oscillation period of a
// single segment.
const tauSafety = 2.1

// StepStats describes one call to Advance.
type StepStats struct {
	SubSteps  int
	PeakSpeed float64
}

// meshSystem is the trampoline's anchor chain as an ODE system.
// State layout per anchor i: [4i]=offset.X [4i+1]=offset.Y [4i+2]=vel.X [4i+3]=vel.Y
type meshSystem struct {
	t        *Trampoline
	gravity  dynamo.Vec2
	attached []float64
	state    dynamo.State
	deriv    dynamo.State
}

func newMeshSystem(t *Trampoline) *meshSystem {
	n := len(t.offsets)
	return &meshSystem{
		t:        t,
		attached: make([]float64, n),
		state:    make(dynamo.State, n*4),
		deriv:    make(dynamo.State, n*4),
	}
}

func (m *meshSystem) StateDim() int   { return len(m.state) }
func (m *meshSystem) ControlDim() int { return 0 }

// Derive evaluates Hooke's law against both neighbouring segments (rest
// length = baseline spacing), velocity damping and gravity. Each interior
// anchor's mass is its segment mass plus its share of attached balls.
func (m *meshSystem) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	t := m.t
	n := len(t.offsets)
	d := m.deriv
	for i := range d {
		d[i] = 0
	}

	rest := t.spacing()
	segMass := t.segmentMass()
	for i := 1; i < n-1; i++ {
		off := dynamo.Vec2{X: x[4*i], Y: x[4*i+1]}
		vel := dynamo.Vec2{X: x[4*i+2], Y: x[4*i+3]}
		prev := dynamo.Vec2{X: x[4*(i-1)], Y: x[4*(i-1)+1]}
		next := dynamo.Vec2{X: x[4*(i+1)], Y: x[4*(i+1)+1]}

		left := rest.Add(off.Sub(prev))
		right := rest.Add(next.Sub(off))

		kOverM := t.k / (segMass + m.attached[i])
		accel := right.Sub(left).Scale(kOverM).
			Sub(vel.Scale(t.damping)).
			Add(m.gravity)

		d[4*i] = vel.X
		d[4*i+1] = vel.Y
		d[4*i+2] = accel.X
		d[4*i+3] = accel.Y
	}
	return d
}

func (m *meshSystem) pack() dynamo.State {
	t := m.t
	for i := range t.offsets {
		m.state[4*i] = t.offsets[i].X
		m.state[4*i+1] = t.offsets[i].Y
		m.state[4*i+2] = t.velocities[i].X
		m.state[4*i+3] = t.velocities[i].Y
	}
	return m.state
}

// distributeMass spreads each attached ball's mass evenly over its contacts.
func (m *meshSystem) distributeMass(balls BallResolver) {
	for i := range m.attached {
		m.attached[i] = 0
	}
	for _, a := range m.t.attachments {
		b := balls.Ball(a.Ball)
		if b == nil || len(a.Contacts) == 0 {
			continue
		}
		share := b.mass / float64(len(a.Contacts))
		for _, i := range a.Contacts {
			m.attached[i] += share
		}
	}
}

// subSteps picks how many RK4 steps to split dt into. The step must resolve
// the oscillation period of a single segment, and the peak vertical anchor
// speed adds further steps. MinSubStep caps the count.
func (t *Trampoline) subSteps(x dynamo.State, dtMs float64) (int, float64) {
	dt := dtMs / 1000
	d0 := t.mesh.Derive(x, nil, 0)

	var vMax float64
	for i := range t.offsets {
		vy := math.Abs(x[4*i+3] + d0[4*i+3]*dt/2)
		if vy > vMax {
			vMax = vy
		}
	}

	tauMs := 2e3 * math.Sqrt(t.segmentMass()/t.k)
	steps := math.Ceil(vMax*dt + tauSafety*dtMs/tauMs)

	limit := math.Floor(dt/MinSubStep + 1e-9)
	if math.IsNaN(steps) || steps > limit {
		steps = limit
	}
	if steps < 1 {
		steps = 1
	}
	return int(steps), vMax
}

// Advance integrates the mesh forward by dtMs milliseconds with RK4,
// splitting the tick into sub-steps for stability, and carries attached
// balls along after every sub-step.
func (t *Trampoline) Advance(dtMs float64, gravity dynamo.Vec2, balls BallResolver) StepStats {
	if !(dtMs > 0) {
		return StepStats{}
	}

	m := t.mesh
	m.gravity = gravity
	m.distributeMass(balls)

	x := m.pack()
	steps, peak := t.subSteps(x, dtMs)
	h := dtMs / 1000 / float64(steps)
	last := len(t.offsets) - 1

	for s := 0; s < steps; s++ {
		if s > 0 {
			m.distributeMass(balls)
		}
		copy(t.prevOffsets, t.offsets)

		copy(x, t.integ.Step(m, x, nil, 0, h))
		for j := 0; j < 4; j++ {
			x[j] = 0
			x[4*last+j] = 0
		}

		t.mu.Lock()
		for i := range t.offsets {
			t.offsets[i] = dynamo.Vec2{X: x[4*i], Y: x[4*i+1]}
			t.velocities[i] = dynamo.Vec2{X: x[4*i+2], Y: x[4*i+3]}
		}
		t.mu.Unlock()

		t.carryAttached(h, gravity, balls)
	}

	return StepStats{SubSteps: steps, PeakSpeed: peak}
}

// carryAttached moves every attached ball with the mesh after a sub-step of
// dt seconds. The ball takes the normal velocity of its fastest contact
// anchor (fastest along the coupling normal), keeps its own tangential
// velocity, and picks up the tangential part of gravity. The mesh can push
// a ball but never pull it: an axis on which the mesh would pull keeps the
// ball's own velocity and moves by velocity*dt.
func (t *Trampoline) carryAttached(dt float64, gravity dynamo.Vec2, balls BallResolver) {
	for _, a := range t.attachments {
		b := balls.Ball(a.Ball)
		if b == nil || len(a.Contacts) == 0 {
			continue
		}
		n := a.Normal

		best := -1.0
		var push, delta dynamo.Vec2
		for _, i := range a.Contacts {
			vn := t.velocities[i].Dot(n)
			if math.Abs(vn) > best {
				best = math.Abs(vn)
				push = n.Scale(vn)
				delta = n.Scale(t.offsets[i].Sub(t.prevOffsets[i]).Dot(n))
			}
		}

		slip := gravity.Sub(n.Scale(gravity.Dot(n))).Scale(dt)
		v := b.velocity.Add(slip)
		tangent := v.Sub(n.Scale(v.Dot(n)))
		newV := push.Add(tangent)
		change := newV.Sub(v)

		if pulls(n.X, change.X) {
			newV.X = v.X
			if pulls(n.X, delta.X) {
				delta.X = (v.X - tangent.X) * dt
			}
		}
		if pulls(n.Y, change.Y) {
			newV.Y = v.Y
			if pulls(n.Y, delta.Y) {
				delta.Y = (v.Y - tangent.Y) * dt
			}
		}

		b.OverrideState(newV, delta.Add(tangent.Scale(dt)))
	}
}

// pulls reports whether a change d on one axis points against the normal
// component n, i.e. towards the mesh.
func pulls(n, d float64) bool {
	return (n > 0 && d < 0) || (n < 0 && d > 0)
}
