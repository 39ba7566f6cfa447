package physics

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/integrators"
)

const (
	DefaultSpringConstant = 80000.0
	DefaultDamping        = 2.0
	DefaultDensity        = 0.1 // mass per pixel of baseline
)

// Attachment couples one ball to the anchors currently supporting it.
// It refers to the ball by handle only.
type Attachment struct {
	Ball BallID
	// Contacts holds the anchor indices touched on the last tick. Its
	// capacity is the trampoline's anchor count.
	Contacts []int
	// Normal is the unit direction in which the mesh pushes the ball.
	Normal dynamo.Vec2
}

func newAttachment(id BallID, anchors int) *Attachment {
	return &Attachment{Ball: id, Contacts: make([]int, 0, anchors)}
}

func (a *Attachment) hasContact(i int) bool {
	for _, c := range a.Contacts {
		if c == i {
			return true
		}
	}
	return false
}

// Trampoline is an elastic chain of N anchors laid out along a straight
// baseline from (X, Y) to (X+Width, Y+Rise). Each anchor carries an offset
// from its rest point and a velocity. Anchors 0 and N-1 are pinned: their
// offset and velocity are always zero.
//
// offsets and velocities are guarded by mu. Attachments belong to the
// simulation tick and are only read elsewhere through Attachments().
type Trampoline struct {
	x, y        float64
	width, rise float64
	k           float64
	damping     float64
	density     float64

	mu         sync.Mutex
	offsets    []dynamo.Vec2
	velocities []dynamo.Vec2

	attachments []*Attachment
	contactBuf  []int
	prevOffsets []dynamo.Vec2

	mesh  *meshSystem
	integ *integrators.RK4
}

// Anchor is a copy of one anchor's state.
type Anchor struct {
	Offset   dynamo.Vec2
	Velocity dynamo.Vec2
}

func NewTrampoline(anchors int) (*Trampoline, error) {
	if anchors < 2 {
		return nil, fmt.Errorf("trampoline needs at least 2 anchors, got %d: %w", anchors, dynamo.ErrParameterBounds)
	}
	t := &Trampoline{
		k:           DefaultSpringConstant,
		damping:     DefaultDamping,
		density:     DefaultDensity,
		offsets:     make([]dynamo.Vec2, anchors),
		velocities:  make([]dynamo.Vec2, anchors),
		contactBuf:  make([]int, 0, anchors),
		prevOffsets: make([]dynamo.Vec2, anchors),
		integ:       integrators.NewRK4(),
	}
	t.mesh = newMeshSystem(t)
	return t, nil
}

// SetPlacement positions the baseline. rise is the vertical extent of a
// sloped baseline and is zero for a level trampoline.
func (t *Trampoline) SetPlacement(x, y, width, rise float64) {
	t.x, t.y, t.width, t.rise = x, y, width, rise
}

// SetOffset sets the initial displacement of an interior anchor. Pinned
// anchors only accept the zero offset.
func (t *Trampoline) SetOffset(i int, off dynamo.Vec2) error {
	n := len(t.offsets)
	if i < 0 || i >= n {
		return fmt.Errorf("anchor %d of %d: %w", i, n, dynamo.ErrParameterBounds)
	}
	if (i == 0 || i == n-1) && off != (dynamo.Vec2{}) {
		return fmt.Errorf("anchor %d is pinned: %w", i, dynamo.ErrParameterBounds)
	}
	t.mu.Lock()
	t.offsets[i] = off
	t.mu.Unlock()
	return nil
}

func (t *Trampoline) SetSpringConstant(k float64) { t.k = k }
func (t *Trampoline) SetDensity(d float64)        { t.density = d }
func (t *Trampoline) SetDamping(d float64)        { t.damping = d }

func (t *Trampoline) SpringConstant() float64 { return t.k }
func (t *Trampoline) Density() float64        { return t.density }
func (t *Trampoline) Damping() float64        { return t.damping }
func (t *Trampoline) Width() float64          { return t.width }
func (t *Trampoline) NumAnchors() int         { return len(t.offsets) }

func (t *Trampoline) Validate() error {
	switch {
	case !(t.width > 0) || math.IsInf(t.width, 0):
		return fmt.Errorf("trampoline width %v: %w", t.width, dynamo.ErrParameterBounds)
	case !(t.k > 0) || math.IsInf(t.k, 0):
		return fmt.Errorf("trampoline spring constant %v: %w", t.k, dynamo.ErrParameterBounds)
	case !(t.density > 0) || math.IsInf(t.density, 0):
		return fmt.Errorf("trampoline density %v: %w", t.density, dynamo.ErrParameterBounds)
	case !(t.damping >= 0) || math.IsInf(t.damping, 0):
		return fmt.Errorf("trampoline damping %v: %w", t.damping, dynamo.ErrParameterBounds)
	case math.IsNaN(t.x) || math.IsNaN(t.y) || math.IsNaN(t.rise):
		return fmt.Errorf("trampoline placement: %w", dynamo.ErrParameterBounds)
	}
	return nil
}

// spacing is the baseline distance between neighbouring anchors.
func (t *Trampoline) spacing() dynamo.Vec2 {
	n := float64(len(t.offsets) - 1)
	return dynamo.Vec2{X: t.width / n, Y: t.rise / n}
}

// segmentMass is the mesh mass carried by one anchor.
func (t *Trampoline) segmentMass() float64 {
	return t.density * t.spacing().Len()
}

// restPosition is the world position of anchor i with zero offset.
func (t *Trampoline) restPosition(i int) dynamo.Vec2 {
	return dynamo.Vec2{X: t.x, Y: t.y}.Add(t.spacing().Scale(float64(i)))
}

// anchorPosition reads offsets without locking; only the tick goroutine,
// which is the sole writer, may call it.
func (t *Trampoline) anchorPosition(i int) dynamo.Vec2 {
	return t.restPosition(i).Add(t.offsets[i])
}

// AnchorPositions returns the world position of every anchor.
func (t *Trampoline) AnchorPositions() []dynamo.Vec2 {
	out := make([]dynamo.Vec2, len(t.offsets))
	t.mu.Lock()
	copy(out, t.offsets)
	t.mu.Unlock()
	for i := range out {
		out[i] = out[i].Add(t.restPosition(i))
	}
	return out
}

// Anchors returns a copy of every anchor's offset and velocity.
func (t *Trampoline) Anchors() []Anchor {
	out := make([]Anchor, len(t.offsets))
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range out {
		out[i] = Anchor{Offset: t.offsets[i], Velocity: t.velocities[i]}
	}
	return out
}

// Attachments returns copies of the current attachments. Tick goroutine only.
func (t *Trampoline) Attachments() []Attachment {
	out := make([]Attachment, len(t.attachments))
	for i, a := range t.attachments {
		out[i] = Attachment{
			Ball:     a.Ball,
			Contacts: append([]int(nil), a.Contacts...),
			Normal:   a.Normal,
		}
	}
	return out
}

// AttachmentFor returns the attachment for ball id, if any.
func (t *Trampoline) AttachmentFor(id BallID) *Attachment {
	for _, a := range t.attachments {
		if a.Ball == id {
			return a
		}
	}
	return nil
}

// Detach drops the attachment for ball id. Reports whether one existed.
func (t *Trampoline) Detach(id BallID) bool {
	for i, a := range t.attachments {
		if a.Ball == id {
			t.attachments = append(t.attachments[:i], t.attachments[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Trampoline) attach(id BallID) *Attachment {
	a := newAttachment(id, len(t.offsets))
	t.attachments = append(t.attachments, a)
	return a
}
