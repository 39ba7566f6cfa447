package physics

import "github.com/san-kum/trampball/internal/dynamo"

// Collide runs contact tracking for one ball against t and reports whether
// the ball touches any anchor.
//
// A touching ball becomes driven and gets an attachment (created on first
// contact). The ball's momentum is merged with the touched anchors' mesh
// mass; every anchor that was not touched on the previous tick (pinned ends
// excluded) takes the merged velocity, and so does the ball if any such new
// contact exists. When several balls share an anchor, the last ball
// processed wins the anchor's velocity.
//
// A ball touching nothing loses its attachment and is released. A contact
// set whose anchor-to-centre directions cancel out is treated as no
// contact.
func (t *Trampoline) Collide(b *Ball) bool {
	n := len(t.offsets)
	pos, r := b.position, b.radius
	rSq := r * r

	contacts := t.contactBuf[:0]
	var velSum, dirSum dynamo.Vec2
	for i := 0; i < n; i++ {
		p := t.anchorPosition(i)
		if p.X < pos.X-r || p.X > pos.X+r || p.Y < pos.Y-r || p.Y > pos.Y+r {
			continue
		}
		d := pos.Sub(p)
		if d.LenSq() > rSq {
			continue
		}
		contacts = append(contacts, i)
		velSum = velSum.Add(t.velocities[i])
		if u, ok := d.Normalize(); ok {
			dirSum = dirSum.Add(u)
		}
	}
	t.contactBuf = contacts

	normal, ok := dirSum.Normalize()
	if len(contacts) == 0 || !ok {
		if t.Detach(b.ID) {
			b.setDriven(false)
		}
		return false
	}
	b.setDriven(true)

	dm := t.segmentMass()
	momentum := velSum.Scale(dm).Add(b.velocity.Scale(b.mass))
	merged := momentum.Scale(1 / (dm*float64(len(contacts)) + b.mass))

	a := t.AttachmentFor(b.ID)
	if a == nil {
		a = t.attach(b.ID)
	}
	a.Normal = normal

	anyNew := false
	t.mu.Lock()
	for _, k := range contacts {
		if k == 0 || k == n-1 || a.hasContact(k) {
			continue
		}
		t.velocities[k] = merged
		anyNew = true
	}
	t.mu.Unlock()

	if anyNew {
		b.setMotion(b.position, merged)
	}

	a.Contacts = append(a.Contacts[:0], contacts...)
	return true
}

// SyncDriven recomputes b's driven flag from the attachments held by all
// trampolines. A ball released by one trampoline while still resting on
// another stays driven.
func SyncDriven(b *Ball, trampolines []*Trampoline) bool {
	driven := false
	for _, t := range trampolines {
		if t.AttachmentFor(b.ID) != nil {
			driven = true
			break
		}
	}
	b.setDriven(driven)
	return driven
}
