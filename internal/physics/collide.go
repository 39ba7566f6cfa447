package physics

import (
	"math"

	"github.com/san-kum/trampball/internal/dynamo"
)

// CollideEdges keeps the ball inside the stage. Each axis is handled
// independently: an overlapping ball is pushed back by the overlap and, if
// it is moving outwards, its velocity on that axis is reflected and scaled
// by its bounce factor. Reports whether the ball touched any edge.
func CollideEdges(b *Ball, s Stage) bool {
	pos, vel := b.position, b.velocity
	r := b.radius
	hit := false

	if overlap := pos.X - r - s.Left; overlap <= 0 {
		pos.X -= overlap
		if vel.X < 0 {
			vel.X *= -b.bounce
		}
		hit = true
	} else if overlap := pos.X + r - s.Right; overlap >= 0 {
		pos.X -= overlap
		if vel.X > 0 {
			vel.X *= -b.bounce
		}
		hit = true
	}

	if overlap := pos.Y - r - s.Bottom; overlap <= 0 {
		pos.Y -= overlap
		if vel.Y < 0 {
			vel.Y *= -b.bounce
		}
		hit = true
	} else if overlap := pos.Y + r - s.Top; overlap >= 0 {
		pos.Y -= overlap
		if vel.Y > 0 {
			vel.Y *= -b.bounce
		}
		hit = true
	}

	if hit {
		b.setMotion(pos, vel)
	}
	return hit
}

// CollideWall resolves the ball against the four outline segments of w in
// sequence. Reports whether any segment was hit.
func CollideWall(b *Ball, w Wall) bool {
	hit := false
	for _, seg := range w.Segments() {
		if collideSegment(b, seg) {
			hit = true
		}
	}
	return hit
}

func collideSegment(b *Ball, seg Segment) bool {
	length := seg.Extent.Len()
	if length == 0 {
		return false
	}
	dir := seg.Extent.Scale(1 / length)

	pos, vel := b.position, b.velocity
	r := b.radius

	rel := pos.Sub(seg.Start)
	side := dir.Cross(rel)
	normal := dir.Perp()
	if side < 0 {
		normal = normal.Scale(-1)
	}

	var dist float64
	push := normal
	switch along := rel.Dot(dir); {
	case along < 0, along > length:
		// Corner: nearest feature is an endpoint.
		offset := rel
		if along > length {
			offset = pos.Sub(seg.End())
		}
		dist = offset.Len()
		if dist > r {
			return false
		}
		n, ok := offset.Normalize()
		if !ok {
			return false
		}
		push = n
	default:
		dist = math.Abs(side)
		if dist > r {
			return false
		}
	}

	alongSpeed := vel.Dot(dir)
	alongVel := dir.Scale(alongSpeed)
	perpVel := vel.Sub(alongVel)
	if perpVel.Dot(normal) < 0 {
		perpVel = perpVel.Scale(-b.bounce)
	}

	pos = pos.Add(push.Scale(r - dist))
	b.setMotion(pos, alongVel.Add(perpVel))
	return true
}

// CollideBalls separates two overlapping balls and exchanges momentum along
// each axis in proportion to the separation normal. Momentum is only
// exchanged while the balls approach each other. Positions are corrected
// along the normal so the centres end exactly one radius-sum apart, with
// each ball moving in proportion to its own radius.
func CollideBalls(b1, b2 *Ball) bool {
	minDist := b1.radius + b2.radius
	sep := b2.position.Sub(b1.position)
	distSq := sep.LenSq()
	if distSq >= minDist*minDist {
		return false
	}

	n, ok := sep.Normalize()
	if !ok {
		return false
	}
	dist := math.Sqrt(distSq)

	v1, v2 := b1.velocity, b2.velocity
	// Overlapping balls that already move apart keep their velocities.
	if v2.Sub(v1).Dot(n) < 0 {
		nx, ny := math.Abs(n.X), math.Abs(n.Y)
		transfer := dynamo.Vec2{
			X: (v1.X*b1.mass - v2.X*b2.mass) * nx,
			Y: (v1.Y*b1.mass - v2.Y*b2.mass) * ny,
		}
		v1 = v1.Sub(transfer.Scale(1 / b1.mass))
		v2 = v2.Add(transfer.Scale(1 / b2.mass))
	}

	share := b1.radius / minDist
	depth := minDist - dist
	p1 := b1.position.Sub(n.Scale(depth * share))
	p2 := b2.position.Add(n.Scale(depth * (1 - share)))

	b1.setMotion(p1, v1)
	b2.setMotion(p2, v2)
	return true
}
