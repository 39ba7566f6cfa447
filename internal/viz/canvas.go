package viz

import (
	"math"
	"strings"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells. Pixel coordinates address the dots,
// so the canvas is Width*2 by Height*4 pixels with y growing downwards.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Pixels returns the canvas size in dots.
func (c *Canvas) Pixels() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (*rune, rune, bool) {
	if x < 0 || y < 0 {
		return nil, 0, false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return nil, 0, false
	}
	return &c.Grid[row][col], rune(pixelMap[y%4][x%2]), true
}

// Set lights the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if r, bit, ok := c.cell(x, y); ok {
		*r |= bit
	}
}

// Unset clears the dot at (x, y).
func (c *Canvas) Unset(x, y int) {
	if r, bit, ok := c.cell(x, y); ok {
		*r &^= bit
		if *r < blank {
			*r = blank
		}
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	r, bit, ok := c.cell(x, y)
	return ok && *r&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws the outline of a circle with the midpoint algorithm.
// A radius below one dot draws a single dot.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps stage coordinates (y up) onto canvas dots (y down),
// preserving the aspect ratio and centring the stage.
type Viewport struct {
	stage  physics.Stage
	scale  float64
	ox, oy float64
}

func NewViewport(s physics.Stage, c *Canvas) Viewport {
	cw, ch := c.Pixels()
	sw, sh := s.Width(), s.Height()
	scale := math.Min(float64(cw-1)/sw, float64(ch-1)/sh)
	return Viewport{
		stage: s,
		scale: scale,
		ox:    (float64(cw-1) - sw*scale) / 2,
		oy:    (float64(ch-1) - sh*scale) / 2,
	}
}

// Project returns the dot closest to world point p.
func (v Viewport) Project(p dynamo.Vec2) (int, int) {
	x := v.ox + (p.X-v.stage.Left)*v.scale
	y := v.oy + (v.stage.Top-p.Y)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

// Length converts a world distance to dots.
func (v Viewport) Length(d float64) int { return int(math.Round(d * v.scale)) }

// Polyline draws connected segments through pts.
func (v Viewport) Polyline(c *Canvas, pts []dynamo.Vec2, closed bool) {
	if len(pts) == 0 {
		return
	}
	for i := 1; i < len(pts); i++ {
		v.line(c, pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 {
		v.line(c, pts[len(pts)-1], pts[0])
	}
	if len(pts) == 1 {
		x, y := v.Project(pts[0])
		c.Set(x, y)
	}
}

func (v Viewport) line(c *Canvas, a, b dynamo.Vec2) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	c.DrawLine(x0, y0, x1, y1)
}

// DrawWorld renders the stage border, walls, trampolines and balls.
func DrawWorld(c *Canvas, v Viewport, walls []physics.Wall, trampolines []*physics.Trampoline, balls []*physics.Ball) {
	s := v.stage
	v.Polyline(c, []dynamo.Vec2{
		dynamo.V(s.Left, s.Top), dynamo.V(s.Right, s.Top),
		dynamo.V(s.Right, s.Bottom), dynamo.V(s.Left, s.Bottom),
	}, true)

	for _, w := range walls {
		corners := w.Corners()
		v.Polyline(c, corners[:], true)
	}
	for _, t := range trampolines {
		v.Polyline(c, t.AnchorPositions(), false)
	}
	for _, b := range balls {
		st := b.Snapshot()
		x, y := v.Project(st.Position)
		c.DrawCircle(x, y, v.Length(st.Radius))
	}
}
