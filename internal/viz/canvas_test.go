package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Fatal("dot not set")
	}
	if c.Grid[1][1] != rune(blank|0x10) {
		t.Errorf("cell = %U, want %U", c.Grid[1][1], rune(blank|0x10))
	}
	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Grid[1][1] != blank {
		t.Errorf("dot still set after Unset: %U", c.Grid[1][1])
	}

	// out of range dots are ignored
	c.Set(-1, 0)
	c.Set(8, 0)
	c.Set(0, 8)
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Errorf("out of range Set drew something: %q", c.String())
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(5, 3)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 5 {
			t.Errorf("line has %d cells, want 5", n)
		}
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 4)
	c.DrawLine(0, 0, 9, 9)
	for i := 0; i <= 9; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d,%d) not set", i, i)
		}
	}
}

func TestCanvasDrawCircle(t *testing.T) {
	tests := []struct {
		name string
		r    int
		dots [][2]int
	}{
		{"point", 0, [][2]int{{10, 10}}},
		{"radius 3", 3, [][2]int{{13, 10}, {7, 10}, {10, 13}, {10, 7}}},
		{"radius 6", 6, [][2]int{{16, 10}, {4, 10}, {10, 16}, {10, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(20, 10)
			c.DrawCircle(10, 10, tt.r)
			for _, d := range tt.dots {
				if !c.IsSet(d[0], d[1]) {
					t.Errorf("dot %v not set", d)
				}
			}
			if tt.r > 0 && c.IsSet(10, 10) {
				t.Error("circle outline filled its centre")
			}
		})
	}
}

func TestViewportProject(t *testing.T) {
	c := NewCanvas(80, 24) // 160x96 dots
	v := NewViewport(physics.DefaultStage(), c)

	tests := []struct {
		p    dynamo.Vec2
		x, y int
	}{
		{dynamo.V(0, 300), 32, 0},
		{dynamo.V(300, 0), 127, 95},
		{dynamo.V(150, 150), 80, 48},
	}
	for _, tt := range tests {
		x, y := v.Project(tt.p)
		if absInt(x-tt.x) > 1 || absInt(y-tt.y) > 1 {
			t.Errorf("Project(%v) = (%d,%d), want (%d,%d)", tt.p, x, y, tt.x, tt.y)
		}
	}
	if got := v.Length(300); got != 95 {
		t.Errorf("Length(300) = %d, want 95", got)
	}
}

func TestDrawWorld(t *testing.T) {
	c := NewCanvas(80, 24)
	v := NewViewport(physics.DefaultStage(), c)

	b := physics.NewBall()
	b.SetPosition(dynamo.V(150, 150))
	b.SetRadius(30)
	tr, err := physics.NewTrampoline(5)
	if err != nil {
		t.Fatal(err)
	}
	tr.SetPlacement(0, 50, 300, 0)

	DrawWorld(c, v, nil, []*physics.Trampoline{tr}, []*physics.Ball{b})

	// stage corners
	if !c.IsSet(32, 0) || !c.IsSet(127, 95) {
		t.Error("stage border not drawn")
	}
	// trampoline baseline at y=50
	x, y := v.Project(dynamo.V(150, 50))
	if !c.IsSet(x, y) {
		t.Errorf("trampoline not drawn at (%d,%d)", x, y)
	}
	// ball outline, right-most point
	x, y = v.Project(dynamo.V(180, 150))
	if !c.IsSet(x-1, y) && !c.IsSet(x, y) && !c.IsSet(x+1, y) {
		t.Errorf("ball outline not drawn near (%d,%d)", x, y)
	}
}
