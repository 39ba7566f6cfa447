package dynamo

import (
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, -6)

	if got := a.Add(b); got != V(5, -4) {
		t.Errorf("Add = %v, want (5, -4)", got)
	}
	if got := b.Sub(a); got != V(3, -8) {
		t.Errorf("Sub = %v, want (3, -8)", got)
	}
	if got := a.Scale(3); got != V(3, 6) {
		t.Errorf("Scale = %v, want (3, 6)", got)
	}
	if got := a.Dot(b); got != -8 {
		t.Errorf("Dot = %v, want -8", got)
	}
	if got := a.Cross(b); got != -14 {
		t.Errorf("Cross = %v, want -14", got)
	}
	if got := V(3, 4).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := V(1, 0).Perp(); got != V(0, 1) {
		t.Errorf("Perp = %v, want (0, 1)", got)
	}
}

func TestVec2_Rotate(t *testing.T) {
	g := V(0, -700).Rotate(math.Pi / 2)
	if math.Abs(g.X-700) > 1e-9 || math.Abs(g.Y) > 1e-9 {
		t.Errorf("Rotate(pi/2) = %v, want (700, 0)", g)
	}
	if got := V(3, 4).Rotate(0.3).Len(); math.Abs(got-5) > 1e-12 {
		t.Errorf("rotation changed length to %v", got)
	}
}

func TestVec2_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec2
		ok   bool
	}{
		{"unit", V(1, 0), true},
		{"diagonal", V(3, 4), true},
		{"zero", V(0, 0), false},
		{"nan", V(math.NaN(), 1), false},
		{"inf", V(math.Inf(1), 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.in.Normalize()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				if n != (Vec2{}) {
					t.Errorf("expected zero vector on failure, got %v", n)
				}
				return
			}
			if math.Abs(n.Len()-1) > 1e-12 {
				t.Errorf("normalized length = %v, want 1", n.Len())
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}
