package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestVec_Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, 6)

	if got := b.Sub(a); got != V(3, 4) {
		t.Errorf("Sub = %v, want (3, 4)", got)
	}
	if got := a.Add(b); got != V(5, 8) {
		t.Errorf("Add = %v, want (5, 8)", got)
	}
	if got := a.Scale(2); got != V(2, 4) {
		t.Errorf("Scale = %v, want (2, 4)", got)
	}
	if got := b.Sub(a).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := a.Dist(b); got != 5 {
		t.Errorf("Dist = %v, want 5", got)
	}
}

func TestVec_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec
		want Vec
	}{
		{"axis", V(3, 0), V(1, 0)},
		{"diagonal", V(3, 4), V(0.6, 0.8)},
		{"zero", V(0, 0), V(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVec_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec
		valid bool
	}{
		{"zero", Vec{}, true},
		{"normal", V(1, -2), true},
		{"NaN", V(math.NaN(), 0), false},
		{"+Inf", V(0, math.Inf(1)), false},
		{"-Inf", V(math.Inf(-1), 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestRect(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}

	if r.Width() != 100 || r.Height() != 50 {
		t.Errorf("size = %vx%v, want 100x50", r.Width(), r.Height())
	}
	if r.Center() != V(60, 45) {
		t.Errorf("Center = %v, want (60, 45)", r.Center())
	}
	if !r.Contains(V(10, 20)) || r.Contains(V(9, 20)) {
		t.Error("Contains edge handling wrong")
	}
	if !r.Inset(30).Empty() {
		t.Error("inset beyond half height should be empty")
	}
}

func TestRing(t *testing.T) {
	r := NewRing(4)
	pts := r.Points(V(10, 10), 5)
	want := []Vec{V(15, 10), V(10, 15), V(5, 10), V(10, 5)}
	for i := range want {
		if pts[i].Dist(want[i]) > 1e-9 {
			t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}

	if got := r.Angle(math.Pi / 2); got.Dist(V(0, 1)) > 1e-9 {
		t.Errorf("Angle(pi/2) = %v", got)
	}
	if got := r.Angle(-math.Pi / 2); got.Dist(V(0, -1)) > 1e-9 {
		t.Errorf("Angle(-pi/2) = %v", got)
	}

	if NewRing(1).Len() != 3 {
		t.Error("ring should clamp to 3 points")
	}
}

func TestBodyError(t *testing.T) {
	err := &BodyError{ID: "abc", Wrapped: ErrDuplicateBody}
	if !errors.Is(err, ErrDuplicateBody) {
		t.Error("BodyError should unwrap to its cause")
	}
	if err.Error() != "abc: dynamo: body already registered for id" {
		t.Errorf("Error() = %q", err.Error())
	}
}
