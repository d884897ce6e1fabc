package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}
	if got, want := a.Min(b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, 0}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
}

func TestInterp3(t *testing.T) {
	got := Interp3(Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, [3]float32{0.2, 0.3, 0.5})
	want := Vec3{0.2, 0.3, 0.5}
	if got != want {
		t.Errorf("Interp3() = %v, want %v", got, want)
	}
}

func TestVec3SetComp(t *testing.T) {
	tests := []struct {
		axis int
		want Vec3
	}{
		{0, Vec3{9, 2, 3}},
		{1, Vec3{1, 9, 3}},
		{2, Vec3{1, 2, 9}},
	}
	for _, tt := range tests {
		got := Vec3{1, 2, 3}.SetComp(tt.axis, 9)
		if got != tt.want {
			t.Errorf("SetComp(%d) = %v, want %v", tt.axis, got, tt.want)
		}
		if got.Comp(tt.axis) != 9 {
			t.Errorf("Comp(%d) = %v, want 9", tt.axis, got.Comp(tt.axis))
		}
	}
}
