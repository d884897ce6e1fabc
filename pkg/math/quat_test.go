package math

import (
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-3 }

func TestQuatNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Quat
		want Quat
	}{
		{"unit", Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize(), Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()},
		{"scaled", Quat{W: 5}, QuatIdentity()},
		{"degenerate", Quat{}, QuatIdentity()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) || !near(got.W, tt.want.W) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
			if l := got.dot(got); !near(l, 1) {
				t.Errorf("length² = %v, want 1", l)
			}
		})
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))

	tests := []struct {
		t     float32
		wantW float32
	}{
		{0, 1},
		{0.5, float32(math.Cos(math.Pi / 8))},
		{1, q2.W},
	}
	for _, tt := range tests {
		if got := q1.Slerp(q2, tt.t); !near(got.W, tt.wantW) {
			t.Errorf("Slerp(%v).W = %v, want %v", tt.t, got.W, tt.wantW)
		}
	}

	// Opposite signs describe the same rotation and take the short arc.
	neg := q2.scale(-1)
	if got := q1.Slerp(neg, 0.5); !near(abs(got.W), float32(math.Cos(math.Pi/8))) {
		t.Errorf("Slerp() across signs = %v", got)
	}
}

func TestQuatMul(t *testing.T) {
	x := QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/2))
	z := QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2))

	// z.Mul(x) rotates about X first: +Y goes to +Z, which Z keeps.
	got := z.Mul(x).ToMat4().TransformDirection(Vec3{Y: 1})
	if !near(got.X, 0) || !near(got.Y, 0) || !near(got.Z, 1) {
		t.Errorf("TransformDirection() = %v, want (0, 0, 1)", got)
	}

	if id := x.Mul(QuatIdentity()); id != x {
		t.Errorf("Mul(identity) = %v, want %v", id, x)
	}
}

func TestQuatToMat4Identity(t *testing.T) {
	if m := QuatIdentity().ToMat4(); m != Identity() {
		t.Errorf("ToMat4() = %v, want identity", m)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))
	if !near(q.W, float32(math.Cos(math.Pi/4))) || !near(q.Y, float32(math.Sin(math.Pi/4))) {
		t.Errorf("QuatFromAxisAngle() = %v", q)
	}
}

func TestLerpVec3(t *testing.T) {
	got := LerpVec3(Vec3{}, Vec3{10, 20, 30}, 0.5)
	if got != (Vec3{5, 10, 15}) {
		t.Errorf("LerpVec3() = %v, want (5, 10, 15)", got)
	}
}
