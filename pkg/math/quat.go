package math

import "github.com/chewxy/math32"

// Quat is a rotation quaternion. W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the zero rotation.
func QuatIdentity() Quat { return Quat{W: 1} }

// QuatFromAxisAngle rotates angle radians around a normalized axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math32.Sincos(angle / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

func (q Quat) scale(s float32) Quat { return Quat{q.X * s, q.Y * s, q.Z * s, q.W * s} }

func (q Quat) add(o Quat) Quat { return Quat{q.X + o.X, q.Y + o.Y, q.Z + o.Z, q.W + o.W} }

func (q Quat) dot(o Quat) float32 { return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W }

// Normalize returns q at unit length. Degenerate quaternions become identity.
func (q Quat) Normalize() Quat {
	l := math32.Sqrt(q.dot(q))
	if l < 1e-4 {
		return QuatIdentity()
	}
	return q.scale(1 / l)
}

// Slerp interpolates from q to o along the shorter arc.
func (q Quat) Slerp(o Quat, t float32) Quat {
	d := q.dot(o)
	if d < 0 {
		o, d = o.scale(-1), -d
	}
	if d > 0.9995 {
		return q.scale(1 - t).add(o.scale(t)).Normalize()
	}
	theta := math32.Acos(d)
	sin := math32.Sin(theta)
	return q.scale(math32.Sin((1-t)*theta) / sin).add(o.scale(math32.Sin(t*theta) / sin))
}

// Mul is the Hamilton product: q.Mul(o) applies o first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// ToMat4 returns the rotation matrix of q.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	xw, yw, zw := q.X*q.W, q.Y*q.W, q.Z*q.W
	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
