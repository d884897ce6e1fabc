package geom

import (
	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

const rayEpsilon = 1e-7

// Ray is a half-line with an origin and a normalized direction.
type Ray struct {
	Origin pmath.Vec3
	Dir    pmath.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) pmath.Vec3 {
	return r.Origin.Madd(r.Dir, t)
}

// IntersectBounds tests the ray against a box using the slab method.
// Returns the entry distance (or exit distance if the origin is inside).
func (r Ray) IntersectBounds(box Bounds3D) (float32, bool) {
	if !box.Valid {
		return 0, false
	}
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	for i := 0; i < 3; i++ {
		o := r.Origin.Comp(i)
		d := r.Dir.Comp(i)
		lo, hi := box.Min.Comp(i), box.Max.Comp(i)
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle returns the distance to triangle abc along the ray.
// Both faces are hit; only positive distances count.
func (r Ray) IntersectTriangle(a, b, c pmath.Vec3) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < rayEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
