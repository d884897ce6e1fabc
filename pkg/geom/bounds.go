// Package geom provides bounding boxes, triangle helpers and a triangle BVH used for
// brush collision queries.
package geom

import (
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Bounds2D is an axis-aligned box in UV space. The zero value is empty.
type Bounds2D struct {
	Min, Max pmath.Vec2
	Valid    bool
}

// Insert expands the box to include p. The first point initializes it.
func (b *Bounds2D) Insert(p pmath.Vec2) {
	if !b.Valid {
		b.Min, b.Max, b.Valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Contains reports whether p lies inside the box (inclusive).
func (b Bounds2D) Contains(p pmath.Vec2) bool {
	return b.Valid && p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Bounds3D is an axis-aligned box in world space. The zero value is empty.
type Bounds3D struct {
	Min, Max pmath.Vec3
	Valid    bool
}

// Insert expands the box to include p. The first point initializes it.
func (b *Bounds3D) Insert(p pmath.Vec3) {
	if !b.Valid {
		b.Min, b.Max, b.Valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Merge expands the box to include other.
func (b *Bounds3D) Merge(other Bounds3D) {
	if !other.Valid {
		return
	}
	b.Insert(other.Min)
	b.Insert(other.Max)
}

// Size returns max - min, or zero for an empty box.
func (b Bounds3D) Size() pmath.Vec3 {
	if !b.Valid {
		return pmath.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds3D) Center() pmath.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Intersect reports whether two boxes overlap.
func Intersect(a, b Bounds3D) bool {
	return IntersectDist(a, b, 0)
}

// IntersectDist reports whether two boxes overlap once a is grown by dist on every side.
func IntersectDist(a, b Bounds3D, dist float32) bool {
	if !a.Valid || !b.Valid {
		return false
	}
	for i := 0; i < 3; i++ {
		if a.Min.Comp(i)-dist > b.Max.Comp(i) || a.Max.Comp(i)+dist < b.Min.Comp(i) {
			return false
		}
	}
	return true
}

// IntersectPoint reports whether p lies within radius of the box.
func IntersectPoint(b Bounds3D, p pmath.Vec3, radius float32) bool {
	if !b.Valid {
		return false
	}
	for i := 0; i < 3; i++ {
		c := p.Comp(i)
		if b.Min.Comp(i)-radius > c || b.Max.Comp(i)+radius < c {
			return false
		}
	}
	return true
}
