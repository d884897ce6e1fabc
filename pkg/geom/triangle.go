package geom

import (
	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// TriNormal returns the unit normal of a counter-clockwise triangle.
func TriNormal(a, b, c pmath.Vec3) pmath.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func cross2(a, b, p pmath.Vec2) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// PointInTriangle2D reports whether p is inside triangle abc (edges included),
// regardless of winding.
func PointInTriangle2D(p, a, b, c pmath.Vec2) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// BarycentricWeights2D returns the weights of p relative to triangle abc.
// A degenerate triangle yields equal weights.
func BarycentricWeights2D(a, b, c, p pmath.Vec2) [3]float32 {
	w := [3]float32{cross2(b, c, p), cross2(c, a, p), cross2(a, b, p)}
	sum := w[0] + w[1] + w[2]
	if sum == 0 {
		return [3]float32{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	return [3]float32{w[0] / sum, w[1] / sum, w[2] / sum}
}

// BarycentricWeights3D returns the weights of p projected onto triangle abc.
func BarycentricWeights3D(a, b, c, p pmath.Vec3) [3]float32 {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return [3]float32{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return [3]float32{1 - v - w, v, w}
}

// ClosestToLine2D projects p onto the infinite line through a and b and returns the
// projected point and its parametric position (0 at a, 1 at b).
func ClosestToLine2D(p, a, b pmath.Vec2) (pmath.Vec2, float32) {
	d := b.Sub(a)
	l := d.Dot(d)
	if l == 0 {
		return a, 0
	}
	lambda := p.Sub(a).Dot(d) / l
	return a.Add(d.Scale(lambda)), lambda
}

// DistSqToSegment2D returns the squared distance from p to segment ab.
func DistSqToSegment2D(p, a, b pmath.Vec2) float32 {
	closest, lambda := ClosestToLine2D(p, a, b)
	switch {
	case lambda <= 0:
		closest = a
	case lambda >= 1:
		closest = b
	}
	d := p.Sub(closest)
	return d.Dot(d)
}

// ClosestPointOnTriangle returns the point of triangle abc nearest to p.
func ClosestPointOnTriangle(p, a, b, c pmath.Vec3) pmath.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Madd(ab, d1/(d1-d3))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Madd(ac, d2/(d2-d6))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Madd(c.Sub(b), (d4-d3)/((d4-d3)+(d5-d6)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Madd(ab, v).Madd(ac, w)
}

// TriArea returns the area of triangle abc.
func TriArea(a, b, c pmath.Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Length() * 0.5
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
