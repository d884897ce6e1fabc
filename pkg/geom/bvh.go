package geom

import (
	"slices"

	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

const bvhLeafSize = 4

// Tri is one triangle handed to a BVH.
type Tri struct {
	A, B, C pmath.Vec3
}

// Hit describes a ray hit. Index is the position of the triangle in the input slice.
type Hit struct {
	Index int
	Dist  float32
	Co    pmath.Vec3
	No    pmath.Vec3
}

// Nearest describes a nearest-point query result.
type Nearest struct {
	Index  int
	DistSq float32
	Co     pmath.Vec3
	No     pmath.Vec3
}

type bvhNode struct {
	bounds      Bounds3D
	left, right int
	start, end  int
}

// BVH is a static bounding volume hierarchy over triangles.
// It is built once and safe for concurrent queries.
type BVH struct {
	tris  []Tri
	order []int
	nodes []bvhNode
}

// NewBVH builds a hierarchy over tris.
func NewBVH(tris []Tri) *BVH {
	t := &BVH{
		tris:  tris,
		order: make([]int, len(tris)),
	}
	if len(tris) == 0 {
		return t
	}
	centroids := make([]pmath.Vec3, len(tris))
	for i, tri := range tris {
		t.order[i] = i
		centroids[i] = tri.A.Add(tri.B).Add(tri.C).Scale(1.0 / 3)
	}
	t.nodes = make([]bvhNode, 0, 2*len(tris)/bvhLeafSize+1)
	t.build(0, len(tris), centroids)
	return t
}

func (t *BVH) build(start, end int, centroids []pmath.Vec3) int {
	var box, cbox Bounds3D
	for _, i := range t.order[start:end] {
		tri := t.tris[i]
		box.Insert(tri.A)
		box.Insert(tri.B)
		box.Insert(tri.C)
		cbox.Insert(centroids[i])
	}

	idx := len(t.nodes)
	t.nodes = append(t.nodes, bvhNode{bounds: box, left: -1, right: -1, start: start, end: end})
	if end-start <= bvhLeafSize {
		return idx
	}

	size := cbox.Size()
	axis := 0
	if size.Y > size.Comp(axis) {
		axis = 1
	}
	if size.Z > size.Comp(axis) {
		axis = 2
	}
	slices.SortFunc(t.order[start:end], func(a, b int) int {
		ca, cb := centroids[a].Comp(axis), centroids[b].Comp(axis)
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		}
		return a - b
	})

	mid := (start + end) / 2
	left := t.build(start, mid, centroids)
	right := t.build(mid, end, centroids)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

// Len returns the triangle count.
func (t *BVH) Len() int {
	return len(t.tris)
}

// Bounds returns the bounds of all triangles.
func (t *BVH) Bounds() Bounds3D {
	if len(t.nodes) == 0 {
		return Bounds3D{}
	}
	return t.nodes[0].bounds
}

// RayCast returns the closest hit not farther than maxDist.
func (t *BVH) RayCast(r Ray, maxDist float32) (Hit, bool) {
	hit := Hit{Index: -1, Dist: maxDist}
	if len(t.nodes) == 0 {
		return hit, false
	}
	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		n := &t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if d, ok := r.IntersectBounds(n.bounds); !ok || (d > hit.Dist && !containsPoint(n.bounds, r.Origin)) {
			continue
		}
		if n.left < 0 {
			for _, i := range t.order[n.start:n.end] {
				tri := t.tris[i]
				if d, ok := r.IntersectTriangle(tri.A, tri.B, tri.C); ok && d <= hit.Dist {
					hit.Index = i
					hit.Dist = d
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	if hit.Index < 0 {
		return hit, false
	}
	tri := t.tris[hit.Index]
	hit.Co = r.At(hit.Dist)
	hit.No = TriNormal(tri.A, tri.B, tri.C)
	return hit, true
}

// FindNearest returns the surface point closest to p within sqrt(maxDistSq).
func (t *BVH) FindNearest(p pmath.Vec3, maxDistSq float32) (Nearest, bool) {
	best := Nearest{Index: -1, DistSq: maxDistSq}
	if len(t.nodes) == 0 {
		return best, false
	}
	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		n := &t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if boxDistSq(n.bounds, p) > best.DistSq {
			continue
		}
		if n.left < 0 {
			for _, i := range t.order[n.start:n.end] {
				tri := t.tris[i]
				co := ClosestPointOnTriangle(p, tri.A, tri.B, tri.C)
				if d := co.Sub(p).LengthSq(); d <= best.DistSq {
					best.Index = i
					best.DistSq = d
					best.Co = co
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	if best.Index < 0 {
		return best, false
	}
	tri := t.tris[best.Index]
	best.No = TriNormal(tri.A, tri.B, tri.C)
	return best, true
}

func containsPoint(b Bounds3D, p pmath.Vec3) bool {
	return IntersectPoint(b, p, 0)
}

func boxDistSq(b Bounds3D, p pmath.Vec3) float32 {
	var d float32
	for i := 0; i < 3; i++ {
		c := p.Comp(i)
		if lo := b.Min.Comp(i); c < lo {
			d += (lo - c) * (lo - c)
		} else if hi := b.Max.Comp(i); c > hi {
			d += (c - hi) * (c - hi)
		}
	}
	return d
}
