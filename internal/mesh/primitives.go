package mesh

import (
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Plane returns an XY grid of nx*ny quads centered at the origin, facing +Z,
// with a continuous [0,1] UV layer.
func Plane(sizeX, sizeY float32, nx, ny int) *Mesh {
	nx, ny = max(nx, 1), max(ny, 1)
	verts := make([]pmath.Vec3, 0, (nx+1)*(ny+1))
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			verts = append(verts, pmath.V3(
				(float32(x)/float32(nx)-0.5)*sizeX,
				(float32(y)/float32(ny)-0.5)*sizeY,
				0,
			))
		}
	}

	idx := func(x, y int) int { return y*(nx+1) + x }
	uv := func(x, y int) pmath.Vec2 {
		return pmath.Vec2{X: float32(x) / float32(nx), Y: float32(y) / float32(ny)}
	}
	faces := make([]Face, 0, nx*ny)
	uvs := make([]FaceUV, 0, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			faces = append(faces, Quad(idx(x, y), idx(x+1, y), idx(x+1, y+1), idx(x, y+1)))
			uvs = append(uvs, FaceUV{uv(x, y), uv(x+1, y), uv(x+1, y+1), uv(x, y+1)})
		}
	}

	m, _ := New(verts, faces)
	_ = m.AddUVLayer(DefaultUVLayer, uvs)
	return m
}

// Cube returns a closed cube of edge length size with outward normals. Every face
// gets its own UV island in a 3x2 atlas, inset by margin (in UV units), so islands
// meet at shared mesh edges but not in UV space.
func Cube(size, margin float32) *Mesh {
	h := size / 2
	verts := []pmath.Vec3{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}
	faces := []Face{
		Quad(0, 3, 2, 1), // -Z
		Quad(4, 5, 6, 7), // +Z
		Quad(0, 1, 5, 4), // -Y
		Quad(2, 3, 7, 6), // +Y
		Quad(3, 0, 4, 7), // -X
		Quad(1, 2, 6, 5), // +X
	}

	uvs := make([]FaceUV, len(faces))
	for i := range faces {
		col, row := float32(i%3), float32(i/3)
		u0, v0 := col/3+margin, row/2+margin
		u1, v1 := (col+1)/3-margin, (row+1)/2-margin
		uvs[i] = FaceUV{{X: u0, Y: v0}, {X: u1, Y: v0}, {X: u1, Y: v1}, {X: u0, Y: v1}}
	}

	m, _ := New(verts, faces)
	_ = m.AddUVLayer(DefaultUVLayer, uvs)
	return m
}

// Chain returns n vertices along +X joined by loose edges, with no faces.
func Chain(n int, spacing float32) *Mesh {
	verts := make([]pmath.Vec3, n)
	edges := make([]Edge, 0, max(n-1, 0))
	for i := range verts {
		verts[i] = pmath.V3(float32(i)*spacing, 0, 0)
		if i > 0 {
			edges = append(edges, Edge{i - 1, i})
		}
	}
	m, _ := New(verts, nil, edges...)
	return m
}
