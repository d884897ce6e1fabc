// Package mesh provides the read-only geometry consumed by the paint simulation:
// vertices, normals, triangle and quad faces, edges and named per-face UV layers.
package mesh

import (
	"errors"
	"fmt"

	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

var (
	ErrBadFace    = errors.New("face references missing vertex")
	ErrUVMismatch = errors.New("uv layer size does not match face count")
)

// DefaultUVLayer is the layer name used by the primitives.
const DefaultUVLayer = "UVMap"

// Face is a triangle (V[3] unused) or a quad.
type Face struct {
	V    [4]int
	Quad bool
}

// Tri returns a triangle face.
func Tri(a, b, c int) Face {
	return Face{V: [4]int{a, b, c, 0}}
}

// Quad returns a quad face.
func Quad(a, b, c, d int) Face {
	return Face{V: [4]int{a, b, c, d}, Quad: true}
}

// Corners returns the corner count (3 or 4).
func (f Face) Corners() int {
	if f.Quad {
		return 4
	}
	return 3
}

// Tris returns the face split into triangles (0,1,2) and, for quads, (0,2,3).
func (f Face) Tris() [][3]int {
	if f.Quad {
		return [][3]int{{f.V[0], f.V[1], f.V[2]}, {f.V[0], f.V[2], f.V[3]}}
	}
	return [][3]int{{f.V[0], f.V[1], f.V[2]}}
}

// Edge joins two vertices.
type Edge [2]int

// FaceUV holds one UV per face corner.
type FaceUV [4]pmath.Vec2

// Provider supplies geometry. Counts and indices must stay stable for the
// duration of one simulation step; callers never mutate returned slices.
type Provider interface {
	Verts() []pmath.Vec3
	Normals() []pmath.Vec3
	Faces() []Face
	Edges() []Edge
	// UVLayer returns per-face UVs; an empty name selects the active layer.
	UVLayer(name string) ([]FaceUV, bool)
}

// Mesh is an in-memory Provider.
type Mesh struct {
	verts      []pmath.Vec3
	normals    []pmath.Vec3
	faces      []Face
	edges      []Edge
	looseEdges []Edge
	uvs        map[string][]FaceUV
	activeUV   string
}

// New builds a mesh and derives edges and smooth normals.
func New(verts []pmath.Vec3, faces []Face, looseEdges ...Edge) (*Mesh, error) {
	for i, f := range faces {
		for c := 0; c < f.Corners(); c++ {
			if f.V[c] < 0 || f.V[c] >= len(verts) {
				return nil, fmt.Errorf("face %d corner %d: %w", i, c, ErrBadFace)
			}
		}
	}
	for i, e := range looseEdges {
		if e[0] < 0 || e[0] >= len(verts) || e[1] < 0 || e[1] >= len(verts) {
			return nil, fmt.Errorf("loose edge %d: %w", i, ErrBadFace)
		}
	}
	m := &Mesh{
		verts:      verts,
		faces:      faces,
		looseEdges: looseEdges,
		uvs:        make(map[string][]FaceUV),
	}
	m.edges = buildEdges(faces, looseEdges)
	m.normals = vertexNormals(verts, faces)
	return m, nil
}

// AddUVLayer attaches per-face UVs. The first layer becomes active.
func (m *Mesh) AddUVLayer(name string, uvs []FaceUV) error {
	if len(uvs) != len(m.faces) {
		return fmt.Errorf("layer %q: %w (%d uvs, %d faces)", name, ErrUVMismatch, len(uvs), len(m.faces))
	}
	m.uvs[name] = uvs
	if m.activeUV == "" {
		m.activeUV = name
	}
	return nil
}

// Verts implements Provider.
func (m *Mesh) Verts() []pmath.Vec3 { return m.verts }

// Normals implements Provider.
func (m *Mesh) Normals() []pmath.Vec3 { return m.normals }

// Faces implements Provider.
func (m *Mesh) Faces() []Face { return m.faces }

// Edges implements Provider.
func (m *Mesh) Edges() []Edge { return m.edges }

// UVLayer implements Provider.
func (m *Mesh) UVLayer(name string) ([]FaceUV, bool) {
	if name == "" {
		name = m.activeUV
	}
	uv, ok := m.uvs[name]
	return uv, ok
}

// SetVerts replaces vertex positions (same count) and refreshes normals.
func (m *Mesh) SetVerts(verts []pmath.Vec3) error {
	if len(verts) != len(m.verts) {
		return fmt.Errorf("vertex count changed from %d to %d: %w", len(m.verts), len(verts), ErrBadFace)
	}
	m.verts = verts
	m.normals = vertexNormals(verts, m.faces)
	return nil
}

// buildEdges returns unique edges in first-seen order.
func buildEdges(faces []Face, loose []Edge) []Edge {
	seen := make(map[Edge]struct{})
	var edges []Edge
	add := func(a, b int) {
		key := Edge{min(a, b), max(a, b)}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		edges = append(edges, key)
	}
	for _, f := range faces {
		n := f.Corners()
		for c := 0; c < n; c++ {
			add(f.V[c], f.V[(c+1)%n])
		}
	}
	for _, e := range loose {
		if e[0] != e[1] {
			add(e[0], e[1])
		}
	}
	return edges
}

// vertexNormals returns area-weighted smooth normals. Loose vertices face +Z.
func vertexNormals(verts []pmath.Vec3, faces []Face) []pmath.Vec3 {
	acc := make([]pmath.Vec3, len(verts))
	for _, f := range faces {
		for _, t := range f.Tris() {
			a, b, c := verts[t[0]], verts[t[1]], verts[t[2]]
			n := b.Sub(a).Cross(c.Sub(a))
			for _, v := range t {
				acc[v] = acc[v].Add(n)
			}
		}
	}
	for i, n := range acc {
		if n.LengthSq() == 0 {
			acc[i] = pmath.V3(0, 0, 1)
			continue
		}
		acc[i] = n.Normalize()
	}
	return acc
}

// FaceNormal returns the unit normal of face f.
func FaceNormal(p Provider, f Face) pmath.Vec3 {
	v := p.Verts()
	var n pmath.Vec3
	for _, t := range f.Tris() {
		a, b, c := v[t[0]], v[t[1]], v[t[2]]
		n = n.Add(b.Sub(a).Cross(c.Sub(a)))
	}
	return n.Normalize()
}
