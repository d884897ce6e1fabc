package scene

import (
	"sort"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Object identifies a scene object.
type Object struct {
	ID   dynpaint.ObjectID
	Name string
}

// Transform is an object's location, rotation and scale.
type Transform struct {
	Loc   pmath.Vec3
	Rot   pmath.Quat
	Scale pmath.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{Rot: pmath.QuatIdentity(), Scale: pmath.V3(1, 1, 1)}
}

// Matrix returns the object-to-world matrix.
func (t Transform) Matrix() pmath.Mat4 {
	return pmath.Compose(t.Loc, t.Rot, t.Scale)
}

// Keyframe is a transform at one frame.
type Keyframe struct {
	Frame float32
	Transform
}

// Motion is a keyframed transform. Keys are kept sorted by frame.
type Motion struct {
	Keys []Keyframe
}

// NewMotion sorts keys by frame.
func NewMotion(keys []Keyframe) Motion {
	sorted := append([]Keyframe(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })
	return Motion{Keys: sorted}
}

// Eval returns the transform at frame t. Location and scale are linear,
// rotation is spherical. Outside the key range the nearest key holds.
func (m *Motion) Eval(t float32) Transform {
	n := len(m.Keys)
	switch {
	case n == 0:
		return IdentityTransform()
	case t <= m.Keys[0].Frame:
		return m.Keys[0].Transform
	case t >= m.Keys[n-1].Frame:
		return m.Keys[n-1].Transform
	}
	i := sort.Search(n, func(i int) bool { return m.Keys[i].Frame > t })
	a, b := m.Keys[i-1], m.Keys[i]
	f := (t - a.Frame) / (b.Frame - a.Frame)
	return Transform{
		Loc:   pmath.LerpVec3(a.Loc, b.Loc, f),
		Rot:   a.Rot.Slerp(b.Rot, f),
		Scale: pmath.LerpVec3(a.Scale, b.Scale, f),
	}
}

// Geometry is the mesh of an object in local space.
type Geometry struct {
	Mesh mesh.Provider
}

// Brush makes an object paint.
type Brush struct {
	Settings dynpaint.BrushSettings
	Group    string
	Material dynpaint.MaterialSampler
}

// FieldKind is the shape of a force field.
type FieldKind string

const (
	// FieldWind pushes along the object's local +Z axis.
	FieldWind FieldKind = "wind"
	// FieldPoint pushes away from the object origin.
	FieldPoint FieldKind = "point"
)

// Field is a force field acting on paint effects.
type Field struct {
	Kind     FieldKind
	Strength float32
	// MaxDistance limits the field range; zero is unlimited.
	MaxDistance float32
}
