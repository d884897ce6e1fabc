package scene

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

func at(x, y, z float32) Transform {
	tr := IdentityTransform()
	tr.Loc = pmath.V3(x, y, z)
	return tr
}

func assertVec(t *testing.T, want, got pmath.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestMotionEval(t *testing.T) {
	end := at(10, 0, 0)
	end.Rot = pmath.QuatFromAxisAngle(pmath.V3(0, 0, 1), math32.Pi/2)
	m := NewMotion([]Keyframe{{Frame: 11, Transform: end}, {Frame: 1, Transform: at(0, 0, 0)}})

	tests := []struct {
		name string
		t    float32
		loc  float32
	}{
		{"before first key", 0, 0},
		{"first key", 1, 0},
		{"halfway", 6, 5},
		{"last key", 11, 10},
		{"after last key", 20, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, pmath.V3(tt.loc, 0, 0), m.Eval(tt.t).Loc)
		})
	}

	half := m.Eval(6).Matrix()
	c := math32.Sqrt(0.5)
	assertVec(t, pmath.V3(c, c, 0), half.TransformDirection(pmath.V3(1, 0, 0)))
}

func TestMotionEmpty(t *testing.T) {
	var m Motion
	assert.Equal(t, IdentityTransform(), m.Eval(3))
}

func TestPoseAndLookup(t *testing.T) {
	s := New("test")
	id, err := s.AddObject("plane", at(0, 0, 2))
	require.NoError(t, err)
	plane := mesh.Plane(2, 2, 1, 1)
	require.NoError(t, s.SetGeometry(id, plane))

	got, ok := s.Lookup("plane")
	require.True(t, ok)
	assert.Equal(t, id, got)

	pose, ok := s.Pose(id, 1)
	require.True(t, ok)
	assert.Same(t, plane, pose.Mesh.(*mesh.Mesh))
	assertVec(t, pmath.V3(0, 0, 2), pose.Matrix.Translation())

	_, ok = s.Pose(id+100, 1)
	assert.False(t, ok)

	_, err = s.AddObject("plane", IdentityTransform())
	assert.ErrorIs(t, err, ErrDuplicateObject)
	assert.ErrorIs(t, s.SetBrush(id+100, Brush{}), ErrUnknownObject)
}

func TestBrushesByGroup(t *testing.T) {
	s := New("test")
	b, _ := s.AddObject("b", IdentityTransform())
	a, _ := s.AddObject("a", at(1, 0, 0))
	s.AddObject("plain", IdentityTransform())
	require.NoError(t, s.SetBrush(b, Brush{Settings: dynpaint.DefaultBrushSettings()}))
	require.NoError(t, s.SetBrush(a, Brush{Settings: dynpaint.DefaultBrushSettings(), Group: "left"}))
	require.NoError(t, s.SetEmitter(a, Emitter{Count: 4, Size: 0.1}))

	all := s.Brushes(1, "")
	require.Len(t, all, 2)
	assert.Equal(t, b, all[0].Object)
	assert.Equal(t, a, all[1].Object)
	assert.Nil(t, all[0].Particles)
	require.NotNil(t, all[1].Particles)
	assert.Len(t, all[1].Particles.Particles, 4)

	left := s.Brushes(1, "left")
	require.Len(t, left, 1)
	assert.Equal(t, "a", left[0].Name)
	assertVec(t, pmath.V3(1, 0, 0), left[0].Location())
}

func TestBrushSettingsAreCopied(t *testing.T) {
	s := New("test")
	id, _ := s.AddObject("brush", IdentityTransform())
	require.NoError(t, s.SetBrush(id, Brush{Settings: dynpaint.DefaultBrushSettings()}))

	s.Brushes(1, "")[0].Settings.Alpha = 0
	assert.Equal(t, float32(1), s.Brushes(1, "")[0].Settings.Alpha)
}

func TestForce(t *testing.T) {
	s := New("test")
	wind, _ := s.AddObject("wind", IdentityTransform())
	point, _ := s.AddObject("point", at(1, 0, 0))
	require.NoError(t, s.SetField(wind, Field{Kind: FieldWind, Strength: 2}))
	require.NoError(t, s.SetField(point, Field{Kind: FieldPoint, Strength: 3, MaxDistance: 5}))

	assertVec(t, pmath.V3(3, 0, 2), s.Force(1, pmath.V3(4, 0, 0)))
	assertVec(t, pmath.V3(0, 0, 2), s.Force(1, pmath.V3(10, 0, 0)))

	require.NoError(t, s.SetField(wind, Field{Kind: FieldWind, Strength: 1}))
	assertVec(t, pmath.V3(0, 0, 1), s.Force(1, pmath.V3(10, 0, 0)))
}

func TestForceFollowsMotion(t *testing.T) {
	s := New("test")
	id, _ := s.AddObject("point", IdentityTransform())
	require.NoError(t, s.SetField(id, Field{Kind: FieldPoint, Strength: 1}))
	require.NoError(t, s.SetMotion(id, NewMotion([]Keyframe{
		{Frame: 1, Transform: at(0, 0, 0)},
		{Frame: 2, Transform: at(2, 0, 0)},
	})))

	assertVec(t, pmath.V3(1, 0, 0), s.Force(1, pmath.V3(1, 0, 0)))
	assertVec(t, pmath.V3(-1, 0, 0), s.Force(2, pmath.V3(1, 0, 0)))
}

func TestForceConcurrent(t *testing.T) {
	s := New("test")
	id, _ := s.AddObject("wind", IdentityTransform())
	require.NoError(t, s.SetField(id, Field{Kind: FieldWind, Strength: 1}))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				f := s.Force(float32(g%3), pmath.V3(float32(i), 0, 0))
				assert.Equal(t, float32(1), f.Z)
			}
		}(g)
	}
	wg.Wait()
}

func TestCanvasBuild(t *testing.T) {
	s := New("test")
	id, _ := s.AddObject("canvas", IdentityTransform())
	spec := CanvasSpec{Object: id, Surfaces: []SurfaceSpec{
		{Name: "paint", Settings: dynpaint.DefaultSurfaceSettings()},
		{Name: "wave", Settings: dynpaint.DefaultSurfaceSettings()},
	}}
	require.NoError(t, s.AddCanvas(spec))
	require.Len(t, s.Canvases, 1)
	assert.Equal(t, "canvas", s.Canvases[0].Name)

	c := s.Canvases[0].Build(dynpaint.WithWorkers(2))
	assert.Equal(t, id, c.Object)
	require.Len(t, c.Surfaces, 2)
	assert.NotNil(t, c.Surface("wave"))

	assert.ErrorIs(t, s.AddCanvas(CanvasSpec{Object: 99}), ErrUnknownObject)
}

func TestObjects(t *testing.T) {
	s := New("test")
	c, _ := s.AddObject("canvas", IdentityTransform())
	b, _ := s.AddObject("brush", IdentityTransform())
	f, _ := s.AddObject("field", IdentityTransform())
	require.NoError(t, s.SetGeometry(c, mesh.Plane(1, 1, 2, 2)))
	require.NoError(t, s.SetBrush(b, Brush{}))
	require.NoError(t, s.SetEmitter(b, Emitter{Count: 7}))
	require.NoError(t, s.SetField(f, Field{Kind: FieldPoint}))

	objs := s.Objects()
	require.Len(t, objs, 3)
	assert.Equal(t, "canvas", objs[0].Name)
	assert.Equal(t, 9, objs[0].Verts)
	assert.Equal(t, 4, objs[0].Faces)
	assert.True(t, objs[1].Brush)
	assert.Equal(t, 7, objs[1].Particles)
	assert.Equal(t, FieldPoint, objs[2].Field)
}
