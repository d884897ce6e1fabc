package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// DefaultFPS is the frame rate used to turn particle velocities into frames.
const DefaultFPS = 24

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrDuplicateObject = errors.New("duplicate object name")
)

// SurfaceSpec is a named surface configuration.
type SurfaceSpec struct {
	Name     string
	Settings dynpaint.SurfaceSettings
}

// CanvasSpec describes a canvas object and its surfaces.
type CanvasSpec struct {
	Object   dynpaint.ObjectID
	Name     string
	Surfaces []SurfaceSpec
}

// Build creates the simulation canvas.
func (c CanvasSpec) Build(opts ...dynpaint.Option) *dynpaint.Canvas {
	canvas := dynpaint.NewCanvas(c.Object, c.Name, opts...)
	for _, s := range c.Surfaces {
		canvas.AddSurface(s.Name, s.Settings)
	}
	return canvas
}

// fieldSample is a force field posed at one time.
type fieldSample struct {
	field Field
	loc   pmath.Vec3
	axis  pmath.Vec3
}

// Scene is a set of objects stored in an ECS world. It implements
// dynpaint.World.
type Scene struct {
	Name     string
	FPS      float32
	Canvases []CanvasSpec

	world      *ecs.World
	objects    *ecs.Map2[Object, Transform]
	names      *ecs.Map[Object]
	transforms *ecs.Map[Transform]
	motions    *ecs.Map[Motion]
	geometry   *ecs.Map[Geometry]
	brushes    *ecs.Map[Brush]
	emitters   *ecs.Map[Emitter]
	fields     *ecs.Map[Field]

	brushFilter *ecs.Filter2[Object, Brush]
	fieldFilter *ecs.Filter2[Object, Field]

	byID    map[dynpaint.ObjectID]ecs.Entity
	byName  map[string]dynpaint.ObjectID
	nextID  dynpaint.ObjectID
	gravity pmath.Vec3

	// Force is called from worker goroutines; fields are posed once per
	// time under mu and read from the snapshot.
	mu        sync.Mutex
	snapTime  float32
	snapValid bool
	snapshot  []fieldSample
}

// New returns an empty scene with standard gravity.
func New(name string) *Scene {
	world := ecs.NewWorld()
	return &Scene{
		Name:        name,
		FPS:         DefaultFPS,
		world:       world,
		objects:     ecs.NewMap2[Object, Transform](world),
		names:       ecs.NewMap[Object](world),
		transforms:  ecs.NewMap[Transform](world),
		motions:     ecs.NewMap[Motion](world),
		geometry:    ecs.NewMap[Geometry](world),
		brushes:     ecs.NewMap[Brush](world),
		emitters:    ecs.NewMap[Emitter](world),
		fields:      ecs.NewMap[Field](world),
		brushFilter: ecs.NewFilter2[Object, Brush](world),
		fieldFilter: ecs.NewFilter2[Object, Field](world),
		byID:        make(map[dynpaint.ObjectID]ecs.Entity),
		byName:      make(map[string]dynpaint.ObjectID),
		gravity:     pmath.V3(0, 0, -9.81),
	}
}

// SetGravity sets the global gravity. Zero disables it.
func (s *Scene) SetGravity(g pmath.Vec3) { s.gravity = g }

// AddObject creates a named object and returns its id.
func (s *Scene) AddObject(name string, tr Transform) (dynpaint.ObjectID, error) {
	if _, dup := s.byName[name]; dup {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateObject, name)
	}
	s.nextID++
	id := s.nextID
	e := s.objects.NewEntity(&Object{ID: id, Name: name}, &tr)
	s.byID[id] = e
	s.byName[name] = id
	s.invalidate()
	return id, nil
}

// Lookup returns the id of the named object.
func (s *Scene) Lookup(name string) (dynpaint.ObjectID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

func (s *Scene) entity(id dynpaint.ObjectID) (ecs.Entity, error) {
	e, ok := s.byID[id]
	if !ok {
		return e, fmt.Errorf("%w: %d", ErrUnknownObject, id)
	}
	return e, nil
}

// set adds or replaces a component on object id.
func set[T any](s *Scene, m *ecs.Map[T], id dynpaint.ObjectID, v T) error {
	e, err := s.entity(id)
	if err != nil {
		return err
	}
	if m.Has(e) {
		*m.Get(e) = v
	} else {
		m.Add(e, &v)
	}
	s.invalidate()
	return nil
}

// SetMotion animates object id.
func (s *Scene) SetMotion(id dynpaint.ObjectID, m Motion) error { return set(s, s.motions, id, m) }

// SetGeometry gives object id a mesh.
func (s *Scene) SetGeometry(id dynpaint.ObjectID, m mesh.Provider) error {
	return set(s, s.geometry, id, Geometry{Mesh: m})
}

// SetBrush makes object id a brush.
func (s *Scene) SetBrush(id dynpaint.ObjectID, b Brush) error { return set(s, s.brushes, id, b) }

// SetEmitter attaches a particle system to object id.
func (s *Scene) SetEmitter(id dynpaint.ObjectID, e Emitter) error { return set(s, s.emitters, id, e) }

// SetField makes object id a force field.
func (s *Scene) SetField(id dynpaint.ObjectID, f Field) error { return set(s, s.fields, id, f) }

// AddCanvas registers a canvas on an existing object.
func (s *Scene) AddCanvas(c CanvasSpec) error {
	e, err := s.entity(c.Object)
	if err != nil {
		return err
	}
	if c.Name == "" {
		c.Name = s.names.Get(e).Name
	}
	s.Canvases = append(s.Canvases, c)
	return nil
}

func (s *Scene) transform(e ecs.Entity, t float32) Transform {
	if s.motions.Has(e) {
		return s.motions.Get(e).Eval(t)
	}
	return *s.transforms.Get(e)
}

func (s *Scene) pose(e ecs.Entity, t float32) dynpaint.Pose {
	p := dynpaint.Pose{Matrix: s.transform(e, t).Matrix()}
	if s.geometry.Has(e) {
		p.Mesh = s.geometry.Get(e).Mesh
	}
	return p
}

// Pose implements dynpaint.World.
func (s *Scene) Pose(id dynpaint.ObjectID, t float32) (dynpaint.Pose, bool) {
	e, ok := s.byID[id]
	if !ok {
		return dynpaint.Pose{}, false
	}
	return s.pose(e, t), true
}

// Brushes implements dynpaint.World. Brushes are ordered by object id.
func (s *Scene) Brushes(t float32, group string) []dynpaint.BrushInstance {
	var out []dynpaint.BrushInstance
	q := s.brushFilter.Query()
	for q.Next() {
		obj, br := q.Get()
		if group != "" && br.Group != group {
			continue
		}
		e := q.Entity()
		settings := br.Settings
		inst := dynpaint.BrushInstance{
			Object:   obj.ID,
			Name:     obj.Name,
			Settings: &settings,
			Pose:     s.pose(e, t),
			Material: br.Material,
		}
		if s.emitters.Has(e) {
			origin := func(f float32) pmath.Vec3 { return s.transform(e, f).Loc }
			inst.Particles = s.emitters.Get(e).Particles(t, origin, s.gravity, s.FPS)
		}
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Object < out[j].Object })
	return out
}

// Force implements dynpaint.World.
func (s *Scene) Force(t float32, p pmath.Vec3) pmath.Vec3 {
	var f pmath.Vec3
	for _, fs := range s.fieldsAt(t) {
		d := p.Sub(fs.loc)
		if fs.field.MaxDistance > 0 && d.Length() > fs.field.MaxDistance {
			continue
		}
		switch fs.field.Kind {
		case FieldWind:
			f = f.Add(fs.axis.Scale(fs.field.Strength))
		case FieldPoint:
			f = f.Add(d.Normalize().Scale(fs.field.Strength))
		}
	}
	return f
}

// Gravity implements dynpaint.World.
func (s *Scene) Gravity() pmath.Vec3 { return s.gravity }

func (s *Scene) fieldsAt(t float32) []fieldSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapValid && s.snapTime == t {
		return s.snapshot
	}
	var snap []fieldSample
	q := s.fieldFilter.Query()
	for q.Next() {
		_, f := q.Get()
		m := s.transform(q.Entity(), t).Matrix()
		snap = append(snap, fieldSample{
			field: *f,
			loc:   m.Translation(),
			axis:  m.TransformDirection(pmath.V3(0, 0, 1)).Normalize(),
		})
	}
	s.snapshot, s.snapTime, s.snapValid = snap, t, true
	return snap
}

func (s *Scene) invalidate() {
	s.mu.Lock()
	s.snapValid = false
	s.mu.Unlock()
}

// ObjectInfo summarises one object.
type ObjectInfo struct {
	Object
	Verts     int
	Faces     int
	Brush     bool
	Particles int
	Field     FieldKind
}

// Objects lists the scene objects ordered by id.
func (s *Scene) Objects() []ObjectInfo {
	out := make([]ObjectInfo, 0, len(s.byID))
	for _, e := range s.byID {
		info := ObjectInfo{Object: *s.names.Get(e)}
		if s.geometry.Has(e) {
			m := s.geometry.Get(e).Mesh
			info.Verts, info.Faces = len(m.Verts()), len(m.Faces())
		}
		info.Brush = s.brushes.Has(e)
		if s.emitters.Has(e) {
			info.Particles = s.emitters.Get(e).Count
		}
		if s.fields.Has(e) {
			info.Field = s.fields.Get(e).Kind
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ dynpaint.World = (*Scene)(nil)
