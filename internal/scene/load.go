package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/dynpaint/internal/assets"
	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/material"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

var (
	ErrUnknownMesh  = errors.New("unknown mesh type")
	ErrUnknownField = errors.New("unknown field type")
	ErrNoCanvas     = errors.New("scene has no canvas")
	ErrMeshSize     = errors.New("invalid mesh size")
)

// vec3 is a YAML [x, y, z] list.
type vec3 [3]float32

func (v vec3) vec() pmath.Vec3 { return pmath.V3(v[0], v[1], v[2]) }

// euler converts XYZ euler angles in degrees to a quaternion.
func (v vec3) euler() pmath.Quat {
	rad := func(d float32) float32 { return d * math32.Pi / 180 }
	qx := pmath.QuatFromAxisAngle(pmath.V3(1, 0, 0), rad(v[0]))
	qy := pmath.QuatFromAxisAngle(pmath.V3(0, 1, 0), rad(v[1]))
	qz := pmath.QuatFromAxisAngle(pmath.V3(0, 0, 1), rad(v[2]))
	return qz.Mul(qy).Mul(qx).Normalize()
}

type transformDesc struct {
	Location *vec3 `yaml:"location"`
	Rotation *vec3 `yaml:"rotation"`
	Scale    *vec3 `yaml:"scale"`
}

// apply overrides the set parts of base.
func (d transformDesc) apply(base Transform) Transform {
	if d.Location != nil {
		base.Loc = d.Location.vec()
	}
	if d.Rotation != nil {
		base.Rot = d.Rotation.euler()
	}
	if d.Scale != nil {
		base.Scale = d.Scale.vec()
	}
	return base
}

type keyframeDesc struct {
	Frame         float32 `yaml:"frame"`
	transformDesc `yaml:",inline"`
}

type meshDesc struct {
	Type    string    `yaml:"type"`
	Size    []float32 `yaml:"size"`
	Subdiv  [2]int    `yaml:"subdivisions"`
	Margin  float32   `yaml:"margin"`
	Count   int       `yaml:"count"`
	Spacing float32   `yaml:"spacing"`
}

// size returns the first n size components. A single value is repeated.
func (d meshDesc) size(n int) ([]float32, error) {
	out := make([]float32, n)
	switch len(d.Size) {
	case 0:
		for i := range out {
			out[i] = 1
		}
	case 1:
		for i := range out {
			out[i] = d.Size[0]
		}
	case n, 3:
		copy(out, d.Size)
	default:
		return nil, fmt.Errorf("%w: %s wants %d values, got %d", ErrMeshSize, d.Type, n, len(d.Size))
	}
	for _, v := range out {
		if v <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrMeshSize, d.Size)
		}
	}
	return out, nil
}

func (d meshDesc) build() (*mesh.Mesh, error) {
	switch d.Type {
	case "plane":
		size, err := d.size(2)
		if err != nil {
			return nil, err
		}
		return mesh.Plane(size[0], size[1], d.Subdiv[0], d.Subdiv[1]), nil
	case "cube":
		size, err := d.size(1)
		if err != nil {
			return nil, err
		}
		return mesh.Cube(size[0], d.Margin), nil
	case "chain":
		return mesh.Chain(d.Count, d.Spacing), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, d.Type)
}

type surfaceDesc struct {
	Name                     string `yaml:"name"`
	dynpaint.SurfaceSettings `yaml:",inline"`
}

func (d *surfaceDesc) UnmarshalYAML(node *yaml.Node) error {
	type plain surfaceDesc
	d.SurfaceSettings = dynpaint.DefaultSurfaceSettings()
	return node.Decode((*plain)(d))
}

type canvasDesc struct {
	Surfaces []surfaceDesc `yaml:"surfaces"`
}

type materialDesc struct {
	Color   dynpaint.RGB `yaml:"color"`
	Alpha   *float32     `yaml:"alpha"`
	Texture string       `yaml:"texture"`
	UVLayer string       `yaml:"uv_layer"`
	Nearest bool         `yaml:"nearest"`
}

func (d *materialDesc) build(m mesh.Provider, textures *assets.Manager) (dynpaint.MaterialSampler, error) {
	flat := material.Flat{Color: d.Color, Alpha: 1}
	if d.Alpha != nil {
		flat.Alpha = *d.Alpha
	}
	if d.Texture == "" {
		return flat, nil
	}
	img, err := textures.Load(d.Texture)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("texture %s: %w", d.Texture, dynpaint.ErrNoUVLayer)
	}
	layer := d.UVLayer
	if layer == "" {
		layer = mesh.DefaultUVLayer
	}
	tex, err := material.NewTextured(img, m, layer, flat)
	if err != nil {
		return nil, err
	}
	tex.Filter = !d.Nearest
	return tex, nil
}

type brushDesc struct {
	Group                  string        `yaml:"group"`
	Material               *materialDesc `yaml:"material"`
	dynpaint.BrushSettings `yaml:",inline"`
}

func (d *brushDesc) UnmarshalYAML(node *yaml.Node) error {
	type plain brushDesc
	d.BrushSettings = dynpaint.DefaultBrushSettings()
	return node.Decode((*plain)(d))
}

type particlesDesc struct {
	Count         int     `yaml:"count"`
	Start         float32 `yaml:"start"`
	End           float32 `yaml:"end"`
	Lifetime      float32 `yaml:"lifetime"`
	Velocity      vec3    `yaml:"velocity"`
	Spread        float32 `yaml:"spread"`
	Size          float32 `yaml:"size"`
	RandomSize    float32 `yaml:"random_size"`
	Seed          uint64  `yaml:"seed"`
	UseGravity    bool    `yaml:"use_gravity"`
	IncludeUnborn bool    `yaml:"include_unborn"`
	IncludeDead   bool    `yaml:"include_dead"`
}

func (d particlesDesc) emitter() Emitter {
	return Emitter{
		Count:         d.Count,
		Start:         d.Start,
		End:           d.End,
		Lifetime:      d.Lifetime,
		Velocity:      d.Velocity.vec(),
		Spread:        d.Spread,
		Size:          d.Size,
		RandomSize:    d.RandomSize,
		Seed:          d.Seed,
		UseGravity:    d.UseGravity,
		IncludeUnborn: d.IncludeUnborn,
		IncludeDead:   d.IncludeDead,
	}
}

type fieldDesc struct {
	Type        FieldKind `yaml:"type"`
	Strength    float32   `yaml:"strength"`
	MaxDistance float32   `yaml:"max_distance"`
}

type objectDesc struct {
	Name          string `yaml:"name"`
	transformDesc `yaml:",inline"`
	Keyframes     []keyframeDesc `yaml:"keyframes"`
	Mesh          *meshDesc      `yaml:"mesh"`
	Canvas        *canvasDesc    `yaml:"canvas"`
	Brush         *brushDesc     `yaml:"brush"`
	Particles     *particlesDesc `yaml:"particles"`
	Field         *fieldDesc     `yaml:"field"`
}

type sceneDesc struct {
	Name       string       `yaml:"name"`
	FPS        float32      `yaml:"fps"`
	Gravity    *vec3        `yaml:"gravity"`
	UseGravity *bool        `yaml:"use_gravity"`
	Objects    []objectDesc `yaml:"objects"`
}

// Load reads a scene description. Texture paths are relative to the file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse builds a scene from YAML. dir resolves relative texture paths.
func Parse(data []byte, dir string) (*Scene, error) {
	var desc sceneDesc
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	s := New(desc.Name)
	if desc.FPS > 0 {
		s.FPS = desc.FPS
	}
	if desc.Gravity != nil {
		s.SetGravity(desc.Gravity.vec())
	}
	if desc.UseGravity != nil && !*desc.UseGravity {
		s.SetGravity(pmath.Vec3{})
	}
	textures := assets.NewManager(dir)
	for i := range desc.Objects {
		if err := s.addDesc(&desc.Objects[i], textures); err != nil {
			return nil, fmt.Errorf("object %q: %w", desc.Objects[i].Name, err)
		}
	}
	if len(s.Canvases) == 0 {
		return nil, ErrNoCanvas
	}
	return s, nil
}

func (s *Scene) addDesc(d *objectDesc, textures *assets.Manager) error {
	base := d.transformDesc.apply(IdentityTransform())
	id, err := s.AddObject(d.Name, base)
	if err != nil {
		return err
	}
	if len(d.Keyframes) > 0 {
		keys := make([]Keyframe, len(d.Keyframes))
		for i, k := range d.Keyframes {
			keys[i] = Keyframe{Frame: k.Frame, Transform: k.transformDesc.apply(base)}
		}
		if err := s.SetMotion(id, NewMotion(keys)); err != nil {
			return err
		}
	}
	var m *mesh.Mesh
	if d.Mesh != nil {
		if m, err = d.Mesh.build(); err != nil {
			return err
		}
		if err := s.SetGeometry(id, m); err != nil {
			return err
		}
	}
	if d.Canvas != nil {
		spec := CanvasSpec{Object: id, Name: d.Name}
		for _, sd := range d.Canvas.Surfaces {
			if err := sd.Validate(); err != nil {
				return fmt.Errorf("surface %q: %w", sd.Name, err)
			}
			spec.Surfaces = append(spec.Surfaces, SurfaceSpec{Name: sd.Name, Settings: sd.SurfaceSettings})
		}
		if err := s.AddCanvas(spec); err != nil {
			return err
		}
	}
	if d.Brush != nil {
		if err := d.Brush.Validate(); err != nil {
			return err
		}
		b := Brush{Settings: d.Brush.BrushSettings, Group: d.Brush.Group}
		if d.Brush.Material != nil {
			var mp mesh.Provider
			if m != nil {
				mp = m
			}
			if b.Material, err = d.Brush.Material.build(mp, textures); err != nil {
				return err
			}
		}
		if err := s.SetBrush(id, b); err != nil {
			return err
		}
	}
	if d.Particles != nil {
		if err := s.SetEmitter(id, d.Particles.emitter()); err != nil {
			return err
		}
	}
	if d.Field != nil {
		switch d.Field.Type {
		case FieldWind, FieldPoint:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, d.Field.Type)
		}
		f := Field{Kind: d.Field.Type, Strength: d.Field.Strength, MaxDistance: d.Field.MaxDistance}
		if err := s.SetField(id, f); err != nil {
			return err
		}
	}
	return nil
}
