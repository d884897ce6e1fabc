package dynpaint

import "fmt"

// Format is how surface points are addressed.
type Format string

const (
	FormatVertex   Format = "vertex"
	FormatImageSeq Format = "image"
	FormatPtex     Format = "ptex" // recognised, never simulated
)

// SurfaceType is what each surface point stores.
type SurfaceType string

const (
	SurfacePaint    SurfaceType = "paint"
	SurfaceDisplace SurfaceType = "displace"
	SurfaceWeight   SurfaceType = "weight"
	SurfaceWave     SurfaceType = "wave"
)

// DisplaceOutput selects how displace values are written to images.
type DisplaceOutput string

const (
	DisplaceDisplacement DisplaceOutput = "displace"
	DisplaceDepth        DisplaceOutput = "depth"
)

// InitColorType selects the initial paint of a fresh surface.
type InitColorType string

const (
	InitNone  InitColorType = "none"
	InitColor InitColorType = "color"
)

// Image resolution limits for image-sequence surfaces.
const (
	MinResolution = 16
	MaxResolution = 8096
)

// MaxSubsteps bounds the extra brush evaluations between frames.
const MaxSubsteps = 10

func checkUnit(name string, v float32) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %g outside [0, 1]", ErrInvalidSettings, name, v)
	}
	return nil
}

// SurfaceSettings is the persisted configuration of one surface.
type SurfaceSettings struct {
	Format     Format      `yaml:"format"`
	Type       SurfaceType `yaml:"type"`
	Disabled   bool        `yaml:"disabled"`
	Resolution int         `yaml:"resolution"`
	Antialias  bool        `yaml:"antialias"`
	UVLayer    string      `yaml:"uv_layer"`
	BrushGroup string      `yaml:"brush_group"`

	StartFrame int `yaml:"start_frame"`
	EndFrame   int `yaml:"end_frame"`
	Substeps   int `yaml:"substeps"`

	InfluenceScale float32 `yaml:"influence_scale"`
	RadiusScale    float32 `yaml:"radius_scale"`

	InitColorType InitColorType `yaml:"init_color_type"`
	InitColor     RGB           `yaml:"init_color"`
	InitAlpha     float32       `yaml:"init_alpha"`

	Drying            bool    `yaml:"drying"`
	DrySpeed          float32 `yaml:"dry_speed"`
	DryLog            bool    `yaml:"dry_log"`
	ColorDryThreshold float32 `yaml:"color_dry_threshold"`

	Dissolve      bool    `yaml:"dissolve"`
	DissolveSpeed float32 `yaml:"dissolve_speed"`
	DissolveLog   bool    `yaml:"dissolve_log"`

	Spread      bool    `yaml:"spread"`
	SpreadSpeed float32 `yaml:"spread_speed"`
	Shrink      bool    `yaml:"shrink"`
	ShrinkSpeed float32 `yaml:"shrink_speed"`
	Drip        bool    `yaml:"drip"`

	EffectorWeight float32 `yaml:"effector_weight"`
	GravityWeight  float32 `yaml:"gravity_weight"`

	DepthClamp      float32        `yaml:"depth_clamp"`
	DispIncremental bool           `yaml:"disp_incremental"`
	DispOutput      DisplaceOutput `yaml:"disp_output"`

	WaveTimescale   float32 `yaml:"wave_timescale"`
	WaveSpeed       float32 `yaml:"wave_speed"`
	WaveDamping     float32 `yaml:"wave_damping"`
	WaveSpring      float32 `yaml:"wave_spring"`
	WaveSmoothness  float32 `yaml:"wave_smoothness"`
	WaveOpenBorders bool    `yaml:"wave_open_borders"`

	MultiplyAlpha bool   `yaml:"multiply_alpha"`
	OutputPaint   bool   `yaml:"output_paint"`
	OutputWetmap  bool   `yaml:"output_wetmap"`
	OutputName    string `yaml:"output_name"`
	OutputName2   string `yaml:"output_name2"`
}

// DefaultSurfaceSettings returns a paint surface with the usual defaults.
func DefaultSurfaceSettings() SurfaceSettings {
	return SurfaceSettings{
		Format:            FormatVertex,
		Type:              SurfacePaint,
		Resolution:        256,
		Antialias:         true,
		StartFrame:        1,
		EndFrame:          250,
		InfluenceScale:    1,
		RadiusScale:       1,
		InitColorType:     InitNone,
		InitColor:         RGB{0, 0, 0},
		InitAlpha:         1,
		Drying:            true,
		DrySpeed:          500,
		DryLog:            true,
		ColorDryThreshold: 1,
		DissolveSpeed:     250,
		DissolveLog:       true,
		SpreadSpeed:       1,
		ShrinkSpeed:       1,
		EffectorWeight:    1,
		GravityWeight:     1,
		DispOutput:        DisplaceDisplacement,
		WaveTimescale:     1,
		WaveSpeed:         1,
		WaveDamping:       0.04,
		WaveSpring:        0.2,
		WaveSmoothness:    1,
		MultiplyAlpha:     true,
		OutputPaint:       true,
		OutputWetmap:      true,
		OutputName:        "paintmap",
		OutputName2:       "wetmap",
	}
}

// Validate checks value ranges.
func (s *SurfaceSettings) Validate() error {
	if s.Substeps < 0 || s.Substeps > MaxSubsteps {
		return fmt.Errorf("%w: substeps %d outside [0, %d]", ErrInvalidSettings, s.Substeps, MaxSubsteps)
	}
	if s.EndFrame < s.StartFrame {
		return fmt.Errorf("%w: end frame %d before start frame %d", ErrInvalidSettings, s.EndFrame, s.StartFrame)
	}
	if s.Format == FormatImageSeq && (s.Resolution < MinResolution || s.Resolution > MaxResolution) {
		return fmt.Errorf("%d: %w", s.Resolution, ErrInvalidResolution)
	}
	return checkUnit("init alpha", s.InitAlpha)
}

// usesEffects reports whether any paint effect is active.
func (s *SurfaceSettings) usesEffects() bool {
	return s.Type == SurfacePaint && (s.Spread || s.Shrink || s.Drip)
}

// usesAdjDistance reports whether neighbor distances are needed each frame.
func (s *SurfaceSettings) usesAdjDistance() bool {
	return s.usesEffects() || s.Type == SurfaceWave
}

// usesAdjData reports whether the surface needs an adjacency graph.
func (s *SurfaceSettings) usesAdjData() bool {
	return s.usesAdjDistance() || (s.Format == FormatVertex && s.Antialias)
}

// Collision selects the brush sampler.
type Collision string

const (
	CollideVolume         Collision = "volume"
	CollideDistance       Collision = "distance"
	CollideVolumeDistance Collision = "volume_distance"
	CollideParticles      Collision = "particles"
	CollidePoint          Collision = "point"
)

// Falloff is the proximity influence curve.
type Falloff string

const (
	FalloffSmooth   Falloff = "smooth"
	FalloffConstant Falloff = "constant"
	FalloffRamp     Falloff = "ramp"
)

// RayDir is the projection direction for projected proximity.
type RayDir string

const (
	RayCanvas   RayDir = "canvas"
	RayBrushAvg RayDir = "brush"
	RayZPlus    RayDir = "z"
)

// WaveType is how a brush disturbs a wave surface.
type WaveType string

const (
	WaveChange  WaveType = "change"
	WaveDepth   WaveType = "depth"
	WaveForce   WaveType = "force"
	WaveReflect WaveType = "reflect"
)

// BrushSettings is the persisted configuration of one brush.
type BrushSettings struct {
	Color   RGB     `yaml:"color"`
	Alpha   float32 `yaml:"alpha"`
	Wetness float32 `yaml:"wetness"`

	Collision     Collision `yaml:"collision"`
	PaintDistance float32   `yaml:"paint_distance"`
	Falloff       Falloff   `yaml:"falloff"`
	Ramp          ColorRamp `yaml:"ramp"`
	RampAlphaOnly bool      `yaml:"ramp_alpha_only"`

	Erase            bool   `yaml:"erase"`
	AbsoluteAlpha    bool   `yaml:"absolute_alpha"`
	InverseProximity bool   `yaml:"inverse_proximity"`
	NegateVolume     bool   `yaml:"negate_volume"`
	AcceptNonClosed  bool   `yaml:"accept_nonclosed"`
	ProjectProximity bool   `yaml:"project_proximity"`
	RayDir           RayDir `yaml:"ray_dir"`
	UseMaterial      bool   `yaml:"use_material"`

	ParticleRadius    float32 `yaml:"particle_radius"`
	ParticleSmooth    float32 `yaml:"particle_smooth"`
	UseParticleRadius bool    `yaml:"use_particle_radius"`

	WaveType   WaveType `yaml:"wave_type"`
	WaveFactor float32  `yaml:"wave_factor"`
	WaveClamp  float32  `yaml:"wave_clamp"`
}

// Validate checks value ranges.
func (b *BrushSettings) Validate() error {
	if err := checkUnit("alpha", b.Alpha); err != nil {
		return err
	}
	if err := checkUnit("wetness", b.Wetness); err != nil {
		return err
	}
	if b.PaintDistance < 0 {
		return fmt.Errorf("%w: paint distance %g is negative", ErrInvalidSettings, b.PaintDistance)
	}
	return nil
}

// DefaultBrushSettings returns a volume brush with the usual defaults.
func DefaultBrushSettings() BrushSettings {
	return BrushSettings{
		Color:          RGB{0.15, 0.4, 0.8},
		Alpha:          1,
		Wetness:        1,
		Collision:      CollideVolume,
		PaintDistance:  1,
		Falloff:        FalloffSmooth,
		RayDir:         RayCanvas,
		ParticleRadius: 0.2,
		ParticleSmooth: 0.05,
		WaveType:       WaveChange,
		WaveFactor:     1,
	}
}
