package dynpaint

import (
	"github.com/Faultbox/dynpaint/pkg/geom"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

const (
	// effMovementPerFrame is how far effects may move per frame relative to the canvas size.
	effMovementPerFrame = 0.05
	// canvasRelSize is the canvas size effects and waves are normalised to.
	canvasRelSize = 5.0
	waveTimeFac   = 1.0 / 24.0
	minWetness    = 0.001
	maxWetness    = 2.5
	// brushStrengthMin is the averaged mesh brush strength below which nothing is written.
	brushStrengthMin = 0.01
)

// PaintState tracks the wet layer of a paint point.
type PaintState int8

const (
	PaintEmpty PaintState = iota
	PaintWet
	PaintNew
)

// PaintPoint is the payload of one paint surface point.
type PaintPoint struct {
	Color   RGB
	Alpha   float32
	EColor  RGB
	EAlpha  float32
	Wetness float32
	State   PaintState
}

// WaveState marks transient brush interaction on a wave point.
type WaveState int8

const (
	WaveIsectChanged WaveState = -1
	WaveNeutral      WaveState = 0
	WaveObstacle     WaveState = 1
	WaveReflectOnly  WaveState = 2
)

// WavePoint is the payload of one wave surface point.
type WavePoint struct {
	Height     float32
	Velocity   float32
	BrushIsect float32
	State      WaveState
	Foam       float32
}

// Payload is the per-point data of a surface. The concrete type always
// matches the surface type it was allocated for.
type Payload interface {
	Len() int
	clone() Payload
}

type (
	PaintPayload    []PaintPoint
	DisplacePayload []float32
	WeightPayload   []float32
	WavePayload     []WavePoint
)

func (p PaintPayload) Len() int    { return len(p) }
func (p DisplacePayload) Len() int { return len(p) }
func (p WeightPayload) Len() int   { return len(p) }
func (p WavePayload) Len() int     { return len(p) }

func (p PaintPayload) clone() Payload    { return append(PaintPayload(nil), p...) }
func (p DisplacePayload) clone() Payload { return append(DisplacePayload(nil), p...) }
func (p WeightPayload) clone() Payload   { return append(WeightPayload(nil), p...) }
func (p WavePayload) clone() Payload     { return append(WavePayload(nil), p...) }

// newPayload allocates zeroed point data for typ.
func newPayload(typ SurfaceType, n int) (Payload, error) {
	switch typ {
	case SurfacePaint:
		return make(PaintPayload, n), nil
	case SurfaceDisplace:
		return make(DisplacePayload, n), nil
	case SurfaceWeight:
		return make(WeightPayload, n), nil
	case SurfaceWave:
		return make(WavePayload, n), nil
	}
	return nil, ErrUnsupportedFormat
}

// Adjacency flags.
const (
	AdjOnMeshEdge uint8 = 1 << iota
)

// AdjData is a CSR adjacency graph over surface points.
type AdjData struct {
	NIndex  []int
	NNum    []int
	NTarget []int
	Flags   []uint8
}

// TotalTargets is the number of directed neighbor links.
func (a *AdjData) TotalTargets() int { return len(a.NTarget) }

// Neighbors returns the neighbor indices of point i.
func (a *AdjData) Neighbors(i int) []int {
	return a.NTarget[a.NIndex[i] : a.NIndex[i]+a.NNum[i]]
}

// UVPoint maps one texel to its owning canvas triangle.
type UVPoint struct {
	PixelIndex     int
	FaceIndex      int
	NeighbourPixel int
	Quad           bool
	V              [3]int
}

// ImageSeqData is the format data of an image sequence surface.
type ImageSeqData struct {
	Width, Height int
	Samples       int
	UV            []UVPoint
	Weights       [][3]float32 // Samples entries per point
}

// bakeNormal is the inverted world normal and local-to-world depth scale.
type bakeNormal struct {
	InvNorm     pmath.Vec3
	NormalScale float32
}

// bakeNeigh caches the direction and distance of one adjacency link.
type bakeNeigh struct {
	Dir  pmath.Vec3
	Dist float32
}

// BakeData is the transient per-frame state of a surface.
type BakeData struct {
	normals    []bakeNormal
	sPos       []int
	sNum       []int
	realCoord  []pmath.Vec3
	neighs     []bakeNeigh
	avgDist    float64
	grid       *VolumeGrid
	meshBounds geom.Bounds3D

	prevVerts  []pmath.Vec3
	prevMatrix pmath.Mat4
}

// Coord returns the first sample position of point i.
func (b *BakeData) Coord(i int) pmath.Vec3 { return b.realCoord[b.sPos[i]] }

// Grid returns the spatial grid, or nil when none could be built.
func (b *BakeData) Grid() *VolumeGrid { return b.grid }

// SurfaceData is the persistent simulation state of a surface.
type SurfaceData struct {
	TotalPoints int
	ImageSeq    *ImageSeqData // nil for per-vertex surfaces
	Payload     Payload
	Adj         *AdjData
	Bake        *BakeData
}
