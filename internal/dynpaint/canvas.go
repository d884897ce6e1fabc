// Package dynpaint simulates paint, displacement, weight and wave surfaces
// driven by brush objects on a canvas mesh.
package dynpaint

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/dynpaint/internal/logger"
	"github.com/Faultbox/dynpaint/internal/mesh"
	"github.com/Faultbox/dynpaint/internal/parallel"
)

// DefaultMaxSamples bounds the number of samples a single surface may allocate.
const DefaultMaxSamples = 64 << 20

// ObjectID identifies a scene object.
type ObjectID uint64

// Canvas is an object carrying one or more simulated surfaces.
type Canvas struct {
	Object   ObjectID
	Name     string
	Surfaces []*Surface

	// LastError is the user facing message of the most recent failure.
	LastError string

	pool       *parallel.Pool
	maxSamples int
	log        *zap.Logger
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithWorkers sets the worker count; n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Canvas) { c.pool = parallel.New(n) }
}

// WithMaxSamples sets the per surface sample budget.
func WithMaxSamples(n int) Option {
	return func(c *Canvas) { c.maxSamples = n }
}

// WithLogger overrides the canvas logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Canvas) { c.log = l }
}

// NewCanvas creates an empty canvas for object id.
func NewCanvas(id ObjectID, name string, opts ...Option) *Canvas {
	c := &Canvas{Object: id, Name: name, maxSamples: DefaultMaxSamples}
	for _, opt := range opts {
		opt(c)
	}
	if c.pool == nil {
		c.pool = parallel.New(0)
	}
	if c.log == nil {
		c.log = logger.Named("dynpaint")
	}
	return c
}

// AddSurface appends a surface with the given settings.
func (c *Canvas) AddSurface(name string, settings SurfaceSettings) *Surface {
	s := &Surface{Name: name, Settings: settings, canvas: c}
	c.Surfaces = append(c.Surfaces, s)
	return s
}

// Surface returns the named surface or nil.
func (c *Canvas) Surface(name string) *Surface {
	for _, s := range c.Surfaces {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// fail records err as the canvas error and returns it unchanged.
func (c *Canvas) fail(s *Surface, err error) error {
	c.LastError = UserMessage(err)
	fields := []zap.Field{zap.String("canvas", c.Name), zap.String("surface", s.Name)}
	if errors.Is(err, ErrCancelled) {
		c.log.Info("bake cancelled", fields...)
		return err
	}
	c.log.Error("surface step failed", append(fields, zap.Error(err))...)
	return err
}

// checkAlloc rejects buffers larger than the sample budget.
func (c *Canvas) checkAlloc(samples int) error {
	if samples < 0 || samples > c.maxSamples {
		return fmt.Errorf("%d samples exceed budget of %d: %w", samples, c.maxSamples, ErrNotEnoughMemory)
	}
	return nil
}

// Surface is one simulated layer of a canvas.
type Surface struct {
	Name         string
	Settings     SurfaceSettings
	Data         *SurfaceData
	CurrentFrame int

	canvas *Canvas
}

// Canvas returns the owning canvas.
func (s *Surface) Canvas() *Canvas { return s.canvas }

// Points returns the number of simulated points, zero when unallocated.
func (s *Surface) Points() int {
	if s.Data == nil {
		return 0
	}
	return s.Data.TotalPoints
}

// Free drops all simulation data.
func (s *Surface) Free() { s.Data = nil }

// Reset reallocates per-vertex surface data for m. Image sequence surfaces are
// built by CreateUVSurface instead, so Reset only frees them.
func (s *Surface) Reset(m mesh.Provider) error {
	s.Free()
	switch s.Settings.Format {
	case FormatImageSeq:
		return nil
	case FormatPtex:
		return ErrUnsupportedFormat
	case FormatVertex:
	default:
		return fmt.Errorf("format %q: %w", s.Settings.Format, ErrUnsupportedFormat)
	}
	if m == nil {
		return ErrCanvasNotAvailable
	}

	n := len(m.Verts())
	if n < 1 {
		return ErrNoSurfaceData
	}
	if err := s.canvas.checkAlloc(n + 2*len(m.Edges())); err != nil {
		return err
	}
	payload, err := newPayload(s.Settings.Type, n)
	if err != nil {
		return fmt.Errorf("type %q: %w", s.Settings.Type, err)
	}
	data := &SurfaceData{TotalPoints: n, Payload: payload}
	if s.Settings.usesAdjData() {
		data.Adj = vertexAdjacency(m)
	}
	s.Data = data
	s.setInitialColor()
	return nil
}

func (s *Surface) setInitialColor() {
	if s.Settings.InitColorType != InitColor {
		return
	}
	points, ok := s.Data.Payload.(PaintPayload)
	if !ok {
		return
	}
	for i := range points {
		points[i].Color = s.Settings.InitColor
		points[i].Alpha = clampf(s.Settings.InitAlpha, 0, 1)
	}
}

// vertexAdjacency links vertices sharing an edge. A vertex is on the mesh edge
// when its edge plus face count is odd or below four.
func vertexAdjacency(m mesh.Provider) *AdjData {
	n := len(m.Verts())
	edges := m.Edges()
	if len(edges) == 0 {
		return nil
	}
	ad := &AdjData{
		NIndex:  make([]int, n),
		NNum:    make([]int, n),
		NTarget: make([]int, 2*len(edges)),
		Flags:   make([]uint8, n),
	}
	count := make([]int, n)
	for _, e := range edges {
		ad.NNum[e[0]]++
		ad.NNum[e[1]]++
		count[e[0]]++
		count[e[1]]++
	}
	for _, f := range m.Faces() {
		for j := 0; j < f.Corners(); j++ {
			count[f.V[j]]++
		}
	}
	pos := 0
	for i := 0; i < n; i++ {
		if count[i]%2 == 1 || count[i] < 4 {
			ad.Flags[i] |= AdjOnMeshEdge
		}
		count[i] = 0
		ad.NIndex[i] = pos
		pos += ad.NNum[i]
	}
	for _, e := range edges {
		a, b := e[0], e[1]
		ad.NTarget[ad.NIndex[a]+count[a]] = b
		count[a]++
		ad.NTarget[ad.NIndex[b]+count[b]] = a
		count[b]++
	}
	return ad
}
