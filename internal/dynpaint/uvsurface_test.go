package dynpaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

func rasterFor(t *testing.T, m *mesh.Mesh, res int) *UVRaster {
	t.Helper()
	uvs, ok := m.UVLayer(mesh.DefaultUVLayer)
	require.True(t, ok)
	c := NewCanvas(testCanvasID, "canvas", WithWorkers(4))
	return c.NewUVRaster(m, uvs, res, res, true)
}

// insetQuad is a single quad whose UV island covers the middle half of the image.
func insetQuad(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New([]pmath.Vec3{
		pmath.V3(-1, -1, 0), pmath.V3(1, -1, 0), pmath.V3(1, 1, 0), pmath.V3(-1, 1, 0),
	}, []mesh.Face{mesh.Quad(0, 1, 2, 3)})
	require.NoError(t, err)
	require.NoError(t, m.AddUVLayer(mesh.DefaultUVLayer, []mesh.FaceUV{
		{{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.25}, {X: 0.75, Y: 0.75}, {X: 0.25, Y: 0.75}},
	}))
	return m
}

func TestUVRasterCoverage(t *testing.T) {
	r := rasterFor(t, mesh.Plane(2, 2, 2, 2), 16)
	for i, p := range r.Points {
		assert.NotEqual(t, -1, p.FaceIndex, "texel %d", i)
		assert.Equal(t, i, p.PixelIndex)
	}

	r = rasterFor(t, insetQuad(t), 16)
	assert.Equal(t, -1, r.Points[0].FaceIndex)
	assert.Equal(t, 0, r.Points[8+16*8].FaceIndex)
	assert.Equal(t, -1, r.Points[8+16*8].NeighbourPixel)
	for _, w := range r.Weights[(8+16*8)*r.Samples:][:r.Samples] {
		assert.InDelta(t, 1, w[0]+w[1]+w[2], 1e-5)
	}
}

func TestFindNeighbourPixel(t *testing.T) {
	r := rasterFor(t, insetQuad(t), 16)

	tests := []struct {
		name   string
		x, y   int
		dir    int
		expect int
	}{
		{"inside island", 8, 8, 0, 9 + 16*8},
		{"diagonal inside island", 8, 8, 5, 7 + 16*7},
		{"outside image", 0, 8, 4, NeighOutOfTexture},
		{"mesh border", 12, 8, 0, NeighOnMeshEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, r.FindNeighbourPixel(tt.x, tt.y, tt.dir))
		})
	}
}

func TestFindNeighbourPixelAcrossSeam(t *testing.T) {
	// Cube face 0 (-Z) and face 3 (+Y) share an edge but lie on separate
	// islands, with a four texel gap between them.
	const res = 64
	r := rasterFor(t, mesh.Cube(2, 4.0/res), res)

	origin := r.Points[17+res*16]
	require.Equal(t, 0, origin.FaceIndex)
	require.Equal(t, -1, origin.NeighbourPixel)

	got := r.FindNeighbourPixel(17, 16, 0)
	require.GreaterOrEqual(t, got, 0)
	assert.Equal(t, 3, r.Points[got].FaceIndex)
	assert.NotEqual(t, 18+res*16, got)
}

func TestFindNeighbourPixelSubPixelMargin(t *testing.T) {
	// Face 0 (-Z) and face 1 (+Z) sit side by side in the atlas, a tenth of
	// a texel apart. Across the right edge of face 0 the mesh continues on
	// face 3, but the lookup takes the directly owned texel of face 1.
	const res = 64
	r := rasterFor(t, mesh.Cube(2, 0.1/res), res)

	origin := r.Points[20+res*16]
	require.Equal(t, 0, origin.FaceIndex)
	require.Equal(t, 1, r.Points[21+res*16].FaceIndex)

	got := r.FindNeighbourPixel(20, 16, 0)
	assert.Equal(t, 21+res*16, got)
	assert.NotEqual(t, 3, r.Points[got].FaceIndex)
}

func TestCreateUVSurface(t *testing.T) {
	plane := mesh.Plane(2, 2, 2, 2)
	imageSurface := func(edit func(*SurfaceSettings)) *Surface {
		return newTestSurface(func(st *SurfaceSettings) {
			st.Format = FormatImageSeq
			st.UVLayer = mesh.DefaultUVLayer
			st.Resolution = 16
			if edit != nil {
				edit(st)
			}
		})
	}

	t.Run("full cover with adjacency", func(t *testing.T) {
		s := imageSurface(func(st *SurfaceSettings) { st.Spread = true })
		require.NoError(t, s.CreateUVSurface(plane))
		seq := s.Data.ImageSeq
		require.NotNil(t, seq)
		assert.Equal(t, 256, s.Points())
		assert.Equal(t, 5, seq.Samples)
		assert.Len(t, seq.Weights, 256*5)

		adj := s.Data.Adj
		require.NotNil(t, adj)
		assert.Equal(t, 8, adj.NNum[8+16*8])
		assert.Zero(t, adj.Flags[8+16*8]&AdjOnMeshEdge)
		assert.Equal(t, 3, adj.NNum[0])
		assert.NotZero(t, adj.Flags[0]&AdjOnMeshEdge)
	})

	t.Run("no antialiasing", func(t *testing.T) {
		s := imageSurface(func(st *SurfaceSettings) { st.Antialias = false })
		require.NoError(t, s.CreateUVSurface(plane))
		assert.Equal(t, 1, s.Data.ImageSeq.Samples)
		assert.Nil(t, s.Data.Adj)
	})

	errs := []struct {
		name string
		edit func(*SurfaceSettings)
		opts []Option
		want error
	}{
		{"vertex format", func(st *SurfaceSettings) { st.Format = FormatVertex }, nil, ErrUnsupportedFormat},
		{"missing uv layer", func(st *SurfaceSettings) { st.UVLayer = "other" }, nil, ErrNoUVLayer},
		{"too small", func(st *SurfaceSettings) { st.Resolution = 8 }, nil, ErrInvalidResolution},
		{"too large", func(st *SurfaceSettings) { st.Resolution = MaxResolution + 1 }, nil, ErrInvalidResolution},
		{"over budget", nil, []Option{WithMaxSamples(100)}, ErrNotEnoughMemory},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			st := DefaultSurfaceSettings()
			st.Format = FormatImageSeq
			st.UVLayer = mesh.DefaultUVLayer
			st.Resolution = 16
			if tt.edit != nil {
				tt.edit(&st)
			}
			c := NewCanvas(testCanvasID, "canvas", tt.opts...)
			s := c.AddSurface("surface", st)
			assert.ErrorIs(t, s.CreateUVSurface(plane), tt.want)
			assert.Nil(t, s.Data)
		})
	}
}
