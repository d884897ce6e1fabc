package dynpaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/dynpaint/internal/mesh"
)

func TestVertexAdjacency(t *testing.T) {
	m := mesh.Plane(2, 2, 2, 2)
	ad := vertexAdjacency(m)
	require.NotNil(t, ad)
	assert.Equal(t, 2*len(m.Edges()), ad.TotalTargets())

	for i := range m.Verts() {
		for _, j := range ad.Neighbors(i) {
			assert.NotEqual(t, i, j)
			assert.Contains(t, ad.Neighbors(j), i, "link %d->%d has no reverse", i, j)
		}
	}

	tests := []struct {
		vert int
		edge bool
	}{
		{0, true},
		{1, true},
		{4, false},
		{8, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.edge, ad.Flags[tt.vert]&AdjOnMeshEdge != 0, "vertex %d", tt.vert)
	}

	assert.Nil(t, vertexAdjacency(mesh.Chain(1, 1)))
}

func TestReset(t *testing.T) {
	m := mesh.Plane(2, 2, 3, 3)

	t.Run("paint with init color", func(t *testing.T) {
		s := newTestSurface(func(st *SurfaceSettings) {
			st.InitColorType = InitColor
			st.InitColor = RGB{0, 1, 0}
			st.InitAlpha = 0.5
		})
		require.NoError(t, s.Reset(m))
		assert.Equal(t, 16, s.Points())
		for _, p := range s.Data.Payload.(PaintPayload) {
			assert.Equal(t, RGB{0, 1, 0}, p.Color)
			assert.Equal(t, float32(0.5), p.Alpha)
			assert.Zero(t, p.EAlpha)
		}
		require.NotNil(t, s.Data.Adj, "antialiased vertex surfaces need adjacency")
	})

	t.Run("weight without adjacency", func(t *testing.T) {
		s := newTestSurface(func(st *SurfaceSettings) {
			st.Type = SurfaceWeight
			st.Antialias = false
		})
		require.NoError(t, s.Reset(m))
		assert.IsType(t, WeightPayload{}, s.Data.Payload)
		assert.Nil(t, s.Data.Adj)
	})

	t.Run("image sequence is only freed", func(t *testing.T) {
		s := newTestSurface(func(st *SurfaceSettings) { st.Format = FormatImageSeq })
		s.Data = &SurfaceData{}
		require.NoError(t, s.Reset(m))
		assert.Nil(t, s.Data)
	})

	t.Run("ptex", func(t *testing.T) {
		s := newTestSurface(func(st *SurfaceSettings) { st.Format = FormatPtex })
		assert.ErrorIs(t, s.Reset(m), ErrUnsupportedFormat)
	})

	t.Run("over budget", func(t *testing.T) {
		c := NewCanvas(testCanvasID, "small", WithMaxSamples(10))
		s := c.AddSurface("surface", DefaultSurfaceSettings())
		assert.ErrorIs(t, s.Reset(m), ErrNotEnoughMemory)
		assert.Nil(t, s.Data)
	})
}

func TestCanvasSurfaceLookup(t *testing.T) {
	c := NewCanvas(testCanvasID, "canvas")
	a := c.AddSurface("a", DefaultSurfaceSettings())
	assert.Same(t, a, c.Surface("a"))
	assert.Same(t, c, a.Canvas())
	assert.Nil(t, c.Surface("b"))
	assert.Zero(t, a.Points())
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Baking Cancelled!", UserMessage(ErrCancelled))
	assert.Equal(t, "Bake Failed: surface has no data", UserMessage(ErrNoSurfaceData))
}
