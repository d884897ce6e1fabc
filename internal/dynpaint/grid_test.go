package dynpaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/dynpaint/internal/mesh"
	"github.com/Faultbox/dynpaint/internal/parallel"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

func TestGenerateGridCoversEveryPoint(t *testing.T) {
	tests := []struct {
		name   string
		coords []pmath.Vec3
		flat   int
	}{
		{"plane", mesh.Plane(2, 2, 30, 30).Verts(), 2},
		{"cube", mesh.Cube(2, 0).Verts(), -1},
		{"line", mesh.Chain(50, 0.1).Verts(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := generateGrid(tt.coords, parallel.New(4))
			require.NotNil(t, g)

			seen := make([]int, len(tt.coords))
			total := 0
			for c := 0; c < g.Cells(); c++ {
				b := g.CellBounds(c)
				for _, i := range g.CellPoints(c) {
					seen[i]++
					total++
					p := tt.coords[i]
					for k := 0; k < 3; k++ {
						assert.GreaterOrEqual(t, p.Comp(k), b.Min.Comp(k)-1e-4)
						assert.LessOrEqual(t, p.Comp(k), b.Max.Comp(k)+1e-4)
					}
				}
			}
			assert.Equal(t, len(tt.coords), total)
			for i, n := range seen {
				assert.Equal(t, 1, n, "point %d", i)
			}

			for k := 0; k < 3; k++ {
				if k == tt.flat {
					assert.Equal(t, 1, g.Dim[k], "flat axis %d", k)
					continue
				}
				if tt.flat == 1 && k == 2 {
					assert.Equal(t, 1, g.Dim[k])
					continue
				}
				assert.GreaterOrEqual(t, g.Dim[k], gridMinCells, "axis %d", k)
				assert.LessOrEqual(t, g.Dim[k], gridMaxCells, "axis %d", k)
			}
		})
	}
}

func TestGenerateGridDegenerate(t *testing.T) {
	assert.Nil(t, generateGrid(nil, nil))

	same := []pmath.Vec3{pmath.V3(1, 1, 1), pmath.V3(1, 1, 1), pmath.V3(1, 1, 1)}
	assert.Nil(t, generateGrid(same, parallel.New(2)))
}
