package dynpaint

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/dynpaint/internal/parallel"
	"github.com/Faultbox/dynpaint/pkg/geom"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

const (
	gridPointsPerCell = 10000
	gridMinCells      = 3
	gridMaxCells      = 100
)

// VolumeGrid buckets surface points into axis aligned cells.
type VolumeGrid struct {
	Dim    [3]int
	Bounds geom.Bounds3D

	cellBounds []geom.Bounds3D
	sPos       []int
	sNum       []int
	tIndex     []int
}

// Cells returns the total cell count.
func (g *VolumeGrid) Cells() int { return g.Dim[0] * g.Dim[1] * g.Dim[2] }

// CellBounds returns the box of cell c.
func (g *VolumeGrid) CellBounds(c int) geom.Bounds3D { return g.cellBounds[c] }

// CellPoints returns the point indices stored in cell c.
func (g *VolumeGrid) CellPoints(c int) []int {
	return g.tIndex[g.sPos[c] : g.sPos[c]+g.sNum[c]]
}

// generateGrid builds a grid over coords. It returns nil when every axis is
// degenerate; callers then have no spatial acceleration.
func generateGrid(coords []pmath.Vec3, pool *parallel.Pool) *VolumeGrid {
	total := len(coords)
	if total == 0 {
		return nil
	}
	g := &VolumeGrid{}
	for _, c := range coords {
		g.Bounds.Insert(c)
	}

	dim := g.Bounds.Size()
	td := dim
	minDim := math32.Max(td.X, math32.Max(td.Y, td.Z)) / 1000
	axes := 3
	for i := 0; i < 3; i++ {
		if td.Comp(i) < minDim {
			td = td.SetComp(i, 1)
			axes--
		}
	}
	if axes == 0 || math32.Max(td.X, math32.Max(td.Y, td.Z)) < 0.0001 {
		return nil
	}

	volume := float64(td.X) * float64(td.Y) * float64(td.Z)
	dimFactor := float32(math.Pow(volume/(float64(total)/gridPointsPerCell), 1/float64(axes)))
	for i := 0; i < 3; i++ {
		if dim.Comp(i) < minDim {
			g.Dim[i] = 1
			continue
		}
		n := int(math32.Floor(td.Comp(i) / dimFactor))
		g.Dim[i] = min(max(n, gridMinCells), gridMaxCells)
	}

	cells := g.Cells()
	workers := pool.Workers()
	cellOf := make([]int, total)
	partial := make([][]int, workers)
	for w := range partial {
		partial[w] = make([]int, cells)
	}

	pool.For(total, func(worker, start, end int) {
		counts := partial[worker]
		for i := start; i < end; i++ {
			c := g.cellIndex(coords[i], dim)
			cellOf[i] = c
			counts[c]++
		}
	})

	g.sNum = make([]int, cells)
	g.sPos = make([]int, cells)
	for c := 0; c < cells; c++ {
		for w := 0; w < workers; w++ {
			g.sNum[c] += partial[w][c]
		}
		if c > 0 {
			g.sPos[c] = g.sPos[c-1] + g.sNum[c-1]
		}
	}

	g.tIndex = make([]int, total)
	fill := make([]int, cells)
	for i, c := range cellOf {
		g.tIndex[g.sPos[c]+fill[c]] = i
		fill[c]++
	}

	g.cellBounds = make([]geom.Bounds3D, cells)
	step := pmath.V3(dim.X/float32(g.Dim[0]), dim.Y/float32(g.Dim[1]), dim.Z/float32(g.Dim[2]))
	for z := 0; z < g.Dim[2]; z++ {
		for y := 0; y < g.Dim[1]; y++ {
			for x := 0; x < g.Dim[0]; x++ {
				lo := g.Bounds.Min.Add(step.MulComp(pmath.V3(float32(x), float32(y), float32(z))))
				g.cellBounds[x+y*g.Dim[0]+z*g.Dim[0]*g.Dim[1]] = geom.Bounds3D{
					Min: lo, Max: lo.Add(step), Valid: true,
				}
			}
		}
	}
	return g
}

func (g *VolumeGrid) cellIndex(p, dim pmath.Vec3) int {
	var co [3]int
	for j := 0; j < 3; j++ {
		if d := dim.Comp(j); d > 0 {
			co[j] = int(math32.Floor((p.Comp(j) - g.Bounds.Min.Comp(j)) / d * float32(g.Dim[j])))
		}
		co[j] = min(max(co[j], 0), g.Dim[j]-1)
	}
	return co[0] + co[1]*g.Dim[0] + co[2]*g.Dim[0]*g.Dim[1]
}
