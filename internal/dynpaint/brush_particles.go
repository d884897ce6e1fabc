package dynpaint

import (
	"sort"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/Faultbox/dynpaint/pkg/geom"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// particlePoint is a particle position in the k-d tree.
type particlePoint struct {
	co    [3]float64
	index int
}

func newParticlePoint(v pmath.Vec3, index int) particlePoint {
	return particlePoint{co: [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}, index: index}
}

func (p particlePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.co[d] - c.(particlePoint).co[d]
}

func (p particlePoint) Dims() int { return 3 }

// Distance returns the squared distance.
func (p particlePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(particlePoint)
	var sum float64
	for i := range p.co {
		d := p.co[i] - q.co[i]
		sum += d * d
	}
	return sum
}

type particlePoints []particlePoint

func (p particlePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p particlePoints) Len() int                      { return len(p) }
func (p particlePoints) Pivot(d kdtree.Dim) int {
	return particlePlane{Dim: d, particlePoints: p}.Pivot()
}
func (p particlePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type particlePlane struct {
	kdtree.Dim
	particlePoints
}

func (p particlePlane) Less(i, j int) bool {
	return p.particlePoints[i].co[p.Dim] < p.particlePoints[j].co[p.Dim]
}
func (p particlePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p particlePlane) Slice(start, end int) kdtree.SortSlicer {
	p.particlePoints = p.particlePoints[start:end]
	return p
}
func (p particlePlane) Swap(i, j int) {
	p.particlePoints[i], p.particlePoints[j] = p.particlePoints[j], p.particlePoints[i]
}

// particleBrush is a particle system prepared for one step.
type particleBrush struct {
	settings *BrushSettings
	ps       *ParticleSystem
	tree     *kdtree.Tree
	solid    float32
	smooth   float32
}

// paintParticles applies a particle system brush.
func (s *Surface) paintParticles(inst *BrushInstance, timescale float32) {
	ps := inst.Particles
	grid := s.Data.Bake.grid
	if ps == nil || len(ps.Particles) == 0 || grid == nil {
		return
	}
	brush := inst.Settings
	pb := &particleBrush{settings: brush, ps: ps, solid: brush.ParticleRadius, smooth: brush.ParticleSmooth}
	if brush.UseParticleRadius {
		pb.solid = 0
		for i := range ps.Particles {
			if p := &ps.Particles[i]; ps.usable(p) {
				pb.solid = math32.Max(pb.solid, p.Size)
			}
		}
	}
	rng := pb.solid + pb.smooth

	var (
		pts     particlePoints
		partBB  geom.Bounds3D
		invalid int
	)
	for i := range ps.Particles {
		p := &ps.Particles[i]
		if !ps.usable(p) {
			continue
		}
		if p.Co.IsNaN() {
			invalid++
			continue
		}
		if !geom.IntersectPoint(grid.Bounds, p.Co, rng) {
			continue
		}
		pts = append(pts, newParticlePoint(p.Co, i))
		partBB.Insert(p.Co)
	}
	if invalid > 0 {
		s.canvas.log.Warn("invalid particles skipped",
			zap.String("brush", inst.Name), zap.Int("count", invalid))
	}
	if len(pts) == 0 || !geom.IntersectDist(grid.Bounds, partBB, rng) {
		return
	}
	pb.tree = kdtree.New(pts, false)

	for c := 0; c < grid.Cells(); c++ {
		cell := grid.CellPoints(c)
		if len(cell) == 0 || !geom.IntersectDist(grid.CellBounds(c), partBB, rng) {
			continue
		}
		s.canvas.pool.Each(len(cell), func(k int) {
			s.particleBrushPoint(cell[k], pb, rng, timescale)
		})
	}
}

type particleHit struct {
	index int
	dist  float32
}

// rangeSearch returns particles within r of q ordered by distance, then index.
func (pb *particleBrush) rangeSearch(q particlePoint, r float32) []particleHit {
	keeper := kdtree.NewDistKeeper(float64(r) * float64(r))
	pb.tree.NearestSet(keeper, q)
	hits := make([]particleHit, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		hits = append(hits, particleHit{
			index: cd.Comparable.(particlePoint).index,
			dist:  math32.Sqrt(float32(cd.Dist)),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].index < hits[j].index
	})
	return hits
}

func (s *Surface) particleBrushPoint(i int, pb *particleBrush, rng, timescale float32) {
	bd := s.Data.Bake
	q := newParticlePoint(bd.Coord(i), -1)
	nearest, d2 := pb.tree.Nearest(q)
	if nearest == nil {
		return
	}
	dist := math32.Sqrt(float32(d2))
	if dist > rng {
		return
	}
	smooth := pb.smooth
	var strength, dispIntersect, radius float32

	partSolid := pb.solid
	if pb.settings.UseParticleRadius {
		partSolid = pb.ps.Particles[nearest.(particlePoint).index].Size
	}
	radius = partSolid + smooth
	if dist < radius {
		smoothRange := math32.Max(dist-partSolid, 0)
		if smooth > 0 {
			smoothRange /= smooth
		}
		strength = 1 - smoothRange
		dispIntersect = radius - dist
	}

	// With varying sizes a farther but larger particle may have more influence.
	if pb.settings.UseParticleRadius && strength < 1 && pb.ps.RandomSize {
		smoothRange := smooth * (1 - strength)
		maxRange := smooth - strength*smooth + pb.solid
		best := maxRange
		needDepth := s.Settings.Type == SurfaceDisplace || s.Settings.Type == SurfaceWave
		for _, h := range pb.rangeSearch(q, maxRange) {
			size := pb.ps.Particles[h.index].Size
			if h.dist > size+smooth {
				continue
			}
			sRange := h.dist - size
			if smoothRange < sRange {
				continue
			}
			smoothRange = sRange
			best = h.dist
			if sRange < 0 && !needDepth {
				break
			}
		}
		if rad := radius + smooth; rad-best > dispIntersect {
			dispIntersect = radius - best
			radius = rad
		}
		smoothRange = math32.Max(smoothRange, 0)
		if smooth > 0 {
			smoothRange /= smooth
		}
		strength = math32.Max(strength, 1-smoothRange)
	}

	if strength <= 0.001 {
		return
	}
	var depth float32
	switch s.Settings.Type {
	case SurfaceDisplace, SurfaceWave:
		if radius > 0 {
			di := (1 - math32.Sqrt(math32.Max(dispIntersect, 0)/radius)) * radius
			depth = math32.Max((radius-di)/bd.normals[i].NormalScale, 0)
		}
	}
	s.updatePointData(i, pb.settings, pb.settings.Color, strength, depth, timescale)
}
