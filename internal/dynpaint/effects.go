package dynpaint

import (
	"math"
	"sync"

	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

const maxEffectSteps = 8

// pointForce is a normalised force direction and its magnitude.
type pointForce struct {
	Dir      pmath.Vec3
	Strength float32
}

// prepareEffectStep samples drip forces and returns the number of effect
// sub-steps needed so no effect moves paint further than one neighbor.
func (s *Surface) prepareEffectStep(w World, t, timescale float32) ([]pointForce, int) {
	d := s.Data
	bd := d.Bake
	var (
		forces   []pointForce
		avgForce float64
	)
	if s.Settings.Drip && w != nil {
		forces = make([]pointForce, d.TotalPoints)
		gravity := w.Gravity().Scale(s.Settings.GravityWeight / 10)
		s.canvas.pool.Each(d.TotalPoints, func(i int) {
			f := w.Force(t, bd.Coord(i)).Scale(s.Settings.EffectorWeight).Add(gravity)
			l := f.Length()
			if l > 0 {
				forces[i] = pointForce{Dir: f.Scale(1 / l), Strength: l}
			}
		})
		for _, f := range forces {
			avgForce += float64(f.Strength)
		}
		avgForce /= float64(d.TotalPoints)
	}

	var spread, shrink float32
	if s.Settings.Spread {
		spread = s.Settings.SpreadSpeed
	}
	if s.Settings.Shrink {
		shrink = s.Settings.ShrinkSpeed
	}
	fastest := math.Max(float64(spread), math.Max(float64(shrink), avgForce))

	dim := bd.surfaceDimension()
	if dim <= 0 || bd.avgDist <= 0 {
		return forces, 1
	}
	avgDist := bd.avgDist * canvasRelSize / float64(dim)
	steps := int(math.Ceil(1.5 * effMovementPerFrame * fastest / avgDist * float64(timescale)))
	return forces, min(max(steps, 1), maxEffectSteps)
}

// doEffectStep runs one sub-step of spread, shrink and drip. prev is scratch
// space for the snapshot each effect reads from. locks guard drip targets and
// may be nil when drip is off.
func (s *Surface) doEffectStep(forces []pointForce, prev PaintPayload, locks []sync.Mutex, timescale float32, steps int) {
	d := s.Data
	bd := d.Bake
	points := d.Payload.(PaintPayload)
	distScale := bd.surfaceDimension() / canvasRelSize
	timescale /= float32(steps)

	if s.Settings.Spread && s.Settings.SpreadSpeed > 0 {
		effScale := distScale * effMovementPerFrame * s.Settings.SpreadSpeed * timescale
		copy(prev, points)
		s.canvas.pool.Each(d.TotalPoints, func(i int) {
			s.spreadPoint(i, points, prev, effScale)
		})
	}

	if s.Settings.Shrink && s.Settings.ShrinkSpeed > 0 {
		effScale := distScale * effMovementPerFrame * s.Settings.ShrinkSpeed * timescale
		copy(prev, points)
		s.canvas.pool.Each(d.TotalPoints, func(i int) {
			s.shrinkPoint(i, points, prev, effScale)
		})
	}

	if s.Settings.Drip && forces != nil && locks != nil {
		effScale := distScale * effMovementPerFrame * timescale / 2
		copy(prev, points)
		s.canvas.pool.Each(d.TotalPoints, func(i int) {
			s.dripPoint(i, points, prev, locks, forces[i], effScale)
		})
		s.canvas.pool.Each(d.TotalPoints, func(i int) {
			p := &points[i]
			p.EAlpha = math32.Min(p.EAlpha, 1)
			p.Wetness = math32.Min(p.Wetness, maxWetness)
		})
	}
}

func speedScale(effScale, dist float32) float32 {
	if dist <= effScale || dist == 0 {
		return 1
	}
	return effScale / dist
}

func (s *Surface) spreadPoint(i int, points, prev PaintPayload, effScale float32) {
	adj := s.Data.Adj
	neighs := s.Data.Bake.neighs
	num := adj.NNum[i]
	if num == 0 {
		return
	}
	p := &points[i]
	var totalAlpha float32
	for j := 0; j < num; j++ {
		n := adj.NIndex[i] + j
		e := &prev[adj.NTarget[n]]
		totalAlpha += e.EAlpha
		if e.Wetness <= p.Wetness || e.Wetness < minWetness {
			continue
		}
		w := (e.Wetness - p.Wetness) / float32(num) * speedScale(effScale, neighs[n].Dist)
		if w <= 0 {
			continue
		}
		w = math32.Min(w, 1)
		p.EColor = MixColors(p.EColor, p.EAlpha, e.EColor, e.EAlpha*w)
		p.EAlpha += e.EAlpha * w
		p.Wetness += (e.Wetness - p.Wetness) * w
	}
	limit := math32.Max(prev[i].EAlpha, totalAlpha/float32(num)+0.25)
	p.EAlpha = math32.Min(p.EAlpha, math32.Min(limit, 1))
}

func (s *Surface) shrinkPoint(i int, points, prev PaintPayload, effScale float32) {
	adj := s.Data.Adj
	neighs := s.Data.Bake.neighs
	num := adj.NNum[i]
	p := &points[i]
	for j := 0; j < num; j++ {
		if p.Alpha <= 0 && p.EAlpha <= 0 && p.Wetness <= 0 {
			return
		}
		n := adj.NIndex[i] + j
		e := &prev[adj.NTarget[n]]
		sp := speedScale(effScale, neighs[n].Dist)

		aFactor := math32.Max((1-e.Alpha)/float32(num)*(p.Alpha-e.Alpha)*sp, 0)
		eaFactor := math32.Max((1-e.EAlpha)/8*(p.EAlpha-e.EAlpha)*sp, 0)
		wFactor := math32.Max((1-e.Wetness)/8*(p.Wetness-e.Wetness)*sp, 0)

		p.Alpha = math32.Max(p.Alpha-aFactor, 0)
		p.EAlpha = math32.Max(p.EAlpha-eaFactor, 0)
		p.Wetness = math32.Max(p.Wetness-wFactor, 0)
	}
}

// dripPoint moves wet paint from point i to its force targets. Every write
// to points[x] holds locks[x].
func (s *Surface) dripPoint(i int, points, prev PaintPayload, locks []sync.Mutex, f pointForce, effScale float32) {
	adj := s.Data.Adj
	neighs := s.Data.Bake.neighs
	pp := &prev[i]
	wFactor := 0.4*pp.Wetness - 0.05
	if wFactor <= 0 || f.Strength <= 0 {
		return
	}
	wFactor = math32.Min(wFactor, 1)

	ids, share := s.determineForceTargets(i, f.Dir)
	for k := 0; k < 2; k++ {
		n := ids[k]
		if n < 0 || share[k] <= 0 || neighs[n].Dist == 0 {
			continue
		}
		speed := effScale * f.Strength / neighs[n].Dist
		dirFactor := math32.Min(share[k]*math32.Min(speed, 1)*wFactor, 0.5)

		target := adj.NTarget[n]
		locks[target].Lock()
		e := &points[target]
		before := e.Wetness
		e.Wetness = clampf(e.Wetness+dirFactor, 0, maxWetness)
		gained := e.Wetness - before
		aFactor := clampf(dirFactor/pp.Wetness, 0, 1)
		e.EColor = MixColors(e.EColor, e.EAlpha, pp.EColor, aFactor)
		if pp.EAlpha > e.EAlpha {
			e.EAlpha = math32.Min(e.EAlpha+aFactor*pp.EAlpha, pp.EAlpha)
		}
		locks[target].Unlock()

		// Only what the target took leaves the source.
		locks[i].Lock()
		points[i].Wetness = clampf(points[i].Wetness-gained, 0, maxWetness)
		locks[i].Unlock()
	}
}

// determineForceTargets picks the one or two neighbor links of point i most
// aligned with force direction dir and splits the transport between them.
// Unused slots are -1.
func (s *Surface) determineForceTargets(i int, dir pmath.Vec3) ([2]int, [2]float32) {
	adj := s.Data.Adj
	neighs := s.Data.Bake.neighs
	ids := [2]int{-1, -1}
	closest := [2]float32{-1, -1}
	num := adj.NNum[i]

	for j := 0; j < num; j++ {
		n := adj.NIndex[i] + j
		if dot := neighs[n].Dir.Dot(dir); dot > closest[0] && dot > 0 {
			closest[0], ids[0] = dot, n
		}
	}
	if closest[0] < 0 {
		return ids, closest
	}

	first := neighs[ids[0]].Dir
	for j := 0; j < num; j++ {
		n := adj.NIndex[i] + j
		if n == ids[0] {
			continue
		}
		dot := neighs[n].Dir.Dot(dir)
		// Only accept a neighbor on the other side of the force from the first.
		if dot > closest[1] && neighs[n].Dir.Dot(first) < closest[0] && dot > 0 {
			closest[1], ids[1] = dot, n
		}
	}

	if ids[1] == -1 {
		closest[0] = 1 - math32.Acos(clampf(closest[0], -1, 1))/(math32.Pi/2)
		return ids, closest
	}

	second := neighs[ids[1]].Dir
	between := math32.Acos(clampf(first.Dot(second), -1, 1))
	tangent := first.Cross(second).Normalize()
	intersect := dir.Dot(tangent)
	proj := dir.Madd(tangent, -intersect).Normalize()

	if between > 0 {
		closest[1] = math32.Acos(clampf(first.Dot(proj), -1, 1)) / between
	} else {
		closest[1] = 0
	}
	closest[0] = 1 - closest[1]

	depth := math32.Acos(clampf(math32.Abs(intersect), 0, 1)) / (math32.Pi / 2)
	closest[0] *= depth
	closest[1] *= depth
	return ids, closest
}
