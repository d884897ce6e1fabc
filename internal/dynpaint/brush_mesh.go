package dynpaint

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/dynpaint/pkg/geom"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Gaussian weights of the five image antialiasing samples.
var gaussianFactors = [5]float32{0.996849, 0.596145, 0.596145, 0.596145, 0.524141}

const gaussianTotal = 3.309425

// rayLeakOffset nudges ray origins off shared triangle edges.
const rayLeakOffset = 0.001

type hitKind uint8

const (
	hitNone hitKind = iota
	hitVolume
	hitProximity
)

// brushTri links a BVH triangle back to its brush face.
type brushTri struct {
	face    int
	corners [3]int
}

// meshBrush is a brush mesh prepared for one step.
type meshBrush struct {
	inst     *BrushInstance
	settings *BrushSettings
	bvh      *geom.BVH
	tris     []geom.Tri
	info     []brushTri
	bounds   geom.Bounds3D
	avgNor   pmath.Vec3
	radius   float32
}

func newMeshBrush(inst *BrushInstance, radius float32) *meshBrush {
	m := inst.Pose.Mesh
	verts := m.Verts()
	world := make([]pmath.Vec3, len(verts))
	mb := &meshBrush{inst: inst, settings: inst.Settings, radius: radius}
	for i, v := range verts {
		world[i] = inst.Pose.Matrix.TransformPoint(v)
		mb.bounds.Insert(world[i])
	}
	var nsum pmath.Vec3
	for _, n := range m.Normals() {
		nsum = nsum.Add(inst.Pose.Matrix.TransformDirection(n))
	}
	mb.avgNor = nsum.Normalize()

	for fi, f := range m.Faces() {
		corners := [][3]int{{0, 1, 2}}
		if f.Quad {
			corners = append(corners, [3]int{0, 2, 3})
		}
		for _, c := range corners {
			mb.tris = append(mb.tris, geom.Tri{A: world[f.V[c[0]]], B: world[f.V[c[1]]], C: world[f.V[c[2]]]})
			mb.info = append(mb.info, brushTri{face: fi, corners: c})
		}
	}
	return mb
}

func (b *meshBrush) usesVolume() bool {
	return b.settings.Collision == CollideVolume || b.settings.Collision == CollideVolumeDistance
}

func (b *meshBrush) usesProximity() bool {
	return b.settings.Collision == CollideDistance || b.settings.Collision == CollideVolumeDistance
}

// proximityInfluence maps a proximity factor through the brush falloff.
// ok reports whether col holds a ramp color.
func proximityInfluence(brush *BrushSettings, proxFactor float32) (influence float32, col RGB, ok bool) {
	switch brush.Falloff {
	case FalloffRamp:
		if c, a, hit := brush.Ramp.Eval(1 - proxFactor); hit {
			return a, c, true
		}
	case FalloffConstant:
		if brush.InverseProximity && !brush.NegateVolume {
			return 0, RGB{}, false
		}
		return 1, RGB{}, false
	}
	return proxFactor, RGB{}, false
}

// paintMesh applies a volume and/or proximity mesh brush.
func (s *Surface) paintMesh(inst *BrushInstance, timescale float32) {
	bd := s.Data.Bake
	grid := bd.grid
	if grid == nil || inst.Pose.Mesh == nil {
		return
	}
	mb := newMeshBrush(inst, inst.Settings.PaintDistance*s.Settings.RadiusScale)
	if len(mb.tris) == 0 {
		return
	}
	var expand float32
	if mb.usesProximity() {
		expand = mb.radius
	}
	if !geom.IntersectDist(grid.Bounds, mb.bounds, expand) {
		return
	}
	mb.bvh = geom.NewBVH(mb.tris)

	for c := 0; c < grid.Cells(); c++ {
		pts := grid.CellPoints(c)
		if len(pts) == 0 || !geom.IntersectDist(grid.CellBounds(c), mb.bounds, expand) {
			continue
		}
		s.canvas.pool.Each(len(pts), func(k int) {
			s.meshBrushPoint(pts[k], mb, timescale)
		})
	}
}

func (s *Surface) meshBrushPoint(i int, mb *meshBrush, timescale float32) {
	d := s.Data
	bd := d.Bake
	brush := mb.settings
	sNum := bd.sNum[i]
	gaussian := d.ImageSeq != nil && sNum > 1
	totalSample := float32(sNum)
	if gaussian {
		totalSample = gaussianTotal
	}
	invNorm := bd.normals[i].InvNorm
	inner := brush.InverseProximity

	var (
		brushStrength, depth float32
		paintColor           RGB
		numHits              int
	)
	for ss := 0; ss < sNum; ss++ {
		sampleFactor := float32(1)
		if gaussian {
			sampleFactor = gaussianFactors[ss]
		}
		start := bd.realCoord[bd.sPos[i]+ss].Add(pmath.V3(rayLeakOffset, rayLeakOffset, rayLeakOffset))

		var (
			sampleStrength, volumeFactor, proxFactor float32
			hitCo                                    pmath.Vec3
			hitTri                                   = -1
			found                                    = hitNone
			rampCol                                  RGB
			rampOK                                   bool
		)

		if mb.usesVolume() {
			hit, ok := mb.bvh.RayCast(geom.Ray{Origin: start, Dir: invNorm}, math32.MaxFloat32)
			// Facing the hit face from behind means the sample is inside.
			if ok && invNorm.Dot(hit.No) >= 0 {
				back := brush.AcceptNonClosed
				if !back {
					_, back = mb.bvh.RayCast(geom.Ray{Origin: start, Dir: invNorm.Negate()}, math32.MaxFloat32)
				}
				if back {
					volumeFactor = 1
					found = hitVolume
					hitCo = hit.Co
					hitTri = hit.Index
					depth += hit.Dist * sampleFactor
				}
			}
		}

		if mb.usesProximity() && (found == hitNone || inner) {
			if inner && found == hitNone {
				continue
			}
			proxDist := float32(-1)
			var proxCo pmath.Vec3
			tri := -1
			if !brush.ProjectProximity {
				if n, ok := mb.bvh.FindNearest(start, mb.radius*mb.radius); ok {
					proxDist = math32.Sqrt(n.DistSq)
					proxCo = n.Co
					tri = n.Index
				}
			} else {
				if hit, ok := mb.bvh.RayCast(geom.Ray{Origin: start, Dir: mb.projection(invNorm)}, mb.radius); ok {
					proxDist = hit.Dist
					proxCo = hit.Co
					tri = hit.Index
				}
			}
			if proxDist >= 0 && proxDist <= mb.radius {
				proxFactor = clampf(proxDist/mb.radius, 0, 1)
				if !inner {
					proxFactor = 1 - proxFactor
				}
				found = hitProximity
				if hitTri == -1 {
					hitCo = proxCo
					hitTri = tri
				}
			}
		}

		if found == hitNone {
			continue
		}
		if brush.Collision == CollideVolumeDistance && brush.NegateVolume {
			volumeFactor = 1 - volumeFactor
			if inner {
				proxFactor = 1 - proxFactor
			}
		}
		switch {
		case volumeFactor > 0:
			sampleStrength += sampleFactor
			found = hitVolume
		case proxFactor > 0:
			var influence float32
			influence, rampCol, rampOK = proximityInfluence(brush, proxFactor)
			sampleStrength += influence * sampleFactor
			found = hitProximity
		default:
			continue
		}

		sampleColor := brush.Color
		alphaFactor := float32(1)
		if brush.UseMaterial && mb.inst.Material != nil && hitTri >= 0 {
			if col, a, ok := mb.inst.Material.Sample(mb.materialHit(hitTri, hitCo)); ok {
				sampleColor, alphaFactor = col, a
			}
		}
		if found == hitProximity && rampOK && !brush.RampAlphaOnly {
			sampleColor = rampCol
		}
		paintColor = paintColor.Add(sampleColor)
		numHits++
		brushStrength += sampleStrength * alphaFactor
	}

	if brushStrength <= 0 && depth <= 0 {
		return
	}
	brushStrength = clampf(brushStrength/totalSample, 0, 1)
	if brushStrength < brushStrengthMin && depth <= 0 {
		return
	}
	switch s.Settings.Type {
	case SurfacePaint:
		if numHits == 0 {
			return
		}
		paintColor = paintColor.Scale(1 / float32(numHits))
	case SurfaceDisplace, SurfaceWave:
		depth /= bd.normals[i].NormalScale * totalSample
	}
	s.updatePointData(i, brush, paintColor, brushStrength, depth, timescale)
}

// projection returns the ray direction of projected proximity.
func (b *meshBrush) projection(invNorm pmath.Vec3) pmath.Vec3 {
	switch b.settings.RayDir {
	case RayBrushAvg:
		return b.avgNor
	case RayZPlus:
		return pmath.V3(0, 0, 1)
	default:
		return invNorm.Negate()
	}
}

func (b *meshBrush) materialHit(tri int, co pmath.Vec3) MaterialHit {
	t := b.tris[tri]
	return MaterialHit{
		Co:      co,
		Face:    b.info[tri].face,
		Corners: b.info[tri].corners,
		Weights: geom.BarycentricWeights3D(t.A, t.B, t.C, co),
	}
}
