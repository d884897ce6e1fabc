package dynpaint

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// hasMoved reports whether the canvas changed since the bake data was built.
func (b *BakeData) hasMoved(pose Pose) bool {
	if b.prevVerts == nil || b.prevMatrix != pose.Matrix {
		return true
	}
	verts := pose.Mesh.Verts()
	if len(verts) != len(b.prevVerts) {
		return true
	}
	for i, v := range verts {
		if v != b.prevVerts[i] {
			return true
		}
	}
	return false
}

// surfaceHasMoved reports whether bake data must be rebuilt for pose.
func (s *Surface) surfaceHasMoved(pose Pose) bool {
	return s.Data == nil || s.Data.Bake == nil || s.Data.Bake.hasMoved(pose)
}

// sampleLayout returns the per point sample count and offset.
func (s *Surface) sampleLayout() (sNum, sPos []int, total int) {
	d := s.Data
	n := d.TotalPoints
	sNum = make([]int, n)
	sPos = make([]int, n)
	switch {
	case d.ImageSeq != nil:
		k := d.ImageSeq.Samples
		for i := range sNum {
			sNum[i] = k
			sPos[i] = i * k
		}
		total = n * k
	case s.Settings.Antialias && d.Adj != nil:
		for i := range sNum {
			sNum[i] = d.Adj.NNum[i] + 1
			sPos[i] = d.Adj.NIndex[i] + i
		}
		total = n + d.Adj.TotalTargets()
	default:
		for i := range sNum {
			sNum[i] = 1
			sPos[i] = i
		}
		total = n
	}
	return sNum, sPos, total
}

// generateBakeData refreshes world space sample positions, normals, the grid
// and neighbor distances when the canvas has moved.
func (s *Surface) generateBakeData(pose Pose) error {
	d := s.Data
	c := s.canvas
	if d == nil {
		return ErrNoSurfaceData
	}
	if pose.Mesh == nil {
		return ErrCanvasNotAvailable
	}
	if !s.surfaceHasMoved(pose) {
		return nil
	}
	verts := pose.Mesh.Verts()
	normals := pose.Mesh.Normals()
	if d.ImageSeq == nil && len(verts) != d.TotalPoints {
		return fmt.Errorf("canvas has %d vertices, surface has %d points: %w",
			len(verts), d.TotalPoints, ErrNoSurfaceData)
	}

	sNum, sPos, total := s.sampleLayout()
	if err := c.checkAlloc(total + len(verts)); err != nil {
		return err
	}

	b := &BakeData{
		normals:   make([]bakeNormal, d.TotalPoints),
		sPos:      sPos,
		sNum:      sNum,
		realCoord: make([]pmath.Vec3, total),
	}

	world := make([]pmath.Vec3, len(verts))
	for i, v := range verts {
		world[i] = pose.Matrix.TransformPoint(v)
		b.meshBounds.Insert(world[i])
	}
	objScale := pose.Matrix.ScaleFactors()
	needScale := s.Settings.Type == SurfaceDisplace || s.Settings.Type == SurfaceWave

	c.pool.Each(d.TotalPoints, func(i int) {
		var nor, scaleNor pmath.Vec3
		if seq := d.ImageSeq; seq != nil {
			uv := &seq.UV[i]
			for ss := 0; ss < sNum[i]; ss++ {
				b.realCoord[sPos[i]+ss] = pmath.Interp3(world[uv.V[0]], world[uv.V[1]], world[uv.V[2]],
					seq.Weights[i*seq.Samples+ss])
			}
			n1, n2, n3 := normals[uv.V[0]], normals[uv.V[1]], normals[uv.V[2]]
			nor = pmath.Interp3(n1, n2, n3, seq.Weights[i*seq.Samples])
			scaleNor = n1.Add(n2).Add(n3).Normalize()
		} else {
			b.realCoord[sPos[i]] = world[i]
			for ss := 1; ss < sNum[i]; ss++ {
				// Extra samples sit a third of the way along each edge.
				t := d.Adj.NTarget[d.Adj.NIndex[i]+ss-1]
				b.realCoord[sPos[i]+ss] = world[i].Scale(2.0 / 3).Add(world[t].Scale(1.0 / 3))
			}
			nor = normals[i]
			scaleNor = normals[i].Normalize()
		}
		b.normals[i].InvNorm = pose.Matrix.TransformDirection(nor).Normalize().Negate()
		b.normals[i].NormalScale = 1
		if needScale {
			if ns := scaleNor.MulComp(objScale).Length(); ns > 0 {
				b.normals[i].NormalScale = ns
			}
		}
	})

	firsts := make([]pmath.Vec3, d.TotalPoints)
	for i := range firsts {
		firsts[i] = b.realCoord[sPos[i]]
	}
	b.grid = generateGrid(firsts, c.pool)
	if b.grid == nil {
		c.log.Warn("no spatial grid for surface", zap.String("surface", s.Name))
	} else {
		c.log.Debug("surface grid built",
			zap.String("surface", s.Name),
			zap.Int("points", d.TotalPoints),
			zap.Ints("dim", b.grid.Dim[:]))
	}

	b.prevVerts = append([]pmath.Vec3(nil), verts...)
	b.prevMatrix = pose.Matrix
	d.Bake = b
	s.prepareAdjacencyData(false)
	return nil
}

// prepareAdjacencyData caches neighbor directions and distances.
func (s *Surface) prepareAdjacencyData(force bool) {
	d := s.Data
	b := d.Bake
	if (!s.Settings.usesAdjDistance() && !force) || d.Adj == nil || b == nil {
		return
	}
	adj := d.Adj
	b.neighs = make([]bakeNeigh, adj.TotalTargets())
	s.canvas.pool.Each(d.TotalPoints, func(i int) {
		for j := 0; j < adj.NNum[i]; j++ {
			n := adj.NIndex[i] + j
			dir := b.realCoord[b.sPos[adj.NTarget[n]]].Sub(b.realCoord[b.sPos[i]])
			dist := dir.Length()
			if dist > 0 {
				dir = dir.Scale(1 / dist)
			}
			b.neighs[n] = bakeNeigh{Dir: dir, Dist: dist}
		}
	})

	var sum float64
	for _, n := range b.neighs {
		sum += float64(n.Dist)
	}
	b.avgDist = 0
	if len(b.neighs) > 0 {
		b.avgDist = sum / float64(len(b.neighs))
	}
}

// surfaceDimension returns the largest extent of the canvas.
func (b *BakeData) surfaceDimension() float32 {
	dim := b.meshBounds.Size()
	return math32.Max(dim.X, math32.Max(dim.Y, dim.Z))
}
