package dynpaint

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/dynpaint/internal/mesh"
	"github.com/Faultbox/dynpaint/pkg/geom"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Neighbor lookup results below zero.
const (
	NeighNotFound     = -1
	NeighOnMeshEdge   = -2
	NeighOutOfTexture = -3
)

var (
	neighX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	neighY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}

	// jitter5 holds antialiasing sample offsets in pixels, center first.
	jitter5 = [10]float32{0, 0, -0.2, -0.4, 0.2, 0.4, 0.4, -0.2, -0.4, 0.3}
)

// UVRaster maps every texel of a w*h image to a canvas face.
type UVRaster struct {
	W, H    int
	Samples int
	Points  []UVPoint    // FaceIndex is -1 for unmapped texels
	Weights [][3]float32 // Samples entries per texel

	faces []mesh.Face
	uvs   []mesh.FaceUV
}

func faceUVBounds(f mesh.Face, uv mesh.FaceUV) geom.Bounds2D {
	var b geom.Bounds2D
	for i := 0; i < f.Corners(); i++ {
		b.Insert(uv[i])
	}
	return b
}

// triCorners returns the UV corner indices of a face half.
func triCorners(quad bool) [3]int {
	if quad {
		return [3]int{0, 2, 3}
	}
	return [3]int{0, 1, 2}
}

// texelUV returns the UV of the center of texel (x, y).
func (r *UVRaster) texelUV(x, y int) pmath.Vec2 {
	return pmath.Vec2{X: (float32(x) + 0.5) / float32(r.W), Y: (float32(y) + 0.5) / float32(r.H)}
}

// setSamples stores the barycentric weights of every antialiasing sample of
// texel index around center on the given face half.
func (r *UVRaster) setSamples(index int, center pmath.Vec2, face int, quad bool) {
	c := triCorners(quad)
	uv := r.uvs[face]
	for j := 0; j < r.Samples; j++ {
		p := pmath.Vec2{
			X: center.X + jitter5[j*2]/float32(r.W),
			Y: center.Y + jitter5[j*2+1]/float32(r.H),
		}
		r.Weights[index*r.Samples+j] = geom.BarycentricWeights2D(uv[c[0]], uv[c[1]], uv[c[2]], p)
	}
}

func (r *UVRaster) assign(index, face int, quad bool) {
	f := r.faces[face]
	p := &r.Points[index]
	p.Quad = quad
	if quad {
		p.V = [3]int{f.V[0], f.V[2], f.V[3]}
	} else {
		p.V = [3]int{f.V[0], f.V[1], f.V[2]}
	}
}

// NewUVRaster locates the owning face of every texel and heals texels next
// to UV island borders by borrowing a neighbor's face.
func (c *Canvas) NewUVRaster(m mesh.Provider, uvs []mesh.FaceUV, w, h int, antialias bool) *UVRaster {
	r := &UVRaster{W: w, H: h, Samples: 1, faces: m.Faces(), uvs: uvs}
	if antialias {
		r.Samples = 5
	}
	r.Points = make([]UVPoint, w*h)
	r.Weights = make([][3]float32, w*h*r.Samples)

	faceBB := make([]geom.Bounds2D, len(r.faces))
	for i, f := range r.faces {
		faceBB[i] = faceUVBounds(f, uvs[i])
	}

	c.pool.Each(h, func(ty int) {
		for tx := 0; tx < w; tx++ {
			index := tx + w*ty
			p := &r.Points[index]
			p.FaceIndex = -1
			p.NeighbourPixel = -1
			p.PixelIndex = index

			// Center first, then the four corners to catch thin faces.
			samples := [5]pmath.Vec2{
				r.texelUV(tx, ty),
				{X: float32(tx) / float32(w), Y: float32(ty) / float32(h)},
				{X: float32(tx+1) / float32(w), Y: float32(ty) / float32(h)},
				{X: float32(tx) / float32(w), Y: float32(ty+1) / float32(h)},
				{X: float32(tx+1) / float32(w), Y: float32(ty+1) / float32(h)},
			}
		search:
			for _, s := range samples {
				for fi, f := range r.faces {
					if !faceBB[fi].Contains(s) {
						continue
					}
					uv := uvs[fi]
					quad := false
					inside := geom.PointInTriangle2D(s, uv[0], uv[1], uv[2])
					if !inside && f.Quad {
						inside = geom.PointInTriangle2D(s, uv[0], uv[2], uv[3])
						quad = inside
					}
					if !inside {
						continue
					}
					p.FaceIndex = fi
					r.assign(index, fi, quad)
					r.setSamples(index, samples[0], fi, quad)
					break search
				}
			}
		}
	})

	c.pool.Each(h, func(ty int) {
		for tx := 0; tx < w; tx++ {
			index := tx + w*ty
			p := &r.Points[index]
			if p.FaceIndex != -1 {
				continue
			}
			uMin, uMax := -1, 1
			vMin, vMax := -1, 1
			if tx == 0 {
				uMin = 0
			}
			if tx == w-1 {
				uMax = 0
			}
			if ty == 0 {
				vMin = 0
			}
			if ty == h-1 {
				vMax = 0
			}
		heal:
			for u := uMin; u <= uMax; u++ {
				for v := vMin; v <= vMax; v++ {
					if u == 0 && v == 0 {
						continue
					}
					ind := (tx + u) + w*(ty+v)
					fi := r.Points[ind].FaceIndex
					if fi == -1 {
						continue
					}
					quad := r.Points[ind].Quad
					p.NeighbourPixel = ind
					r.assign(index, fi, quad)
					r.setSamples(index, r.texelUV(tx, ty), fi, quad)
					break heal
				}
			}
		}
	})

	for i := range r.Points {
		p := &r.Points[i]
		if p.FaceIndex == -1 && p.NeighbourPixel != -1 {
			p.FaceIndex = r.Points[p.NeighbourPixel].FaceIndex
		}
	}
	return r
}

// FindNeighbourPixel returns the raster index of the texel next to (px, py)
// in direction dir (0..7), following the mesh across UV seams. Negative
// results are NeighNotFound, NeighOnMeshEdge or NeighOutOfTexture.
func (r *UVRaster) FindNeighbourPixel(px, py, dir int) int {
	x, y := px+neighX[dir], py+neighY[dir]
	if x < 0 || x >= r.W || y < 0 || y >= r.H {
		return NeighOutOfTexture
	}
	target := &r.Points[x+r.W*y]
	origin := &r.Points[px+r.W*py]

	if target.FaceIndex == origin.FaceIndex && target.NeighbourPixel == -1 {
		return x + r.W*y
	}
	// Assumes at least a one pixel margin between unlinked islands.
	if target.FaceIndex != -1 && target.NeighbourPixel == -1 {
		return x + r.W*y
	}

	pixel := r.texelUV(x, y)
	suv := r.uvs[origin.FaceIndex]
	ui := triCorners(origin.Quad)

	e1, e2 := origin.V[0], origin.V[1]
	c1, c2 := ui[0], ui[1]
	dist := geom.DistSqToSegment2D(pixel, suv[ui[0]], suv[ui[1]])
	if d := geom.DistSqToSegment2D(pixel, suv[ui[1]], suv[ui[2]]); d < dist {
		e1, e2, c1, c2, dist = origin.V[1], origin.V[2], ui[1], ui[2], d
	}
	if d := geom.DistSqToSegment2D(pixel, suv[ui[2]], suv[ui[0]]); d < dist {
		e1, e2, c1, c2 = origin.V[2], origin.V[0], ui[2], ui[0]
	}

	targetFace, t1, t2 := -1, 0, 0
	for i, f := range r.faces {
		if i == origin.FaceIndex {
			continue
		}
		a, b := cornerOf(f, e1), cornerOf(f, e2)
		if a >= 0 && b >= 0 {
			targetFace, t1, t2 = i, a, b
			break
		}
	}
	if targetFace == -1 {
		return NeighOnMeshEdge
	}

	tuv := r.uvs[targetFace]
	if (suv[c1] == tuv[t1] && suv[c2] == tuv[t2]) || (suv[c2] == tuv[t1] && suv[c1] == tuv[t2]) {
		return x + r.W*y
	}

	_, lambda := geom.ClosestToLine2D(pixel, suv[c1], suv[c2])
	lambda = geom.Clamp01(lambda)
	p := tuv[t1].Add(tuv[t2].Sub(tuv[t1]).Scale(lambda))
	fx := int(math32.Floor(p.X*float32(r.W) - 0.5))
	fy := int(math32.Floor(p.Y*float32(r.H) - 0.5))
	if fx < 0 || fx >= r.W || fy < 0 || fy >= r.H {
		return NeighOutOfTexture
	}
	final := fx + r.W*fy
	if final == px+r.W*py {
		return NeighNotFound
	}
	if r.Points[final].FaceIndex != targetFace {
		return NeighNotFound
	}
	if n := r.Points[final].NeighbourPixel; n != -1 {
		final = n
	}
	return final
}

// cornerOf returns the corner of f using vertex v, or -1.
func cornerOf(f mesh.Face, v int) int {
	for i := 0; i < f.Corners(); i++ {
		if f.V[i] == v {
			return i
		}
	}
	return -1
}

// CreateUVSurface builds the image sequence point set of s from m. The
// previous surface data is only replaced once the new data is complete.
func (s *Surface) CreateUVSurface(m mesh.Provider) error {
	c := s.canvas
	if s.Settings.Format != FormatImageSeq {
		return fmt.Errorf("cannot bake %q surfaces: %w", s.Settings.Format, ErrUnsupportedFormat)
	}
	if m == nil {
		return ErrCanvasNotAvailable
	}
	uvs, ok := m.UVLayer(s.Settings.UVLayer)
	if !ok || len(uvs) != len(m.Faces()) {
		return ErrNoUVLayer
	}
	res := s.Settings.Resolution
	if res < MinResolution || res > MaxResolution {
		return fmt.Errorf("%d: %w", res, ErrInvalidResolution)
	}
	w, h := res, res
	samples := 1
	if s.Settings.Antialias {
		samples = 5
	}
	if err := c.checkAlloc(w * h * (samples + 8)); err != nil {
		return err
	}

	c.log.Info("preparing uv surface",
		zap.String("surface", s.Name),
		zap.Int("width", w), zap.Int("height", h),
		zap.Int("faces", len(m.Faces())))

	r := c.NewUVRaster(m, uvs, w, h, s.Settings.Antialias)

	final := make([]int, w*h)
	active := 0
	for i, p := range r.Points {
		final[i] = -1
		if p.FaceIndex != -1 {
			final[i] = active
			active++
		}
	}
	if active == 0 {
		return ErrNoSurfaceData
	}

	data := &SurfaceData{TotalPoints: active}
	seq := &ImageSeqData{
		Width: w, Height: h, Samples: samples,
		UV:      make([]UVPoint, 0, active),
		Weights: make([][3]float32, 0, active*samples),
	}
	for i, p := range r.Points {
		if p.FaceIndex == -1 {
			continue
		}
		seq.UV = append(seq.UV, p)
		seq.Weights = append(seq.Weights, r.Weights[i*samples:(i+1)*samples]...)
	}
	data.ImageSeq = seq

	if s.Settings.usesAdjData() {
		data.Adj = r.adjacency(c, seq.UV, final)
	}

	payload, err := newPayload(s.Settings.Type, active)
	if err != nil {
		return fmt.Errorf("type %q: %w", s.Settings.Type, err)
	}
	data.Payload = payload
	s.Data = data
	s.setInitialColor()
	return nil
}

// adjacency resolves the eight neighbors of every active texel.
func (r *UVRaster) adjacency(c *Canvas, points []UVPoint, final []int) *AdjData {
	n := len(points)
	targets := make([][8]int, n)
	c.pool.Each(n, func(i int) {
		px, py := points[i].PixelIndex%r.W, points[i].PixelIndex/r.W
		for d := 0; d < 8; d++ {
			targets[i][d] = r.FindNeighbourPixel(px, py, d)
		}
	})

	ad := &AdjData{
		NIndex:  make([]int, n),
		NNum:    make([]int, n),
		NTarget: make([]int, 0, n*8),
		Flags:   make([]uint8, n),
	}
	for i := range points {
		ad.NIndex[i] = len(ad.NTarget)
		for _, t := range targets[i] {
			switch {
			case t >= 0 && final[t] >= 0:
				ad.NTarget = append(ad.NTarget, final[t])
				ad.NNum[i]++
			case t == NeighOnMeshEdge || t == NeighOutOfTexture:
				ad.Flags[i] |= AdjOnMeshEdge
			}
		}
	}
	return ad
}
