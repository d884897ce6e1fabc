package dynpaint

import "github.com/chewxy/math32"

// paintSinglePoint applies a brush located at a single world position.
func (s *Surface) paintSinglePoint(inst *BrushInstance, timescale float32) {
	brush := inst.Settings
	radius := brush.PaintDistance * s.Settings.RadiusScale
	if radius <= 0 {
		return
	}
	bd := s.Data.Bake
	center := inst.Location()

	var (
		matCol   RGB
		matAlpha = float32(1)
		useMat   bool
	)
	if brush.UseMaterial && inst.Material != nil {
		// A point brush has no surface; shade at its origin.
		matCol, matAlpha, useMat = inst.Material.Sample(MaterialHit{Co: center, Face: -1})
	}

	s.canvas.pool.Each(s.Data.TotalPoints, func(i int) {
		distance := center.Distance(bd.Coord(i))
		if distance > radius {
			return
		}
		strength := float32(1)
		if brush.Falloff == FalloffSmooth || brush.Falloff == FalloffRamp {
			strength = clampf(1-distance/radius, 0, 1)
		}
		if strength < 0.001 {
			return
		}

		col := brush.Color
		if useMat {
			col = matCol
			strength *= matAlpha
		}
		if brush.Falloff == FalloffRamp {
			if rc, ra, ok := brush.Ramp.Eval(1 - strength); ok {
				strength = ra
				if !brush.RampAlphaOnly {
					col = rc
				}
			}
		}

		var depth float32
		switch s.Settings.Type {
		case SurfaceDisplace, SurfaceWave:
			di := (1 - math32.Sqrt((radius-distance)/radius)) * radius
			depth = math32.Max((radius-di)/bd.normals[i].NormalScale, 0)
		}
		s.updatePointData(i, brush, col, strength, depth, timescale)
	})
}
