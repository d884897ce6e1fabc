package dynpaint

import "github.com/chewxy/math32"

// updatePointData writes one brush contribution into point i. Only the
// worker owning i may call it.
func (s *Surface) updatePointData(i int, brush *BrushSettings, col RGB, influence, depth, timescale float32) {
	influence *= s.Settings.InfluenceScale
	depth *= s.Settings.InfluenceScale
	strength := clampf(influence*brush.Alpha, 0, 1)

	switch p := s.Data.Payload.(type) {
	case PaintPayload:
		mixPaint(&p[i], brush, col, strength, brush.Wetness*strength, timescale)

	case DisplacePayload:
		if s.Settings.DispIncremental {
			depth += p[i]
		}
		if dc := s.Settings.DepthClamp; dc != 0 {
			depth = clampf(depth, -dc, dc)
		}
		if brush.Erase {
			p[i] = math32.Max(p[i]*(1-strength), 0)
		} else if p[i] < depth {
			p[i] = depth
		}

	case WeightPayload:
		if brush.Erase {
			p[i] = math32.Max(p[i]*(1-strength), 0)
		} else if p[i] < strength {
			p[i] = strength
		}

	case WavePayload:
		if wc := brush.WaveClamp; wc != 0 {
			depth = clampf(depth, -wc, wc)
		}
		mixWaveHeight(&p[i], brush, -depth)
	}
}

// mixPaint adds or erases paint on the wet layer of p.
func mixPaint(p *PaintPoint, brush *BrushSettings, col RGB, alpha, wetness, timescale float32) {
	if !brush.Erase {
		a := alpha
		if !brush.AbsoluteAlpha {
			a *= timescale
		}
		mixed, mixedAlpha := blendColors(p.EColor, p.EAlpha, col, a)
		p.EColor = mixed
		if brush.AbsoluteAlpha {
			p.EAlpha = math32.Max(p.EAlpha, clampf(alpha, 0, 1))
			p.Wetness = math32.Max(p.Wetness, clampf(wetness, 0, 1))
		} else {
			w := clampf(wetness, 0, 1)
			p.EAlpha = math32.Min(mixedAlpha, 1)
			p.Wetness = p.Wetness*(1-w) + w
		}
		p.Wetness = math32.Max(p.Wetness, minWetness)
		p.State = PaintNew
		return
	}

	inv := 1 - alpha
	if brush.AbsoluteAlpha {
		// Scale both layers down so the highest matches the erased level.
		if highest := math32.Max(p.Alpha, p.EAlpha); highest > inv {
			ratio := inv / highest
			p.EAlpha *= ratio
			p.Alpha *= ratio
		}
	} else {
		p.EAlpha = math32.Max(p.EAlpha-alpha*timescale, 0)
		p.Alpha = math32.Max(p.Alpha-alpha*timescale, 0)
	}
	p.Wetness = math32.Min(p.Wetness, (1-wetness)*p.EAlpha)
}

// mixWaveHeight applies a brush intersection of depth isect to w.
func mixWaveHeight(w *WavePoint, brush *BrushSettings, isect float32) {
	change := isect - w.BrushIsect
	factor := brush.WaveFactor

	w.BrushIsect = isect
	w.State = WaveIsectChanged

	isect *= factor
	hit := (factor > 0 && w.Height > isect) || (factor < 0 && w.Height < isect)
	if !hit {
		return
	}
	switch brush.WaveType {
	case WaveDepth:
		w.Height = isect
		w.State = WaveObstacle
		w.Velocity = 0
	case WaveForce:
		w.Velocity = isect
	case WaveReflect:
		w.State = WaveReflectOnly
	case WaveChange:
		if change < 0 {
			w.Height += change * factor
		}
	}
}
