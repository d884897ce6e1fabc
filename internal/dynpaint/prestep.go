package dynpaint

import "github.com/chewxy/math32"

// dissolve decays v towards zero over speed frames.
func dissolve(v, speed, scale float32, log bool) float32 {
	if speed <= 0 {
		return v
	}
	if log {
		v *= math32.Max(1-scale/speed, 0)
	} else {
		v -= scale / speed
	}
	return math32.Max(v, 0)
}

// surfacePreStep dries and dissolves every point before brushes apply.
func (s *Surface) surfacePreStep(timescale float32) {
	st := &s.Settings
	switch p := s.Data.Payload.(type) {
	case PaintPayload:
		if !st.Drying && !st.Dissolve {
			return
		}
		s.canvas.pool.Each(len(p), func(i int) {
			pt := &p[i]
			if st.Drying {
				dryPoint(pt, st, timescale)
			}
			if st.Dissolve {
				pt.Alpha = dissolve(pt.Alpha, st.DissolveSpeed, timescale, st.DissolveLog)
				pt.EAlpha = dissolve(pt.EAlpha, st.DissolveSpeed, timescale, st.DissolveLog)
			}
		})
	case DisplacePayload:
		dissolveValues(s, p, timescale)
	case WeightPayload:
		dissolveValues(s, p, timescale)
	}
}

func dissolveValues(s *Surface, values []float32, timescale float32) {
	st := &s.Settings
	if !st.Dissolve {
		return
	}
	s.canvas.pool.Each(len(values), func(i int) {
		values[i] = dissolve(values[i], st.DissolveSpeed, timescale, st.DissolveLog)
	})
}

// dryPoint moves wet paint into the dry layer as it loses wetness.
func dryPoint(p *PaintPoint, st *SurfaceSettings, timescale float32) {
	if p.Wetness >= minWetness {
		prevWet := p.Wetness
		p.Wetness = dissolve(p.Wetness, st.DrySpeed, timescale, st.DryLog)
		if p.Wetness < st.ColorDryThreshold {
			dryRatio := p.Wetness / prevWet
			p.Alpha = clampf(p.Alpha, 0, 1)
			p.EAlpha = clampf(p.EAlpha, 0, 1)

			// Keep the blended result unchanged while wet alpha shrinks.
			fCol, fAlpha := blendColors(p.Color, p.Alpha, p.EColor, p.EAlpha)
			p.EAlpha *= dryRatio
			if p.EAlpha < 1 {
				p.Alpha = clampf((fAlpha-p.EAlpha)/(1-p.EAlpha), 0, 1)
			}
			if p.Alpha > 0 && p.EAlpha < 1 {
				for i := 0; i < 3; i++ {
					p.Color[i] = (fCol[i]*fAlpha - p.EColor[i]*p.EAlpha) / (p.Alpha * (1 - p.EAlpha))
				}
			}
		}
		p.State = PaintWet
		return
	}
	if p.State > PaintEmpty {
		// Fully dried: merge into the dry layer.
		p.Color, p.Alpha = blendColors(p.Color, p.Alpha, p.EColor, p.EAlpha)
		p.EAlpha = 0
		p.State = PaintEmpty
	}
}
