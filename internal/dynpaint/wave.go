package dynpaint

import (
	"math"

	"github.com/chewxy/math32"
)

const maxWaveSteps = 15

// doWaveStep advances the wave equation over the adjacency graph.
func (s *Surface) doWaveStep(timescale float32) {
	d := s.Data
	bd := d.Bake
	adj := d.Adj
	points := d.Payload.(WavePayload)
	st := &s.Settings
	if adj == nil || bd.neighs == nil || adj.TotalTargets() == 0 {
		return
	}

	canvasSize := bd.surfaceDimension()
	if canvasSize <= 0 {
		return
	}
	waveScale := canvasRelSize / canvasSize
	var maxSlope float32
	if st.WaveSmoothness >= 0.01 {
		maxSlope = 0.5 / st.WaveSmoothness
	}

	avgDist := bd.avgDist * float64(waveScale)
	steps := 1
	if avgDist > 0 && st.WaveSpeed > 0 {
		steps = int(math.Ceil(waveTimeFac * float64(timescale*st.WaveTimescale) / (avgDist / float64(st.WaveSpeed) / 3)))
	}
	steps = min(max(steps, 1), maxWaveSteps)
	timescale /= float32(steps)

	dt := float32(waveTimeFac) * timescale * st.WaveTimescale
	minDist := st.WaveSpeed * dt * 1.5
	damp := math32.Pow(1-st.WaveDamping, timescale*st.WaveTimescale)

	prev := make(WavePayload, len(points))
	for step := 0; step < steps; step++ {
		copy(prev, points)
		s.canvas.pool.Each(d.TotalPoints, func(i int) {
			w := &points[i]
			if w.State > 0 {
				return
			}
			var force, avgD, avgHeight, avgNHeight float32
			var numN, numRN int
			for j := 0; j < adj.NNum[i]; j++ {
				n := adj.NIndex[i] + j
				dist := bd.neighs[n].Dist * waveScale
				t := adj.NTarget[n]
				tp := &prev[t]
				if dist == 0 || tp.State > 0 {
					continue
				}
				dist = math32.Max(dist, minDist)
				avgD += dist
				numN++
				if adj.Flags[t]&AdjOnMeshEdge == 0 {
					avgNHeight += tp.Height
					numRN++
				}
				force += (tp.Height - w.Height) / (dist * dist)
				avgHeight += tp.Height
			}
			if numN > 0 {
				avgD /= float32(numN)
			}

			if st.WaveOpenBorders && adj.Flags[i]&AdjOnMeshEdge != 0 {
				if numRN > 0 {
					avgNHeight /= float32(numRN)
				}
				// Keep waves moving out through open borders.
				w.Height = (dt*st.WaveSpeed*avgNHeight + w.Height*avgD) / (avgD + dt*st.WaveSpeed)
				return
			}

			if avgD > 0 {
				force += -w.Height * st.WaveSpring / (avgD * avgD) / 2
			}
			w.Velocity += force * dt * st.WaveSpeed * st.WaveSpeed
			w.Velocity *= damp
			w.Height += w.Velocity * dt

			if maxSlope > 0 && avgD > 0 && numN > 0 {
				maxOffset := maxSlope * avgD
				offset := avgHeight/float32(numN) - w.Height
				if offset > maxOffset {
					w.Height += offset - maxOffset
				} else if offset < -maxOffset {
					w.Height += offset + maxOffset
				}
			}
		})
	}

	for i := range points {
		w := &points[i]
		if w.State == WaveNeutral {
			w.BrushIsect = 0
		}
		w.State = WaveNeutral
	}
}
