package dynpaint

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// PointCache stores per-frame surface state.
type PointCache interface {
	// Read restores frame into s. ok is false when the frame is not cached.
	Read(s *Surface, frame int) (ok bool, err error)
	Write(s *Surface, frame int) error
	// Clear drops every cached frame of s.
	Clear(s *Surface) error
}

// FrameSink receives every frame produced by Bake.
type FrameSink interface {
	WriteFrame(s *Surface, frame int) error
}

// doStep runs one simulation step with brushes evaluated at time t.
func (s *Surface) doStep(w World, t, timescale float32) error {
	d := s.Data
	if d == nil || d.TotalPoints < 1 || d.Bake == nil {
		return ErrNoSurfaceData
	}
	s.surfacePreStep(timescale)

	if w != nil {
		for _, inst := range w.Brushes(t, s.Settings.BrushGroup) {
			s.applyBrush(&inst, timescale)
		}
	}

	if d.Adj == nil || d.Bake.neighs == nil {
		return nil
	}
	if s.Settings.Type == SurfaceWave {
		s.doWaveStep(timescale)
	}
	if s.Settings.usesEffects() {
		prev := make(PaintPayload, d.TotalPoints)
		var locks []sync.Mutex
		if s.Settings.Drip {
			locks = make([]sync.Mutex, d.TotalPoints)
		}
		forces, steps := s.prepareEffectStep(w, t, timescale)
		for i := 0; i < steps; i++ {
			s.doEffectStep(forces, prev, locks, timescale, steps)
		}
	}
	return nil
}

func (s *Surface) applyBrush(inst *BrushInstance, timescale float32) {
	if inst.Settings == nil {
		return
	}
	self := inst.Object == s.canvas.Object
	switch inst.Settings.Collision {
	case CollideParticles:
		s.paintParticles(inst, timescale)
	case CollidePoint:
		if !self {
			s.paintSinglePoint(inst, timescale)
		}
	case CollideVolume, CollideDistance, CollideVolumeDistance:
		if !self {
			s.paintMesh(inst, timescale)
		}
	default:
		s.canvas.log.Debug("unknown brush collision",
			zap.String("brush", inst.Name),
			zap.String("collision", string(inst.Settings.Collision)))
	}
}

// CalculateFrame refreshes bake data and simulates frame, including its
// sub-frames except on the start frame.
func (s *Surface) CalculateFrame(w World, frame int) error {
	if s.Data == nil {
		return ErrNoSurfaceData
	}
	pose, ok := w.Pose(s.canvas.Object, float32(frame))
	if !ok {
		return ErrCanvasNotAvailable
	}
	if err := s.generateBakeData(pose); err != nil {
		return err
	}

	timescale := float32(1)
	if n := s.Settings.Substeps; n > 0 && frame != s.Settings.StartFrame {
		timescale = 1 / float32(n+1)
		for st := 1; st <= n; st++ {
			t := float32(frame-1) + float32(st)/float32(n+1)
			if err := s.doStep(w, t, timescale); err != nil {
				return err
			}
		}
	}
	return s.doStep(w, float32(frame), timescale)
}

// FrameUpdate brings every active per-vertex surface to frame, reading from
// cache when possible and simulating only when stepping forward by one.
func (c *Canvas) FrameUpdate(w World, cache PointCache, frame int) error {
	pose, ok := w.Pose(c.Object, float32(frame))
	if !ok {
		return ErrCanvasNotAvailable
	}
	var errs []error
	for _, s := range c.Surfaces {
		if s.Settings.Format != FormatVertex || s.Settings.Disabled {
			continue
		}
		if err := c.updateSurface(s, w, pose, cache, frame); err != nil {
			errs = append(errs, c.fail(s, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Canvas) updateSurface(s *Surface, w World, pose Pose, cache PointCache, frame int) error {
	st := &s.Settings
	cur := min(max(frame, st.StartFrame), st.EndFrame)
	hadData := s.Data != nil
	if hadData && cur == s.CurrentFrame && frame != st.StartFrame {
		return nil
	}

	if !hadData || frame == st.StartFrame {
		if cache != nil && frame == st.StartFrame {
			if err := cache.Clear(s); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
		}
		if err := s.Reset(pose.Mesh); err != nil {
			return err
		}
	}

	if cache != nil {
		ok, err := cache.Read(s, cur)
		if err != nil {
			return fmt.Errorf("reading frame %d: %w", cur, err)
		}
		if ok {
			s.CurrentFrame = cur
			return nil
		}
	}

	canSimulate := frame == cur && (frame == st.StartFrame || cur == s.CurrentFrame+1)
	if !canSimulate {
		return nil
	}
	if err := s.CalculateFrame(w, cur); err != nil {
		return err
	}
	s.CurrentFrame = cur
	if cache != nil {
		if err := cache.Write(s, cur); err != nil {
			return fmt.Errorf("writing frame %d: %w", cur, err)
		}
	}
	return nil
}

// Bake simulates s from its start to end frame, handing each frame to sink.
// Cancellation of ctx is honoured between frames.
func (c *Canvas) Bake(ctx context.Context, s *Surface, w World, sink FrameSink) (err error) {
	defer func() {
		if err != nil {
			c.fail(s, err)
		} else {
			c.LastError = ""
		}
	}()

	st := &s.Settings
	frames := st.EndFrame - st.StartFrame + 1
	if frames <= 0 {
		return ErrNoFrames
	}
	pose, ok := w.Pose(c.Object, float32(st.StartFrame))
	if !ok {
		return ErrCanvasNotAvailable
	}
	switch st.Format {
	case FormatImageSeq:
		err = s.CreateUVSurface(pose.Mesh)
	default:
		err = s.Reset(pose.Mesh)
	}
	if err != nil {
		return err
	}

	c.log.Info("bake started",
		zap.String("surface", s.Name),
		zap.Int("points", s.Points()),
		zap.Int("frames", frames))

	for frame := st.StartFrame; frame <= st.EndFrame; frame++ {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		s.CurrentFrame = frame
		if err := s.CalculateFrame(w, frame); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if sink != nil {
			if err := sink.WriteFrame(s, frame); err != nil {
				return fmt.Errorf("frame %d output: %w", frame, err)
			}
		}
		c.log.Debug("frame baked",
			zap.String("surface", s.Name),
			zap.Int("frame", frame),
			zap.Float64("progress", float64(frame-st.StartFrame+1)/float64(frames)))
	}
	return nil
}
