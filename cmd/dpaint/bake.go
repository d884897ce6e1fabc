package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/dynpaint/internal/config"
	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/imgout"
	"github.com/Faultbox/dynpaint/internal/logger"
	"github.com/Faultbox/dynpaint/internal/ptcache"
	"github.com/Faultbox/dynpaint/internal/scene"
	"github.com/Faultbox/dynpaint/internal/stats"
)

// vertexExt is the extension of exported per-vertex buffers.
const vertexExt = ".vbuf"

func cmdBake(args []string) error {
	var only *string
	cfg, sc, _, err := setup("bake", args, func(fs *flag.FlagSet) {
		only = fs.String("surface", "", "Bake only the named surface")
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := stats.NewRecorder(cfg.Bake.StatsFile)
	if err != nil {
		return err
	}
	defer rec.Close()

	b := &baker{cfg: cfg, scene: sc, rec: rec, only: *only}
	for _, spec := range sc.Canvases {
		if err := b.bakeCanvas(ctx, spec.Build(canvasOptions(cfg)...)); err != nil {
			return err
		}
	}
	return nil
}

type baker struct {
	cfg   *config.Config
	scene *scene.Scene
	rec   *stats.Recorder
	only  string
}

func (b *baker) selected(s *dynpaint.Surface) bool {
	return !s.Settings.Disabled && (b.only == "" || b.only == s.Name)
}

func (b *baker) bakeCanvas(ctx context.Context, c *dynpaint.Canvas) error {
	var vertex []*dynpaint.Surface
	for _, s := range c.Surfaces {
		if !b.selected(s) {
			continue
		}
		switch s.Settings.Format {
		case dynpaint.FormatImageSeq:
			if err := b.bakeImages(ctx, c, s); err != nil {
				return err
			}
		case dynpaint.FormatVertex:
			vertex = append(vertex, s)
		default:
			logger.Warn("surface format not simulated",
				zap.String("surface", s.Name),
				zap.String("format", string(s.Settings.Format)))
		}
	}
	if len(vertex) == 0 {
		return nil
	}
	// Unselected vertex surfaces are skipped by FrameUpdate.
	for _, s := range c.Surfaces {
		if s.Settings.Format == dynpaint.FormatVertex && !b.selected(s) {
			s.Settings.Disabled = true
		}
	}
	return b.bakeVertex(ctx, c, vertex)
}

func (b *baker) bakeImages(ctx context.Context, c *dynpaint.Canvas, s *dynpaint.Surface) error {
	format, err := imgout.ParseFormat(b.cfg.Bake.ImageFormat)
	if err != nil {
		return err
	}
	w := imgout.NewWriter(filepath.Join(b.cfg.Bake.OutputDir, c.Name, s.Name), format)
	start := time.Now()
	if err := c.Bake(ctx, s, b.scene, b.rec.Sink(w)); err != nil {
		return fmt.Errorf("%s/%s: %s", c.Name, s.Name, c.LastError)
	}
	fmt.Printf("Baked %s/%s: frames %d-%d, %d files in %s\n",
		c.Name, s.Name, s.Settings.StartFrame, s.Settings.EndFrame, len(w.Written),
		time.Since(start).Round(time.Millisecond))
	return nil
}

// bakeVertex steps the canvas through the frame range of its vertex
// surfaces, caching every frame and exporting vertex buffers.
func (b *baker) bakeVertex(ctx context.Context, c *dynpaint.Canvas, surfaces []*dynpaint.Surface) error {
	cache, err := ptcache.NewDisk(b.cfg.Bake.CacheDir)
	if err != nil {
		return err
	}
	first, last := surfaces[0].Settings.StartFrame, surfaces[0].Settings.EndFrame
	for _, s := range surfaces[1:] {
		first = min(first, s.Settings.StartFrame)
		last = max(last, s.Settings.EndFrame)
	}

	start := time.Now()
	prev := start
	for frame := first; frame <= last; frame++ {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, dynpaint.UserMessage(dynpaint.ErrCancelled))
			return dynpaint.ErrCancelled
		}
		if err := c.FrameUpdate(b.scene, cache, frame); err != nil {
			return fmt.Errorf("%s: %s", c.Name, c.LastError)
		}
		pose, ok := b.scene.Pose(c.Object, float32(frame))
		if !ok {
			return dynpaint.ErrCanvasNotAvailable
		}
		now := time.Now()
		for _, s := range surfaces {
			if s.CurrentFrame != frame {
				continue
			}
			if err := b.rec.Write(stats.Collect(s, frame, now.Sub(prev))); err != nil {
				return err
			}
			if err := b.exportVertex(c, s, pose, frame); err != nil {
				return err
			}
		}
		prev = now
	}
	fmt.Printf("Baked %s: %d vertex surfaces, frames %d-%d in %s\n",
		c.Name, len(surfaces), first, last, time.Since(start).Round(time.Millisecond))
	return nil
}

func (b *baker) exportVertex(c *dynpaint.Canvas, s *dynpaint.Surface, pose dynpaint.Pose, frame int) error {
	dir := filepath.Join(b.cfg.Bake.OutputDir, c.Name, s.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, kind := range s.Outputs() {
		buf, err := s.ExportVertexBuffer(pose, kind)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s%04d%s", s.OutputName(kind), frame, vertexExt))
		if err := os.WriteFile(path, buf.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
