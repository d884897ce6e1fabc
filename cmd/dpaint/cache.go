package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/ptcache"
)

func cmdCache(args []string) error {
	if len(args) < 1 || (args[0] != "list" && args[0] != "clear") {
		fmt.Fprintln(os.Stderr, "Usage: dpaint cache list|clear [options] <scene.yaml>")
		return errUsage
	}
	action := args[0]
	cfg, sc, _, err := setup("cache", args[1:], nil)
	if err != nil {
		return err
	}
	cache, err := ptcache.NewDisk(cfg.Bake.CacheDir)
	if err != nil {
		return err
	}
	for _, spec := range sc.Canvases {
		c := spec.Build(canvasOptions(cfg)...)
		if err := cacheAction(os.Stdout, cache, c, action); err != nil {
			return err
		}
	}
	return nil
}

func cacheAction(w io.Writer, cache *ptcache.Disk, c *dynpaint.Canvas, action string) error {
	for _, s := range c.Surfaces {
		if s.Settings.Format != dynpaint.FormatVertex {
			continue
		}
		if action == "clear" {
			if err := cache.Clear(s); err != nil {
				return err
			}
			fmt.Fprintf(w, "Cleared %s/%s\n", c.Name, s.Name)
			continue
		}
		frames, err := cache.Frames(s)
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			fmt.Fprintf(w, "%s/%s: empty\n", c.Name, s.Name)
			continue
		}
		fmt.Fprintf(w, "%s/%s: %d frames (%d-%d) in %s\n",
			c.Name, s.Name, len(frames), frames[0], frames[len(frames)-1], cache.SurfaceDir(s))
	}
	return nil
}
