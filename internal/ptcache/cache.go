package ptcache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/logger"
)

// Ext is the file extension of cached frames.
const Ext = ".dpc"

// Disk caches one file per frame under Dir/<canvas>_<surface>/.
type Disk struct {
	Dir string
	log *zap.Logger
}

// NewDisk creates the cache directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Disk{Dir: dir, log: logger.Named("ptcache")}, nil
}

// SurfaceDir returns the directory holding the frames of s.
func (d *Disk) SurfaceDir(s *dynpaint.Surface) string {
	name := s.Name
	if c := s.Canvas(); c != nil {
		name = c.Name + "_" + name
	}
	return filepath.Join(d.Dir, sanitize(name))
}

// FramePath returns the file of one cached frame.
func (d *Disk) FramePath(s *dynpaint.Surface, frame int) string {
	return filepath.Join(d.SurfaceDir(s), fmt.Sprintf("%04d%s", frame, Ext))
}

func (d *Disk) Read(s *dynpaint.Surface, frame int) (bool, error) {
	data, err := os.ReadFile(d.FramePath(s, frame))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cached frame: %w", err)
	}
	p, err := Decode(data)
	if err != nil {
		return false, fmt.Errorf("frame %d: %w", frame, err)
	}
	if err := restore(s, p); err != nil {
		// A stale frame from a different layout is treated as a miss.
		d.log.Warn("discarding cached frame",
			zap.String("surface", s.Name), zap.Int("frame", frame), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (d *Disk) Write(s *dynpaint.Surface, frame int) error {
	if s.Data == nil || s.Data.Payload == nil {
		return dynpaint.ErrNoSurfaceData
	}
	if err := os.MkdirAll(d.SurfaceDir(s), 0o755); err != nil {
		return fmt.Errorf("creating surface cache dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, s.Data.Payload); err != nil {
		return err
	}
	path := d.FramePath(s, frame)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing cached frame: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing cached frame: %w", err)
	}
	return nil
}

// Clear removes every cached frame of s.
func (d *Disk) Clear(s *dynpaint.Surface) error {
	if err := os.RemoveAll(d.SurfaceDir(s)); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Frames lists the cached frame numbers of s in ascending order.
func (d *Disk) Frames(s *dynpaint.Surface) ([]int, error) {
	entries, err := os.ReadDir(d.SurfaceDir(s))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var frames []int
	for _, e := range entries {
		var f int
		if _, err := fmt.Sscanf(e.Name(), "%d"+Ext, &f); err == nil && strings.HasSuffix(e.Name(), Ext) {
			frames = append(frames, f)
		}
	}
	return frames, nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

// Memory keeps encoded frames in memory.
type Memory struct {
	mu     sync.Mutex
	frames map[*dynpaint.Surface]map[int][]byte
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{frames: make(map[*dynpaint.Surface]map[int][]byte)}
}

func (m *Memory) Read(s *dynpaint.Surface, frame int) (bool, error) {
	m.mu.Lock()
	data, ok := m.frames[s][frame]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	p, err := Decode(data)
	if err != nil {
		return false, err
	}
	if err := restore(s, p); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Write(s *dynpaint.Surface, frame int) error {
	if s.Data == nil || s.Data.Payload == nil {
		return dynpaint.ErrNoSurfaceData
	}
	var buf bytes.Buffer
	if err := Encode(&buf, s.Data.Payload); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frames[s] == nil {
		m.frames[s] = make(map[int][]byte)
	}
	m.frames[s][frame] = buf.Bytes()
	return nil
}

func (m *Memory) Clear(s *dynpaint.Surface) error {
	m.mu.Lock()
	delete(m.frames, s)
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached frames of s.
func (m *Memory) Len(s *dynpaint.Surface) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames[s])
}

var (
	_ dynpaint.PointCache = (*Disk)(nil)
	_ dynpaint.PointCache = (*Memory)(nil)
)
