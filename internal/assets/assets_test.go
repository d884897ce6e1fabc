package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{G: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestManagerLoadCaches(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "brush.png"))
	m := NewManager(dir)

	a, err := m.Load("brush.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b, err := m.Load(filepath.Join(dir, "brush.png"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if a != b {
		t.Error("Load() decoded the same file twice")
	}
	if got := a.Bounds().Dx(); got != 4 {
		t.Errorf("width = %d, want 4", got)
	}

	hits, misses := m.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d, %d, want 1, 1", hits, misses)
	}
}

func TestManagerLoadMissing(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Load("missing.png"); err == nil {
		t.Error("Load() of missing file succeeded")
	}
	if _, misses := m.Stats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		path string
		want string
	}{
		{"relative", "scenes", "tex/a.png", filepath.Join("scenes", "tex", "a.png")},
		{"no base", "", "tex/../a.png", "a.png"},
		{"absolute", "scenes", "/abs/a.png", "/abs/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewManager(tt.dir).Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	c.Set("a", image.NewGray(image.Rect(0, 0, 1, 1)))
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get() missed a stored key")
	}
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("Get() hit after Clear()")
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 1 {
		t.Errorf("Stats() = %d, %d, want 0, 1", hits, misses)
	}
}
