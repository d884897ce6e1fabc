package material

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// quadrants returns a 2x2 image: red, green on top; blue, white below.
func quadrants() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})
	return img
}

func TestFlat(t *testing.T) {
	f := Flat{Color: dynpaint.RGB{0.1, 0.2, 0.3}, Alpha: 0.5}
	col, a, ok := f.Sample(dynpaint.MaterialHit{})
	if !ok || col != f.Color || a != 0.5 {
		t.Errorf("Sample = %v, %v, %v", col, a, ok)
	}
}

func TestTexturedSample(t *testing.T) {
	plane := mesh.Plane(2, 2, 1, 1)
	tex, err := NewTextured(quadrants(), plane, mesh.DefaultUVLayer, Flat{Color: dynpaint.RGB{1, 1, 0}, Alpha: 1})
	if err != nil {
		t.Fatalf("NewTextured failed: %v", err)
	}
	tex.Filter = false

	tests := []struct {
		name    string
		corners [3]int
		weights [3]float32
		want    dynpaint.RGB
	}{
		{"bottom left", [3]int{0, 1, 2}, [3]float32{1, 0, 0}, dynpaint.RGB{0, 0, 1}},
		{"bottom right", [3]int{0, 1, 2}, [3]float32{0, 1, 0}, dynpaint.RGB{1, 1, 1}},
		{"top right", [3]int{0, 2, 3}, [3]float32{0, 1, 0}, dynpaint.RGB{0, 1, 0}},
		{"top left", [3]int{0, 2, 3}, [3]float32{0, 0, 1}, dynpaint.RGB{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, a, ok := tex.Sample(dynpaint.MaterialHit{Face: 0, Corners: tt.corners, Weights: tt.weights})
			if !ok || a != 1 || col != tt.want {
				t.Errorf("Sample = %v, %v, %v; want %v", col, a, ok, tt.want)
			}
		})
	}

	col, _, _ := tex.Sample(dynpaint.MaterialHit{Face: -1})
	if col != (dynpaint.RGB{1, 1, 0}) {
		t.Errorf("faceless hit = %v, want base color", col)
	}
}

func TestTexturedBilinear(t *testing.T) {
	tex := &Textured{Image: quadrants(), UVs: []mesh.FaceUV{{}}, Filter: true}

	// The image center averages all four texels.
	col, a := tex.lookup(pmath.Vec2{X: 0.5, Y: 0.5})
	if a != 1 {
		t.Errorf("alpha = %v", a)
	}
	want := dynpaint.RGB{0.5, 0.5, 0.5}
	for i := range col {
		if d := col[i] - want[i]; d > 1e-5 || d < -1e-5 {
			t.Errorf("center = %v, want %v", col, want)
			break
		}
	}
}

func TestNewTexturedErrors(t *testing.T) {
	plane := mesh.Plane(1, 1, 1, 1)
	if _, err := NewTextured(nil, plane, mesh.DefaultUVLayer, Flat{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("nil image: %v", err)
	}
	if _, err := NewTextured(quadrants(), plane, "missing", Flat{}); !errors.Is(err, dynpaint.ErrNoUVLayer) {
		t.Errorf("missing layer: %v", err)
	}
}

func TestLoadImageBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(f, quadrants()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if r, g, b, _ := img.At(1, 0).RGBA(); r != 0 || g != 0xffff || b != 0 {
		t.Errorf("pixel (1,0) = %v %v %v", r, g, b)
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
