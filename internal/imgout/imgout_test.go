package imgout

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
)

func bakedSurface(t *testing.T) *dynpaint.Surface {
	t.Helper()
	st := dynpaint.DefaultSurfaceSettings()
	st.Format = dynpaint.FormatImageSeq
	st.UVLayer = mesh.DefaultUVLayer
	st.Resolution = 16
	s := dynpaint.NewCanvas(1, "canvas").AddSurface("surface", st)
	if err := s.CreateUVSurface(mesh.Plane(2, 2, 1, 1)); err != nil {
		t.Fatalf("CreateUVSurface failed: %v", err)
	}
	points := s.Data.Payload.(dynpaint.PaintPayload)
	points[0] = dynpaint.PaintPoint{EColor: dynpaint.RGB{1, 0, 0}, EAlpha: 1, Wetness: 0.5}
	return s
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"png", "tiff"} {
		if f, err := ParseFormat(name); err != nil || string(f) != name {
			t.Errorf("ParseFormat(%q) = %q, %v", name, f, err)
		}
	}
	if _, err := ParseFormat("exr"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(exr) = %v", err)
	}
}

func TestRasterize(t *testing.T) {
	s := bakedSurface(t)
	img, err := Rasterize(s, dynpaint.OutputPaint)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	// Texel 0 is the bottom-left corner of UV space.
	if c := img.NRGBA64At(0, 15); c.R != 0xffff || c.G != 0 || c.A != 0xffff {
		t.Errorf("bottom-left = %+v", c)
	}
	if c := img.NRGBA64At(0, 0); c.A != 0 {
		t.Errorf("top-left alpha = %d, want 0", c.A)
	}

	wet, err := Rasterize(s, dynpaint.OutputWetmap)
	if err != nil {
		t.Fatal(err)
	}
	if c := wet.NRGBA64At(0, 15); c.R != 0x8000 || c.A != 0xffff {
		t.Errorf("wetmap = %+v", c)
	}
}

func TestWriteFrame(t *testing.T) {
	for _, format := range []Format{PNG, TIFF} {
		t.Run(string(format), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			w := NewWriter(dir, format)
			s := bakedSurface(t)

			if err := w.WriteFrame(s, 7); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
			want := []string{
				filepath.Join(dir, "paintmap0007."+string(format)),
				filepath.Join(dir, "wetmap0007."+string(format)),
			}
			if len(w.Written) != len(want) {
				t.Fatalf("written = %v", w.Written)
			}
			for i, path := range want {
				if w.Written[i] != path {
					t.Errorf("written[%d] = %s, want %s", i, w.Written[i], path)
				}
				f, err := os.Open(path)
				if err != nil {
					t.Fatal(err)
				}
				img, name, err := image.Decode(f)
				f.Close()
				if err != nil {
					t.Fatalf("decoding %s: %v", path, err)
				}
				if name != string(format) || img.Bounds().Dx() != 16 {
					t.Errorf("%s decoded as %s %v", path, name, img.Bounds())
				}
			}
		})
	}
}

func TestWriteFrameVertexSurface(t *testing.T) {
	s := dynpaint.NewCanvas(1, "canvas").AddSurface("surface", dynpaint.DefaultSurfaceSettings())
	if err := s.Reset(mesh.Plane(1, 1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	err := NewWriter(t.TempDir(), PNG).WriteFrame(s, 1)
	if !errors.Is(err, dynpaint.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}
