// Package material shades brush hits with flat colors or image textures.
package material

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // texture formats
	_ "image/png"
	"os"

	"github.com/chewxy/math32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

var ErrNoImage = errors.New("texture has no image")

// Flat is a single color material.
type Flat struct {
	Color dynpaint.RGB
	Alpha float32
}

func (f Flat) Sample(dynpaint.MaterialHit) (dynpaint.RGB, float32, bool) {
	return f.Color, f.Alpha, true
}

// Textured looks up an image through the brush mesh UV layer. Hits without a
// face, such as point brushes, use Base.
type Textured struct {
	Image image.Image
	UVs   []mesh.FaceUV
	Base  Flat
	// Filter enables bilinear filtering; otherwise the nearest texel is used.
	Filter bool
}

// NewTextured binds img to the named UV layer of m.
func NewTextured(img image.Image, m mesh.Provider, layer string, base Flat) (*Textured, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	uvs, ok := m.UVLayer(layer)
	if !ok {
		return nil, fmt.Errorf("uv layer %q: %w", layer, dynpaint.ErrNoUVLayer)
	}
	return &Textured{Image: img, UVs: uvs, Base: base, Filter: true}, nil
}

func (t *Textured) Sample(hit dynpaint.MaterialHit) (dynpaint.RGB, float32, bool) {
	if hit.Face < 0 || hit.Face >= len(t.UVs) {
		return t.Base.Sample(hit)
	}
	fuv := t.UVs[hit.Face]
	var uv pmath.Vec2
	for k, c := range hit.Corners {
		uv = uv.Add(fuv[c].Scale(hit.Weights[k]))
	}
	col, a := t.lookup(uv)
	return col, a, true
}

// lookup samples the image at uv with v pointing up.
func (t *Textured) lookup(uv pmath.Vec2) (dynpaint.RGB, float32) {
	b := t.Image.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	u, v := wrap(uv.X), wrap(uv.Y)
	x := u*w - 0.5
	y := (1-v)*h - 0.5

	if !t.Filter {
		return t.texel(b, int(math32.Floor(x+0.5)), int(math32.Floor(y+0.5)))
	}
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	c00, a00 := t.texel(b, ix, iy)
	c10, a10 := t.texel(b, ix+1, iy)
	c01, a01 := t.texel(b, ix, iy+1)
	c11, a11 := t.texel(b, ix+1, iy+1)
	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	at := a00 + (a10-a00)*fx
	ab := a01 + (a11-a01)*fx
	return top.Lerp(bottom, fy), at + (ab-at)*fy
}

// wrap repeats coordinates outside [0,1].
func wrap(f float32) float32 {
	if f < 0 || f > 1 {
		return f - math32.Floor(f)
	}
	return f
}

// texel returns the straight color of pixel (x, y), clamped to the image.
func (t *Textured) texel(b image.Rectangle, x, y int) (dynpaint.RGB, float32) {
	x = min(max(x, 0), b.Dx()-1) + b.Min.X
	y = min(max(y, 0), b.Dy()-1) + b.Min.Y
	r, g, bl, a := t.Image.At(x, y).RGBA()
	if a == 0 {
		return dynpaint.RGB{}, 0
	}
	fa := float32(a)
	return dynpaint.RGB{float32(r) / fa, float32(g) / fa, float32(bl) / fa}, fa / 0xffff
}

// LoadImage decodes a PNG, JPEG, BMP or TIFF texture.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return img, nil
}

var (
	_ dynpaint.MaterialSampler = Flat{}
	_ dynpaint.MaterialSampler = (*Textured)(nil)
)
