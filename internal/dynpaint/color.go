package dynpaint

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a linear color with components nominally in [0,1].
type RGB [3]float32

func (c RGB) Scale(s float32) RGB { return RGB{c[0] * s, c[1] * s, c[2] * s} }
func (c RGB) Add(o RGB) RGB       { return RGB{c[0] + o[0], c[1] + o[1], c[2] + o[2]} }

// Lerp interpolates from c towards o.
func (c RGB) Lerp(o RGB, t float32) RGB {
	return RGB{c[0] + (o[0]-c[0])*t, c[1] + (o[1]-c[1])*t, c[2] + (o[2]-c[2])*t}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}
}

func fromColorful(c colorful.Color) RGB {
	return RGB{float32(c.R), float32(c.G), float32(c.B)}
}

// MarshalText encodes the color as #rrggbb.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.colorful().Clamped().Hex()), nil
}

// UnmarshalText accepts #rrggbb or #rgb.
func (c *RGB) UnmarshalText(b []byte) error {
	col, err := colorful.Hex(string(b))
	if err != nil {
		return fmt.Errorf("color %q: %w", b, err)
	}
	*c = fromColorful(col)
	return nil
}

// blendColors composites s over t and returns the color and resulting alpha.
func blendColors(t RGB, tAlpha float32, s RGB, sAlpha float32) (RGB, float32) {
	inv := 1 - sAlpha
	fAlpha := tAlpha*inv + sAlpha
	if fAlpha == 0 {
		return t, 0
	}
	var out RGB
	for i := 0; i < 3; i++ {
		out[i] = (t[i]*tAlpha*inv + s[i]*sAlpha) / fAlpha
	}
	return out, fAlpha
}

// MixColors mixes src into dst weighted by their alphas. srcAlpha must be
// positive; a non-positive source contributes nothing and dst is returned.
func MixColors(dst RGB, dstAlpha float32, src RGB, srcAlpha float32) RGB {
	if srcAlpha <= 0 {
		return dst
	}
	keep := float32(1)
	if srcAlpha >= dstAlpha {
		keep = dstAlpha / srcAlpha
	}
	base := src.Lerp(dst, keep)
	return base.Lerp(src, srcAlpha)
}

// RampStop is one color ramp control point.
type RampStop struct {
	Pos   float32 `yaml:"pos"`
	Color RGB     `yaml:"color"`
	Alpha float32 `yaml:"alpha"`
}

// RampBlend selects the color space stops are interpolated in.
type RampBlend string

const (
	RampRGB RampBlend = "rgb"
	RampHCL RampBlend = "hcl"
	RampLab RampBlend = "lab"
)

// ColorRamp maps a position in [0,1] to a color and alpha.
type ColorRamp struct {
	Blend RampBlend  `yaml:"blend"`
	Stops []RampStop `yaml:"stops"`
}

// Eval samples the ramp at pos. ok is false for an empty ramp.
func (r *ColorRamp) Eval(pos float32) (RGB, float32, bool) {
	n := len(r.Stops)
	if n == 0 {
		return RGB{}, 0, false
	}
	stops := r.Stops
	if !sort.SliceIsSorted(stops, func(i, j int) bool { return stops[i].Pos < stops[j].Pos }) {
		stops = append([]RampStop(nil), stops...)
		sort.SliceStable(stops, func(i, j int) bool { return stops[i].Pos < stops[j].Pos })
	}
	if pos <= stops[0].Pos {
		return stops[0].Color, stops[0].Alpha, true
	}
	if pos >= stops[n-1].Pos {
		return stops[n-1].Color, stops[n-1].Alpha, true
	}
	i := sort.Search(n, func(i int) bool { return stops[i].Pos > pos })
	a, b := stops[i-1], stops[i]
	span := b.Pos - a.Pos
	t := float32(0)
	if span > 0 {
		t = (pos - a.Pos) / span
	}
	alpha := a.Alpha + (b.Alpha-a.Alpha)*t

	ca, cb := a.Color.colorful(), b.Color.colorful()
	var col colorful.Color
	switch r.Blend {
	case RampHCL:
		col = ca.BlendHcl(cb, float64(t)).Clamped()
	case RampLab:
		col = ca.BlendLab(cb, float64(t)).Clamped()
	default:
		col = ca.BlendRgb(cb, float64(t))
	}
	return fromColorful(col), alpha, true
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
