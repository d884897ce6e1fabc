package dynpaint

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/dynpaint/pkg/vertfmt"
)

// OutputKind selects which per-point quantity is exported.
type OutputKind string

const (
	OutputPaint    OutputKind = "paint"
	OutputWetmap   OutputKind = "wetmap"
	OutputDisplace OutputKind = "displace"
	OutputWave     OutputKind = "wave"
	OutputWeight   OutputKind = "weight"
)

var ErrOutputKind = errors.New("output kind does not match surface type")

// RGBA is a straight colour with alpha in [0,1].
type RGBA [4]float32

// Outputs lists the kinds the surface settings enable, primary first.
func (s *Surface) Outputs() []OutputKind {
	st := &s.Settings
	switch st.Type {
	case SurfacePaint:
		var out []OutputKind
		if st.OutputPaint {
			out = append(out, OutputPaint)
		}
		if st.OutputWetmap {
			out = append(out, OutputWetmap)
		}
		return out
	case SurfaceDisplace:
		return []OutputKind{OutputDisplace}
	case SurfaceWave:
		return []OutputKind{OutputWave}
	case SurfaceWeight:
		return []OutputKind{OutputWeight}
	}
	return nil
}

// OutputName returns the file stem used for kind.
func (s *Surface) OutputName(kind OutputKind) string {
	if kind == OutputWetmap {
		return s.Settings.OutputName2
	}
	return s.Settings.OutputName
}

// OutputValues converts the current point data into one colour per point.
func (s *Surface) OutputValues(kind OutputKind) ([]RGBA, error) {
	if s.Data == nil || s.Data.Payload == nil {
		return nil, ErrNoSurfaceData
	}
	st := &s.Settings
	switch p := s.Data.Payload.(type) {
	case PaintPayload:
		out := make([]RGBA, len(p))
		switch kind {
		case OutputPaint:
			for i := range p {
				c, a := blendColors(p[i].Color, p[i].Alpha, p[i].EColor, p[i].EAlpha)
				if st.MultiplyAlpha {
					c = c.Scale(a)
				}
				out[i] = RGBA{c[0], c[1], c[2], a}
			}
		case OutputWetmap:
			for i := range p {
				v := math32.Min(p[i].Wetness, 1)
				out[i] = RGBA{v, v, v, 1}
			}
		default:
			return nil, fmt.Errorf("%w: %s on %s", ErrOutputKind, kind, st.Type)
		}
		return out, nil
	case DisplacePayload:
		if kind != OutputDisplace {
			return nil, fmt.Errorf("%w: %s on %s", ErrOutputKind, kind, st.Type)
		}
		out := make([]RGBA, len(p))
		for i, d := range p {
			if st.DepthClamp != 0 {
				d /= st.DepthClamp
			}
			if st.DispOutput == DisplaceDisplacement {
				d = 0.5 - d/2
			}
			v := clampf(d, 0, 1)
			out[i] = RGBA{v, v, v, 1}
		}
		return out, nil
	case WavePayload:
		if kind != OutputWave {
			return nil, fmt.Errorf("%w: %s on %s", ErrOutputKind, kind, st.Type)
		}
		out := make([]RGBA, len(p))
		for i := range p {
			d := p[i].Height
			if st.DepthClamp != 0 {
				d /= st.DepthClamp
			}
			v := clampf(0.5+d/2, 0, 1)
			out[i] = RGBA{v, v, v, 1}
		}
		return out, nil
	case WeightPayload:
		if kind != OutputWeight {
			return nil, fmt.Errorf("%w: %s on %s", ErrOutputKind, kind, st.Type)
		}
		out := make([]RGBA, len(p))
		for i, w := range p {
			v := clampf(w, 0, 1)
			out[i] = RGBA{v, v, v, 1}
		}
		return out, nil
	}
	return nil, ErrUnsupportedFormat
}

// Vertex buffer attribute names.
const (
	AttrPosition = "position"
	AttrColor    = "color"
	AttrValue    = "value"
)

// ExportVertexBuffer packs a per-vertex surface into an interleaved buffer of
// world position, colour and alpha (the scalar value for non-paint kinds).
func (s *Surface) ExportVertexBuffer(pose Pose, kind OutputKind) (*vertfmt.Buffer, error) {
	if s.Settings.Format != FormatVertex {
		return nil, ErrUnsupportedFormat
	}
	vals, err := s.OutputValues(kind)
	if err != nil {
		return nil, err
	}
	verts := pose.Mesh.Verts()
	if len(verts) != len(vals) {
		return nil, fmt.Errorf("%w: mesh has %d vertices, surface %d", ErrNoSurfaceData, len(verts), len(vals))
	}

	f := &vertfmt.Format{}
	pos, _ := f.Add(AttrPosition, vertfmt.CompF32, 3)
	col, _ := f.Add(AttrColor, vertfmt.CompU8, 3)
	val, _ := f.Add(AttrValue, vertfmt.CompF32, 1)
	buf := vertfmt.NewBuffer(f, len(verts))

	for i, v := range verts {
		co := pose.Matrix.TransformPoint(v)
		c := vals[i]
		value := c[3]
		if kind != OutputPaint {
			value = c[0]
		}
		if err := buf.SetFloats(pos, i, co.X, co.Y, co.Z); err != nil {
			return nil, err
		}
		if err := buf.SetFloats(col, i, c[0], c[1], c[2]); err != nil {
			return nil, err
		}
		if err := buf.SetFloats(val, i, value); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
