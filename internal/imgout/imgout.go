// Package imgout writes image sequence surface outputs as PNG or TIFF frames.
package imgout

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/logger"
)

// Format is an output image file format.
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
)

var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case PNG, TIFF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Writer saves every enabled output of a surface for each baked frame.
type Writer struct {
	outputDir string
	format    Format
	log       *zap.Logger

	// Written lists the files created so far.
	Written []string
}

// NewWriter creates a frame writer. An empty outputDir writes to the
// working directory.
func NewWriter(outputDir string, format Format) *Writer {
	return &Writer{outputDir: outputDir, format: format, log: logger.Named("imgout")}
}

// Filename returns the path of one output frame, e.g. out/paintmap0007.png.
func (w *Writer) Filename(name string, frame int) string {
	filename := fmt.Sprintf("%s%04d.%s", name, frame, w.format)
	if w.outputDir != "" {
		filename = filepath.Join(w.outputDir, filename)
	}
	return filename
}

// WriteFrame implements dynpaint.FrameSink.
func (w *Writer) WriteFrame(s *dynpaint.Surface, frame int) error {
	if s.Data == nil || s.Data.ImageSeq == nil {
		return fmt.Errorf("surface %q: %w", s.Name, dynpaint.ErrUnsupportedFormat)
	}
	if w.outputDir != "" {
		if err := os.MkdirAll(w.outputDir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	for _, kind := range s.Outputs() {
		img, err := Rasterize(s, kind)
		if err != nil {
			return err
		}
		path := w.Filename(s.OutputName(kind), frame)
		if err := w.save(path, img); err != nil {
			return err
		}
		w.Written = append(w.Written, path)
		w.log.Debug("frame written", zap.String("path", path), zap.String("output", string(kind)))
	}
	return nil
}

func (w *Writer) save(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	switch w.format {
	case PNG:
		err = png.Encode(file, img)
	case TIFF:
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, w.format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// Rasterize places the per-texel values of kind into a 16-bit image. Texels
// not covered by the mesh stay transparent. The image is flipped vertically
// since UV space has its origin at bottom-left.
func Rasterize(s *dynpaint.Surface, kind dynpaint.OutputKind) (*image.NRGBA64, error) {
	if s.Data == nil || s.Data.ImageSeq == nil {
		return nil, fmt.Errorf("surface %q: %w", s.Name, dynpaint.ErrUnsupportedFormat)
	}
	vals, err := s.OutputValues(kind)
	if err != nil {
		return nil, err
	}
	seq := s.Data.ImageSeq
	img := image.NewNRGBA64(image.Rect(0, 0, seq.Width, seq.Height))
	for i, v := range vals {
		px := seq.UV[i].PixelIndex
		x, y := px%seq.Width, seq.Height-1-px/seq.Width
		img.SetNRGBA64(x, y, color.NRGBA64{R: to16(v[0]), G: to16(v[1]), B: to16(v[2]), A: to16(v[3])})
	}
	return img, nil
}

func to16(f float32) uint16 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 0xffff
	}
	return uint16(f*0xffff + 0.5)
}

var _ dynpaint.FrameSink = (*Writer)(nil)
