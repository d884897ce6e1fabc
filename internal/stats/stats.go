// Package stats records per-frame bake statistics as CSV.
package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"
	"github.com/gocarina/gocsv"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
)

// paintedAlpha is the combined alpha above which a point counts as painted.
const paintedAlpha = 0.01

// FrameStats summarises one surface after one frame.
type FrameStats struct {
	Frame       int     `csv:"frame"`
	Surface     string  `csv:"surface"`
	Points      int     `csv:"points"`
	Painted     int     `csv:"painted"`
	Mean        float32 `csv:"mean"`
	MeanWetness float32 `csv:"mean_wetness"`
	Min         float32 `csv:"min"`
	Max         float32 `csv:"max"`
	Millis      int64   `csv:"ms"`
}

// Collect computes statistics of the current surface state. For paint the
// value range is the combined alpha; for other types it is the raw value.
func Collect(s *dynpaint.Surface, frame int, took time.Duration) FrameStats {
	fs := FrameStats{Frame: frame, Surface: s.Name, Points: s.Points(), Millis: took.Milliseconds()}
	if s.Data == nil || fs.Points == 0 {
		return fs
	}
	fs.Min, fs.Max = math32.MaxFloat32, -math32.MaxFloat32
	track := func(v float32) {
		fs.Min = math32.Min(fs.Min, v)
		fs.Max = math32.Max(fs.Max, v)
		if v > paintedAlpha {
			fs.Painted++
		}
	}

	var sum float64
	switch p := s.Data.Payload.(type) {
	case dynpaint.PaintPayload:
		var wet float64
		for i := range p {
			a := p[i].EAlpha + p[i].Alpha*(1-p[i].EAlpha)
			track(a)
			sum += float64(a)
			wet += float64(p[i].Wetness)
		}
		fs.MeanWetness = float32(wet / float64(len(p)))
	case dynpaint.DisplacePayload:
		for _, v := range p {
			track(v)
			sum += float64(v)
		}
	case dynpaint.WeightPayload:
		for _, v := range p {
			track(v)
			sum += float64(v)
		}
	case dynpaint.WavePayload:
		for i := range p {
			track(math32.Abs(p[i].Height))
			sum += float64(p[i].Height)
		}
	}
	fs.Mean = float32(sum / float64(fs.Points))
	return fs
}

// Recorder appends FrameStats rows to a CSV file.
type Recorder struct {
	file          *os.File
	headerWritten bool
	last          time.Time
}

// NewRecorder creates the CSV file. It returns nil if path is empty
// (recording disabled); all methods accept a nil Recorder.
func NewRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating stats directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &Recorder{file: f, last: time.Now()}, nil
}

// Write appends one row.
func (r *Recorder) Write(fs FrameStats) error {
	if r == nil {
		return nil
	}
	records := []FrameStats{fs}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close closes the CSV file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.file.Close()
}

// Sink wraps next so that every frame it receives is also recorded, timed
// from the previous frame.
func (r *Recorder) Sink(next dynpaint.FrameSink) dynpaint.FrameSink {
	return &sink{rec: r, next: next}
}

type sink struct {
	rec  *Recorder
	next dynpaint.FrameSink
}

func (k *sink) WriteFrame(s *dynpaint.Surface, frame int) error {
	if k.next != nil {
		if err := k.next.WriteFrame(s, frame); err != nil {
			return err
		}
	}
	if k.rec == nil {
		return nil
	}
	now := time.Now()
	took := now.Sub(k.rec.last)
	k.rec.last = now
	return k.rec.Write(Collect(s, frame, took))
}

// ReadFile loads a stats CSV written by Recorder.
func ReadFile(path string) ([]FrameStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []FrameStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return rows, nil
}
