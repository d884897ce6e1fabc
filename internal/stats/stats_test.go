package stats

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
)

func paintSurface(t *testing.T) *dynpaint.Surface {
	t.Helper()
	s := dynpaint.NewCanvas(1, "canvas").AddSurface("paint", dynpaint.DefaultSurfaceSettings())
	if err := s.Reset(mesh.Plane(1, 1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCollectPaint(t *testing.T) {
	s := paintSurface(t)
	p := s.Data.Payload.(dynpaint.PaintPayload)
	p[0] = dynpaint.PaintPoint{EAlpha: 1, Wetness: 2}
	p[1] = dynpaint.PaintPoint{Alpha: 0.5}

	fs := Collect(s, 3, 1500*time.Millisecond)
	if fs.Frame != 3 || fs.Surface != "paint" || fs.Points != 4 {
		t.Errorf("unexpected header fields: %+v", fs)
	}
	if fs.Painted != 2 {
		t.Errorf("Painted = %d, want 2", fs.Painted)
	}
	if fs.Mean != 0.375 {
		t.Errorf("Mean = %v, want 0.375", fs.Mean)
	}
	if fs.MeanWetness != 0.5 {
		t.Errorf("MeanWetness = %v, want 0.5", fs.MeanWetness)
	}
	if fs.Min != 0 || fs.Max != 1 {
		t.Errorf("range = [%v, %v]", fs.Min, fs.Max)
	}
	if fs.Millis != 1500 {
		t.Errorf("Millis = %d", fs.Millis)
	}
}

func TestCollectEmpty(t *testing.T) {
	s := dynpaint.NewCanvas(1, "canvas").AddSurface("none", dynpaint.DefaultSurfaceSettings())
	if fs := Collect(s, 1, 0); fs.Points != 0 || fs.Painted != 0 {
		t.Errorf("Collect on empty surface = %+v", fs)
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats", "bake.csv")
	rec, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	s := paintSurface(t)
	sink := rec.Sink(nil)
	for f := 1; f <= 3; f++ {
		if err := sink.WriteFrame(s, f); err != nil {
			t.Fatalf("frame %d: %v", f, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, r := range rows {
		if r.Frame != i+1 || r.Surface != "paint" || r.Points != 4 {
			t.Errorf("row %d = %+v", i, r)
		}
	}
}

func TestNilRecorder(t *testing.T) {
	rec, err := NewRecorder("")
	if err != nil || rec != nil {
		t.Fatalf("NewRecorder(\"\") = %v, %v", rec, err)
	}
	if err := rec.Write(FrameStats{}); err != nil {
		t.Error(err)
	}
	if err := rec.Sink(nil).WriteFrame(paintSurface(t), 1); err != nil {
		t.Error(err)
	}
	if err := rec.Close(); err != nil {
		t.Error(err)
	}
}
