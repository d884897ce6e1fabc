// Package ptcache stores baked surface state per frame, on disk or in memory.
package ptcache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
)

// Frame format errors.
var (
	ErrInvalidMagic       = errors.New("invalid point cache magic: expected 'DPPC'")
	ErrUnsupportedVersion = errors.New("unsupported point cache version")
	ErrTruncated          = errors.New("truncated point cache data")
	ErrPointMismatch      = errors.New("cached frame does not match surface")
)

const (
	magic   = "DPPC"
	version = 1
)

// payloadKind is the on-disk tag of a surface type.
type payloadKind uint8

const (
	kindPaint payloadKind = iota + 1
	kindDisplace
	kindWeight
	kindWave
)

func kindOf(p dynpaint.Payload) (payloadKind, error) {
	switch p.(type) {
	case dynpaint.PaintPayload:
		return kindPaint, nil
	case dynpaint.DisplacePayload:
		return kindDisplace, nil
	case dynpaint.WeightPayload:
		return kindWeight, nil
	case dynpaint.WavePayload:
		return kindWave, nil
	}
	return 0, fmt.Errorf("payload %T: %w", p, dynpaint.ErrUnsupportedFormat)
}

// Encode writes p as one cached frame:
// magic, version u16, kind u8, count u32, then the little-endian points.
func Encode(w io.Writer, p dynpaint.Payload) error {
	kind, err := kindOf(p)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	header := struct {
		Version uint16
		Kind    payloadKind
		Count   uint32
	}{version, kind, uint32(p.Len())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, p); err != nil {
		return fmt.Errorf("writing points: %w", err)
	}
	return nil
}

// Decode parses a cached frame.
func Decode(data []byte) (dynpaint.Payload, error) {
	if len(data) < 11 {
		return nil, ErrTruncated
	}
	if string(data[0:4]) != magic {
		return nil, ErrInvalidMagic
	}
	r := bytes.NewReader(data[4:])

	var ver uint16
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncated)
	}
	if ver != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, ver)
	}
	var kind payloadKind
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return nil, fmt.Errorf("%w: reading kind", ErrTruncated)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading count", ErrTruncated)
	}

	// Size the points from the header before allocating them.
	one, err := newPayload(kind, 1)
	if err != nil {
		return nil, err
	}
	elem := binary.Size(one)
	if elem <= 0 || uint64(r.Len()) < uint64(count)*uint64(elem) {
		return nil, fmt.Errorf("%w: %d points", ErrTruncated, count)
	}
	p, _ := newPayload(kind, int(count))
	if err := binary.Read(r, binary.LittleEndian, p); err != nil {
		return nil, fmt.Errorf("%w: reading points", ErrTruncated)
	}
	return p, nil
}

func newPayload(kind payloadKind, n int) (dynpaint.Payload, error) {
	switch kind {
	case kindPaint:
		return make(dynpaint.PaintPayload, n), nil
	case kindDisplace:
		return make(dynpaint.DisplacePayload, n), nil
	case kindWeight:
		return make(dynpaint.WeightPayload, n), nil
	case kindWave:
		return make(dynpaint.WavePayload, n), nil
	}
	return nil, fmt.Errorf("unknown payload kind %d: %w", kind, dynpaint.ErrUnsupportedFormat)
}

// restore installs p into s after checking it matches the surface layout.
func restore(s *dynpaint.Surface, p dynpaint.Payload) error {
	if s.Data == nil || s.Data.Payload == nil {
		return dynpaint.ErrNoSurfaceData
	}
	want, err := kindOf(s.Data.Payload)
	if err != nil {
		return err
	}
	got, _ := kindOf(p)
	if got != want || p.Len() != s.Data.TotalPoints {
		return fmt.Errorf("%w: %d points of kind %d, surface has %d of kind %d",
			ErrPointMismatch, p.Len(), got, s.Data.TotalPoints, want)
	}
	s.Data.Payload = p
	return nil
}
