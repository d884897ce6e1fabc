// Package vertfmt describes interleaved vertex layouts and packs them with the
// alignment rules GPU vertex buffers expect.
package vertfmt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrFormatPacked   = errors.New("vertex format already packed")
	ErrTooManyAttrs   = errors.New("too many vertex attributes")
	ErrUnknownAttr    = errors.New("unknown vertex attribute")
	ErrVertexOutRange = errors.New("vertex index out of range")
	ErrCompMismatch   = errors.New("component count mismatch")
)

// MaxAttrs is the maximum number of attributes in one format.
const MaxAttrs = 16

// CompType is the storage type of one attribute component.
type CompType uint8

const (
	CompI8 CompType = iota
	CompU8
	CompI16
	CompU16
	CompI32
	CompU32
	CompF32
)

// Size returns the component size in bytes.
func (c CompType) Size() int {
	switch c {
	case CompI8, CompU8:
		return 1
	case CompI16, CompU16:
		return 2
	default:
		return 4
	}
}

// Attr is one named vertex attribute.
type Attr struct {
	Name   string
	Comp   CompType
	Len    int
	Offset int
}

// Size returns the attribute size in bytes.
func (a Attr) Size() int {
	return a.Comp.Size() * a.Len
}

// Align returns the attribute alignment. Three-component attributes of 1 or 2 byte
// types are aligned as if they had four components.
func (a Attr) Align() int {
	c := a.Comp.Size()
	if a.Len == 3 && c <= 2 {
		return 4 * c
	}
	return c
}

// Padding returns the bytes needed to advance offset to a multiple of align.
func Padding(offset, align int) int {
	if align <= 1 {
		return 0
	}
	if mod := offset % align; mod != 0 {
		return align - mod
	}
	return 0
}

// Format is an ordered attribute list. Call Pack once all attributes are added.
type Format struct {
	Attrs  []Attr
	Stride int
	packed bool
}

// Add appends an attribute and returns its index.
func (f *Format) Add(name string, comp CompType, n int) (int, error) {
	if f.packed {
		return 0, ErrFormatPacked
	}
	if len(f.Attrs) >= MaxAttrs {
		return 0, ErrTooManyAttrs
	}
	if n < 1 || n > 4 {
		return 0, fmt.Errorf("attribute %q: %w (%d)", name, ErrCompMismatch, n)
	}
	f.Attrs = append(f.Attrs, Attr{Name: name, Comp: comp, Len: n})
	return len(f.Attrs) - 1, nil
}

// Pack assigns attribute offsets and the vertex stride.
func (f *Format) Pack() {
	if f.packed {
		return
	}
	offset := 0
	for i := range f.Attrs {
		a := &f.Attrs[i]
		offset += Padding(offset, a.Align())
		a.Offset = offset
		offset += a.Size()
	}
	if len(f.Attrs) > 0 {
		offset += Padding(offset, f.Attrs[0].Align())
	}
	f.Stride = offset
	f.packed = true
}

// Packed reports whether Pack has run.
func (f *Format) Packed() bool {
	return f.packed
}

// Index returns the attribute index for name.
func (f *Format) Index(name string) (int, error) {
	for i, a := range f.Attrs {
		if a.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownAttr, name)
}

// Buffer is a little-endian interleaved vertex buffer.
type Buffer struct {
	Format *Format
	Data   []byte
	Len    int
}

// NewBuffer packs the format if needed and allocates n vertices.
func NewBuffer(f *Format, n int) *Buffer {
	f.Pack()
	return &Buffer{Format: f, Data: make([]byte, f.Stride*n), Len: n}
}

// SetFloats writes float components for vertex v of attribute attr.
func (b *Buffer) SetFloats(attr, v int, vals ...float32) error {
	if v < 0 || v >= b.Len {
		return fmt.Errorf("%w: %d", ErrVertexOutRange, v)
	}
	a := b.Format.Attrs[attr]
	if len(vals) != a.Len {
		return fmt.Errorf("attribute %q: %w: got %d, want %d", a.Name, ErrCompMismatch, len(vals), a.Len)
	}
	base := v*b.Format.Stride + a.Offset
	for i, x := range vals {
		p := b.Data[base+i*a.Comp.Size():]
		switch a.Comp {
		case CompF32:
			binary.LittleEndian.PutUint32(p, math.Float32bits(x))
		case CompU8, CompI8:
			p[0] = uint8(clampUnit(x) * 255)
		case CompU16, CompI16:
			binary.LittleEndian.PutUint16(p, uint16(clampUnit(x)*65535))
		default:
			binary.LittleEndian.PutUint32(p, uint32(x))
		}
	}
	return nil
}

// Floats reads the float components of vertex v for attribute attr.
func (b *Buffer) Floats(attr, v int) []float32 {
	a := b.Format.Attrs[attr]
	base := v*b.Format.Stride + a.Offset
	out := make([]float32, a.Len)
	for i := range out {
		p := b.Data[base+i*a.Comp.Size():]
		switch a.Comp {
		case CompF32:
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p))
		case CompU8, CompI8:
			out[i] = float32(p[0]) / 255
		case CompU16, CompI16:
			out[i] = float32(binary.LittleEndian.Uint16(p)) / 65535
		default:
			out[i] = float32(binary.LittleEndian.Uint32(p))
		}
	}
	return out
}

func clampUnit(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
