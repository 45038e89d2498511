package compute

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

var le = binary.LittleEndian

// Shape lists the extent of each dimension. An empty shape is a scalar.
type Shape []int

// Elems returns the number of elements, or -1 if a dimension is negative.
func (s Shape) Elems() int {
	n := 1
	for _, d := range s {
		if d < 0 {
			return -1
		}
		n *= d
	}
	return n
}

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Buffer is a flat byte array holding Shape.Elems() elements of ElemSize
// bytes each.
type Buffer struct {
	Data     []byte
	Shape    Shape
	ElemSize int
}

// NewBuffer returns a zeroed buffer.
func NewBuffer(shape Shape, elemSize int) Buffer {
	n := max(shape.Elems(), 0)
	return Buffer{Data: make([]byte, n*elemSize), Shape: shape, ElemSize: elemSize}
}

func Float32Buffer(shape Shape, vals []float32) Buffer {
	b := NewBuffer(shape, 4)
	for i, v := range vals {
		if i >= b.Len() {
			break
		}
		b.SetF32(i, v)
	}
	return b
}

func Uint32Buffer(shape Shape, vals []uint32) Buffer {
	b := NewBuffer(shape, 4)
	for i, v := range vals {
		if i >= b.Len() {
			break
		}
		b.SetU32(i, v)
	}
	return b
}

// RecordBuffer wraps encoded layout records as a one-dimensional buffer.
func RecordBuffer(data []byte, recSize int) Buffer {
	return Buffer{Data: data, Shape: Shape{len(data) / recSize}, ElemSize: recSize}
}

// Len is the number of elements the buffer's data actually holds.
func (b Buffer) Len() int {
	if b.ElemSize <= 0 {
		return 0
	}
	return len(b.Data) / b.ElemSize
}

func (b Buffer) F32(i int) float32 {
	return math32.Float32frombits(le.Uint32(b.Data[i*4:]))
}

func (b Buffer) SetF32(i int, v float32) {
	le.PutUint32(b.Data[i*4:], math32.Float32bits(v))
}

func (b Buffer) U32(i int) uint32 {
	return le.Uint32(b.Data[i*4:])
}

func (b Buffer) SetU32(i int, v uint32) {
	le.PutUint32(b.Data[i*4:], v)
}

func (b Buffer) Float32s() []float32 {
	out := make([]float32, b.Len())
	for i := range out {
		out[i] = b.F32(i)
	}
	return out
}

func (b Buffer) Uint32s() []uint32 {
	out := make([]uint32, b.Len())
	for i := range out {
		out[i] = b.U32(i)
	}
	return out
}

// rows splits a shape into leading rows and the trailing axis.
func rows(s Shape) (int, int) {
	if len(s) == 0 {
		return 1, 1
	}
	cols := s[len(s)-1]
	return s[:len(s)-1].Elems(), cols
}
