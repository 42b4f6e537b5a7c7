package cpu

import (
	"fmt"
	"unsafe"

	"github.com/slate-ml/slate/internal/primitive"
)

// Buffer is host memory posing as device memory: the CPU backend is the
// reference implementation, so "device-resident" means a plain byte slice.
type Buffer struct {
	data  []byte
	dtype primitive.DataType
	n     int
	freed bool
}

// Device returns primitive.CPU.
func (b *Buffer) Device() primitive.Device { return primitive.CPU }

// DType returns the element type.
func (b *Buffer) DType() primitive.DataType { return b.dtype }

// Len returns the element count.
func (b *Buffer) Len() int { return b.n }

// ByteSize returns the total size in bytes.
func (b *Buffer) ByteSize() int { return b.n * b.dtype.Size() }

// View returns a sub-buffer of n elements starting at element offset off,
// sharing the underlying storage.
func (b *Buffer) View(off, n int) (primitive.Buffer, error) {
	if off < 0 || n < 0 || off+n > b.n {
		return nil, fmt.Errorf("cpu: view [%d:%d) out of range for %d elements: %w",
			off, off+n, b.n, primitive.ErrInvalidArgument)
	}
	es := b.dtype.Size()
	return &Buffer{
		data:  b.data[off*es : (off+n)*es],
		dtype: b.dtype,
		n:     n,
	}, nil
}

// Bytes exposes the raw storage. Used by the transfer path and tests.
func (b *Buffer) Bytes() []byte { return b.data }

// view reinterprets the storage as a []T without copying.
func view[T primitive.DType](b *Buffer) []T {
	if b.n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b.data[0])), b.n)
}

// bits16 reinterprets Float16 storage as its uint16 bit patterns.
func bits16(b *Buffer) []uint16 {
	if b.n == 0 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&b.data[0])), b.n)
}
