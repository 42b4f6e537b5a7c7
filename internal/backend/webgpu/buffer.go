package webgpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/slate-ml/slate/internal/primitive"
)

// storageAlign is WebGPU's minimum storage buffer offset alignment.
// Views can only be bound at multiples of it.
const storageAlign = 256

// Buffer is a handle to GPU-resident storage. The underlying wgpu buffer
// may be shared between views; off/size select the visible window.
type Buffer struct {
	buf   *wgpu.Buffer
	dtype primitive.DataType
	n     int
	off   uint64 // byte offset into buf
	size  uint64 // byte size of the window, 4-byte aligned
	freed bool
}

// Device returns primitive.WebGPU.
func (b *Buffer) Device() primitive.Device { return primitive.WebGPU }

// DType returns the element type.
func (b *Buffer) DType() primitive.DataType { return b.dtype }

// Len returns the element count.
func (b *Buffer) Len() int { return b.n }

// ByteSize returns the logical size in bytes (unpadded).
func (b *Buffer) ByteSize() int { return b.n * b.dtype.Size() }

// View returns a sub-buffer sharing GPU storage. The resulting byte
// offset must land on WebGPU's storage alignment; batched operands are
// normally addressed through offset tables instead (see GemmBatch).
func (b *Buffer) View(off, n int) (primitive.Buffer, error) {
	if off < 0 || n < 0 || off+n > b.n {
		return nil, fmt.Errorf("webgpu: view [%d:%d) out of range for %d elements: %w",
			off, off+n, b.n, primitive.ErrInvalidArgument)
	}
	byteOff := b.off + uint64(off*b.dtype.Size())
	if byteOff%storageAlign != 0 {
		return nil, fmt.Errorf("webgpu: view offset %d bytes is not %d-aligned: %w",
			byteOff, storageAlign, primitive.ErrInvalidArgument)
	}
	return &Buffer{
		buf:   b.buf,
		dtype: b.dtype,
		n:     n,
		off:   byteOff,
		size:  alignUp(uint64(n * b.dtype.Size())),
	}, nil
}

// alignUp rounds a byte size up to WebGPU's 4-byte copy granularity.
func alignUp(size uint64) uint64 {
	return (size + 3) &^ 3
}
