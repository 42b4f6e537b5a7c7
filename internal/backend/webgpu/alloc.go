package webgpu

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/slate-ml/slate/internal/primitive"
)

// Allocate creates a storage buffer for n elements of dtype. The physical
// size is padded to WebGPU's 4-byte granularity so odd-sized Float16 and
// Uint8 buffers stay copyable.
func (b *Backend) Allocate(dtype primitive.DataType, n int) (buf primitive.Buffer, err error) {
	if n < 0 {
		return nil, fmt.Errorf("webgpu: allocate %d elements: %w", n, primitive.ErrInvalidArgument)
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = classifyAllocFailure(fmt.Sprintf("%v", r))
		}
	}()

	size := alignUp(uint64(n * dtype.Size()))
	if size == 0 {
		size = 4
	}
	raw := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if raw == nil {
		return nil, fmt.Errorf("webgpu: allocate %d bytes: %w", size, primitive.ErrDeviceOutOfMemory)
	}

	atomic.AddInt64(&b.allocs, 1)
	atomic.AddInt64(&b.bytes, int64(size))
	return &Buffer{buf: raw, dtype: dtype, n: n, size: size}, nil
}

// classifyAllocFailure maps the runtime's failure message onto the error
// taxonomy: allocation exhaustion is recoverable, anything else is not.
func classifyAllocFailure(msg string) error {
	if strings.Contains(strings.ToLower(msg), "out of memory") {
		return fmt.Errorf("webgpu: %s: %w", msg, primitive.ErrDeviceOutOfMemory)
	}
	return fmt.Errorf("webgpu: %s: %w", msg, primitive.ErrDevice)
}

// Free releases a buffer's GPU storage. Freeing a view or an already
// freed handle is the caller's error, surfaced as ErrDevice.
func (b *Backend) Free(buf primitive.Buffer) error {
	gb, err := b.buffer(buf)
	if err != nil {
		return err
	}
	if gb.freed || gb.buf == nil {
		return fmt.Errorf("webgpu: free of already freed buffer: %w", primitive.ErrDevice)
	}
	gb.buf.Release()
	gb.buf = nil
	gb.freed = true
	atomic.AddInt64(&b.frees, 1)
	return nil
}

// allocator adapts the backend to the scratch.Allocator interface.
type allocator Backend

func (a *allocator) Allocate(dtype primitive.DataType, n int) (primitive.Buffer, error) {
	return (*Backend)(a).Allocate(dtype, n)
}

func (a *allocator) Free(buf primitive.Buffer) error {
	return (*Backend)(a).Free(buf)
}

// buffer asserts a caller-supplied handle to this backend's buffer type.
func (b *Backend) buffer(buf primitive.Buffer) (*Buffer, error) {
	gb, ok := buf.(*Buffer)
	if !ok {
		return nil, fmt.Errorf("webgpu: buffer resides on %s: %w", buf.Device(), primitive.ErrInvalidArgument)
	}
	return gb, nil
}

// operands validates device residency, element type agreement and capacity
// for n elements, before any command is encoded.
func (b *Backend) operands(op string, n int, bufs ...primitive.Buffer) ([]*Buffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("webgpu: %s: negative count %d: %w", op, n, primitive.ErrInvalidArgument)
	}
	out := make([]*Buffer, len(bufs))
	var dtype primitive.DataType
	for i, buf := range bufs {
		gb, err := b.buffer(buf)
		if err != nil {
			return nil, fmt.Errorf("webgpu: %s: operand %d: %w", op, i, err)
		}
		if gb.freed || gb.buf == nil {
			return nil, fmt.Errorf("webgpu: %s: operand %d already freed: %w", op, i, primitive.ErrDevice)
		}
		if gb.n < n {
			return nil, fmt.Errorf("webgpu: %s: operand %d holds %d elements, need %d: %w",
				op, i, gb.n, n, primitive.ErrInvalidArgument)
		}
		if i == 0 {
			dtype = gb.dtype
		} else if gb.dtype != dtype {
			return nil, fmt.Errorf("webgpu: %s: operand %d is %s, operand 0 is %s: %w",
				op, i, gb.dtype, dtype, primitive.ErrInvalidArgument)
		}
		out[i] = gb
	}
	return out, nil
}

// requireFloat32 enforces the GPU compute rule: arithmetic kernels are
// instantiated for f32 only, matching WGSL's native storage types.
func requireFloat32(op string, bufs ...*Buffer) error {
	for i, gb := range bufs {
		if gb.dtype != primitive.Float32 {
			return fmt.Errorf("webgpu: %s: operand %d is %s, only float32 is supported: %w",
				op, i, gb.dtype, primitive.ErrInvalidArgument)
		}
	}
	return nil
}
