package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/x448/float16"

	"github.com/slate-ml/slate/internal/primitive"
)

// Host transfers ride staging buffers: uploads copy through a CopySrc
// buffer on the pending queue, downloads map a MapRead buffer and are
// synchronous like the contract requires.
//
// Float16 buffers accept []float32 hosts (converted element by element)
// or []uint16 hosts (raw bit patterns).

// sliceBytes reinterprets the first n elements of a host slice as raw
// bytes. WebGPU buffer layouts match host memory, so no swizzling happens.
func sliceBytes[T any](h []T, n int) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&h[0])), n*int(unsafe.Sizeof(h[0])))
}

// upload stages data and enqueues the copy into gb. A byte count off the
// word boundary is allowed only when it covers gb entirely; the rounded-up
// tail then lands in the buffer's physical padding.
func (b *Backend) upload(op string, gb *Buffer, data []byte, n int) error {
	size := uint64(len(data))
	if size%4 != 0 && n != gb.n {
		return fmt.Errorf("webgpu: %s: partial %s transfer of %d elements does not end on a word boundary: %w",
			op, gb.dtype, n, primitive.ErrInvalidArgument)
	}
	staging := b.stagingUpload(data)
	defer staging.Release()
	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, gb.buf, gb.off, alignUp(size))
	b.queueCommand(encoder.Finish(nil))
	return nil
}

// CopyToDevice transfers n elements from the host slice into x.
func (b *Backend) CopyToDevice(host any, x primitive.Buffer, n int) error {
	ops, err := b.operands("copy_to_device", n, x)
	if err != nil {
		return err
	}
	gb := ops[0]

	var data []byte
	switch h := host.(type) {
	case []float32:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if gb.dtype == primitive.Float16 {
			bits := make([]uint16, n)
			for i := 0; i < n; i++ {
				bits[i] = float16.Fromfloat32(h[i]).Bits()
			}
			data = sliceBytes(bits, n)
			break
		}
		if err := requireDType(gb, primitive.Float32, "copy_to_device"); err != nil {
			return err
		}
		data = sliceBytes(h, n)
	case []float64:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(gb, primitive.Float64, "copy_to_device"); err != nil {
			return err
		}
		data = sliceBytes(h, n)
	case []int32:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(gb, primitive.Int32, "copy_to_device"); err != nil {
			return err
		}
		data = sliceBytes(h, n)
	case []int64:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(gb, primitive.Int64, "copy_to_device"); err != nil {
			return err
		}
		data = sliceBytes(h, n)
	case []uint8:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(gb, primitive.Uint8, "copy_to_device"); err != nil {
			return err
		}
		data = sliceBytes(h, n)
	case []uint16:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(gb, primitive.Float16, "copy_to_device"); err != nil {
			return err
		}
		data = sliceBytes(h, n)
	default:
		return fmt.Errorf("webgpu: copy_to_device: unsupported host slice %T: %w", host, primitive.ErrInvalidArgument)
	}

	if n > 0 {
		if err := b.upload("copy_to_device", gb, data, n); err != nil {
			return err
		}
	}
	b.countOp()
	return nil
}

// CopyToHost transfers n elements from x into the host slice. The mapped
// readback makes this a synchronization point for everything enqueued
// before it.
func (b *Backend) CopyToHost(x primitive.Buffer, host any, n int) error {
	ops, err := b.operands("copy_to_host", n, x)
	if err != nil {
		return err
	}
	gb := ops[0]

	download := func(dst []byte) error {
		if n == 0 {
			return nil
		}
		raw, err := b.readBuffer(gb, uint64(len(dst)))
		if err != nil {
			return err
		}
		copy(dst, raw)
		return nil
	}

	switch h := host.(type) {
	case []float32:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if gb.dtype == primitive.Float16 {
			if n > 0 {
				raw, err := b.readBuffer(gb, uint64(2*n))
				if err != nil {
					return err
				}
				for i := 0; i < n; i++ {
					h[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:])).Float32()
				}
			}
			break
		}
		if err := requireDType(gb, primitive.Float32, "copy_to_host"); err != nil {
			return err
		}
		if err := download(sliceBytes(h, n)); err != nil {
			return err
		}
	case []float64:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(gb, primitive.Float64, "copy_to_host"); err != nil {
			return err
		}
		if err := download(sliceBytes(h, n)); err != nil {
			return err
		}
	case []int32:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(gb, primitive.Int32, "copy_to_host"); err != nil {
			return err
		}
		if err := download(sliceBytes(h, n)); err != nil {
			return err
		}
	case []int64:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(gb, primitive.Int64, "copy_to_host"); err != nil {
			return err
		}
		if err := download(sliceBytes(h, n)); err != nil {
			return err
		}
	case []uint8:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(gb, primitive.Uint8, "copy_to_host"); err != nil {
			return err
		}
		if err := download(sliceBytes(h, n)); err != nil {
			return err
		}
	case []uint16:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(gb, primitive.Float16, "copy_to_host"); err != nil {
			return err
		}
		if err := download(sliceBytes(h, n)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("webgpu: copy_to_host: unsupported host slice %T: %w", host, primitive.ErrInvalidArgument)
	}
	b.countOp()
	return nil
}

func (b *Backend) hostTooShort(op string, have, need int) error {
	return fmt.Errorf("webgpu: %s: host slice holds %d elements, need %d: %w", op, have, need, primitive.ErrInvalidArgument)
}

func requireDType(gb *Buffer, want primitive.DataType, op string) error {
	if gb.dtype != want {
		return fmt.Errorf("webgpu: %s: buffer is %s, host slice implies %s: %w", op, gb.dtype, want, primitive.ErrInvalidArgument)
	}
	return nil
}
