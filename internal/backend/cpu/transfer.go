package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/slate-ml/slate/internal/primitive"
)

// Host transfers. On the CPU reference backend these are plain copies,
// kept synchronous like the accelerator path: when the call returns the
// host slice is free for reuse.
//
// Float16 buffers accept []float32 hosts (converted element by element)
// or []uint16 hosts (raw bit patterns).

func hostToBytes[T primitive.DType](host []T, cb *Buffer, n int) {
	copy(view[T](cb)[:n], host[:n])
}

func bytesToHost[T primitive.DType](cb *Buffer, host []T, n int) {
	copy(host[:n], view[T](cb)[:n])
}

// CopyToDevice transfers n elements from the host slice into x.
func (b *Backend) CopyToDevice(host any, x primitive.Buffer, n int) error {
	ops, err := b.operands("copy_to_device", n, x)
	if err != nil {
		return err
	}
	cb := ops[0]

	switch h := host.(type) {
	case []float32:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if cb.dtype == primitive.Float16 {
			dst := bits16(cb)
			for i := 0; i < n; i++ {
				dst[i] = float16.Fromfloat32(h[i]).Bits()
			}
			break
		}
		if err := requireDType(cb, primitive.Float32, "copy_to_device"); err != nil {
			return err
		}
		hostToBytes(h, cb, n)
	case []float64:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(cb, primitive.Float64, "copy_to_device"); err != nil {
			return err
		}
		hostToBytes(h, cb, n)
	case []int32:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(cb, primitive.Int32, "copy_to_device"); err != nil {
			return err
		}
		hostToBytes(h, cb, n)
	case []int64:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(cb, primitive.Int64, "copy_to_device"); err != nil {
			return err
		}
		hostToBytes(h, cb, n)
	case []uint8:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(cb, primitive.Uint8, "copy_to_device"); err != nil {
			return err
		}
		hostToBytes(h, cb, n)
	case []uint16:
		if len(h) < n {
			return b.hostTooShort("copy_to_device", len(h), n)
		}
		if err := requireDType(cb, primitive.Float16, "copy_to_device"); err != nil {
			return err
		}
		copy(bits16(cb)[:n], h[:n])
	default:
		return fmt.Errorf("cpu: copy_to_device: unsupported host slice %T: %w", host, primitive.ErrInvalidArgument)
	}
	b.countOp()
	return nil
}

// CopyToHost transfers n elements from x into the host slice.
func (b *Backend) CopyToHost(x primitive.Buffer, host any, n int) error {
	ops, err := b.operands("copy_to_host", n, x)
	if err != nil {
		return err
	}
	cb := ops[0]

	switch h := host.(type) {
	case []float32:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if cb.dtype == primitive.Float16 {
			src := bits16(cb)
			for i := 0; i < n; i++ {
				h[i] = float16.Frombits(src[i]).Float32()
			}
			break
		}
		if err := requireDType(cb, primitive.Float32, "copy_to_host"); err != nil {
			return err
		}
		bytesToHost(cb, h, n)
	case []float64:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(cb, primitive.Float64, "copy_to_host"); err != nil {
			return err
		}
		bytesToHost(cb, h, n)
	case []int32:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(cb, primitive.Int32, "copy_to_host"); err != nil {
			return err
		}
		bytesToHost(cb, h, n)
	case []int64:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(cb, primitive.Int64, "copy_to_host"); err != nil {
			return err
		}
		bytesToHost(cb, h, n)
	case []uint8:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(cb, primitive.Uint8, "copy_to_host"); err != nil {
			return err
		}
		bytesToHost(cb, h, n)
	case []uint16:
		if len(h) < n {
			return b.hostTooShort("copy_to_host", len(h), n)
		}
		if err := requireDType(cb, primitive.Float16, "copy_to_host"); err != nil {
			return err
		}
		copy(h[:n], bits16(cb)[:n])
	default:
		return fmt.Errorf("cpu: copy_to_host: unsupported host slice %T: %w", host, primitive.ErrInvalidArgument)
	}
	b.countOp()
	return nil
}

func (b *Backend) hostTooShort(op string, have, need int) error {
	return fmt.Errorf("cpu: %s: host slice holds %d elements, need %d: %w", op, have, need, primitive.ErrInvalidArgument)
}

func requireDType(cb *Buffer, want primitive.DataType, op string) error {
	if cb.dtype != want {
		return fmt.Errorf("cpu: %s: buffer is %s, host slice implies %s: %w", op, cb.dtype, want, primitive.ErrInvalidArgument)
	}
	return nil
}
