package webgpu

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/slate-ml/slate/internal/primitive"
)

// scalarOf asserts value to the exact Go type the buffer's dtype stores.
func scalarOf[T any](op string, value any) (T, error) {
	v, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("webgpu: %s: value is %T, want %T: %w",
			op, value, zero, primitive.ErrInvalidArgument)
	}
	return v, nil
}

// fillWords resolves the u32 word count covering n elements of gb. For
// sub-word element types a partial fill must stop on a word boundary
// unless it covers the whole buffer, where the tail is physical padding.
func fillWords(op string, gb *Buffer, n int) (uint32, error) {
	bytes := n * gb.dtype.Size()
	if bytes%4 != 0 && n != gb.n {
		return 0, fmt.Errorf("webgpu: %s: partial %s fill of %d elements does not end on a word boundary: %w",
			op, gb.dtype, n, primitive.ErrInvalidArgument)
	}
	return uint32(alignUp(uint64(bytes)) / 4), nil
}

// Fill sets the first n elements of x to value. Word-sized and sub-word
// element types go through the u32 pattern shader; 8-byte types use a
// two-word variant.
func (b *Backend) Fill(x primitive.Buffer, value any, n int) error {
	bufs, err := b.operands("fill", n, x)
	if err != nil {
		return err
	}
	gb := bufs[0]
	if n == 0 {
		b.countOp()
		return nil
	}

	var pattern uint32
	switch gb.dtype {
	case primitive.Float32:
		v, err := scalarOf[float32]("fill", value)
		if err != nil {
			return err
		}
		pattern = math.Float32bits(v)
	case primitive.Int32:
		v, err := scalarOf[int32]("fill", value)
		if err != nil {
			return err
		}
		pattern = uint32(v)
	case primitive.Float16:
		v, err := scalarOf[float32]("fill", value)
		if err != nil {
			return err
		}
		bits := uint32(float16.Fromfloat32(v).Bits())
		pattern = bits<<16 | bits
	case primitive.Uint8:
		v, err := scalarOf[uint8]("fill", value)
		if err != nil {
			return err
		}
		w := uint32(v)
		pattern = w<<24 | w<<16 | w<<8 | w
	case primitive.Float64:
		v, err := scalarOf[float64]("fill", value)
		if err != nil {
			return err
		}
		bits := math.Float64bits(v)
		return b.fill64(gb, uint32(bits), uint32(bits>>32), n)
	case primitive.Int64:
		v, err := scalarOf[int64]("fill", value)
		if err != nil {
			return err
		}
		bits := uint64(v)
		return b.fill64(gb, uint32(bits), uint32(bits>>32), n)
	default:
		return fmt.Errorf("webgpu: fill: unsupported element type %s: %w", gb.dtype, primitive.ErrInvalidArgument)
	}

	words, err := fillWords("fill", gb, n)
	if err != nil {
		return err
	}
	if err := b.dispatch("fill", fillShader, workgroups(int(words)), 1, 1,
		params(words, pattern), binding{buf: gb}); err != nil {
		return err
	}
	b.countOp()
	return nil
}

func (b *Backend) fill64(gb *Buffer, lo, hi uint32, n int) error {
	if err := b.dispatch("fill64", fill64Shader, workgroups(n), 1, 1,
		params(uint32(n), lo, hi), binding{buf: gb}); err != nil {
		return err
	}
	b.countOp()
	return nil
}

// Copy copies n elements device-to-device through the transfer queue; no
// shader is involved.
func (b *Backend) Copy(x, y primitive.Buffer, n int) error {
	bufs, err := b.operands("copy", n, x, y)
	if err != nil {
		return err
	}
	src, dst := bufs[0], bufs[1]
	if n == 0 {
		b.countOp()
		return nil
	}

	bytes := uint64(n * src.dtype.Size())
	if bytes%4 != 0 {
		// Copying into the padding word is safe only when it belongs to
		// both buffers, i.e. the copy spans them entirely.
		if n != src.n || n != dst.n {
			return fmt.Errorf("webgpu: copy: partial %s copy of %d elements does not end on a word boundary: %w",
				src.dtype, n, primitive.ErrInvalidArgument)
		}
		bytes = alignUp(bytes)
	}

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src.buf, src.off, dst.buf, dst.off, bytes)
	b.queueCommand(encoder.Finish(nil))
	b.countOp()
	return nil
}

// binary dispatches one of the c = a (op) b shaders.
func (b *Backend) binary(op, code string, a, bb, c primitive.Buffer, n int) error {
	bufs, err := b.operands(op, n, a, bb, c)
	if err != nil {
		return err
	}
	if err := requireFloat32(op, bufs...); err != nil {
		return err
	}
	if n == 0 {
		b.countOp()
		return nil
	}
	if err := b.dispatch(op, code, workgroups(n), 1, 1, params(uint32(n)),
		binding{buf: bufs[0]}, binding{buf: bufs[1]}, binding{buf: bufs[2]}); err != nil {
		return err
	}
	b.countOp()
	return nil
}

// Add computes c[i] = a[i] + b[i].
func (b *Backend) Add(a, bb, c primitive.Buffer, n int) error {
	return b.binary("add", addShader, a, bb, c, n)
}

// Sub computes c[i] = a[i] - b[i].
func (b *Backend) Sub(a, bb, c primitive.Buffer, n int) error {
	return b.binary("sub", subShader, a, bb, c, n)
}

// Mul computes c[i] = a[i] * b[i].
func (b *Backend) Mul(a, bb, c primitive.Buffer, n int) error {
	return b.binary("mul", mulShader, a, bb, c, n)
}

// scalarBroadcast dispatches one of the y = v (op) x shaders.
func (b *Backend) scalarBroadcast(op, code string, value any, x, y primitive.Buffer, n int) error {
	bufs, err := b.operands(op, n, x, y)
	if err != nil {
		return err
	}
	if err := requireFloat32(op, bufs...); err != nil {
		return err
	}
	v, err := scalarOf[float32](op, value)
	if err != nil {
		return err
	}
	if n == 0 {
		b.countOp()
		return nil
	}
	if err := b.dispatch(op, code, workgroups(n), 1, 1,
		params(uint32(n), math.Float32bits(v)),
		binding{buf: bufs[0]}, binding{buf: bufs[1]}); err != nil {
		return err
	}
	b.countOp()
	return nil
}

// AddScalar computes y[i] = v + x[i].
func (b *Backend) AddScalar(v any, x, y primitive.Buffer, n int) error {
	return b.scalarBroadcast("add_scalar", addScalarShader, v, x, y, n)
}

// MulScalar computes y[i] = v * x[i].
func (b *Backend) MulScalar(v any, x, y primitive.Buffer, n int) error {
	return b.scalarBroadcast("mul_scalar", mulScalarShader, v, x, y, n)
}
