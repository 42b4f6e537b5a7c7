package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/slate-ml/slate/internal/parallel"
	"github.com/slate-ml/slate/internal/primitive"
)

// scalarOf asserts an any-typed scalar to the element type, matching the
// exact-type contract of the interface.
func scalarOf[T primitive.DType](op string, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cpu: %s: scalar is %T, want %T: %w", op, v, zero, primitive.ErrInvalidArgument)
	}
	return t, nil
}

// Fill sets the first n elements of x to value.
func (b *Backend) Fill(x primitive.Buffer, value any, n int) error {
	ops, err := b.operands("fill", n, x)
	if err != nil {
		return err
	}
	cb := ops[0]

	switch cb.dtype {
	case primitive.Float16:
		v, err := scalarOf[float32]("fill", value)
		if err != nil {
			return err
		}
		fillKernel(bits16(cb), float16.Fromfloat32(v).Bits(), n, b.cfg)
	case primitive.Float32:
		if err := fillTyped[float32](b, cb, value, n); err != nil {
			return err
		}
	case primitive.Float64:
		if err := fillTyped[float64](b, cb, value, n); err != nil {
			return err
		}
	case primitive.Int32:
		if err := fillTyped[int32](b, cb, value, n); err != nil {
			return err
		}
	case primitive.Int64:
		if err := fillTyped[int64](b, cb, value, n); err != nil {
			return err
		}
	case primitive.Uint8:
		if err := fillTyped[uint8](b, cb, value, n); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cpu: fill: unsupported dtype %s: %w", cb.dtype, primitive.ErrInvalidArgument)
	}
	b.countOp()
	return nil
}

func fillTyped[T primitive.DType](b *Backend, cb *Buffer, value any, n int) error {
	v, err := scalarOf[T]("fill", value)
	if err != nil {
		return err
	}
	fillKernel(view[T](cb), v, n, b.cfg)
	return nil
}

// element widens the public DType constraint with uint16 so byte-exact
// kernels can run over Float16 bit patterns.
type element interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~uint16
}

func fillKernel[T element](dst []T, v T, n int, cfg parallel.Config) {
	parallel.ForChunks(n, func(s, e int) {
		for i := s; i < e; i++ {
			dst[i] = v
		}
	}, cfg)
}

// Copy copies n elements device-to-device. Byte-wise, so every dtype
// including Float16 is supported.
func (b *Backend) Copy(x, y primitive.Buffer, n int) error {
	ops, err := b.operands("copy", n, x, y)
	if err != nil {
		return err
	}
	nbytes := n * ops[0].dtype.Size()
	copy(ops[1].data[:nbytes], ops[0].data[:nbytes])
	b.countOp()
	return nil
}

// Elementwise binary arithmetic. One generic kernel per operator keeps the
// per-type fan-out to a single dispatch switch.

func addKernel[T primitive.DType](c, a, b []T, n int, cfg parallel.Config) {
	parallel.ForChunks(n, func(s, e int) {
		for i := s; i < e; i++ {
			c[i] = a[i] + b[i]
		}
	}, cfg)
}

func subKernel[T primitive.DType](c, a, b []T, n int, cfg parallel.Config) {
	parallel.ForChunks(n, func(s, e int) {
		for i := s; i < e; i++ {
			c[i] = a[i] - b[i]
		}
	}, cfg)
}

func mulKernel[T primitive.DType](c, a, b []T, n int, cfg parallel.Config) {
	parallel.ForChunks(n, func(s, e int) {
		for i := s; i < e; i++ {
			c[i] = a[i] * b[i]
		}
	}, cfg)
}

func (b *Backend) binary(op string, kind rune, x, y, z primitive.Buffer, n int) error {
	ops, err := b.operands(op, n, x, y, z)
	if err != nil {
		return err
	}
	a, bb, c := ops[0], ops[1], ops[2]

	switch a.dtype {
	case primitive.Float32:
		binaryTyped[float32](kind, c, a, bb, n, b.cfg)
	case primitive.Float64:
		binaryTyped[float64](kind, c, a, bb, n, b.cfg)
	case primitive.Int32:
		binaryTyped[int32](kind, c, a, bb, n, b.cfg)
	case primitive.Int64:
		binaryTyped[int64](kind, c, a, bb, n, b.cfg)
	case primitive.Uint8:
		binaryTyped[uint8](kind, c, a, bb, n, b.cfg)
	default:
		return fmt.Errorf("cpu: %s: unsupported dtype %s: %w", op, a.dtype, primitive.ErrInvalidArgument)
	}
	b.countOp()
	return nil
}

func binaryTyped[T primitive.DType](kind rune, c, a, b *Buffer, n int, cfg parallel.Config) {
	cv, av, bv := view[T](c), view[T](a), view[T](b)
	switch kind {
	case '+':
		addKernel(cv, av, bv, n, cfg)
	case '-':
		subKernel(cv, av, bv, n, cfg)
	case '*':
		mulKernel(cv, av, bv, n, cfg)
	}
}

// Add computes c[i] = a[i] + b[i].
func (b *Backend) Add(a, x, c primitive.Buffer, n int) error {
	return b.binary("add", '+', a, x, c, n)
}

// Sub computes c[i] = a[i] - b[i].
func (b *Backend) Sub(a, x, c primitive.Buffer, n int) error {
	return b.binary("sub", '-', a, x, c, n)
}

// Mul computes c[i] = a[i] * b[i].
func (b *Backend) Mul(a, x, c primitive.Buffer, n int) error {
	return b.binary("mul", '*', a, x, c, n)
}

func (b *Backend) scalarBroadcast(op string, kind rune, v any, x, y primitive.Buffer, n int) error {
	ops, err := b.operands(op, n, x, y)
	if err != nil {
		return err
	}
	in, out := ops[0], ops[1]

	switch in.dtype {
	case primitive.Float32:
		err = scalarTyped[float32](op, kind, v, in, out, n, b.cfg)
	case primitive.Float64:
		err = scalarTyped[float64](op, kind, v, in, out, n, b.cfg)
	case primitive.Int32:
		err = scalarTyped[int32](op, kind, v, in, out, n, b.cfg)
	case primitive.Int64:
		err = scalarTyped[int64](op, kind, v, in, out, n, b.cfg)
	case primitive.Uint8:
		err = scalarTyped[uint8](op, kind, v, in, out, n, b.cfg)
	default:
		return fmt.Errorf("cpu: %s: unsupported dtype %s: %w", op, in.dtype, primitive.ErrInvalidArgument)
	}
	if err != nil {
		return err
	}
	b.countOp()
	return nil
}

func scalarTyped[T primitive.DType](op string, kind rune, v any, in, out *Buffer, n int, cfg parallel.Config) error {
	s, err := scalarOf[T](op, v)
	if err != nil {
		return err
	}
	x, y := view[T](in), view[T](out)
	switch kind {
	case '+':
		parallel.ForChunks(n, func(st, e int) {
			for i := st; i < e; i++ {
				y[i] = s + x[i]
			}
		}, cfg)
	case '*':
		parallel.ForChunks(n, func(st, e int) {
			for i := st; i < e; i++ {
				y[i] = s * x[i]
			}
		}, cfg)
	}
	return nil
}

// AddScalar computes y[i] = v + x[i].
func (b *Backend) AddScalar(v any, x, y primitive.Buffer, n int) error {
	return b.scalarBroadcast("add_scalar", '+', v, x, y, n)
}

// MulScalar computes y[i] = v * x[i].
func (b *Backend) MulScalar(v any, x, y primitive.Buffer, n int) error {
	return b.scalarBroadcast("mul_scalar", '*', v, x, y, n)
}
