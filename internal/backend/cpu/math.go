package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/slate-ml/slate/internal/parallel"
	"github.com/slate-ml/slate/internal/primitive"
)

// Unary floating-point transforms. float32 goes through math32 so the
// whole pass stays in single precision.

func (b *Backend) unary(op string, x, y primitive.Buffer, n int, f32 func(float32) float32, f64 func(float64) float64) error {
	ops, err := b.operands(op, n, x, y)
	if err != nil {
		return err
	}
	in, out := ops[0], ops[1]

	switch in.dtype {
	case primitive.Float32:
		unaryKernel(view[float32](out), view[float32](in), n, f32, b.cfg)
	case primitive.Float64:
		unaryKernel(view[float64](out), view[float64](in), n, f64, b.cfg)
	default:
		return fmt.Errorf("cpu: %s: defined over floating-point types only, got %s: %w",
			op, in.dtype, primitive.ErrInvalidArgument)
	}
	b.countOp()
	return nil
}

func unaryKernel[T primitive.Float](dst, src []T, n int, f func(T) T, cfg parallel.Config) {
	parallel.ForChunks(n, func(s, e int) {
		for i := s; i < e; i++ {
			dst[i] = f(src[i])
		}
	}, cfg)
}

// Exp computes y[i] = e^x[i].
func (b *Backend) Exp(x, y primitive.Buffer, n int) error {
	return b.unary("exp", x, y, n, math32.Exp, math.Exp)
}

// Pow computes y[i] = x[i]^p.
func (b *Backend) Pow(x, y primitive.Buffer, p float64, n int) error {
	p32 := float32(p)
	return b.unary("pow", x, y, n,
		func(v float32) float32 { return math32.Pow(v, p32) },
		func(v float64) float64 { return math.Pow(v, p) })
}

// Relu computes y[i] = max(x[i], 0).
func (b *Backend) Relu(x, y primitive.Buffer, n int) error {
	return b.unary("relu", x, y, n,
		func(v float32) float32 {
			if v < 0 {
				return 0
			}
			return v
		},
		func(v float64) float64 {
			if v < 0 {
				return 0
			}
			return v
		})
}
