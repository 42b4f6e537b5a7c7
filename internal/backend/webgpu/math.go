package webgpu

import (
	"math"

	"github.com/slate-ml/slate/internal/primitive"
)

// unary dispatches one of the y = f(x) shaders, with optional extra
// uniform words after the element count.
func (b *Backend) unary(op, code string, x, y primitive.Buffer, n int, extra ...uint32) error {
	bufs, err := b.operands(op, n, x, y)
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
	words := append([]uint32{uint32(n)}, extra...)
	if err := b.dispatch(op, code, workgroups(n), 1, 1, params(words...),
		binding{buf: bufs[0]}, binding{buf: bufs[1]}); err != nil {
		return err
	}
	b.countOp()
	return nil
}

// Exp computes y[i] = e^x[i].
func (b *Backend) Exp(x, y primitive.Buffer, n int) error {
	return b.unary("exp", expShader, x, y, n)
}

// Pow computes y[i] = x[i]^p. The exponent narrows to f32, the kernel's
// arithmetic width.
func (b *Backend) Pow(x, y primitive.Buffer, p float64, n int) error {
	return b.unary("pow", powShader, x, y, n, math.Float32bits(float32(p)))
}

// Relu computes y[i] = max(x[i], 0).
func (b *Backend) Relu(x, y primitive.Buffer, n int) error {
	return b.unary("relu", reluShader, x, y, n)
}
