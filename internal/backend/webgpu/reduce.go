package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/slate-ml/slate/internal/primitive"
)

// reduceWord runs a single-workgroup reduction shader over the first n
// elements of x and reads the one-word result back. The readback is the
// synchronization point, so reductions are synchronous by construction.
func (b *Backend) reduceWord(op, code string, x primitive.Buffer, n int, outDType primitive.DataType) (uint32, error) {
	bufs, err := b.operands(op, n, x)
	if err != nil {
		return 0, err
	}
	if err := requireFloat32(op, bufs...); err != nil {
		return 0, err
	}

	out, err := b.scratch.Get("reduce-out", outDType, 1)
	if err != nil {
		return 0, err
	}
	gout := out.(*Buffer)

	if err := b.dispatch(op, code, 1, 1, 1, params(uint32(n)),
		binding{buf: bufs[0]}, binding{buf: gout}); err != nil {
		return 0, err
	}
	raw, err := b.readBuffer(gout, 4)
	if err != nil {
		return 0, err
	}
	b.countOp()
	return binary.LittleEndian.Uint32(raw), nil
}

// Sum returns the sum of the first n elements. An empty range sums to the
// additive identity without touching the device.
func (b *Backend) Sum(x primitive.Buffer, n int) (any, error) {
	if n == 0 {
		if _, err := b.operands("sum", 0, x); err != nil {
			return nil, err
		}
		b.countOp()
		return float32(0), nil
	}
	word, err := b.reduceWord("sum", sumShader, x, n, primitive.Float32)
	if err != nil {
		return nil, err
	}
	return math.Float32frombits(word), nil
}

// Max returns the maximum of the first n elements; n must be positive.
func (b *Backend) Max(x primitive.Buffer, n int) (any, error) {
	if n == 0 {
		return nil, fmt.Errorf("webgpu: max of zero elements: %w", primitive.ErrInvalidArgument)
	}
	word, err := b.reduceWord("max", maxShader, x, n, primitive.Float32)
	if err != nil {
		return nil, err
	}
	return math.Float32frombits(word), nil
}

// MaxElement returns the index of the first occurrence of the maximum.
// The kernel resolves ties toward the smaller index at every combine, so
// the result matches a left-to-right scan.
func (b *Backend) MaxElement(x primitive.Buffer, n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("webgpu: max_element of zero elements: %w", primitive.ErrInvalidArgument)
	}
	word, err := b.reduceWord("argmax", argmaxShader, x, n, primitive.Int32)
	if err != nil {
		return 0, err
	}
	if word == 0xffffffff {
		return 0, fmt.Errorf("webgpu: max_element produced no candidate: %w", primitive.ErrDevice)
	}
	return int(word), nil
}
