package cpu

import (
	"fmt"

	"github.com/slate-ml/slate/internal/parallel"
	"github.com/slate-ml/slate/internal/permute"
	"github.com/slate-ml/slate/internal/primitive"
)

// transpose runs the permutation as one parallel pass over output indices:
// each output element computes its source index from the descriptor, so
// the rank never shows up as loop nesting.
func (b *Backend) transpose(x primitive.Buffer, dims, perm []int, y primitive.Buffer) error {
	d, err := permute.New(dims, perm)
	if err != nil {
		return fmt.Errorf("cpu: transpose: %w: %w", err, primitive.ErrInvalidArgument)
	}
	n := d.NumElements()
	ops, err := b.operands("transpose", n, x, y)
	if err != nil {
		return err
	}
	in, out := ops[0], ops[1]

	switch in.dtype {
	case primitive.Float16:
		transposeKernel(d, bits16(in), bits16(out), b.cfg)
	case primitive.Float32:
		transposeKernel(d, view[float32](in), view[float32](out), b.cfg)
	case primitive.Float64:
		transposeKernel(d, view[float64](in), view[float64](out), b.cfg)
	case primitive.Int32:
		transposeKernel(d, view[int32](in), view[int32](out), b.cfg)
	case primitive.Int64:
		transposeKernel(d, view[int64](in), view[int64](out), b.cfg)
	case primitive.Uint8:
		transposeKernel(d, view[uint8](in), view[uint8](out), b.cfg)
	}
	b.countOp()
	return nil
}

func transposeKernel[T element](d permute.Descriptor, src, dst []T, cfg parallel.Config) {
	parallel.For(d.NumElements(), func(i int) {
		dst[i] = src[d.SourceIndex(i)]
	}, cfg)
}

// Transpose2D writes into y the dims[0] x dims[1] matrix x with axes
// swapped.
func (b *Backend) Transpose2D(x primitive.Buffer, dims [2]int, y primitive.Buffer) error {
	return b.transpose(x, dims[:], []int{1, 0}, y)
}

// Transpose3D writes into y the tensor x with source axis perm[i] becoming
// output axis i.
func (b *Backend) Transpose3D(x primitive.Buffer, dims, perm [3]int, y primitive.Buffer) error {
	return b.transpose(x, dims[:], perm[:], y)
}

// Transpose4D is Transpose3D for rank 4.
func (b *Backend) Transpose4D(x primitive.Buffer, dims, perm [4]int, y primitive.Buffer) error {
	return b.transpose(x, dims[:], perm[:], y)
}
