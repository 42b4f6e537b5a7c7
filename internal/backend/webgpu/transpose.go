package webgpu

import (
	"fmt"

	"github.com/slate-ml/slate/internal/permute"
	"github.com/slate-ml/slate/internal/primitive"
)

// transposeParams packs a permutation descriptor into the fixed uniform
// layout the shader expects: size, rank, two pad words, then dims and
// strides as vec4s. Unused lanes are benign; the shader loop stops at rank.
func transposeParams(d permute.Descriptor) []byte {
	words := make([]uint32, 16)
	words[0] = uint32(d.NumElements())
	words[1] = uint32(len(d.OutDims))
	for j := range d.OutDims {
		words[4+j] = uint32(d.OutDims[j])
		words[8+j] = uint32(d.SrcStrides[j])
		words[12+j] = uint32(d.OutStrides[j])
	}
	for j := len(d.OutDims); j < 4; j++ {
		words[4+j] = 1
		words[12+j] = 1
	}
	return params(words...)
}

// transpose dispatches the index-remap shader over output positions. The
// kernel moves u32 words, so only 4-byte element types are supported on
// this device.
func (b *Backend) transpose(x primitive.Buffer, dims, perm []int, y primitive.Buffer) error {
	d, err := permute.New(dims, perm)
	if err != nil {
		return fmt.Errorf("webgpu: transpose: %w: %w", err, primitive.ErrInvalidArgument)
	}
	n := d.NumElements()
	bufs, err := b.operands("transpose", n, x, y)
	if err != nil {
		return err
	}
	if bufs[0].dtype.Size() != 4 {
		return fmt.Errorf("webgpu: transpose: element type %s is not word-sized: %w",
			bufs[0].dtype, primitive.ErrInvalidArgument)
	}
	if n == 0 {
		b.countOp()
		return nil
	}
	if err := b.dispatch("transpose", transposeShader, workgroups(n), 1, 1,
		transposeParams(d), binding{buf: bufs[0]}, binding{buf: bufs[1]}); err != nil {
		return err
	}
	b.countOp()
	return nil
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
