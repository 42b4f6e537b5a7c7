// Package permute turns an axis reordering into per-element index
// arithmetic, so an N-dimensional transpose runs as a single parallel pass
// over the output instead of N nested loops.
package permute

import "fmt"

// Descriptor holds the stride bookkeeping for one transpose. For every
// linear output index i, decomposing i with OutStrides yields the output
// coordinates; recombining them with SrcStrides yields the linear input
// index. Derived from (dims, perm), never stored across calls.
type Descriptor struct {
	// OutDims is the permuted shape: OutDims[i] = dims[perm[i]].
	OutDims []int

	// OutStrides are row-major strides over OutDims.
	OutStrides []int

	// SrcStrides[i] is the row-major stride of source axis perm[i] in the
	// original shape.
	SrcStrides []int
}

// Strides returns row-major strides for dims: the innermost axis has
// stride 1 and each axis's stride is the product of the dims after it.
func Strides(dims []int) []int {
	s := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= dims[i]
	}
	return s
}

// New builds the descriptor for transposing a tensor of shape dims so that
// source axis perm[i] becomes output axis i.
func New(dims, perm []int) (Descriptor, error) {
	if len(dims) != len(perm) {
		return Descriptor{}, fmt.Errorf("permute: rank mismatch: %d dims, %d perm entries", len(dims), len(perm))
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return Descriptor{}, fmt.Errorf("permute: %v is not a permutation of 0..%d", perm, len(perm)-1)
		}
		seen[p] = true
	}

	src := Strides(dims)
	d := Descriptor{
		OutDims:    make([]int, len(dims)),
		SrcStrides: make([]int, len(dims)),
	}
	for i, p := range perm {
		d.OutDims[i] = dims[p]
		d.SrcStrides[i] = src[p]
	}
	d.OutStrides = Strides(d.OutDims)
	return d, nil
}

// NumElements returns the total element count of the output.
func (d Descriptor) NumElements() int {
	n := 1
	for _, dim := range d.OutDims {
		n *= dim
	}
	return n
}

// SourceIndex maps a linear output index to the corresponding linear input
// index. Each output coordinate is recovered by divide/modulo against the
// output strides and immediately folded into the source index; the terms
// are summed axis by axis, so no expansion of the closed form can pick up
// a precedence mistake.
func (d Descriptor) SourceIndex(i int) int {
	src := 0
	for j := range d.OutDims {
		coord := (i / d.OutStrides[j]) % d.OutDims[j]
		src += coord * d.SrcStrides[j]
	}
	return src
}

// Inverse returns the permutation that undoes perm: applying a transpose
// with perm and then with Inverse(perm) restores the original layout.
func Inverse(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

// Apply runs the full remap on host slices: out[i] = in[SourceIndex(i)].
// Backends that keep data host-visible use it directly; device backends
// reproduce the same arithmetic in their kernels.
func Apply[T any](d Descriptor, in, out []T) {
	n := d.NumElements()
	for i := 0; i < n; i++ {
		out[i] = in[d.SourceIndex(i)]
	}
}
