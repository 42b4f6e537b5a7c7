package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/primitive"
)

func TestTranspose2D(t *testing.T) {
	b := New()
	defer b.Close()

	x := alloc32(t, b, []float32{
		1, 2, 3,
		4, 5, 6,
	})
	y, err := b.Allocate(primitive.Float32, 6)
	require.NoError(t, err)

	require.NoError(t, b.Transpose2D(x, [2]int{2, 3}, y))
	require.Equal(t, []float32{
		1, 4,
		2, 5,
		3, 6,
	}, read32(t, b, y, 6))
}

func TestTranspose2D_Involution(t *testing.T) {
	b := New()
	defer b.Close()

	in := make([]float32, 12)
	for i := range in {
		in[i] = float32(i)
	}
	x := alloc32(t, b, in)
	y, err := b.Allocate(primitive.Float32, 12)
	require.NoError(t, err)
	z, err := b.Allocate(primitive.Float32, 12)
	require.NoError(t, err)

	require.NoError(t, b.Transpose2D(x, [2]int{3, 4}, y))
	require.NoError(t, b.Transpose2D(y, [2]int{4, 3}, z))
	require.Equal(t, in, read32(t, b, z, 12))
}

func TestTranspose3D(t *testing.T) {
	b := New()
	defer b.Close()

	// Shape (2, 3, 4), perm {1, 2, 0}: out[b][c][a] = in[a][b][c].
	dims := [3]int{2, 3, 4}
	perm := [3]int{1, 2, 0}
	n := 24
	in := make([]float32, n)
	for i := range in {
		in[i] = float32(i)
	}
	x := alloc32(t, b, in)
	y, err := b.Allocate(primitive.Float32, n)
	require.NoError(t, err)

	require.NoError(t, b.Transpose3D(x, dims, perm, y))
	out := read32(t, b, y, n)
	for a := 0; a < 2; a++ {
		for c := 0; c < 3; c++ {
			for d := 0; d < 4; d++ {
				src := a*12 + c*4 + d
				dst := c*(4*2) + d*2 + a
				require.Equal(t, in[src], out[dst], "a=%d c=%d d=%d", a, c, d)
			}
		}
	}
}

func TestTranspose4D_RoundTrip(t *testing.T) {
	b := New()
	defer b.Close()

	dims := [4]int{2, 3, 4, 5}
	perm := [4]int{3, 1, 0, 2}
	inv := [4]int{2, 1, 3, 0} // inverse of perm
	outDims := [4]int{5, 3, 2, 4}

	n := 2 * 3 * 4 * 5
	in := make([]float32, n)
	for i := range in {
		in[i] = float32(i) * 0.25
	}
	x := alloc32(t, b, in)
	y, err := b.Allocate(primitive.Float32, n)
	require.NoError(t, err)
	z, err := b.Allocate(primitive.Float32, n)
	require.NoError(t, err)

	require.NoError(t, b.Transpose4D(x, dims, perm, y))
	require.NoError(t, b.Transpose4D(y, outDims, inv, z))
	require.Equal(t, in, read32(t, b, z, n))
}

func TestTranspose_Int64(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Int64, 4)
	require.NoError(t, err)
	y, err := b.Allocate(primitive.Int64, 4)
	require.NoError(t, err)
	require.NoError(t, b.CopyToDevice([]int64{1, 2, 3, 4}, x, 4))

	require.NoError(t, b.Transpose2D(x, [2]int{2, 2}, y))
	out := make([]int64, 4)
	require.NoError(t, b.CopyToHost(y, out, 4))
	require.Equal(t, []int64{1, 3, 2, 4}, out)
}

func TestTranspose_BadPerm(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float32, 24)
	require.NoError(t, err)
	y, err := b.Allocate(primitive.Float32, 24)
	require.NoError(t, err)

	err = b.Transpose3D(x, [3]int{2, 3, 4}, [3]int{0, 0, 1}, y)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}
