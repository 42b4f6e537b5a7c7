package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/primitive"
)

// gemmRef is a naive row-major reference: c = alpha*op(a)*op(b) + beta*c.
func gemmRef(a, b []float32, transA, transB bool, m, n, k int, alpha, beta float32, c []float32) {
	at := func(i, l int) float32 {
		if transA {
			return a[l*m+i]
		}
		return a[i*k+l]
	}
	bt := func(l, j int) float32 {
		if transB {
			return b[j*k+l]
		}
		return b[l*n+j]
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for l := 0; l < k; l++ {
				sum += at(i, l) * bt(l, j)
			}
			c[i*n+j] = alpha*sum + beta*c[i*n+j]
		}
	}
}

func TestGemm_2x2(t *testing.T) {
	b := New()
	defer b.Close()

	// |1 2| * |5 6| = |19 22|
	// |3 4|   |7 8|   |43 50|
	a := alloc32(t, b, []float32{1, 2, 3, 4})
	bb := alloc32(t, b, []float32{5, 6, 7, 8})
	c, err := b.Allocate(primitive.Float32, 4)
	require.NoError(t, err)

	require.NoError(t, b.Gemm(a, bb, false, false, 2, 2, 2, 1, 0, c))
	require.Equal(t, []float32{19, 22, 43, 50}, read32(t, b, c, 4))
}

func TestGemm_NonSquare(t *testing.T) {
	b := New()
	defer b.Close()

	m, n, k := 2, 4, 3
	ah := []float32{1, 2, 3, 4, 5, 6}
	bh := []float32{1, 0, 2, 0, 0, 1, 0, 2, 1, 1, 1, 1}
	ch := make([]float32, m*n)
	gemmRef(ah, bh, false, false, m, n, k, 1, 0, ch)

	a := alloc32(t, b, ah)
	bb := alloc32(t, b, bh)
	c, err := b.Allocate(primitive.Float32, m*n)
	require.NoError(t, err)

	require.NoError(t, b.Gemm(a, bb, false, false, m, n, k, 1, 0, c))
	require.Equal(t, ch, read32(t, b, c, m*n))
}

func TestGemm_TransposeFlags(t *testing.T) {
	b := New()
	defer b.Close()

	m, n, k := 3, 2, 4
	ah := make([]float32, m*k)
	bh := make([]float32, k*n)
	for i := range ah {
		ah[i] = float32(i + 1)
	}
	for i := range bh {
		bh[i] = float32(2*i - 3)
	}

	for _, transA := range []bool{false, true} {
		for _, transB := range []bool{false, true} {
			want := make([]float32, m*n)
			gemmRef(ah, bh, transA, transB, m, n, k, 1, 0, want)

			a := alloc32(t, b, ah)
			bb := alloc32(t, b, bh)
			c, err := b.Allocate(primitive.Float32, m*n)
			require.NoError(t, err)

			require.NoError(t, b.Gemm(a, bb, transA, transB, m, n, k, 1, 0, c))
			got := read32(t, b, c, m*n)
			for i := range want {
				require.InDelta(t, want[i], got[i], 1e-4, "transA=%v transB=%v i=%d", transA, transB, i)
			}
		}
	}
}

func TestGemm_AlphaBeta(t *testing.T) {
	b := New()
	defer b.Close()

	a := alloc32(t, b, []float32{1, 0, 0, 1}) // identity
	bb := alloc32(t, b, []float32{1, 2, 3, 4})
	c := alloc32(t, b, []float32{10, 10, 10, 10})

	require.NoError(t, b.Gemm(a, bb, false, false, 2, 2, 2, 2, 0.5, c))
	require.Equal(t, []float32{7, 9, 11, 13}, read32(t, b, c, 4))
}

func TestGemm_DegenerateK(t *testing.T) {
	b := New()
	defer b.Close()

	a, err := b.Allocate(primitive.Float32, 0)
	require.NoError(t, err)
	bb, err := b.Allocate(primitive.Float32, 0)
	require.NoError(t, err)
	c := alloc32(t, b, []float32{2, 4, 6, 8})

	// k == 0 degenerates to c = beta*c.
	require.NoError(t, b.Gemm(a, bb, false, false, 2, 2, 0, 1, 0.5, c))
	require.Equal(t, []float32{1, 2, 3, 4}, read32(t, b, c, 4))
}

func TestGemm_RejectsNonFloat32(t *testing.T) {
	b := New()
	defer b.Close()

	a, err := b.Allocate(primitive.Float64, 4)
	require.NoError(t, err)
	c, err := b.Allocate(primitive.Float64, 4)
	require.NoError(t, err)

	err = b.Gemm(a, a, false, false, 2, 2, 2, 1, 0, c)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestGemmBatch(t *testing.T) {
	b := New()
	defer b.Close()

	batch, m, n, k := 4, 2, 3, 2
	ah := make([]float32, batch*m*k)
	bh := make([]float32, batch*k*n)
	for i := range ah {
		ah[i] = float32(i%7) - 3
	}
	for i := range bh {
		bh[i] = float32(i%5) * 0.5
	}

	a := alloc32(t, b, ah)
	bb := alloc32(t, b, bh)
	c, err := b.Allocate(primitive.Float32, batch*m*n)
	require.NoError(t, err)
	require.NoError(t, b.Fill(c, float32(0), batch*m*n))

	require.NoError(t, b.GemmBatch(a, bb, false, false, m, n, k, 1, 0, c, batch))
	got := read32(t, b, c, batch*m*n)

	// Each batch entry must match an independent single GEMM.
	for i := 0; i < batch; i++ {
		want := make([]float32, m*n)
		gemmRef(ah[i*m*k:(i+1)*m*k], bh[i*k*n:(i+1)*k*n], false, false, m, n, k, 1, 0, want)
		for j := range want {
			require.InDelta(t, want[j], got[i*m*n+j], 1e-5, "batch=%d j=%d", i, j)
		}
	}
}

func TestGemmBatch_CapacityChecked(t *testing.T) {
	b := New()
	defer b.Close()

	a := alloc32(t, b, make([]float32, 4))
	c, err := b.Allocate(primitive.Float32, 4)
	require.NoError(t, err)

	// batch*m*k = 8 exceeds a's 4 elements.
	err = b.GemmBatch(a, a, false, false, 2, 1, 2, 1, 0, c, 2)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}
