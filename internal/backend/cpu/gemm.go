package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	blasimpl "gonum.org/v1/gonum/blas/gonum"

	"github.com/slate-ml/slate/internal/primitive"
)

var sgemm blasimpl.Implementation

func transFlag(t bool) blas.Transpose {
	if t {
		return blas.Trans
	}
	return blas.NoTrans
}

// gemmOperand validates one Float32 GEMM operand of at least n elements.
func (b *Backend) gemmOperand(name string, buf primitive.Buffer, n int) ([]float32, error) {
	cb, err := b.buffer(buf)
	if err != nil {
		return nil, fmt.Errorf("cpu: gemm: %s: %w", name, err)
	}
	if cb.dtype != primitive.Float32 {
		return nil, fmt.Errorf("cpu: gemm: %s is %s, want float32: %w", name, cb.dtype, primitive.ErrInvalidArgument)
	}
	if cb.n < n {
		return nil, fmt.Errorf("cpu: gemm: %s holds %d elements, need %d: %w", name, cb.n, n, primitive.ErrInvalidArgument)
	}
	return view[float32](cb), nil
}

// Gemm computes c = alpha*op(a)*op(b) + beta*c with row-major operands.
// gonum's BLAS is row-major as well, so the call maps directly; the
// column-major parameter swap lives in the WebGPU bridge, whose kernel
// follows the accelerator BLAS convention.
func (b *Backend) Gemm(a, bb primitive.Buffer, transA, transB bool, m, n, k int, alpha, beta float32, c primitive.Buffer) error {
	if m < 0 || n < 0 || k < 0 {
		return fmt.Errorf("cpu: gemm: negative dimension m=%d n=%d k=%d: %w", m, n, k, primitive.ErrInvalidArgument)
	}
	av, err := b.gemmOperand("a", a, m*k)
	if err != nil {
		return err
	}
	bv, err := b.gemmOperand("b", bb, k*n)
	if err != nil {
		return err
	}
	cv, err := b.gemmOperand("c", c, m*n)
	if err != nil {
		return err
	}

	// Row-major leading dimensions: the stored column count of each operand.
	lda := k
	if transA {
		lda = m
	}
	ldb := n
	if transB {
		ldb = k
	}

	if m == 0 || n == 0 {
		b.countOp()
		return nil
	}
	if k == 0 {
		scaleInPlace(cv[:m*n], beta)
		b.countOp()
		return nil
	}

	sgemm.Sgemm(transFlag(transA), transFlag(transB), m, n, k,
		alpha, av[:m*k], lda, bv[:k*n], ldb, beta, cv[:m*n], n)
	b.countOp()
	return nil
}

func scaleInPlace(c []float32, beta float32) {
	for i := range c {
		c[i] *= beta
	}
}

// GemmBatch repeats Gemm for batch operand triples at element offsets
// i*m*k, i*k*n, i*m*n. The host reference has no on-device pointer
// indirection, so no pointer table is marshalled here; the WebGPU backend
// builds its offset tables through the scratch cache.
func (b *Backend) GemmBatch(a, bb primitive.Buffer, transA, transB bool, m, n, k int, alpha, beta float32, c primitive.Buffer, batch int) error {
	if batch < 0 {
		return fmt.Errorf("cpu: gemm_batch: negative batch %d: %w", batch, primitive.ErrInvalidArgument)
	}
	av, err := b.gemmOperand("a", a, batch*m*k)
	if err != nil {
		return err
	}
	bv, err := b.gemmOperand("b", bb, batch*k*n)
	if err != nil {
		return err
	}
	cv, err := b.gemmOperand("c", c, batch*m*n)
	if err != nil {
		return err
	}

	lda := k
	if transA {
		lda = m
	}
	ldb := n
	if transB {
		ldb = k
	}

	if m == 0 || n == 0 {
		b.countOp()
		return nil
	}
	if k == 0 {
		scaleInPlace(cv[:batch*m*n], beta)
		b.countOp()
		return nil
	}

	for i := 0; i < batch; i++ {
		sgemm.Sgemm(transFlag(transA), transFlag(transB), m, n, k,
			alpha, av[i*m*k:(i+1)*m*k], lda, bv[i*k*n:(i+1)*k*n], ldb,
			beta, cv[i*m*n:(i+1)*m*n], n)
	}
	b.countOp()
	return nil
}
