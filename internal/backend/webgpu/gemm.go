package webgpu

import (
	"fmt"
	"math"

	"github.com/slate-ml/slate/internal/primitive"
)

// gemmArgs are the parameters of the column-major kernel.
type gemmArgs struct {
	ta, tb        bool
	m, n, k       int
	lda, ldb, ldc int
}

// colMajorArgs maps the row-major caller contract onto the column-major
// kernel. A row-major A·B is the column-major Bᵀ·Aᵀ read backwards, so the
// kernel runs with operands and transpose flags swapped, m and n
// exchanged, and the row-major leading dimensions carried over unchanged:
// the bytes never move, only the interpretation does. The kernel's first
// operand is the caller's b, its second the caller's a.
func colMajorArgs(transA, transB bool, m, n, k int) gemmArgs {
	lda := k
	if transA {
		lda = m
	}
	ldb := n
	if transB {
		ldb = k
	}
	return gemmArgs{
		ta:  transB,
		tb:  transA,
		m:   n,
		n:   m,
		k:   k,
		lda: ldb,
		ldb: lda,
		ldc: n,
	}
}

func flagWord(t bool) uint32 {
	if t {
		return 1
	}
	return 0
}

func (g gemmArgs) params(alpha, beta float32) []byte {
	return params(
		flagWord(g.ta), flagWord(g.tb),
		uint32(g.m), uint32(g.n), uint32(g.k),
		uint32(g.lda), uint32(g.ldb), uint32(g.ldc),
		math.Float32bits(alpha), math.Float32bits(beta),
	)
}

// groups16 sizes one axis of a 16x16 workgroup grid.
func groups16(n int) uint32 {
	return uint32((n + 15) / 16)
}

// gemmOperand validates one Float32 GEMM operand of at least n elements.
func (b *Backend) gemmOperand(name string, buf primitive.Buffer, n int) (*Buffer, error) {
	gb, err := b.buffer(buf)
	if err != nil {
		return nil, fmt.Errorf("webgpu: gemm: %s: %w", name, err)
	}
	if gb.freed || gb.buf == nil {
		return nil, fmt.Errorf("webgpu: gemm: %s already freed: %w", name, primitive.ErrDevice)
	}
	if gb.dtype != primitive.Float32 {
		return nil, fmt.Errorf("webgpu: gemm: %s is %s, want float32: %w", name, gb.dtype, primitive.ErrInvalidArgument)
	}
	if gb.n < n {
		return nil, fmt.Errorf("webgpu: gemm: %s holds %d elements, need %d: %w", name, gb.n, n, primitive.ErrInvalidArgument)
	}
	return gb, nil
}

// scaleBuffer rewrites the first n elements of c as beta*c, the k == 0
// degenerate of the GEMM contract, by aliasing c through the scalar
// multiply kernel.
func (b *Backend) scaleBuffer(c *Buffer, beta float32, n int) error {
	return b.dispatch("mul_scalar", mulScalarShader, workgroups(n), 1, 1,
		params(uint32(n), math.Float32bits(beta)),
		binding{buf: c}, binding{buf: c})
}

// Gemm computes c = alpha*op(a)*op(b) + beta*c with row-major operands.
func (b *Backend) Gemm(a, bb primitive.Buffer, transA, transB bool, m, n, k int, alpha, beta float32, c primitive.Buffer) error {
	if m < 0 || n < 0 || k < 0 {
		return fmt.Errorf("webgpu: gemm: negative dimension m=%d n=%d k=%d: %w", m, n, k, primitive.ErrInvalidArgument)
	}
	ab, err := b.gemmOperand("a", a, m*k)
	if err != nil {
		return err
	}
	bbuf, err := b.gemmOperand("b", bb, k*n)
	if err != nil {
		return err
	}
	cb, err := b.gemmOperand("c", c, m*n)
	if err != nil {
		return err
	}

	if m == 0 || n == 0 {
		b.countOp()
		return nil
	}
	if k == 0 {
		if err := b.scaleBuffer(cb, beta, m*n); err != nil {
			return err
		}
		b.countOp()
		return nil
	}

	args := colMajorArgs(transA, transB, m, n, k)
	if err := b.dispatch("gemm", gemmShader,
		groups16(args.m), groups16(args.n), 1, args.params(alpha, beta),
		binding{buf: bbuf}, binding{buf: ab}, binding{buf: cb}); err != nil {
		return err
	}
	b.countOp()
	return nil
}

// batchOffsets uploads per-batch element offsets to a scratch-cached
// device table. WebGPU has no raw device pointers, so the batch pointer
// table the kernel indexes is a u32 offset table instead.
func (b *Backend) batchOffsets(key string, stride, batch int) (*Buffer, error) {
	table, err := b.scratch.Get(key, primitive.Int32, batch)
	if err != nil {
		return nil, err
	}
	tb := table.(*Buffer)

	offs := make([]uint32, batch)
	for i := range offs {
		offs[i] = uint32(i * stride)
	}
	data := params(offs...)

	staging := b.stagingUpload(data)
	defer staging.Release()
	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, tb.buf, tb.off, alignUp(uint64(len(data))))
	b.queueCommand(encoder.Finish(nil))
	return tb, nil
}

// GemmBatch repeats Gemm for batch operand triples at element offsets
// i*m*k, i*k*n, i*m*n, in a single dispatch over the z axis.
func (b *Backend) GemmBatch(a, bb primitive.Buffer, transA, transB bool, m, n, k int, alpha, beta float32, c primitive.Buffer, batch int) error {
	if m < 0 || n < 0 || k < 0 || batch < 0 {
		return fmt.Errorf("webgpu: gemm_batch: negative dimension m=%d n=%d k=%d batch=%d: %w",
			m, n, k, batch, primitive.ErrInvalidArgument)
	}
	ab, err := b.gemmOperand("a", a, batch*m*k)
	if err != nil {
		return err
	}
	bbuf, err := b.gemmOperand("b", bb, batch*k*n)
	if err != nil {
		return err
	}
	cb, err := b.gemmOperand("c", c, batch*m*n)
	if err != nil {
		return err
	}

	if batch == 0 || m == 0 || n == 0 {
		b.countOp()
		return nil
	}
	if k == 0 {
		if err := b.scaleBuffer(cb, beta, batch*m*n); err != nil {
			return err
		}
		b.countOp()
		return nil
	}

	// Scratch keys name the caller's operands; the kernel's first operand
	// is the caller's b, so the bindings below follow kernel order.
	offsA, err := b.batchOffsets("gemm-batch-a", m*k, batch)
	if err != nil {
		return err
	}
	offsB, err := b.batchOffsets("gemm-batch-b", k*n, batch)
	if err != nil {
		return err
	}
	offsC, err := b.batchOffsets("gemm-batch-c", m*n, batch)
	if err != nil {
		return err
	}

	args := colMajorArgs(transA, transB, m, n, k)
	if err := b.dispatch("gemm_batch", gemmBatchShader,
		groups16(args.m), groups16(args.n), uint32(batch), args.params(alpha, beta),
		binding{buf: bbuf}, binding{buf: ab}, binding{buf: cb},
		binding{buf: offsB}, binding{buf: offsA}, binding{buf: offsC}); err != nil {
		return err
	}
	b.countOp()
	return nil
}
