package webgpu

import (
	"fmt"

	"github.com/slate-ml/slate/internal/primitive"
)

// nextPow2 returns the smallest power of two >= n, for n >= 1.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TopK selects the k largest of the first n elements of x via a bitonic
// sort over (key, index) pairs in scratch memory. The working set is
// padded to a power of two with -inf keys so the tail sorts last; the
// sorted prefix is then copied into values and indices.
//
// Ordering is descending by value with ties broken by ascending original
// index, matching the host backend.
func (b *Backend) TopK(x primitive.Buffer, k, n int, values, indices primitive.Buffer) error {
	xb, err := b.buffer(x)
	if err != nil {
		return fmt.Errorf("webgpu: topk: x: %w", err)
	}
	if xb.freed || xb.buf == nil {
		return fmt.Errorf("webgpu: topk: x already freed: %w", primitive.ErrDevice)
	}
	if err := requireFloat32("topk", xb); err != nil {
		return err
	}
	if n < 0 || k < 0 || k > n {
		return fmt.Errorf("webgpu: topk: k=%d n=%d out of range: %w", k, n, primitive.ErrInvalidArgument)
	}
	if xb.n < n {
		return fmt.Errorf("webgpu: topk: x holds %d elements, need %d: %w", xb.n, n, primitive.ErrInvalidArgument)
	}
	vb, err := b.buffer(values)
	if err != nil {
		return fmt.Errorf("webgpu: topk: values: %w", err)
	}
	ib, err := b.buffer(indices)
	if err != nil {
		return fmt.Errorf("webgpu: topk: indices: %w", err)
	}
	if vb.freed || vb.buf == nil || ib.freed || ib.buf == nil {
		return fmt.Errorf("webgpu: topk: output already freed: %w", primitive.ErrDevice)
	}
	if vb.dtype != primitive.Float32 {
		return fmt.Errorf("webgpu: topk: values is %s, want float32: %w", vb.dtype, primitive.ErrInvalidArgument)
	}
	if ib.dtype != primitive.Int32 {
		return fmt.Errorf("webgpu: topk: indices is %s, want int32: %w", ib.dtype, primitive.ErrInvalidArgument)
	}
	if vb.n < k || ib.n < k {
		return fmt.Errorf("webgpu: topk: outputs hold %d/%d elements, need %d: %w",
			vb.n, ib.n, k, primitive.ErrInvalidArgument)
	}
	if k == 0 {
		b.countOp()
		return nil
	}

	total := nextPow2(n)
	keys, err := b.scratch.Get("topk-keys", primitive.Float32, total)
	if err != nil {
		return err
	}
	idx, err := b.scratch.Get("topk-indices", primitive.Int32, total)
	if err != nil {
		return err
	}
	kb, ikb := keys.(*Buffer), idx.(*Buffer)

	if err := b.dispatch("topk_init", topkInitShader, workgroups(total), 1, 1,
		params(uint32(n), uint32(total)),
		binding{buf: xb}, binding{buf: kb}, binding{buf: ikb}); err != nil {
		return err
	}

	// One dispatch per compare-exchange pass; the pending queue preserves
	// the pass order.
	for k2 := 2; k2 <= total; k2 <<= 1 {
		for j := k2 >> 1; j > 0; j >>= 1 {
			if err := b.dispatch("bitonic", bitonicShader, workgroups(total), 1, 1,
				params(uint32(j), uint32(k2), uint32(total)),
				binding{buf: kb}, binding{buf: ikb}); err != nil {
				return err
			}
		}
	}

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(kb.buf, kb.off, vb.buf, vb.off, uint64(k*4))
	encoder.CopyBufferToBuffer(ikb.buf, ikb.off, ib.buf, ib.off, uint64(k*4))
	b.queueCommand(encoder.Finish(nil))
	b.countOp()
	return nil
}
