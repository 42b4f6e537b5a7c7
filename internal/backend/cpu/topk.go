package cpu

import (
	"fmt"
	"sort"

	"github.com/slate-ml/slate/internal/primitive"
)

// byKeyDesc jointly sorts a key slice and its payload indices, descending
// by key with ties broken by ascending original index. The tiebreak makes
// the order total, so plain sort.Sort is deterministic here.
type byKeyDesc[T primitive.DType] struct {
	keys []T
	idx  []int32
}

func (s byKeyDesc[T]) Len() int { return len(s.keys) }

func (s byKeyDesc[T]) Less(i, j int) bool {
	if s.keys[i] != s.keys[j] {
		return s.keys[i] > s.keys[j]
	}
	return s.idx[i] < s.idx[j]
}

func (s byKeyDesc[T]) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.idx[i], s.idx[j] = s.idx[j], s.idx[i]
}

// TopK selects the k largest of the first n elements of x, writing values
// and their original positions (Int32) sorted descending by value. The
// selection is a full sort over scratch copies: n is bounded by vocabulary
// and beam sizes in the calling system, so one n-element sort beats the
// bookkeeping of a partial selection.
//
// Outputs are written only after the sort succeeds, so a failure never
// partially mutates them. NaN keys make the float ordering unspecified.
func (b *Backend) TopK(x primitive.Buffer, k, n int, values, indices primitive.Buffer) error {
	ops, err := b.operands("topk", n, x)
	if err != nil {
		return err
	}
	in := ops[0]
	if in.dtype == primitive.Float16 {
		return fmt.Errorf("cpu: topk: float16 is storage-only: %w", primitive.ErrInvalidArgument)
	}
	if k < 0 || k > n {
		return fmt.Errorf("cpu: topk: k=%d out of range for n=%d: %w", k, n, primitive.ErrInvalidArgument)
	}

	vals, err := b.buffer(values)
	if err != nil {
		return fmt.Errorf("cpu: topk: values: %w", err)
	}
	idxs, err := b.buffer(indices)
	if err != nil {
		return fmt.Errorf("cpu: topk: indices: %w", err)
	}
	if vals.dtype != in.dtype || vals.n < k {
		return fmt.Errorf("cpu: topk: values buffer is %s[%d], need %s[%d]: %w",
			vals.dtype, vals.n, in.dtype, k, primitive.ErrInvalidArgument)
	}
	if idxs.dtype != primitive.Int32 || idxs.n < k {
		return fmt.Errorf("cpu: topk: indices buffer is %s[%d], need int32[%d]: %w",
			idxs.dtype, idxs.n, k, primitive.ErrInvalidArgument)
	}

	if k == 0 {
		b.countOp()
		return nil
	}

	keys, err := b.scratch.Get("topk-keys", in.dtype, n)
	if err != nil {
		return err
	}
	idxScratch, err := b.scratch.Get("topk-indices", primitive.Int32, n)
	if err != nil {
		return err
	}
	keyBuf := keys.(*Buffer)
	idxBuf := idxScratch.(*Buffer)

	copy(keyBuf.data, in.data[:n*in.dtype.Size()])
	iotaView := view[int32](idxBuf)
	for i := 0; i < n; i++ {
		iotaView[i] = int32(i)
	}

	switch in.dtype {
	case primitive.Float32:
		sort.Sort(byKeyDesc[float32]{view[float32](keyBuf)[:n], iotaView[:n]})
	case primitive.Float64:
		sort.Sort(byKeyDesc[float64]{view[float64](keyBuf)[:n], iotaView[:n]})
	case primitive.Int32:
		sort.Sort(byKeyDesc[int32]{view[int32](keyBuf)[:n], iotaView[:n]})
	case primitive.Int64:
		sort.Sort(byKeyDesc[int64]{view[int64](keyBuf)[:n], iotaView[:n]})
	case primitive.Uint8:
		sort.Sort(byKeyDesc[uint8]{view[uint8](keyBuf)[:n], iotaView[:n]})
	}

	// Copy-out is the last step.
	copy(vals.data, keyBuf.data[:k*in.dtype.Size()])
	copy(idxs.data, idxBuf.data[:k*4])
	b.countOp()
	return nil
}
