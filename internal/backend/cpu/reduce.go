package cpu

import (
	"fmt"
	"sync"

	"github.com/slate-ml/slate/internal/parallel"
	"github.com/slate-ml/slate/internal/primitive"
)

// Reductions fold per-chunk partials computed by ForChunks. The chunk
// layout, and therefore the floating-point combination order, is
// unspecified; results are reproducible within tolerance only.

func sumKernel[T primitive.DType](x []T, n int, cfg parallel.Config) T {
	var mu sync.Mutex
	var partials []T
	parallel.ForChunks(n, func(s, e int) {
		var acc T
		for i := s; i < e; i++ {
			acc += x[i]
		}
		mu.Lock()
		partials = append(partials, acc)
		mu.Unlock()
	}, cfg)

	var total T
	for _, p := range partials {
		total += p
	}
	return total
}

type maxResult[T primitive.DType] struct {
	val T
	idx int
}

// maxKernel finds the maximum value and the first index holding it.
// Chunks scan ascending with a strict > comparison, and ties between
// chunks resolve to the smaller index, so the first occurrence wins.
// NaN inputs make the comparison order unspecified; the result is
// whatever the traversal lands on.
func maxKernel[T primitive.DType](x []T, n int, cfg parallel.Config) maxResult[T] {
	var mu sync.Mutex
	var partials []maxResult[T]
	parallel.ForChunks(n, func(s, e int) {
		best := maxResult[T]{val: x[s], idx: s}
		for i := s + 1; i < e; i++ {
			if x[i] > best.val {
				best = maxResult[T]{val: x[i], idx: i}
			}
		}
		mu.Lock()
		partials = append(partials, best)
		mu.Unlock()
	}, cfg)

	best := partials[0]
	for _, p := range partials[1:] {
		if p.val > best.val || (p.val == best.val && p.idx < best.idx) {
			best = p
		}
	}
	return best
}

func (b *Backend) reduceOperand(op string, x primitive.Buffer, n int, allowEmpty bool) (*Buffer, error) {
	ops, err := b.operands(op, n, x)
	if err != nil {
		return nil, err
	}
	if n == 0 && !allowEmpty {
		return nil, fmt.Errorf("cpu: %s over zero elements: %w", op, primitive.ErrInvalidArgument)
	}
	if ops[0].dtype == primitive.Float16 {
		return nil, fmt.Errorf("cpu: %s: float16 is storage-only: %w", op, primitive.ErrInvalidArgument)
	}
	return ops[0], nil
}

// Sum returns the sum of the first n elements as x's element type.
// Summing zero elements yields the additive identity.
func (b *Backend) Sum(x primitive.Buffer, n int) (any, error) {
	cb, err := b.reduceOperand("sum", x, n, true)
	if err != nil {
		return nil, err
	}
	defer b.countOp()

	switch cb.dtype {
	case primitive.Float32:
		return sumKernel(view[float32](cb), n, b.cfg), nil
	case primitive.Float64:
		return sumKernel(view[float64](cb), n, b.cfg), nil
	case primitive.Int32:
		return sumKernel(view[int32](cb), n, b.cfg), nil
	case primitive.Int64:
		return sumKernel(view[int64](cb), n, b.cfg), nil
	default:
		return sumKernel(view[uint8](cb), n, b.cfg), nil
	}
}

// Max returns the maximum of the first n elements.
func (b *Backend) Max(x primitive.Buffer, n int) (any, error) {
	cb, err := b.reduceOperand("max", x, n, false)
	if err != nil {
		return nil, err
	}
	defer b.countOp()

	switch cb.dtype {
	case primitive.Float32:
		return maxKernel(view[float32](cb), n, b.cfg).val, nil
	case primitive.Float64:
		return maxKernel(view[float64](cb), n, b.cfg).val, nil
	case primitive.Int32:
		return maxKernel(view[int32](cb), n, b.cfg).val, nil
	case primitive.Int64:
		return maxKernel(view[int64](cb), n, b.cfg).val, nil
	default:
		return maxKernel(view[uint8](cb), n, b.cfg).val, nil
	}
}

// MaxElement returns the index of the first occurrence of the maximum.
func (b *Backend) MaxElement(x primitive.Buffer, n int) (int, error) {
	cb, err := b.reduceOperand("max_element", x, n, false)
	if err != nil {
		return 0, err
	}
	defer b.countOp()

	switch cb.dtype {
	case primitive.Float32:
		return maxKernel(view[float32](cb), n, b.cfg).idx, nil
	case primitive.Float64:
		return maxKernel(view[float64](cb), n, b.cfg).idx, nil
	case primitive.Int32:
		return maxKernel(view[int32](cb), n, b.cfg).idx, nil
	case primitive.Int64:
		return maxKernel(view[int64](cb), n, b.cfg).idx, nil
	default:
		return maxKernel(view[uint8](cb), n, b.cfg).idx, nil
	}
}
