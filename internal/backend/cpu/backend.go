// Package cpu implements the reference CPU backend for the primitives
// contract. Elementwise passes and reductions run through the chunked
// parallel-for; GEMM goes through gonum's BLAS implementation.
package cpu

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/slate-ml/slate/internal/parallel"
	"github.com/slate-ml/slate/internal/primitive"
	"github.com/slate-ml/slate/internal/scratch"
)

// Backend implements primitive.Primitives on the host CPU.
//
// One Backend belongs to one worker goroutine: it owns a scratch cache
// that is deliberately unlocked, matching the one-context-per-worker
// execution model.
type Backend struct {
	cfg     parallel.Config
	scratch *scratch.Cache

	allocs int64
	frees  int64
	bytes  int64
	ops    int64
}

var _ primitive.Primitives = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithParallel overrides the parallel execution configuration.
func WithParallel(cfg parallel.Config) Option {
	return func(b *Backend) { b.cfg = cfg }
}

// New creates a CPU backend.
func New(opts ...Option) *Backend {
	b := &Backend{cfg: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(b)
	}
	b.scratch = scratch.New((*allocator)(b))
	slog.Debug("cpu backend initialized",
		"workers", b.cfg.NumWorkers,
		"gomaxprocs", runtime.GOMAXPROCS(0))
	return b
}

// Name returns the backend name.
func (b *Backend) Name() string { return "CPU" }

// Device returns the compute device.
func (b *Backend) Device() primitive.Device { return primitive.CPU }

// Stats returns operation and allocation counters.
func (b *Backend) Stats() primitive.Stats {
	return primitive.Stats{
		Allocs:         atomic.LoadInt64(&b.allocs),
		Frees:          atomic.LoadInt64(&b.frees),
		BytesAllocated: atomic.LoadInt64(&b.bytes),
		Ops:            atomic.LoadInt64(&b.ops),
	}
}

// Synchronize is a no-op: CPU primitives complete before returning.
func (b *Backend) Synchronize() error { return nil }

// Close releases the scratch cache.
func (b *Backend) Close() error {
	return b.scratch.Release()
}

// Allocate requests n elements of dtype.
func (b *Backend) Allocate(dtype primitive.DataType, n int) (primitive.Buffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("cpu: allocate %d elements: %w", n, primitive.ErrInvalidArgument)
	}
	buf := &Buffer{
		data:  make([]byte, n*dtype.Size()),
		dtype: dtype,
		n:     n,
	}
	atomic.AddInt64(&b.allocs, 1)
	atomic.AddInt64(&b.bytes, int64(buf.ByteSize()))
	return buf, nil
}

// Free releases a buffer. A double free surfaces as ErrDevice, mirroring
// how an accelerator allocator reports an invalid handle.
func (b *Backend) Free(buf primitive.Buffer) error {
	cb, err := b.buffer(buf)
	if err != nil {
		return err
	}
	if cb.freed {
		return fmt.Errorf("cpu: free of already freed buffer: %w", primitive.ErrDevice)
	}
	cb.freed = true
	cb.data = nil
	atomic.AddInt64(&b.frees, 1)
	return nil
}

// allocator adapts the backend to the scratch.Allocator interface.
type allocator Backend

func (a *allocator) Allocate(dtype primitive.DataType, n int) (primitive.Buffer, error) {
	return (*Backend)(a).Allocate(dtype, n)
}

func (a *allocator) Free(buf primitive.Buffer) error {
	return (*Backend)(a).Free(buf)
}

// buffer asserts a caller-supplied handle to this backend's buffer type.
func (b *Backend) buffer(buf primitive.Buffer) (*Buffer, error) {
	cb, ok := buf.(*Buffer)
	if !ok {
		return nil, fmt.Errorf("cpu: buffer resides on %s: %w", buf.Device(), primitive.ErrInvalidArgument)
	}
	return cb, nil
}

// operands validates that each buffer is CPU-resident, unfreed, of one
// shared element type, and holds at least n elements. All precondition
// failures are reported before any work runs.
func (b *Backend) operands(op string, n int, bufs ...primitive.Buffer) ([]*Buffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("cpu: %s: negative count %d: %w", op, n, primitive.ErrInvalidArgument)
	}
	out := make([]*Buffer, len(bufs))
	var dtype primitive.DataType
	for i, buf := range bufs {
		cb, err := b.buffer(buf)
		if err != nil {
			return nil, fmt.Errorf("cpu: %s: operand %d: %w", op, i, err)
		}
		if cb.freed {
			return nil, fmt.Errorf("cpu: %s: operand %d already freed: %w", op, i, primitive.ErrDevice)
		}
		if cb.n < n {
			return nil, fmt.Errorf("cpu: %s: operand %d holds %d elements, need %d: %w",
				op, i, cb.n, n, primitive.ErrInvalidArgument)
		}
		if i == 0 {
			dtype = cb.dtype
		} else if cb.dtype != dtype {
			return nil, fmt.Errorf("cpu: %s: operand %d is %s, operand 0 is %s: %w",
				op, i, cb.dtype, dtype, primitive.ErrInvalidArgument)
		}
		out[i] = cb
	}
	return out, nil
}

// countOp records one issued primitive.
func (b *Backend) countOp() { atomic.AddInt64(&b.ops, 1) }
