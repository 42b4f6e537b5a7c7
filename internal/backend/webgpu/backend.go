// Package webgpu implements the accelerator backend for the primitives
// contract on top of go-webgpu's zero-CGO WebGPU bindings.
//
// All primitives encode command buffers onto a pending queue owned by the
// backend instance; the queue is the execution context, and work on it
// runs in submission order. Host readback and Synchronize flush the queue.
package webgpu

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/slate-ml/slate/internal/primitive"
	"github.com/slate-ml/slate/internal/scratch"
)

// Backend implements primitive.Primitives on a WebGPU adapter.
//
// A Backend is an execution context: one instance per worker goroutine,
// ops issued on it are ordered relative to each other. It is not safe for
// concurrent use.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	adapterInfo *wgpu.AdapterInfoGo

	// Shader and pipeline caches, keyed by shader name.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline

	// Pending command buffers; submitted together on flush.
	pending      []*wgpu.CommandBuffer
	maxBatchSize int

	scratch *scratch.Cache
	power   wgpu.PowerPreference

	allocs int64
	frees  int64
	bytes  int64
	ops    int64
}

var _ primitive.Primitives = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithPowerPreference selects the adapter power class.
func WithPowerPreference(p wgpu.PowerPreference) Option {
	return func(b *Backend) { b.power = p }
}

// WithMaxBatchSize caps how many command buffers accumulate before an
// automatic flush. Zero means no cap.
func WithMaxBatchSize(n int) Option {
	return func(b *Backend) { b.maxBatchSize = n }
}

// New creates a WebGPU backend, or an error if no adapter is available.
func New(opts ...Option) (backend *Backend, err error) {
	// go-webgpu panics when the native library is missing.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	b := &Backend{
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		power:     wgpu.PowerPreferenceHighPerformance,
	}
	for _, opt := range opts {
		opt(b)
	}

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instanceErr)
	}
	b.instance = instance
	adapter, adapterErr := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: b.power,
	})
	if adapterErr != nil {
		b.instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}
	b.adapter = adapter
	// Adapter identity is informational only; a lookup failure is not
	// fatal to backend construction.
	if info, infoErr := adapter.GetInfo(); infoErr == nil {
		b.adapterInfo = info
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		b.adapter.Release()
		b.instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}
	b.device = device
	b.queue = device.GetQueue()
	if b.queue == nil {
		b.device.Release()
		b.adapter.Release()
		b.instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue: %w", primitive.ErrDevice)
	}

	b.scratch = scratch.New((*allocator)(b))

	slog.Info("webgpu backend initialized", "adapter", adapterLabel(b.adapterInfo))
	return b, nil
}

// IsAvailable checks whether a WebGPU adapter can be acquired.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// adapterLabel renders the adapter identity for Name and logs.
func adapterLabel(info *wgpu.AdapterInfoGo) string {
	if info == nil {
		return "unknown adapter"
	}
	if label := strings.TrimSpace(info.Device + " " + info.Vendor); label != "" {
		return label
	}
	return "unknown adapter"
}

// Name returns the backend name with adapter identity.
func (b *Backend) Name() string {
	return fmt.Sprintf("WebGPU (%s)", adapterLabel(b.adapterInfo))
}

// Device returns the compute device.
func (b *Backend) Device() primitive.Device { return primitive.WebGPU }

// Stats returns operation and allocation counters.
func (b *Backend) Stats() primitive.Stats {
	return primitive.Stats{
		Allocs:         atomic.LoadInt64(&b.allocs),
		Frees:          atomic.LoadInt64(&b.frees),
		BytesAllocated: atomic.LoadInt64(&b.bytes),
		Ops:            atomic.LoadInt64(&b.ops),
	}
}

// queueCommand appends an encoded command buffer to the pending queue,
// preserving issue order. Auto-flushes past the batch cap.
func (b *Backend) queueCommand(cmd *wgpu.CommandBuffer) {
	b.pending = append(b.pending, cmd)
	if b.maxBatchSize > 0 && len(b.pending) >= b.maxBatchSize {
		b.flush()
	}
}

// flush submits all pending command buffers in order.
func (b *Backend) flush() {
	if len(b.pending) == 0 {
		return
	}
	b.queue.Submit(b.pending...)
	b.pending = b.pending[:0]
}

// Synchronize flushes pending work and blocks until it completed, by
// round-tripping a one-word readback through a staging buffer.
func (b *Backend) Synchronize() error {
	b.flush()
	fence, err := b.scratch.Get("sync-fence", primitive.Int32, 1)
	if err != nil {
		return err
	}
	_, err = b.readBuffer(fence.(*Buffer), 4)
	return err
}

// Close flushes, releases scratch memory, caches and the device objects.
func (b *Backend) Close() error {
	b.flush()
	err := b.scratch.Release()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	return err
}

// countOp records one issued primitive.
func (b *Backend) countOp() { atomic.AddInt64(&b.ops, 1) }
