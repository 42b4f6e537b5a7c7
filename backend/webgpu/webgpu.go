// Copyright 2025 Slate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the accelerator backend for the compute
// primitives, built on WebGPU compute shaders.
//
// WebGPU is a cross-platform compute API that works on:
//   - Windows (D3D12)
//   - macOS (Metal)
//   - Linux (Vulkan)
//
// GPU arithmetic kernels are instantiated for Float32 only; other element
// types allocate and transfer but do not compute. Use IsAvailable for a
// graceful fallback:
//
//	var be primitive.Primitives
//	if webgpu.IsAvailable() {
//	    be, err = webgpu.New()
//	} else {
//	    be = cpu.New()
//	}
package webgpu

import (
	internalwebgpu "github.com/slate-ml/slate/internal/backend/webgpu"
	"github.com/slate-ml/slate/primitive"
)

// Backend is the WebGPU implementation of the primitives contract.
type Backend = internalwebgpu.Backend

// Option configures a Backend.
type Option = internalwebgpu.Option

// Compile-time check that Backend implements primitive.Primitives.
var _ primitive.Primitives = (*Backend)(nil)

// New creates a WebGPU backend, initializing the adapter and device.
// Call Close when done to flush pending work and release GPU resources.
//
// Returns an error when no compatible adapter is present or the native
// WebGPU library is missing.
func New(opts ...Option) (*Backend, error) {
	return internalwebgpu.New(opts...)
}

// IsAvailable checks whether a WebGPU adapter can be acquired, without
// keeping any resource alive.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// WithMaxBatchSize caps how many command buffers accumulate on the
// pending queue before an automatic flush.
func WithMaxBatchSize(n int) Option {
	return internalwebgpu.WithMaxBatchSize(n)
}
