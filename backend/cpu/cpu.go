// Copyright 2025 Slate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/slate-ml/slate/internal/backend/cpu"
	"github.com/slate-ml/slate/internal/parallel"
	"github.com/slate-ml/slate/primitive"
)

// Backend is the CPU implementation of the primitives contract.
type Backend = internalcpu.Backend

// Option configures a Backend.
type Option = internalcpu.Option

// Compile-time check that Backend implements primitive.Primitives.
var _ primitive.Primitives = (*Backend)(nil)

// New creates a CPU backend.
//
// Example:
//
//	be := cpu.New()
//	defer be.Close()
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithParallel overrides the chunked-parallelism configuration used by
// elementwise kernels and reductions.
func WithParallel(cfg parallel.Config) Option {
	return internalcpu.WithParallel(cfg)
}
