// Copyright 2025 Slate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host backend for the compute primitives.
//
// # Overview
//
// The CPU backend is the reference implementation of the primitives
// contract:
//   - Pure Go, no CGO
//   - Every element type, Float16 through Int64
//   - gonum BLAS for single and batched GEMM
//   - Chunked parallel elementwise kernels and reductions
//
// # Basic Usage
//
//	import (
//	    "github.com/slate-ml/slate/backend/cpu"
//	    "github.com/slate-ml/slate/primitive"
//	)
//
//	func main() {
//	    be := cpu.New()
//	    defer be.Close()
//
//	    x, _ := be.Allocate(primitive.Float32, 1<<20)
//	    defer be.Free(x)
//	}
//
// # Thread Safety
//
// A backend instance is an execution context and belongs to one worker
// goroutine; create one instance per worker rather than sharing.
package cpu
