// Copyright 2025 Slate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package primitive defines the device-abstracted compute contract:
// a fixed catalogue of tensor-level primitives implemented once per
// device behind one interface.
//
// # Overview
//
// A backend implements Primitives for exactly one device. Callers pick
// a backend at startup, hold one instance per worker goroutine, and own
// every buffer lifetime and shape decision; the layer below validates
// preconditions but never chooses scheduling policy.
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
//	    x, _ := be.Allocate(primitive.Float32, 1024)
//	    defer be.Free(x)
//
//	    _ = primitive.FillOf(be, x, float32(1), 1024)
//	    total, _ := primitive.SumOf[float32](be, x, 1024)
//	    _ = total // 1024
//	}
//
// # Execution model
//
// Operations enqueue work on the backend's execution context and return;
// value-returning reductions, host transfers and Synchronize block until
// the device caught up. Work on one instance runs in issue order. An
// instance is not safe for concurrent use; give each worker its own.
//
// # Errors
//
// Failures wrap one of three sentinels: ErrInvalidArgument (precondition
// violated, nothing was issued to the device), ErrDeviceOutOfMemory
// (allocation could not be satisfied, recoverable), and ErrDevice
// (runtime failure, fatal to the operation). Match with errors.Is.
package primitive
