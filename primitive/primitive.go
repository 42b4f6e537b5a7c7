// Copyright 2025 Slate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package primitive

import (
	"fmt"

	internal "github.com/slate-ml/slate/internal/primitive"
)

// Primitives is the uniform compute contract. See the internal package
// for the full method documentation.
type Primitives = internal.Primitives

// Buffer is an opaque handle to device-resident storage.
type Buffer = internal.Buffer

// Device identifies a compute device class.
type Device = internal.Device

// DataType identifies a buffer element type.
type DataType = internal.DataType

// Stats counts the device work a backend has issued.
type Stats = internal.Stats

// DType is the generics constraint matching the computable element types.
type DType = internal.DType

// Devices.
const (
	CPU    = internal.CPU
	WebGPU = internal.WebGPU
)

// Element types.
const (
	Float16 = internal.Float16
	Float32 = internal.Float32
	Float64 = internal.Float64
	Int32   = internal.Int32
	Int64   = internal.Int64
	Uint8   = internal.Uint8
)

// Error sentinels; match with errors.Is.
var (
	ErrDeviceOutOfMemory = internal.ErrDeviceOutOfMemory
	ErrDevice            = internal.ErrDevice
	ErrInvalidArgument   = internal.ErrInvalidArgument
)

// TypeOf returns the DataType storing T.
func TypeOf[T DType]() DataType { return internal.TypeOf[T]() }

// FillOf sets the first n elements of x to v with a compile-time element
// type instead of the interface's any.
func FillOf[T DType](p Primitives, x Buffer, v T, n int) error {
	return p.Fill(x, v, n)
}

// SumOf returns the sum of the first n elements of x as T.
func SumOf[T DType](p Primitives, x Buffer, n int) (T, error) {
	v, err := p.Sum(x, n)
	return typedResult[T]("sum", v, err)
}

// MaxOf returns the maximum of the first n elements of x as T.
func MaxOf[T DType](p Primitives, x Buffer, n int) (T, error) {
	v, err := p.Max(x, n)
	return typedResult[T]("max", v, err)
}

func typedResult[T DType](op string, v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("primitive: %s returned %T, want %T: %w", op, v, zero, ErrInvalidArgument)
	}
	return t, nil
}

// Upload transfers n elements of host into x.
func Upload[T DType](p Primitives, host []T, x Buffer, n int) error {
	return p.CopyToDevice(host, x, n)
}

// Download transfers n elements of x into host.
func Download[T DType](p Primitives, x Buffer, host []T, n int) error {
	return p.CopyToHost(x, host, n)
}
