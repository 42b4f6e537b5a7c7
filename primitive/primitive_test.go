// Copyright 2025 Slate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package primitive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/backend/cpu"
	"github.com/slate-ml/slate/primitive"
)

func TestTypedHelpers(t *testing.T) {
	be := cpu.New()
	defer be.Close()

	x, err := be.Allocate(primitive.Float32, 8)
	require.NoError(t, err)
	defer be.Free(x)

	require.NoError(t, primitive.FillOf(be, x, float32(2), 8))

	sum, err := primitive.SumOf[float32](be, x, 8)
	require.NoError(t, err)
	require.Equal(t, float32(16), sum)

	max, err := primitive.MaxOf[float32](be, x, 8)
	require.NoError(t, err)
	require.Equal(t, float32(2), max)
}

func TestUploadDownload(t *testing.T) {
	be := cpu.New()
	defer be.Close()

	x, err := be.Allocate(primitive.Int32, 4)
	require.NoError(t, err)
	defer be.Free(x)

	in := []int32{3, -1, 4, -1}
	require.NoError(t, primitive.Upload(be, in, x, 4))

	out := make([]int32, 4)
	require.NoError(t, primitive.Download(be, x, out, 4))
	require.Equal(t, in, out)

	sum, err := primitive.SumOf[int32](be, x, 4)
	require.NoError(t, err)
	require.Equal(t, int32(5), sum)
}

// A helper instantiated with the wrong element type must surface
// ErrInvalidArgument instead of a bad assertion.
func TestTypedHelpers_ElementTypeMismatch(t *testing.T) {
	be := cpu.New()
	defer be.Close()

	x, err := be.Allocate(primitive.Float32, 4)
	require.NoError(t, err)
	defer be.Free(x)
	require.NoError(t, primitive.FillOf(be, x, float32(1), 4))

	_, err = primitive.SumOf[int64](be, x, 4)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestTypedHelpers_PropagateErrors(t *testing.T) {
	be := cpu.New()
	defer be.Close()

	x, err := be.Allocate(primitive.Float32, 4)
	require.NoError(t, err)
	defer be.Free(x)

	_, err = primitive.MaxOf[float32](be, x, 0)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)

	_, err = primitive.SumOf[float32](be, x, 100)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}
