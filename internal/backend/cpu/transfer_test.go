package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/slate-ml/slate/internal/primitive"
)

func TestTransfer_RoundTrip(t *testing.T) {
	b := New()
	defer b.Close()

	in := []float32{1.5, -2.25, 0, 3}
	x := alloc32(t, b, in)
	require.Equal(t, in, read32(t, b, x, 4))
}

func TestTransfer_Prefix(t *testing.T) {
	b := New()
	defer b.Close()

	x := alloc32(t, b, []float32{1, 2, 3, 4})
	out := []float32{-1, -1, -1, -1}
	require.NoError(t, b.CopyToHost(x, out, 2))
	require.Equal(t, []float32{1, 2, -1, -1}, out)
}

func TestTransfer_HostTooShort(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float32, 8)
	require.NoError(t, err)

	err = b.CopyToDevice([]float32{1, 2}, x, 8)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)

	err = b.CopyToHost(x, make([]float32, 2), 8)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestTransfer_HostTypeMismatch(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Int32, 4)
	require.NoError(t, err)

	err = b.CopyToDevice([]float32{1, 2, 3, 4}, x, 4)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestTransfer_Float16FromFloat32(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float16, 3)
	require.NoError(t, err)
	require.NoError(t, b.CopyToDevice([]float32{1, 0.5, -2}, x, 3))

	out := make([]float32, 3)
	require.NoError(t, b.CopyToHost(x, out, 3))
	// These values are exactly representable in half precision.
	require.Equal(t, []float32{1, 0.5, -2}, out)
}

func TestTransfer_Float16Bits(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float16, 2)
	require.NoError(t, err)

	bits := []uint16{
		float16.Fromfloat32(3.5).Bits(),
		float16.Fromfloat32(-0.25).Bits(),
	}
	require.NoError(t, b.CopyToDevice(bits, x, 2))

	// Raw bits and converted views agree on the same storage.
	out := make([]uint16, 2)
	require.NoError(t, b.CopyToHost(x, out, 2))
	require.Equal(t, bits, out)

	f := make([]float32, 2)
	require.NoError(t, b.CopyToHost(x, f, 2))
	require.Equal(t, []float32{3.5, -0.25}, f)
}

func TestTransfer_Uint8(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Uint8, 4)
	require.NoError(t, err)
	require.NoError(t, b.CopyToDevice([]uint8{0, 127, 200, 255}, x, 4))

	out := make([]uint8, 4)
	require.NoError(t, b.CopyToHost(x, out, 4))
	require.Equal(t, []uint8{0, 127, 200, 255}, out)
}

func TestTransfer_UnsupportedHost(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float32, 2)
	require.NoError(t, err)
	err = b.CopyToDevice([]string{"a", "b"}, x, 2)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}
