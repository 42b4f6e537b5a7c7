package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slate-ml/slate/internal/primitive"
)

// alloc32 allocates a Float32 buffer holding data.
func alloc32(t *testing.T, b *Backend, data []float32) primitive.Buffer {
	t.Helper()
	buf, err := b.Allocate(primitive.Float32, len(data))
	require.NoError(t, err)
	require.NoError(t, b.CopyToDevice(data, buf, len(data)))
	return buf
}

// read32 copies n elements back to the host.
func read32(t *testing.T, b *Backend, buf primitive.Buffer, n int) []float32 {
	t.Helper()
	out := make([]float32, n)
	require.NoError(t, b.CopyToHost(buf, out, n))
	return out
}

func TestBackend_Identity(t *testing.T) {
	b := New()
	defer b.Close()

	require.Equal(t, "CPU", b.Name())
	require.Equal(t, primitive.CPU, b.Device())
}

func TestBackend_AllocateFree(t *testing.T) {
	b := New()
	defer b.Close()

	buf, err := b.Allocate(primitive.Float32, 16)
	require.NoError(t, err)
	require.Equal(t, 16, buf.Len())
	require.Equal(t, 64, buf.ByteSize())
	require.Equal(t, primitive.Float32, buf.DType())

	require.NoError(t, b.Free(buf))

	err = b.Free(buf)
	require.ErrorIs(t, err, primitive.ErrDevice)
}

func TestBackend_AllocateNegative(t *testing.T) {
	b := New()
	defer b.Close()

	_, err := b.Allocate(primitive.Float32, -1)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestBackend_UseAfterFree(t *testing.T) {
	b := New()
	defer b.Close()

	buf, err := b.Allocate(primitive.Float32, 4)
	require.NoError(t, err)
	require.NoError(t, b.Free(buf))

	err = b.Fill(buf, float32(1), 4)
	require.ErrorIs(t, err, primitive.ErrDevice)
}

func TestBackend_DTypeMismatch(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float32, 4)
	require.NoError(t, err)
	y, err := b.Allocate(primitive.Int32, 4)
	require.NoError(t, err)

	err = b.Add(x, y, x, 4)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestBackend_Stats(t *testing.T) {
	b := New()
	defer b.Close()

	buf, err := b.Allocate(primitive.Float32, 8)
	require.NoError(t, err)

	s := b.Stats()
	require.Equal(t, int64(1), s.Allocs)
	require.Equal(t, int64(32), s.BytesAllocated)

	require.NoError(t, b.Fill(buf, float32(0), 8))
	require.Equal(t, s.Ops+1, b.Stats().Ops)

	require.NoError(t, b.Free(buf))
	require.Equal(t, int64(1), b.Stats().Frees)
}

// A failed precondition must not count as issued work.
func TestBackend_NoWorkOnInvalidArgument(t *testing.T) {
	b := New()
	defer b.Close()

	x, err := b.Allocate(primitive.Float32, 4)
	require.NoError(t, err)

	before := b.Stats().Ops
	err = b.Add(x, x, x, 100) // capacity exceeded
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
	require.Equal(t, before, b.Stats().Ops)
}

func TestBuffer_View(t *testing.T) {
	b := New()
	defer b.Close()

	x := alloc32(t, b, []float32{0, 1, 2, 3, 4, 5, 6, 7})

	v, err := x.View(2, 4)
	require.NoError(t, err)
	require.Equal(t, []float32{2, 3, 4, 5}, read32(t, b, v, 4))

	// Writes through the view land in the parent storage.
	require.NoError(t, b.Fill(v, float32(-1), 4))
	require.Equal(t, []float32{0, 1, -1, -1, -1, -1, 6, 7}, read32(t, b, x, 8))

	_, err = x.View(6, 4)
	require.ErrorIs(t, err, primitive.ErrInvalidArgument)
}

func TestBackend_Synchronize(t *testing.T) {
	b := New()
	defer b.Close()
	require.NoError(t, b.Synchronize())
}

func TestBackend_ForeignBuffer(t *testing.T) {
	b := New()
	defer b.Close()

	err := b.Fill(foreignBuffer{}, float32(0), 1)
	require.True(t, errors.Is(err, primitive.ErrInvalidArgument))
}

type foreignBuffer struct{}

func (foreignBuffer) Device() primitive.Device  { return primitive.WebGPU }
func (foreignBuffer) DType() primitive.DataType { return primitive.Float32 }
func (foreignBuffer) Len() int                  { return 1 }
func (foreignBuffer) ByteSize() int             { return 4 }
func (foreignBuffer) View(off, n int) (primitive.Buffer, error) {
	return nil, primitive.ErrInvalidArgument
}
