package primitive

// Buffer is an opaque, device-resident block of homogeneous elements.
// Concrete types are backend-specific; callers obtain them from Allocate
// and hand them back unchanged. Ownership stays with the caller: the
// primitives layer never retains a Buffer across calls except inside a
// backend's scratch cache, which callers never see.
type Buffer interface {
	// Device returns the device the buffer resides on.
	Device() Device

	// DType returns the element type.
	DType() DataType

	// Len returns the element count.
	Len() int

	// ByteSize returns the total size in bytes.
	ByteSize() int

	// View returns a sub-buffer of n elements starting at element offset
	// off, sharing the underlying storage. Used to slice batched GEMM
	// operands out of one allocation.
	View(off, n int) (Buffer, error)
}
