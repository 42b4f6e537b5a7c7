package primitive

// Primitives is the uniform contract every compute backend implements.
// One implementation services one device; callers pick a backend once at
// startup and hold it for the lifetime of their worker.
//
// All counts are element counts. Operations are asynchronous with respect
// to the device where the backend supports it: they enqueue work on the
// backend's execution context and return. Value-returning reductions,
// host transfers, and Synchronize are synchronous by necessity.
//
// Aliased input/output buffers are allowed only when read and write
// positions coincide per element (x == y is safe, partial overlap is not).
type Primitives interface {
	// Allocate requests device memory for n elements of dtype.
	// Fails with ErrDeviceOutOfMemory when the device cannot satisfy it.
	Allocate(dtype DataType, n int) (Buffer, error)

	// Free releases memory obtained from Allocate. Freeing an already
	// freed buffer surfaces the device's own failure as ErrDevice.
	Free(b Buffer) error

	// Fill sets every one of the first n elements of x to value, which
	// must be assignable to x's element type.
	Fill(x Buffer, value any, n int) error

	// Copy copies n elements device-to-device: y[i] = x[i].
	Copy(x, y Buffer, n int) error

	// CopyToDevice transfers n elements from the host slice into x.
	// The host slice must not be reused until the call returns.
	CopyToDevice(host any, x Buffer, n int) error

	// CopyToHost transfers n elements from x into the host slice.
	// Synchronous: the data is host-visible when the call returns.
	CopyToHost(x Buffer, host any, n int) error

	// AddScalar computes y[i] = v + x[i].
	AddScalar(v any, x, y Buffer, n int) error

	// MulScalar computes y[i] = v * x[i].
	MulScalar(v any, x, y Buffer, n int) error

	// Add computes c[i] = a[i] + b[i].
	Add(a, b, c Buffer, n int) error

	// Sub computes c[i] = a[i] - b[i].
	Sub(a, b, c Buffer, n int) error

	// Mul computes c[i] = a[i] * b[i].
	Mul(a, b, c Buffer, n int) error

	// Exp computes y[i] = e^x[i]. Floating-point element types only.
	Exp(x, y Buffer, n int) error

	// Pow computes y[i] = x[i]^p. Floating-point element types only.
	Pow(x, y Buffer, p float64, n int) error

	// Relu computes y[i] = max(x[i], 0). Floating-point element types only.
	Relu(x, y Buffer, n int) error

	// Sum returns the sum of the first n elements as x's element type.
	// Partial-sum order is unspecified, so floating-point results are
	// reproducible only within tolerance across runs and devices.
	Sum(x Buffer, n int) (any, error)

	// Max returns the maximum of the first n elements.
	Max(x Buffer, n int) (any, error)

	// MaxElement returns the index of the first occurrence of the maximum
	// under the implementation's traversal order. NaN handling for
	// floating types is implementation-defined.
	MaxElement(x Buffer, n int) (int, error)

	// TopK writes the k largest of the first n elements of x into values
	// and their original positions into indices (Int32), sorted descending
	// by value with ties broken by ascending original index.
	// k > n fails with ErrInvalidArgument before any device work; k == 0
	// is a no-op.
	TopK(x Buffer, k, n int, values, indices Buffer) error

	// Transpose2D writes into y the dims[0] x dims[1] matrix x with axes
	// swapped.
	Transpose2D(x Buffer, dims [2]int, y Buffer) error

	// Transpose3D writes into y the tensor x with axes reordered so that
	// source axis perm[i] becomes output axis i.
	Transpose3D(x Buffer, dims, perm [3]int, y Buffer) error

	// Transpose4D is Transpose3D for rank 4.
	Transpose4D(x Buffer, dims, perm [4]int, y Buffer) error

	// Gemm computes c = alpha*op(a)*op(b) + beta*c for Float32 buffers,
	// where op is identity or transpose per flag, op(a) is m x k, op(b) is
	// k x n and c is m x n, all row-major from the caller's perspective.
	Gemm(a, b Buffer, transA, transB bool, m, n, k int, alpha, beta float32, c Buffer) error

	// GemmBatch repeats Gemm for batch independent operand triples at
	// element offsets i*m*k, i*k*n, i*m*n.
	GemmBatch(a, b Buffer, transA, transB bool, m, n, k int, alpha, beta float32, c Buffer, batch int) error

	// Synchronize blocks until all previously enqueued work completed.
	Synchronize() error

	// Device returns the device this backend services.
	Device() Device

	// Name returns a human-readable backend description.
	Name() string

	// Stats returns operation and allocation counters.
	Stats() Stats

	// Close releases backend-owned resources, including scratch buffers.
	Close() error
}

// Stats counts the device work a backend has issued. Tests use it to
// observe that failed preconditions issue no work.
type Stats struct {
	// Allocs and Frees count explicit Allocate/Free calls plus internal
	// scratch allocations.
	Allocs int64
	Frees  int64

	// BytesAllocated is the running total of allocated bytes.
	BytesAllocated int64

	// Ops counts primitive operations issued to the device.
	Ops int64
}
