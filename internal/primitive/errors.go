package primitive

import "errors"

// Error taxonomy. Backends wrap these with operation context in the
// "cpu:" / "webgpu:" prefix style, so callers can match with errors.Is.
var (
	// ErrDeviceOutOfMemory means an allocation could not be satisfied.
	// Recoverable: the caller may retry with a smaller request.
	ErrDeviceOutOfMemory = errors.New("device out of memory")

	// ErrDevice means the device runtime reported a non-success status
	// for any reason other than allocation failure. The operation is
	// lost; the backend instance may be unusable afterwards.
	ErrDevice = errors.New("device error")

	// ErrInvalidArgument means the caller violated a documented
	// precondition. Raised before any device work is issued.
	ErrInvalidArgument = errors.New("invalid argument")
)
