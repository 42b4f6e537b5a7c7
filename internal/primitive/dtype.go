// Package primitive defines the device-abstracted numeric primitives contract
// shared by all compute backends.
package primitive

// DType is a constraint for element types the typed helpers operate on.
// Float16 has no native Go representation and is handled through its
// uint16 bit pattern at the transfer boundary.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// Float is the floating-point subset of DType. The unary transforms
// (Exp, Pow, Relu) are defined only over these.
type Float interface {
	~float32 | ~float64
}

// DataType represents runtime type information for device buffers.
type DataType int

// Supported element types.
const (
	Float16 DataType = iota
	Float32
	Float64
	Int32
	Int64
	Uint8
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the type belongs to the floating-point family.
// Float16 counts: it is a storage format for floating-point data.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// TypeOf infers the DataType for a generic element type T.
func TypeOf[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	default:
		panic("unsupported type")
	}
}
