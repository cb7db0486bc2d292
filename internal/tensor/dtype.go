// Package tensor provides the symbolic tensor expression language for the
// Axon compiler: shapes, scalar index expressions, and tensors defined
// either as placeholders or as computations over their output indices.
package tensor

// DataType represents the element type of a symbolic tensor.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}
