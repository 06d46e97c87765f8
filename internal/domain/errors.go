package domain

import "errors"

// Error kinds raised by the field engine. Callers match them with errors.Is;
// every returned error wraps exactly one of these.
var (
	// ErrDimensionNotFound reports a declared role name that is not among the
	// variable's dimension names.
	ErrDimensionNotFound = errors.New("dimension not found")

	// ErrShapeMismatch reports a raw array whose rank does not fit the declared
	// roles, or two fields combined with different shapes.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrIndexOutOfRange reports a time or depth index beyond the axis extent.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Kind returns a short machine-readable name for one of the engine error kinds,
// or an empty string if err does not wrap any of them.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDimensionNotFound):
		return "dimension_not_found"
	case errors.Is(err, ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	default:
		return ""
	}
}
