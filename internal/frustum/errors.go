package frustum

import "errors"

var (
	// ErrDegenerateTransform is returned when a transform yields a plane whose
	// normal cannot be normalised (zero length, NaN or Inf).
	ErrDegenerateTransform = errors.New("frustum: degenerate transform")

	// ErrBadDimensions is returned when the transform is not 4x4.
	ErrBadDimensions = errors.New("frustum: transform must be 4x4")
)
