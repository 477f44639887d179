package index

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose width differs from the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidDimension indicates an index configured with a non-positive width.
	ErrInvalidDimension = errors.New("vector dimension must be positive")

	// ErrInvalidID indicates a zero task ID.
	ErrInvalidID = errors.New("id must be non-zero")
)
