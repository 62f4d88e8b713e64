package index

import "errors"

var (
	// ErrVectorCountMismatch is returned when the chunk and vector slices
	// passed to BuildSnapshot have different lengths.
	ErrVectorCountMismatch = errors.New("chunk and vector counts differ")

	// ErrDimensionMismatch is returned when vectors of different lengths are
	// mixed, or a query vector does not match the snapshot dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptSnapshot is returned when a snapshot file cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt index snapshot")
)
