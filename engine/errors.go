package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("storage engine is closed")
	// ErrNotFound is returned when the collection does not exist on disk.
	ErrNotFound = errors.New("collection not found")
	// ErrAlreadyExists is returned when creating over an existing collection.
	ErrAlreadyExists = errors.New("collection already exists")
	// ErrCorrupted is returned when on-disk state cannot be read back
	// (malformed metadata, truncated segment records).
	ErrCorrupted = errors.New("collection data corrupted")
	// ErrInvalidArgument is returned for validation failures detected
	// before any I/O.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrDimensionMismatch indicates an item/collection dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
