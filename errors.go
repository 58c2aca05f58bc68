package vdb

import (
	"errors"
	"io"
	"os"

	"github.com/hupe1980/vdb/engine"
)

// Sentinel errors, re-exported from the engine so callers only need this
// package.
var (
	ErrNotFound        = engine.ErrNotFound
	ErrAlreadyExists   = engine.ErrAlreadyExists
	ErrCorrupted       = engine.ErrCorrupted
	ErrInvalidArgument = engine.ErrInvalidArgument
	ErrClosed          = engine.ErrClosed
)

// ErrDimensionMismatch indicates an item/collection dimensionality mismatch.
type ErrDimensionMismatch = engine.ErrDimensionMismatch

// Status is the coarse result classification of an operation, mainly for
// human-facing output such as the CLI.
type Status int

const (
	StatusOK Status = iota
	StatusInvalidArgument
	StatusOutOfMemory
	StatusIO
	StatusNotFound
	StatusAlreadyExists
	StatusCorrupted
	StatusDimensionMismatch
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusIO:
		return "I/O error"
	case StatusNotFound:
		return "not found"
	case StatusAlreadyExists:
		return "already exists"
	case StatusCorrupted:
		return "data corrupted"
	case StatusDimensionMismatch:
		return "dimension mismatch"
	default:
		return "unknown error"
	}
}

// StatusOf classifies err. A nil error is StatusOK; errors that do not
// match the taxonomy map to StatusUnknown.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var dm *ErrDimensionMismatch
	switch {
	case errors.As(err, &dm):
		return StatusDimensionMismatch
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrClosed):
		return StatusInvalidArgument
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return StatusAlreadyExists
	case errors.Is(err, ErrCorrupted):
		return StatusCorrupted
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) ||
		errors.Is(err, io.ErrShortWrite) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, os.ErrClosed) {
		return StatusIO
	}

	return StatusUnknown
}
