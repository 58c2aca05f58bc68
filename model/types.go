package model

import (
	"errors"
	"fmt"
)

// MaxDim is the maximum supported vector dimension.
// 64K dimensions is far beyond any embedding model in practical use.
const MaxDim = 65536

// Metric identifies the distance/similarity function of a collection.
// The integer values are part of the on-disk metadata format.
type Metric int32

const (
	// MetricCosine is cosine similarity (higher = more similar).
	MetricCosine Metric = 0
	// MetricEuclidean is Euclidean (L2) distance (lower = more similar).
	MetricEuclidean Metric = 1
)

// ErrInvalidMetric is returned when a metric name or code is not recognized.
var ErrInvalidMetric = errors.New("invalid metric")

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == MetricCosine || m == MetricEuclidean
}

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "cosine"
	case MetricEuclidean:
		return "euclidean"
	default:
		return "unknown"
	}
}

// ParseMetric parses a metric name ("cosine" or "euclidean").
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "cosine":
		return MetricCosine, nil
	case "euclidean":
		return MetricEuclidean, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

// ValidDim reports whether dim is within the supported range.
func ValidDim(dim uint32) bool {
	return dim > 0 && dim <= MaxDim
}

// Vector is a dynamically sized buffer of float32 embedding values.
//
// A Vector exclusively owns its buffer: constructors and Clone always
// deep-copy, so two Vectors never alias the same memory.
type Vector struct {
	data []float32
}

// NewVector creates a zero-initialized vector of the given dimension.
func NewVector(dim uint32) (Vector, error) {
	if !ValidDim(dim) {
		return Vector{}, fmt.Errorf("invalid dimension: %d (must be 1-%d)", dim, MaxDim)
	}
	return Vector{data: make([]float32, dim)}, nil
}

// VectorFrom creates a vector holding a deep copy of values.
func VectorFrom(values []float32) (Vector, error) {
	if !ValidDim(uint32(len(values))) {
		return Vector{}, fmt.Errorf("invalid dimension: %d (must be 1-%d)", len(values), MaxDim)
	}
	data := make([]float32, len(values))
	copy(data, values)
	return Vector{data: data}, nil
}

// Dim returns the number of dimensions. Zero for an empty vector.
func (v Vector) Dim() int { return len(v.data) }

// IsEmpty reports whether the vector holds no data.
func (v Vector) IsEmpty() bool { return len(v.data) == 0 }

// Data returns the underlying float buffer.
//
// The slice is a view into the vector's own storage; callers that need to
// retain the values past the vector's lifetime must copy it.
func (v Vector) Data() []float32 { return v.data }

// Clone returns a deep copy with its own buffer.
func (v Vector) Clone() Vector {
	if len(v.data) == 0 {
		return Vector{}
	}
	data := make([]float32, len(v.data))
	copy(data, v.data)
	return Vector{data: data}
}

// Reset releases the buffer and zeroes the dimension.
// Resetting an already-empty vector is a no-op.
func (v *Vector) Reset() {
	if v == nil {
		return
	}
	v.data = nil
}

const (
	// MaxIDLen is the maximum identifier length in characters.
	MaxIDLen = 63
	// IDSlotSize is the fixed on-disk slot size for an identifier,
	// leaving room for at least one trailing zero byte.
	IDSlotSize = 64
)

// ID is a validated item identifier: 1 to 63 printable, non-control
// characters. The zero value is invalid and reports IsZero.
type ID struct {
	s string
}

// NewID validates s and returns it as an ID. Over-length or non-printable
// input fails instead of being truncated.
func NewID(s string) (ID, error) {
	if s == "" {
		return ID{}, errors.New("id must not be empty")
	}
	if len(s) > MaxIDLen {
		return ID{}, fmt.Errorf("id too long: %d bytes (max %d)", len(s), MaxIDLen)
	}
	for i := 0; i < len(s); i++ {
		if !printable(s[i]) {
			return ID{}, fmt.Errorf("id contains non-printable byte 0x%02x at offset %d", s[i], i)
		}
	}
	return ID{s: s}, nil
}

func (id ID) String() string { return id.s }

// IsZero reports whether id is the invalid zero value.
func (id ID) IsZero() bool { return id.s == "" }

// Slot returns the identifier zero-padded to its fixed on-disk slot.
func (id ID) Slot() [IDSlotSize]byte {
	var slot [IDSlotSize]byte
	copy(slot[:], id.s)
	return slot
}

// IDFromSlot reconstructs an ID from its on-disk slot. The identifier runs
// up to the first zero byte; padding beyond it is not significant.
func IDFromSlot(slot [IDSlotSize]byte) (ID, error) {
	n := 0
	for n < IDSlotSize && slot[n] != 0 {
		n++
	}
	if n == IDSlotSize {
		return ID{}, errors.New("id slot is not zero-terminated")
	}
	return NewID(string(slot[:n]))
}

func printable(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

// ValidName reports whether s is a usable collection name: non-empty, at
// most 63 printable characters. Collection names share the identifier
// character rules because they become directory names.
func ValidName(s string) bool {
	_, err := NewID(s)
	return err == nil
}

// Item is the unit of the append/iterate protocol: an identifier, an
// embedding vector and an optional opaque metadata blob (by convention a
// JSON document, but not validated as such at this layer).
type Item struct {
	ID       ID
	Vector   Vector
	Metadata []byte
}

// CollectionInfo is a point-in-time snapshot of a collection's shape.
type CollectionInfo struct {
	Name       string
	Dimension  uint32
	Metric     Metric
	NumVectors uint64
}
