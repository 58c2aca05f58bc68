package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric(t *testing.T) {
	assert.True(t, MetricCosine.Valid())
	assert.True(t, MetricEuclidean.Valid())
	assert.False(t, Metric(2).Valid())
	assert.False(t, Metric(-1).Valid())

	assert.Equal(t, "cosine", MetricCosine.String())
	assert.Equal(t, "euclidean", MetricEuclidean.String())
	assert.Equal(t, "unknown", Metric(42).String())

	m, err := ParseMetric("cosine")
	require.NoError(t, err)
	assert.Equal(t, MetricCosine, m)

	m, err = ParseMetric("euclidean")
	require.NoError(t, err)
	assert.Equal(t, MetricEuclidean, m)

	_, err = ParseMetric("manhattan")
	require.ErrorIs(t, err, ErrInvalidMetric)
}

func TestNewVector(t *testing.T) {
	v, err := NewVector(3)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Dim())
	assert.Equal(t, []float32{0, 0, 0}, v.Data())

	_, err = NewVector(0)
	require.Error(t, err)

	_, err = NewVector(MaxDim + 1)
	require.Error(t, err)

	v, err = NewVector(MaxDim)
	require.NoError(t, err)
	assert.Equal(t, MaxDim, v.Dim())
}

func TestVectorDeepCopy(t *testing.T) {
	src := []float32{1, 2, 3}
	v, err := VectorFrom(src)
	require.NoError(t, err)

	// Mutating the source must not affect the vector.
	src[0] = 99
	assert.Equal(t, []float32{1, 2, 3}, v.Data())

	c := v.Clone()
	c.Data()[1] = 42
	assert.Equal(t, []float32{1, 2, 3}, v.Data())
	assert.Equal(t, []float32{1, 42, 3}, c.Data())
}

func TestVectorReset(t *testing.T) {
	v, err := VectorFrom([]float32{1, 2})
	require.NoError(t, err)

	v.Reset()
	assert.True(t, v.IsEmpty())
	assert.Equal(t, 0, v.Dim())

	// Resetting an already-empty vector is a no-op.
	v.Reset()
	assert.True(t, v.IsEmpty())

	var nilVec *Vector
	nilVec.Reset()
}

func TestNewID(t *testing.T) {
	id, err := NewID("vec-001")
	require.NoError(t, err)
	assert.Equal(t, "vec-001", id.String())
	assert.False(t, id.IsZero())

	_, err = NewID("")
	require.Error(t, err)

	_, err = NewID(strings.Repeat("a", MaxIDLen+1))
	require.Error(t, err)

	id, err = NewID(strings.Repeat("a", MaxIDLen))
	require.NoError(t, err)
	assert.Len(t, id.String(), MaxIDLen)

	_, err = NewID("has\ttab")
	require.Error(t, err)

	_, err = NewID("has\x00nul")
	require.Error(t, err)

	assert.True(t, ID{}.IsZero())
}

func TestIDSlotRoundTrip(t *testing.T) {
	id, err := NewID("short")
	require.NoError(t, err)

	slot := id.Slot()
	assert.Equal(t, byte('s'), slot[0])
	assert.Equal(t, byte(0), slot[5])
	assert.Equal(t, byte(0), slot[IDSlotSize-1])

	back, err := IDFromSlot(slot)
	require.NoError(t, err)
	assert.Equal(t, id, back)

	// A slot with no zero terminator is rejected.
	var full [IDSlotSize]byte
	for i := range full {
		full[i] = 'x'
	}
	_, err = IDFromSlot(full)
	require.Error(t, err)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("demo"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName(strings.Repeat("n", 64)))
	assert.False(t, ValidName("bad\nname"))
}
