package vdb

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vdb/model"
)

func TestCollectionLifecycle(t *testing.T) {
	base := t.TempDir()

	col, err := Create(base, "demo", 3, model.MetricCosine)
	require.NoError(t, err)

	require.NoError(t, col.Append("a", []float32{1, 0, 0}, nil))
	require.NoError(t, col.Append("b", []float32{0, 1, 0}, []byte(`{"k":1}`)))
	require.NoError(t, col.Close())

	col, err = Open(base, "demo")
	require.NoError(t, err)
	defer col.Close()

	info := col.Info()
	assert.Equal(t, "demo", info.Name)
	assert.Equal(t, uint32(3), info.Dimension)
	assert.Equal(t, model.MetricCosine, info.Metric)
	assert.Equal(t, uint64(2), info.NumVectors)

	var ids []string
	require.NoError(t, col.Iterate(func(item *model.Item) bool {
		ids = append(ids, item.ID.String())
		return true
	}))
	assert.Equal(t, []string{"a", "b"}, ids)

	v, err := col.VectorAt(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)
}

func TestAppendValidatesBeforeIO(t *testing.T) {
	col, err := Create(t.TempDir(), "demo", 2, model.MetricEuclidean)
	require.NoError(t, err)
	defer col.Close()

	require.ErrorIs(t, col.Append("", []float32{1, 2}, nil), ErrInvalidArgument)
	require.ErrorIs(t, col.Append("bad\x07id", []float32{1, 2}, nil), ErrInvalidArgument)
	require.ErrorIs(t, col.Append("ok", nil, nil), ErrInvalidArgument)

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, col.Append("ok", []float32{1, 2, 3}, nil), &dm)

	assert.Equal(t, uint64(0), col.Info().NumVectors)
}

func TestSnapshotRestore(t *testing.T) {
	base := t.TempDir()

	col, err := Create(base, "src", 2, model.MetricCosine)
	require.NoError(t, err)
	defer col.Close()
	require.NoError(t, col.Append("a", []float32{1, 2}, nil))

	var buf bytes.Buffer
	require.NoError(t, col.Snapshot(&buf))

	restored, err := Restore(base, "dst", &buf)
	require.NoError(t, err)
	defer restored.Close()
	assert.Equal(t, uint64(1), restored.Info().NumVectors)
}

func TestCloseNilSafe(t *testing.T) {
	var col *Collection
	require.NoError(t, col.Close())

	c := &Collection{}
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Append("a", []float32{1}, nil), ErrClosed)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusOK, StatusOf(nil))
	assert.Equal(t, StatusNotFound, StatusOf(ErrNotFound))
	assert.Equal(t, StatusAlreadyExists, StatusOf(ErrAlreadyExists))
	assert.Equal(t, StatusCorrupted, StatusOf(ErrCorrupted))
	assert.Equal(t, StatusInvalidArgument, StatusOf(ErrInvalidArgument))
	assert.Equal(t, StatusInvalidArgument, StatusOf(ErrClosed))
	assert.Equal(t, StatusDimensionMismatch, StatusOf(&ErrDimensionMismatch{Expected: 3, Actual: 2}))
	assert.Equal(t, StatusIO, StatusOf(&os.PathError{Op: "write", Path: "x", Err: os.ErrPermission}))
	assert.Equal(t, StatusUnknown, StatusOf(errors.New("anything else")))

	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "dimension mismatch", StatusDimensionMismatch.String())
	assert.Equal(t, "unknown error", Status(99).String())
}

func TestStatusTexts(t *testing.T) {
	want := map[Status]string{
		StatusOK:                "OK",
		StatusInvalidArgument:   "invalid argument",
		StatusOutOfMemory:       "out of memory",
		StatusIO:                "I/O error",
		StatusNotFound:          "not found",
		StatusAlreadyExists:     "already exists",
		StatusCorrupted:         "data corrupted",
		StatusDimensionMismatch: "dimension mismatch",
		StatusUnknown:           "unknown error",
	}
	for s, text := range want {
		assert.Equal(t, text, s.String())
	}
}
