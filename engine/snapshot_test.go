package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vdb/model"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	base := t.TempDir()

	e, err := Create(base, "src", 3, model.MetricEuclidean)
	require.NoError(t, err)
	defer e.Close()

	items := []*model.Item{
		testItem(t, "a", []float32{1, 2, 3}, []byte(`{"n":1}`)),
		testItem(t, "b", []float32{-1, 0.5, 0}, nil),
	}
	for _, it := range items {
		require.NoError(t, e.Append(it))
	}

	var buf bytes.Buffer
	require.NoError(t, e.Snapshot(&buf))

	restored, err := Restore(base, "copy", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer restored.Close()

	info := restored.Info()
	assert.Equal(t, "copy", info.Name)
	assert.Equal(t, uint32(3), info.Dimension)
	assert.Equal(t, model.MetricEuclidean, info.Metric)
	assert.Equal(t, uint64(2), info.NumVectors)

	got := collectItems(t, restored)
	require.Len(t, got, 2)
	for i, want := range items {
		assert.Equal(t, want.ID, got[i].ID)
		assert.Equal(t, want.Vector.Data(), got[i].Vector.Data())
		assert.Equal(t, want.Metadata, got[i].Metadata)
	}

	// The restored collection accepts further appends.
	require.NoError(t, restored.Append(testItem(t, "c", []float32{9, 9, 9}, nil)))
	assert.Equal(t, uint64(3), restored.Info().NumVectors)
}

func TestRestoreRejectsExisting(t *testing.T) {
	base := t.TempDir()

	e, err := Create(base, "src", 2, model.MetricCosine)
	require.NoError(t, err)
	defer e.Close()

	var buf bytes.Buffer
	require.NoError(t, e.Snapshot(&buf))

	_, err = Restore(base, "src", bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRestoreRejectsGarbage(t *testing.T) {
	base := t.TempDir()

	_, err := Restore(base, "x", bytes.NewReader([]byte("definitely not a snapshot")))
	require.ErrorIs(t, err, ErrCorrupted)

	_, err = Restore(base, "x", bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestRestoreTruncatedStream(t *testing.T) {
	base := t.TempDir()

	e, err := Create(base, "src", 2, model.MetricCosine)
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.Append(testItem(t, "a", []float32{1, 2}, []byte("meta"))))

	var buf bytes.Buffer
	require.NoError(t, e.Snapshot(&buf))

	_, err = Restore(base, "partial", bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	require.Error(t, err)

	// No half-restored collection is left behind.
	_, err = Open(base, "partial")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotClosedEngine(t *testing.T) {
	e, err := Create(t.TempDir(), "src", 2, model.MetricCosine)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	var buf bytes.Buffer
	require.ErrorIs(t, e.Snapshot(&buf), ErrClosed)
}
