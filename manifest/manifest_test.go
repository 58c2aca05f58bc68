package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vdb/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(nil, dir)

	want := &Manifest{Dimension: 128, Metric: model.MetricEuclidean, Count: 42}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The format stays human-inspectable.
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "dimension=128\nmetric=1\ncount=42\n", string(data))
}

func TestSaveRewritesWholeFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(nil, dir)

	require.NoError(t, s.Save(&Manifest{Dimension: 3, Metric: model.MetricCosine, Count: 0}))
	require.NoError(t, s.Save(&Manifest{Dimension: 3, Metric: model.MetricCosine, Count: 7}))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "dimension=3\nmetric=0\ncount=7\n", string(data))
}

func TestLoadMissing(t *testing.T) {
	s := NewStore(nil, t.TempDir())
	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorrupted(t *testing.T) {
	cases := map[string]string{
		"garbage":          "not a manifest at all",
		"missing line":     "dimension=3\nmetric=0\n",
		"extra line":       "dimension=3\nmetric=0\ncount=0\nextra=1\n",
		"wrong order":      "metric=0\ndimension=3\ncount=0\n",
		"bad dimension":    "dimension=abc\nmetric=0\ncount=0\n",
		"zero dimension":   "dimension=0\nmetric=0\ncount=0\n",
		"huge dimension":   "dimension=65537\nmetric=0\ncount=0\n",
		"bad metric":       "dimension=3\nmetric=cosine\ncount=0\n",
		"unknown metric":   "dimension=3\nmetric=9\ncount=0\n",
		"negative metric":  "dimension=3\nmetric=-1\ncount=0\n",
		"bad count":        "dimension=3\nmetric=0\ncount=minus\n",
		"truncated prefix": "dim=3\nmetric=0\ncount=0\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

			_, err := NewStore(nil, dir).Load()
			require.ErrorIs(t, err, ErrCorrupted)
		})
	}
}

func TestLoadBoundaryDimension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte("dimension=65536\nmetric=1\ncount=0\n"), 0o644))

	m, err := NewStore(nil, dir).Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(model.MaxDim), m.Dimension)
}
