package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("mapped content"), 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("mapped content"), m.Bytes())
	assert.Equal(t, 14, m.Len())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // double close is safe
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	require.NoError(t, m.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}
