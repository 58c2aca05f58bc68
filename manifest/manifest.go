// Package manifest persists the per-collection metadata file.
//
// The format is a deliberately human-inspectable text file with exactly
// three key=value lines in fixed order:
//
//	dimension=<u32>
//	metric=<int>
//	count=<u64>
//
// The file is only ever rewritten as a whole, never appended to.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/vdb/internal/fs"
	"github.com/hupe1980/vdb/model"
)

// FileName is the metadata file name inside a collection directory.
const FileName = "collection.meta"

// ErrCorrupted is returned when the metadata file exists but cannot be
// parsed or fails validation. It is distinct from plain I/O failure so
// callers can tell "storage unreadable" from "storage unavailable".
var ErrCorrupted = errors.New("corrupted collection metadata")

// Manifest is the persisted shape of a collection. Dimension and Metric
// are immutable after creation; Count is the only mutable field.
type Manifest struct {
	Dimension uint32
	Metric    model.Metric
	Count     uint64
}

// Store reads and rewrites the metadata file of one collection directory.
type Store struct {
	mu  sync.Mutex
	fs  fs.FileSystem
	dir string
}

// NewStore creates a store for the collection directory dir.
func NewStore(fsys fs.FileSystem, dir string) *Store {
	if fsys == nil {
		fsys = fs.Default
	}
	return &Store{fs: fsys, dir: dir}
}

// Path returns the metadata file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load reads and validates the metadata file. A missing file surfaces the
// underlying not-exist error; malformed content yields ErrCorrupted.
func (s *Store) Load() (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fs.OpenFile(s.Path(), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		return nil, fmt.Errorf("%w: expected 3 lines, got %d", ErrCorrupted, len(lines))
	}

	dim, err := parseLine(lines[0], "dimension")
	if err != nil {
		return nil, err
	}
	metric, err := parseLine(lines[1], "metric")
	if err != nil {
		return nil, err
	}
	count, err := parseLine(lines[2], "count")
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Dimension: uint32(dim),
		Metric:    model.Metric(metric),
		Count:     count,
	}
	if dim > model.MaxDim || !model.ValidDim(m.Dimension) {
		return nil, fmt.Errorf("%w: dimension %d out of range", ErrCorrupted, dim)
	}
	if metric > 1<<31-1 || !m.Metric.Valid() {
		return nil, fmt.Errorf("%w: unknown metric code %d", ErrCorrupted, metric)
	}
	return m, nil
}

func parseLine(line, key string) (uint64, error) {
	value, ok := strings.CutPrefix(line, key+"=")
	if !ok {
		return 0, fmt.Errorf("%w: expected %q line, got %q", ErrCorrupted, key, line)
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s value %q", ErrCorrupted, key, value)
	}
	return v, nil
}

// Save rewrites the whole metadata file. The write goes to a temp file
// that is fsynced and renamed into place, so a crash mid-save never leaves
// a half-written metadata file behind.
func (s *Store) Save(m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := fmt.Sprintf("dimension=%d\nmetric=%d\ncount=%d\n", m.Dimension, int32(m.Metric), m.Count)

	path := s.Path()
	tmpPath := path + ".tmp"
	f, err := s.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return err
	}

	if err := s.fs.Rename(tmpPath, path); err != nil {
		s.fs.Remove(tmpPath)
		return err
	}
	return nil
}
