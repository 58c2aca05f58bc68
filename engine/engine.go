// Package engine implements the on-disk, append-only storage engine with
// write-ahead-log based crash recovery.
//
// A collection lives in a single directory:
//
//	<base_dir>/<name>/collection.meta   text metadata (dimension/metric/count)
//	<base_dir>/<name>/embeddings.seg    float32 column
//	<base_dir>/<name>/ids.seg           identifier column
//	<base_dir>/<name>/metadata.seg      length-prefixed metadata column
//	<base_dir>/<name>/wal.log           transient, 0 or 1 pending record
//
// Every append follows a strict total order: WAL write + fsync, then the
// three segment writes + fsyncs, then count advance and WAL truncation.
// That order is the engine's sole correctness mechanism; iteration only
// ever sees records whose segment fsyncs completed.
//
// The engine is single-writer by contract. It holds no lock and performs
// no file locking; two processes opening the same directory corrupt the
// append protocol.
package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/hupe1980/vdb/internal/fs"
	"github.com/hupe1980/vdb/internal/mmap"
	"github.com/hupe1980/vdb/internal/segment"
	"github.com/hupe1980/vdb/manifest"
	"github.com/hupe1980/vdb/model"
	"github.com/hupe1980/vdb/wal"
)

// Engine is the storage engine handle for one open collection. It owns the
// segment files, the WAL and the metadata file for its lifetime.
type Engine struct {
	fs     fs.FileSystem
	logger *slog.Logger

	name   string
	dir    string
	dim    uint32
	metric model.Metric
	count  uint64

	manifest *manifest.Store
	segments *segment.Store
	wal      *wal.WAL
	vectors  *mmap.Mapping // lazy read-only view of the embeddings segment

	closed bool
}

// Create creates a new collection under baseDir and opens it. It fails
// with ErrInvalidArgument on a bad name, dimension or metric, and with
// ErrAlreadyExists if the collection directory is already present.
func Create(baseDir, name string, dim uint32, metric model.Metric, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)

	if !model.ValidName(name) {
		return nil, fmt.Errorf("%w: collection name %q", ErrInvalidArgument, name)
	}
	if !model.ValidDim(dim) {
		return nil, fmt.Errorf("%w: dimension %d (must be 1-%d)", ErrInvalidArgument, dim, model.MaxDim)
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: metric %d", ErrInvalidArgument, int32(metric))
	}

	dir := filepath.Join(baseDir, name)
	if _, err := o.fs.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, dir)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := o.fs.MkdirAll(dir, o.dirPerm); err != nil {
		return nil, err
	}

	ms := manifest.NewStore(o.fs, dir)
	if err := ms.Save(&manifest.Manifest{Dimension: dim, Metric: metric, Count: 0}); err != nil {
		return nil, err
	}

	e, err := openFiles(o, name, dir, ms, dim, metric, 0)
	if err != nil {
		return nil, err
	}
	e.logger.Info("collection created", "name", name, "dimension", dim, "metric", metric.String())
	return e, nil
}

// Open opens an existing collection. It fails with ErrNotFound if the
// metadata file is absent and with ErrCorrupted if it is malformed.
func Open(baseDir, name string, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)

	dir := filepath.Join(baseDir, name)
	ms := manifest.NewStore(o.fs, dir)

	m, err := ms.Load()
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		case errors.Is(err, manifest.ErrCorrupted):
			return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
		default:
			return nil, err
		}
	}

	e, err := openFiles(o, name, dir, ms, m.Dimension, m.Metric, m.Count)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("collection opened", "name", name, "dimension", e.dim, "metric", e.metric.String(), "count", e.count)
	return e, nil
}

// openFiles opens the segment files and the WAL, then runs recovery. Every
// handle acquired before a failure is released again.
func openFiles(o *options, name, dir string, ms *manifest.Store, dim uint32, metric model.Metric, count uint64) (*Engine, error) {
	segs, err := segment.Open(o.fs, dir, dim)
	if err != nil {
		return nil, err
	}

	w, err := wal.Open(o.fs, filepath.Join(dir, wal.FileName))
	if err != nil {
		segs.Close()
		return nil, err
	}

	discarded, err := w.Recover()
	if err != nil {
		w.Close()
		segs.Close()
		return nil, err
	}
	if discarded > 0 {
		o.logger.Warn("discarded incomplete write-ahead record", "name", name, "bytes", discarded)
	}

	return &Engine{
		fs:       o.fs,
		logger:   o.logger,
		name:     name,
		dir:      dir,
		dim:      dim,
		metric:   metric,
		count:    count,
		manifest: ms,
		segments: segs,
		wal:      w,
	}, nil
}

// Append durably stores one item. Validation happens before any I/O; after
// that the WAL record is written and fsynced, the segment records are
// written and fsynced, and only then is the count advanced and the WAL
// truncated. On failure the committed count is unchanged; a non-empty WAL
// left behind is discarded by the next Open.
func (e *Engine) Append(item *model.Item) error {
	if e == nil || e.closed {
		return ErrClosed
	}
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidArgument)
	}
	if item.ID.IsZero() {
		return fmt.Errorf("%w: item id is empty", ErrInvalidArgument)
	}
	if uint32(item.Vector.Dim()) != e.dim {
		return &ErrDimensionMismatch{Expected: int(e.dim), Actual: item.Vector.Dim()}
	}

	if err := e.wal.Log(item); err != nil {
		e.logger.Error("append failed", "name", e.name, "id", item.ID.String(), "stage", "wal", "error", err)
		return err
	}
	if err := e.segments.Append(item); err != nil {
		e.logger.Error("append failed", "name", e.name, "id", item.ID.String(), "stage", "segments", "error", err)
		return err
	}

	e.count++
	if err := e.wal.Commit(); err != nil {
		e.logger.Error("append failed", "name", e.name, "id", item.ID.String(), "stage", "commit", "error", err)
		return err
	}

	e.logger.Debug("append committed", "name", e.name, "id", item.ID.String(), "count", e.count)
	return nil
}

// Iterate invokes fn for every committed item in insertion order.
// Returning false from fn stops the iteration without error.
func (e *Engine) Iterate(fn func(item *model.Item) bool) error {
	if e == nil || e.closed {
		return ErrClosed
	}
	if err := e.segments.Iterate(fn); err != nil {
		if errors.Is(err, segment.ErrCorrupted) {
			return fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
		return err
	}
	return nil
}

// Info returns a snapshot of the collection shape. It never fails on a
// valid handle, including a closed one.
func (e *Engine) Info() model.CollectionInfo {
	return model.CollectionInfo{
		Name:       e.name,
		Dimension:  e.dim,
		Metric:     e.metric,
		NumVectors: e.count,
	}
}

// VectorAt returns a copy of the i-th committed embedding via a read-only
// memory mapping of the embeddings segment. The mapping is established
// lazily and grown when appends outrun it.
func (e *Engine) VectorAt(i uint64) ([]float32, error) {
	if e == nil || e.closed {
		return nil, ErrClosed
	}
	if i >= e.count {
		return nil, fmt.Errorf("%w: index %d of %d vectors", ErrNotFound, i, e.count)
	}

	stride := uint64(e.dim) * 4
	end := (i + 1) * stride
	if uint64(e.vectors.Len()) < end {
		if err := e.remapVectors(); err != nil {
			return nil, err
		}
	}
	if uint64(e.vectors.Len()) < end {
		return nil, fmt.Errorf("%w: embeddings segment shorter than committed count", ErrCorrupted)
	}

	buf := e.vectors.Bytes()[i*stride : end]
	out := make([]float32, e.dim)
	for j := range out {
		out[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
	}
	return out, nil
}

func (e *Engine) remapVectors() error {
	if err := e.vectors.Close(); err != nil {
		return err
	}
	e.vectors = nil

	m, err := mmap.Open(filepath.Join(e.dir, segment.EmbeddingsFile))
	if err != nil {
		return err
	}
	e.vectors = m
	return nil
}

// Close rewrites the metadata file with the final count and releases all
// file handles. It is idempotent and safe on a nil handle.
func (e *Engine) Close() error {
	if e == nil || e.closed {
		return nil
	}
	e.closed = true

	var firstErr error
	if err := e.manifest.Save(&manifest.Manifest{Dimension: e.dim, Metric: e.metric, Count: e.count}); err != nil {
		firstErr = err
	}
	if err := e.vectors.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	e.vectors = nil
	if err := e.wal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.segments.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	e.logger.Debug("collection closed", "name", e.name, "count", e.count)
	return firstErr
}
