// Package wal implements the single-file write-ahead log that makes an
// item append durable before it is applied to the segment files.
//
// The log holds at most one pending operation. An empty file is the
// "no pending operation" state; Commit returns to it by truncating.
package wal

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/vdb/internal/fs"
	"github.com/hupe1980/vdb/model"
)

// FileName is the log file name inside a collection directory.
const FileName = "wal.log"

// WAL manages the write-ahead log file of one collection.
type WAL struct {
	fs     fs.FileSystem
	file   fs.File
	path   string
	size   int64
	closed bool
}

// Open opens or creates the WAL at path. The caller must run Recover
// before the first Log.
func Open(fsys fs.FileSystem, path string) (*WAL, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &WAL{fs: fsys, file: f, path: path, size: stat.Size()}, nil
}

// Size returns the current log size in bytes.
func (w *WAL) Size() int64 { return w.size }

// Pending reports whether the log holds a pending operation.
func (w *WAL) Pending() bool { return w.size > 0 }

// Log serializes item as an append record, writes it and fsyncs. It must
// succeed before any segment file is touched.
func (w *WAL) Log(item *model.Item) error {
	if w.closed {
		return os.ErrClosed
	}

	rec := Record{
		Type:     RecordAppend,
		ID:       item.ID,
		Vector:   item.Vector.Data(),
		Metadata: item.Metadata,
	}
	buf := rec.Encode()

	n, err := w.file.Write(buf)
	w.size += int64(n)
	if err != nil {
		return fmt.Errorf("write WAL record: %w", err)
	}
	if n < len(buf) {
		return fmt.Errorf("write WAL record: %w", io.ErrShortWrite)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync WAL: %w", err)
	}
	return nil
}

// Commit marks the pending operation as applied by truncating the log to
// zero length. Called only after all segment fsyncs succeeded.
func (w *WAL) Commit() error {
	if w.closed {
		return os.ErrClosed
	}
	if err := w.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate WAL: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync WAL: %w", err)
	}
	w.size = 0
	return nil
}

// Recover discards any leftover log content. A non-empty log on open is
// evidence of an append that did not commit; the content is dropped
// without replay, so a durably logged but uncommitted append is lost.
// It returns the number of discarded bytes.
func (w *WAL) Recover() (int64, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	if w.size == 0 {
		return 0, nil
	}
	discarded := w.size
	if err := w.file.Truncate(0); err != nil {
		return 0, fmt.Errorf("truncate WAL: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return 0, fmt.Errorf("sync WAL: %w", err)
	}
	w.size = 0
	return discarded, nil
}

// Reader returns a reader over the pending record, using a separate read
// handle. The caller closes it.
func (w *WAL) Reader() (io.ReadCloser, error) {
	f, err := w.fs.OpenFile(w.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Close closes the log file. Safe to call twice.
func (w *WAL) Close() error {
	if w == nil || w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
