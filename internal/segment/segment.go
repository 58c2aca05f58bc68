// Package segment implements the three append-only column files that hold
// committed items in insertion order:
//
//	embeddings.seg  raw little-endian float32 arrays, dim*4 bytes per item
//	ids.seg         fixed 64-byte zero-padded identifier slots
//	metadata.seg    4-byte little-endian length prefix + payload bytes
//
// Records are written embeddings first, identifiers second, metadata last,
// and all three files are fsynced before an append reports success.
package segment

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vdb/internal/fs"
	"github.com/hupe1980/vdb/model"
)

// Segment file names inside a collection directory.
const (
	EmbeddingsFile = "embeddings.seg"
	IDsFile        = "ids.seg"
	MetadataFile   = "metadata.seg"
)

// ErrCorrupted is returned when a segment cannot produce a complete record,
// e.g. a truncated file or an unreadable identifier slot.
var ErrCorrupted = errors.New("corrupted segment record")

// Store owns the three segment files of one collection.
type Store struct {
	fs  fs.FileSystem
	dir string
	dim uint32

	embeddings fs.File
	ids        fs.File
	metadata   fs.File
}

// Open opens (creating if absent) the segment files under dir for a
// collection of the given dimension.
func Open(fsys fs.FileSystem, dir string, dim uint32) (*Store, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	if !model.ValidDim(dim) {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}

	s := &Store{fs: fsys, dir: dir, dim: dim}

	var err error
	for _, open := range []struct {
		name string
		dst  *fs.File
	}{
		{EmbeddingsFile, &s.embeddings},
		{IDsFile, &s.ids},
		{MetadataFile, &s.metadata},
	} {
		*open.dst, err = fsys.OpenFile(filepath.Join(dir, open.name), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Dim returns the configured vector dimension.
func (s *Store) Dim() uint32 { return s.dim }

// Append writes one record to each of the three files in the fixed order
// embeddings, identifiers, metadata, then fsyncs all three. The caller must
// not advance its committed count unless Append returns nil.
func (s *Store) Append(item *model.Item) error {
	if uint32(item.Vector.Dim()) != s.dim {
		return fmt.Errorf("vector dimension %d does not match segment dimension %d", item.Vector.Dim(), s.dim)
	}

	emb := make([]byte, s.dim*4)
	for i, f := range item.Vector.Data() {
		binary.LittleEndian.PutUint32(emb[i*4:], math.Float32bits(f))
	}
	if err := writeFull(s.embeddings, emb); err != nil {
		return fmt.Errorf("append embeddings: %w", err)
	}

	slot := item.ID.Slot()
	if err := writeFull(s.ids, slot[:]); err != nil {
		return fmt.Errorf("append ids: %w", err)
	}

	meta := make([]byte, 4+len(item.Metadata))
	binary.LittleEndian.PutUint32(meta, uint32(len(item.Metadata)))
	copy(meta[4:], item.Metadata)
	if err := writeFull(s.metadata, meta); err != nil {
		return fmt.Errorf("append metadata: %w", err)
	}

	// The files are independent, so the commit barrier can fsync them in
	// parallel; all three must succeed before the append is committed.
	var g errgroup.Group
	for _, f := range []fs.File{s.embeddings, s.ids, s.metadata} {
		g.Go(f.Sync)
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("sync segments: %w", err)
	}
	return nil
}

func writeFull(f fs.File, buf []byte) error {
	n, err := f.Write(buf)
	if err != nil {
		return err
	}
	if n < len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

// Count derives the number of committed records from the embeddings
// segment size.
func (s *Store) Count() (uint64, error) {
	stat, err := s.embeddings.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(stat.Size()) / uint64(s.dim*4), nil
}

// Iterate reads the three files in lockstep from the start and invokes fn
// once per committed item, in insertion order. Returning false from fn
// stops the iteration without error. A file that ends mid-record yields
// ErrCorrupted.
//
// Iteration uses separate read handles and never observes the WAL; only
// committed segment content is visible.
func (s *Store) Iterate(fn func(item *model.Item) bool) error {
	readers := make([]*bufio.Reader, 3)
	for i, name := range []string{EmbeddingsFile, IDsFile, MetadataFile} {
		f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_RDONLY, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		readers[i] = bufio.NewReader(f)
	}
	embR, idsR, metaR := readers[0], readers[1], readers[2]

	emb := make([]byte, s.dim*4)
	var slot [model.IDSlotSize]byte
	var lenBuf [4]byte

	for {
		if _, err := io.ReadFull(embR, emb); err != nil {
			if err == io.EOF {
				return nil // clean end of the segment
			}
			return fmt.Errorf("%w: embeddings cut mid-record: %v", ErrCorrupted, err)
		}

		if _, err := io.ReadFull(idsR, slot[:]); err != nil {
			return fmt.Errorf("%w: ids segment ends before embeddings: %v", ErrCorrupted, err)
		}
		if _, err := io.ReadFull(metaR, lenBuf[:]); err != nil {
			return fmt.Errorf("%w: metadata segment ends before embeddings: %v", ErrCorrupted, err)
		}
		metaLen := binary.LittleEndian.Uint32(lenBuf[:])
		var meta []byte
		if metaLen > 0 {
			meta = make([]byte, metaLen)
			if _, err := io.ReadFull(metaR, meta); err != nil {
				return fmt.Errorf("%w: metadata payload cut mid-record: %v", ErrCorrupted, err)
			}
		}

		id, err := model.IDFromSlot(slot)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupted, err)
		}

		values := make([]float32, s.dim)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(emb[i*4:]))
		}
		vec, err := model.VectorFrom(values)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupted, err)
		}

		if !fn(&model.Item{ID: id, Vector: vec, Metadata: meta}) {
			return nil
		}
	}
}

// Close closes all three files. Safe to call twice; returns the first
// close error.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*fs.File{&s.embeddings, &s.ids, &s.metadata} {
		if *f == nil {
			continue
		}
		if err := (*f).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		*f = nil
	}
	return firstErr
}
