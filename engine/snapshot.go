package engine

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/vdb/internal/segment"
	"github.com/hupe1980/vdb/manifest"
	"github.com/hupe1980/vdb/model"
	"github.com/hupe1980/vdb/wal"
)

var snapshotMagic = [4]byte{'V', 'D', 'B', 'S'}

const snapshotVersion = uint16(1)

// snapshotFiles is the section order inside a snapshot stream.
var snapshotFiles = []string{segment.EmbeddingsFile, segment.IDsFile, segment.MetadataFile}

// Snapshot writes a portable, zstd-compressed copy of the collection to w:
// a plain magic/version header, then a compressed stream holding the
// collection shape and the three segment files as length-prefixed sections.
// The WAL is transient state and is not part of a snapshot.
func (e *Engine) Snapshot(w io.Writer) error {
	if e == nil || e.closed {
		return ErrClosed
	}

	hdr := make([]byte, 0, 6)
	hdr = append(hdr, snapshotMagic[:]...)
	hdr = binary.LittleEndian.AppendUint16(hdr, snapshotVersion)
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	var shape [16]byte
	binary.LittleEndian.PutUint32(shape[0:4], e.dim)
	binary.LittleEndian.PutUint32(shape[4:8], uint32(int32(e.metric)))
	binary.LittleEndian.PutUint64(shape[8:16], e.count)
	if _, err := zw.Write(shape[:]); err != nil {
		zw.Close()
		return err
	}

	for _, name := range snapshotFiles {
		if err := e.snapshotFile(zw, name); err != nil {
			zw.Close()
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}
	e.logger.Info("snapshot written", "name", e.name, "count", e.count)
	return nil
}

func (e *Engine) snapshotFile(zw io.Writer, name string) error {
	path := filepath.Join(e.dir, name)
	f, err := e.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(size))
	if _, err := zw.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := io.CopyN(zw, f, size); err != nil {
		return err
	}
	return nil
}

// Restore recreates a collection under baseDir from a snapshot stream and
// opens it. It fails with ErrAlreadyExists if the target directory exists
// and with ErrCorrupted on a malformed stream.
func Restore(baseDir, name string, r io.Reader, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)

	if !model.ValidName(name) {
		return nil, fmt.Errorf("%w: collection name %q", ErrInvalidArgument, name)
	}

	dir := filepath.Join(baseDir, name)
	if _, err := o.fs.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, dir)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var hdr [6]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated snapshot header", ErrCorrupted)
	}
	if [4]byte(hdr[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad snapshot magic", ErrCorrupted)
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrCorrupted, v)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var shape [16]byte
	if _, err := io.ReadFull(zr, shape[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated snapshot shape", ErrCorrupted)
	}
	dim := binary.LittleEndian.Uint32(shape[0:4])
	metric := model.Metric(int32(binary.LittleEndian.Uint32(shape[4:8])))
	count := binary.LittleEndian.Uint64(shape[8:16])
	if !model.ValidDim(dim) {
		return nil, fmt.Errorf("%w: snapshot dimension %d out of range", ErrCorrupted, dim)
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: snapshot metric code %d", ErrCorrupted, int32(metric))
	}

	if err := o.fs.MkdirAll(dir, o.dirPerm); err != nil {
		return nil, err
	}

	restoreErr := func() error {
		for _, fname := range snapshotFiles {
			if err := restoreFile(o, filepath.Join(dir, fname), zr); err != nil {
				return fmt.Errorf("restore %s: %w", fname, err)
			}
		}
		ms := manifest.NewStore(o.fs, dir)
		return ms.Save(&manifest.Manifest{Dimension: dim, Metric: metric, Count: count})
	}()
	if restoreErr != nil {
		// Best effort: do not leave a half-restored collection behind.
		for _, fname := range snapshotFiles {
			o.fs.Remove(filepath.Join(dir, fname))
		}
		o.fs.Remove(filepath.Join(dir, manifest.FileName))
		o.fs.Remove(filepath.Join(dir, wal.FileName))
		o.fs.Remove(dir)
		return nil, restoreErr
	}

	e, err := openFiles(o, name, dir, manifest.NewStore(o.fs, dir), dim, metric, count)
	if err != nil {
		return nil, err
	}
	e.logger.Info("snapshot restored", "name", name, "count", count)
	return e, nil
}

func restoreFile(o *options, path string, zr io.Reader) error {
	var lenBuf [8]byte
	if _, err := io.ReadFull(zr, lenBuf[:]); err != nil {
		return fmt.Errorf("%w: truncated section length", ErrCorrupted)
	}
	size := binary.LittleEndian.Uint64(lenBuf[:])

	f, err := o.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(f, zr, int64(size)); err != nil {
		f.Close()
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: truncated section payload", ErrCorrupted)
		}
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
