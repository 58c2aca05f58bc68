package vdb

import (
	"fmt"
	"io"

	"github.com/hupe1980/vdb/engine"
	"github.com/hupe1980/vdb/model"
)

// Collection is a handle to one open collection. It is a thin facade over
// the storage engine that accepts raw strings and float slices, which is
// what front ends like the CLI work with.
type Collection struct {
	engine *engine.Engine
}

// Create creates a new collection under baseDir and opens it.
func Create(baseDir, name string, dim uint32, metric model.Metric, opts ...engine.Option) (*Collection, error) {
	e, err := engine.Create(baseDir, name, dim, metric, opts...)
	if err != nil {
		return nil, err
	}
	return &Collection{engine: e}, nil
}

// Open opens an existing collection under baseDir.
func Open(baseDir, name string, opts ...engine.Option) (*Collection, error) {
	e, err := engine.Open(baseDir, name, opts...)
	if err != nil {
		return nil, err
	}
	return &Collection{engine: e}, nil
}

// Restore recreates a collection from a snapshot stream and opens it.
func Restore(baseDir, name string, r io.Reader, opts ...engine.Option) (*Collection, error) {
	e, err := engine.Restore(baseDir, name, r, opts...)
	if err != nil {
		return nil, err
	}
	return &Collection{engine: e}, nil
}

// Append durably stores one item built from raw parts. The identifier is
// validated here, before any I/O.
func (c *Collection) Append(id string, vector []float32, metadata []byte) error {
	if c == nil || c.engine == nil {
		return ErrClosed
	}

	mid, err := model.NewID(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	vec, err := model.VectorFrom(vector)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return c.engine.Append(&model.Item{ID: mid, Vector: vec, Metadata: metadata})
}

// AppendItem durably stores an already-constructed item.
func (c *Collection) AppendItem(item *model.Item) error {
	if c == nil || c.engine == nil {
		return ErrClosed
	}
	return c.engine.Append(item)
}

// Iterate invokes fn for every committed item in insertion order.
// Returning false stops the iteration without error.
func (c *Collection) Iterate(fn func(item *model.Item) bool) error {
	if c == nil || c.engine == nil {
		return ErrClosed
	}
	return c.engine.Iterate(fn)
}

// Info returns a snapshot of the collection shape.
func (c *Collection) Info() model.CollectionInfo {
	if c == nil || c.engine == nil {
		return model.CollectionInfo{}
	}
	return c.engine.Info()
}

// VectorAt returns a copy of the i-th committed embedding.
func (c *Collection) VectorAt(i uint64) ([]float32, error) {
	if c == nil || c.engine == nil {
		return nil, ErrClosed
	}
	return c.engine.VectorAt(i)
}

// Snapshot writes a portable compressed copy of the collection to w.
func (c *Collection) Snapshot(w io.Writer) error {
	if c == nil || c.engine == nil {
		return ErrClosed
	}
	return c.engine.Snapshot(w)
}

// Close rewrites the metadata file with the final count and releases all
// file handles. Safe on a nil or already-closed handle.
func (c *Collection) Close() error {
	if c == nil {
		return nil
	}
	return c.engine.Close()
}
