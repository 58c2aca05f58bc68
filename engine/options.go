package engine

import (
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/vdb/internal/fs"
)

type options struct {
	fs      fs.FileSystem
	logger  *slog.Logger
	dirPerm os.FileMode
}

// Option configures engine construction.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		fs:      fs.Default,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		dirPerm: 0o755,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFileSystem overrides the file system implementation. Passing nil
// keeps the default local file system. Intended for tests that inject
// faults.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithLogger sets the structured logger. Passing nil keeps the default
// no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDirPerm sets the permission bits used when creating collection
// directories.
func WithDirPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.dirPerm = perm
	}
}
