package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// Fault defines failure behavior for files matching a rule.
type Fault struct {
	// FailAfterBytes fails writes once this many bytes were written to the
	// file. -1 disables the limit.
	FailAfterBytes int64
	// FailOnSync makes Sync return an error.
	FailOnSync bool
	// FailOnTruncate makes Truncate return an error.
	FailOnTruncate bool
	// Err is the injected error. Defaults to the FaultyFS error.
	Err error
}

// FaultyFS is a FileSystem wrapper that injects errors into files whose
// path contains a registered pattern.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules map[string]Fault
	err   error
}

// NewFaultyFS creates a FaultyFS wrapping fsys (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS:    fsys,
		rules: make(map[string]Fault),
		err:   errors.New("injected fault error"),
	}
}

// AddRule registers a fault for files whose path contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// ClearRules removes all registered faults. Already-open files keep the
// fault they were opened with.
func (f *FaultyFS) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = make(map[string]Fault)
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	fault := Fault{FailAfterBytes: -1}
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
			if fault.FailAfterBytes == 0 {
				fault.FailAfterBytes = -1
			}
		}
	}
	if fault.Err == nil {
		fault.Err = f.err
	}
	f.mu.Unlock()

	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.FS.Stat(name) }
func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}
func (f *FaultyFS) Remove(name string) error             { return f.FS.Remove(name) }
func (f *FaultyFS) Rename(oldpath, newpath string) error { return f.FS.Rename(oldpath, newpath) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.fault.FailAfterBytes >= 0 && f.written+int64(len(p)) > f.fault.FailAfterBytes {
		allowed := f.fault.FailAfterBytes - f.written
		if allowed < 0 {
			allowed = 0
		}
		n, _ := f.File.Write(p[:allowed])
		f.written += int64(n)
		return n, f.fault.Err
	}
	n, err := f.File.Write(p)
	f.written += int64(n)
	return n, err
}

func (f *faultyFile) Sync() error {
	if f.fault.FailOnSync {
		return f.fault.Err
	}
	return f.File.Sync()
}

func (f *faultyFile) Truncate(size int64) error {
	if f.fault.FailOnTruncate {
		return f.fault.Err
	}
	return f.File.Truncate(size)
}
