// Package mmap provides read-only memory mapping of segment files.
package mmap

import "os"

// Mapping is a read-only memory-mapped view of a file.
type Mapping struct {
	data []byte
}

// Open maps the file at path into memory as read-only. Mapping an empty
// file yields a zero-length Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size == 0 {
		return &Mapping{}, nil
	}

	data, err := mmap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the mapped view. The slice becomes invalid after Close.
func (m *Mapping) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.data
}

// Len returns the mapped size in bytes.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.data)
}

// Close unmaps the view. Safe on nil and double close.
func (m *Mapping) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return munmap(data)
}
