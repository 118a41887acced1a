// Package mmap maps local blobs read-only into memory.
//
// LocalStore reads through a File so arrays and archives are decoded from
// the page cache without a heap copy:
//
//	f, err := mmap.Open("layers.npy.list.npz", mmap.HintSequential)
//	if err != nil { ... }
//	defer f.Close()
//	data := f.Bytes()
//
// Hints map to madvise(2) on Unix and are ignored on Windows.
// Bytes must not be used after Close.
package mmap

import (
	"errors"
	"io"
	"math"
	"os"
	"sync/atomic"
)

// Hint tells the kernel how a mapping will be read.
type Hint int

const (
	HintNormal Hint = iota
	HintSequential
	HintRandom
)

var (
	// ErrClosed is returned by reads after Close.
	ErrClosed = errors.New("mmap: file closed")
	// ErrTooLarge is returned for files that do not fit the address space.
	ErrTooLarge = errors.New("mmap: file too large")
	// ErrNegativeOffset is returned by ReadAt for offsets below zero.
	ErrNegativeOffset = errors.New("mmap: negative offset")
)

// File is a read-only memory-mapped file.
type File struct {
	data   []byte
	unmap  func([]byte) error
	closed atomic.Bool
}

// Open maps the file at path. Errors from os.Open are returned as is, so
// a missing file satisfies errors.Is(err, os.ErrNotExist). Empty files are
// not mapped.
func Open(path string, hint Hint) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	switch {
	case size == 0:
		return &File{}, nil
	case size > math.MaxInt:
		return nil, ErrTooLarge
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, err
	}
	// Hints are advisory.
	_ = advise(data, hint)
	return &File{data: data, unmap: unmap}, nil
}

// Len returns the file size.
func (m *File) Len() int {
	return len(m.data)
}

// Bytes returns the mapped bytes, or nil after Close.
func (m *File) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// ReadAt implements io.ReaderAt over the mapping.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. Calling it again is a no-op.
func (m *File) Close() error {
	if m.closed.Swap(true) || m.data == nil {
		return nil
	}
	return m.unmap(m.data)
}
