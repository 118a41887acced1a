package fs

import (
	"io"
	"os"
)

// File is a file being written by the local blob store.
type File interface {
	io.WriteCloser
	Sync() error
	Name() string
}

// FileSystem is the subset of file system calls LocalStore makes for
// writes, deletes and listing.
type FileSystem interface {
	// CreateExclusive creates name for writing and fails if it exists.
	CreateExclusive(name string) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	MkdirAll(path string) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// OSFS implements FileSystem with the os package.
type OSFS struct{}

func (OSFS) CreateExclusive(name string) (File, error) {
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
}

func (OSFS) Remove(name string) error                   { return os.Remove(name) }
func (OSFS) Rename(oldpath, newpath string) error       { return os.Rename(oldpath, newpath) }
func (OSFS) MkdirAll(path string) error                 { return os.MkdirAll(path, 0o755) }
func (OSFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the file system LocalStore uses unless told otherwise.
var Default FileSystem = OSFS{}
