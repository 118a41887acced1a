// Package npz implements the NumPy .npz archive: a ZIP file of .npy members.
//
// Lists of arrays are stored under the positional keys arr_0, arr_1, ... in
// the same way numpy.savez stores positional arguments.
package npz

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/hupe1980/jsondata/ndarray"
	"github.com/hupe1980/jsondata/npy"
)

// ErrMissingEntry is returned when a requested key is not in the archive.
var ErrMissingEntry = errors.New("npz: missing entry")

const memberExt = ".npy"

// PositionalKey returns the key numpy.savez assigns to the i-th positional array.
func PositionalKey(i int) string {
	return "arr_" + strconv.Itoa(i)
}

// Writer adds arrays to an archive.
type Writer struct {
	zw     *zip.Writer
	method uint16
}

// NewWriter returns a Writer writing to w. With compressed set, members are
// deflated (numpy.savez_compressed); otherwise they are stored.
func NewWriter(w io.Writer, compressed bool) *Writer {
	method := zip.Store
	if compressed {
		method = zip.Deflate
	}
	return &Writer{zw: zip.NewWriter(w), method: method}
}

// Add stores a under key. The ".npy" member suffix is appended.
func (w *Writer) Add(key string, a *ndarray.Array) error {
	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   key + memberExt,
		Method: w.method,
	})
	if err != nil {
		return fmt.Errorf("npz: create %s: %w", key, err)
	}
	if err := npy.Write(fw, a); err != nil {
		return fmt.Errorf("npz: write %s: %w", key, err)
	}
	return nil
}

// Close writes the central directory. It does not close the underlying writer.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// WriteList stores arrays under positional keys.
func WriteList(w io.Writer, arrays []*ndarray.Array, compressed bool) error {
	zw := NewWriter(w, compressed)
	for i, a := range arrays {
		if err := zw.Add(PositionalKey(i), a); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Reader reads arrays from an archive.
type Reader struct {
	files map[string]*zip.File
	keys  []string
}

// NewReader opens an archive of the given size.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("npz: %w", err)
	}
	rd := &Reader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		key := strings.TrimSuffix(f.Name, memberExt)
		if _, dup := rd.files[key]; !dup {
			rd.keys = append(rd.keys, key)
		}
		rd.files[key] = f
	}
	sort.Strings(rd.keys)
	return rd, nil
}

// Keys returns the member keys in sorted order, without the ".npy" suffix.
func (r *Reader) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of members.
func (r *Reader) Len() int { return len(r.keys) }

// Get decodes the array stored under key.
func (r *Reader) Get(key string) (*ndarray.Array, error) {
	f, ok := r.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, key)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("npz: open %s: %w", key, err)
	}
	defer rc.Close()

	a, err := npy.ReadLimited(rc, int64(min(f.UncompressedSize64, math.MaxInt64)))
	if err != nil {
		return nil, fmt.Errorf("npz: %s: %w", key, err)
	}
	return a, nil
}

// List returns the arrays arr_0 .. arr_{n-1}, where n is the number of
// members, in index order. An archive whose members are not exactly the
// positional keys fails with ErrMissingEntry.
func (r *Reader) List() ([]*ndarray.Array, error) {
	out := make([]*ndarray.Array, 0, len(r.keys))
	for i := range r.keys {
		a, err := r.Get(PositionalKey(i))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ReadList is a shortcut for NewReader followed by List.
func ReadList(r io.ReaderAt, size int64) ([]*ndarray.Array, error) {
	rd, err := NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return rd.List()
}
