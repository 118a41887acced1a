package jsondata

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/hupe1980/jsondata/blobstore"
	"github.com/hupe1980/jsondata/compress"
	"github.com/hupe1980/jsondata/delimited"
	"github.com/hupe1980/jsondata/jsonl"
	"github.com/hupe1980/jsondata/ndarray"
	"github.com/hupe1980/jsondata/npy"
	"github.com/hupe1980/jsondata/npz"
)

// Store saves and reads values on a blob store. It is safe for concurrent
// use as long as callers do not write the same names concurrently.
type Store struct {
	opts  options
	store blobstore.BlobStore
}

// New creates a Store. Without WithStore, files live in a local directory
// (WithRoot, default ".").
func New(optFns ...Option) *Store {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	store := opts.store
	if store == nil {
		store = blobstore.NewLocalStore(opts.root)
	}
	return &Store{opts: opts, store: store}
}

// BlobStore returns the underlying blob store.
func (s *Store) BlobStore() blobstore.BlobStore {
	return s.store
}

// Save writes data under name. The layout depends on the value:
//
//   - maps: one file per entry, named by SiblingName, in key order
//   - *ndarray.Array: delimited text at name + ".npy.gz"
//   - []*ndarray.Array: an archive at name + ".npy.list.npz"
//   - other slices: one encoded record per line at name
//   - anything else: a single encoded record at name
func (s *Store) Save(ctx context.Context, name string, data any) error {
	if name == "" {
		return ErrEmptyName
	}

	kind := ClassifyValue(data)
	if kind == KindMap {
		stem, ext := splitExt(name)
		return s.saveMap(ctx, name, stem, ext, data)
	}

	file, write, err := s.encoder(name, kind, data)
	if err != nil {
		return err
	}

	start := time.Now()
	var cw countingWriter
	err = blobstore.WriteAll(ctx, s.store, file, func(w io.Writer) error {
		cw.w = s.opts.resourceController.WrapWriter(ctx, w)
		return write(&cw)
	})
	if err != nil {
		err = fmt.Errorf("jsondata: save %s: %w", file, err)
	}

	s.opts.metricsCollector.RecordSave(kind, cw.n, time.Since(start), err)
	s.opts.logger.LogSave(ctx, file, kind, cw.n, err)
	return err
}

// saveMap writes one file per entry. Nested maps extend stem and keep the
// extension of the outermost name, so a dotted key never becomes one.
func (s *Store) saveMap(ctx context.Context, name, stem, ext string, data any) error {
	entries := sortedEntries(reflect.ValueOf(data))
	for _, e := range entries {
		child := stem + "-" + e.label
		var err error
		if ClassifyValue(e.value) == KindMap {
			err = s.saveMap(ctx, child+ext, child, ext, e.value)
		} else {
			err = s.Save(ctx, child+ext, e.value)
		}
		if err != nil {
			return err
		}
	}
	s.opts.logger.LogMap(ctx, name, len(entries))
	return nil
}

// encoder returns the file name and the encoding function for a leaf value.
func (s *Store) encoder(name string, kind Kind, data any) (string, func(io.Writer) error, error) {
	switch kind {
	case KindArray:
		a, _ := asArray(data)
		return name + arrayMarker + s.opts.compression.Ext(), func(w io.Writer) error {
			return s.writeArray(w, a)
		}, nil
	case KindArrayList:
		arrays, err := arrayList(data)
		if err != nil {
			return "", nil, err
		}
		return name + archiveSuffix, func(w io.Writer) error {
			return npz.WriteList(w, arrays, s.opts.archiveCompressed)
		}, nil
	case KindRecords:
		return name, func(w io.Writer) error {
			jw := jsonl.NewWriter(w, s.opts.codec)
			v := reflect.ValueOf(data)
			for i := 0; i < v.Len(); i++ {
				if err := jw.Write(v.Index(i).Interface()); err != nil {
					return err
				}
			}
			return jw.Flush()
		}, nil
	default:
		return name, func(w io.Writer) error {
			jw := jsonl.NewWriter(w, s.opts.codec)
			if err := jw.Write(data); err != nil {
				return err
			}
			return jw.Flush()
		}, nil
	}
}

func (s *Store) writeArray(w io.Writer, a *ndarray.Array) error {
	zw, err := compress.NewWriter(w, s.opts.compression, s.opts.compressionLevel)
	if err != nil {
		return err
	}
	if err := delimited.Write(zw, a, func(o *delimited.WriteOptions) {
		o.Format = s.opts.textFormat
	}); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Read loads the file called name. The result depends on the name:
//
//   - containing ".npy.list.npz": []*ndarray.Array in archive index order
//   - containing ".npy": *ndarray.Array, decompressed by suffix
//   - anything else: []any, one decoded record per line
func (s *Store) Read(ctx context.Context, name string) (any, error) {
	switch FormatOf(name) {
	case FormatArchive:
		return s.ReadArrayList(ctx, name)
	case FormatArray:
		return s.ReadArray(ctx, name)
	default:
		return s.ReadRecords(ctx, name)
	}
}

// ReadArrayList reads an archive written for a sequence of arrays.
func (s *Store) ReadArrayList(ctx context.Context, name string) ([]*ndarray.Array, error) {
	var arrays []*ndarray.Array
	err := s.withBlob(ctx, name, FormatArchive, func(b blobstore.Blob) error {
		r := s.opts.resourceController.WrapReaderAt(ctx, blobstore.Reader(ctx, b))
		var err error
		arrays, err = npz.ReadList(r, b.Size())
		return err
	})
	if err != nil {
		return nil, err
	}
	return arrays, nil
}

// ReadArray reads a single array. Delimited text is the saved layout; a
// binary .npy file is detected by its magic and decoded as well.
func (s *Store) ReadArray(ctx context.Context, name string) (*ndarray.Array, error) {
	var a *ndarray.Array
	err := s.withStream(ctx, name, FormatArray, func(r io.Reader) error {
		zr, err := compress.NewReader(r, compress.FromName(name))
		if err != nil {
			return err
		}
		defer func() { _ = zr.Close() }()

		br := bufio.NewReader(zr)
		if head, _ := br.Peek(len(npy.Magic)); bytes.Equal(head, []byte(npy.Magic)) {
			a, err = npy.Read(br)
			return err
		}
		a, err = delimited.Read(br, func(o *delimited.ReadOptions) {
			o.Ndmin = s.opts.ndmin
			o.MaxLineSize = s.opts.maxLineSize
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ReadRecords reads a record file. An empty file yields an empty slice.
func (s *Store) ReadRecords(ctx context.Context, name string) ([]any, error) {
	var records []any
	err := s.withStream(ctx, name, FormatRecords, func(r io.Reader) error {
		var err error
		records, err = jsonl.ReadAll(r, s.opts.codec, s.opts.maxLineSize)
		return translateError(name, err)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReadList reads name and always returns a sequence: the arrays of an
// archive, the rows of an array, or the records of a record file.
func (s *Store) ReadList(ctx context.Context, name string) ([]any, error) {
	v, err := s.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case []*ndarray.Array:
		out := make([]any, len(t))
		for i, a := range t {
			out[i] = a
		}
		return out, nil
	case *ndarray.Array:
		return arrayRows(t), nil
	}
	return nil, fmt.Errorf("jsondata: unexpected value %T", v)
}

// arrayRows splits an array along its first axis. Rows of a 1-D array are
// float64 values; rows of higher-dimensional arrays are arrays.
func arrayRows(a *ndarray.Array) []any {
	shape := a.Shape()
	data := a.Data()
	switch len(shape) {
	case 0:
		return []any{data[0]}
	case 1:
		out := make([]any, len(data))
		for i, x := range data {
			out[i] = x
		}
		return out
	}

	n, inner := shape[0], shape[1:]
	out := make([]any, n)
	if n == 0 {
		return out
	}
	step := len(data) / n
	for i := range n {
		row, _ := ndarray.New(inner, data[i*step:(i+1)*step])
		out[i] = row
	}
	return out
}

// ReadMap reads back a map saved under name. Sibling files of name are
// listed and each one is read under the key it was saved with. Nested maps
// come back flat with keys joined by "-".
func (s *Store) ReadMap(ctx context.Context, name string) (map[string]any, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	stem, ext := splitExt(name)
	prefix := stem + "-"

	names, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("jsondata: list %s: %w", prefix, err)
	}

	out := make(map[string]any)
	for _, file := range names {
		key, ok := siblingKey(strings.TrimPrefix(file, prefix), ext)
		if !ok {
			continue
		}
		v, err := s.Read(ctx, file)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	s.opts.logger.LogMap(ctx, name, len(out))
	return out, nil
}

// siblingKey recovers the map key from the part of a sibling file name that
// follows the "stem-" prefix.
func siblingKey(rest, ext string) (string, bool) {
	if strings.HasSuffix(rest, archiveSuffix) {
		rest = strings.TrimSuffix(rest, archiveSuffix)
	} else if i := strings.LastIndex(rest, arrayMarker); i >= 0 && isArraySuffix(rest[i+len(arrayMarker):]) {
		rest = rest[:i]
	}
	if !strings.HasSuffix(rest, ext) {
		return "", false
	}
	key := strings.TrimSuffix(rest, ext)
	if key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}

// isArraySuffix reports whether tail is what Save appends after ".npy".
func isArraySuffix(tail string) bool {
	return tail == compress.FromName(tail).Ext()
}

// withBlob opens name, accounts its size against the memory limit and
// records the read.
func (s *Store) withBlob(ctx context.Context, name string, format Format, fn func(blobstore.Blob) error) (err error) {
	if name == "" {
		return ErrEmptyName
	}

	start := time.Now()
	var size int64
	defer func() {
		s.opts.metricsCollector.RecordRead(format, size, time.Since(start), err)
		s.opts.logger.LogRead(ctx, name, format, size, err)
	}()

	b, err := s.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("jsondata: open %s: %w", name, err)
	}
	defer func() { _ = b.Close() }()

	size = b.Size()
	rc := s.opts.resourceController
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return err
	}
	defer rc.ReleaseMemory(size)

	if err := fn(b); err != nil {
		return fmt.Errorf("jsondata: read %s: %w", name, err)
	}
	return nil
}

// withStream is withBlob for sequential decoders.
func (s *Store) withStream(ctx context.Context, name string, format Format, fn func(io.Reader) error) error {
	return s.withBlob(ctx, name, format, func(b blobstore.Blob) error {
		if b.Size() == 0 {
			return fn(bytes.NewReader(nil))
		}
		rc, err := b.ReadRange(ctx, 0, b.Size())
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		return fn(s.opts.resourceController.WrapReader(ctx, rc))
	})
}

// ReadInto reads the record file name, decoding each line into a T.
// A nil store reads from the current directory.
func ReadInto[T any](ctx context.Context, s *Store, name string) ([]T, error) {
	if s == nil {
		s = New()
	}
	var out []T
	err := s.withStream(ctx, name, FormatRecords, func(r io.Reader) error {
		var err error
		out, err = jsonl.ReadAllInto[T](r, s.opts.codec, s.opts.maxLineSize)
		return translateError(name, err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Save writes data under name using a Store built from opts.
func Save(ctx context.Context, name string, data any, opts ...Option) error {
	return New(opts...).Save(ctx, name, data)
}

// Read loads name using a Store built from opts.
func Read(ctx context.Context, name string, opts ...Option) (any, error) {
	return New(opts...).Read(ctx, name)
}

// ReadList loads name as a sequence using a Store built from opts.
func ReadList(ctx context.Context, name string, opts ...Option) ([]any, error) {
	return New(opts...).ReadList(ctx, name)
}

// ReadMap loads a saved map using a Store built from opts.
func ReadMap(ctx context.Context, name string, opts ...Option) (map[string]any, error) {
	return New(opts...).ReadMap(ctx, name)
}
