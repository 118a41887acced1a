package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ReadAll reads the whole blob stored under name.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	if m, ok := blob.(Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}

	size := blob.Size()
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	n, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == size) {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return buf[:n], nil
}

// WriteAll creates name, streams fn's output into it and commits it. If fn
// or the commit fails, the write is aborted where the blob supports it.
func WriteAll(ctx context.Context, store BlobStore, name string, fn func(w io.Writer) error) (err error) {
	wb, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if a, ok := wb.(Abortable); ok {
				_ = a.Abort()
			}
		}
	}()

	if err = fn(wb); err != nil {
		return err
	}
	return wb.Close()
}

// Reader adapts a Blob to io.ReaderAt for APIs like archive readers that
// need random access.
func Reader(ctx context.Context, b Blob) io.ReaderAt {
	return readerAt{ctx: ctx, b: b}
}

type readerAt struct {
	ctx context.Context
	b   Blob
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	return r.b.ReadAt(r.ctx, p, off)
}
