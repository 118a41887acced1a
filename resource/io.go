package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with rate limiting.
type RateLimitedWriter struct {
	w   io.Writer
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{
		w:   w,
		rc:  rc,
		ctx: ctx,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (n int, err error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader with rate limiting.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

// Read charges the limiter for the bytes actually read.
func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// WrapReader returns r unchanged when rc is nil, otherwise a rate-limited reader.
func (rc *Controller) WrapReader(ctx context.Context, r io.Reader) io.Reader {
	if rc == nil {
		return r
	}
	return NewRateLimitedReader(ctx, r, rc)
}

// WrapWriter returns w unchanged when rc is nil, otherwise a rate-limited writer.
func (rc *Controller) WrapWriter(ctx context.Context, w io.Writer) io.Writer {
	if rc == nil {
		return w
	}
	return NewRateLimitedWriter(ctx, w, rc)
}

// RateLimitedReaderAt wraps an io.ReaderAt with rate limiting.
type RateLimitedReaderAt struct {
	r   io.ReaderAt
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReaderAt creates a new RateLimitedReaderAt.
func NewRateLimitedReaderAt(ctx context.Context, r io.ReaderAt, rc *Controller) *RateLimitedReaderAt {
	return &RateLimitedReaderAt{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	n, err = r.r.ReadAt(p, off)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// WrapReaderAt returns r unchanged when rc is nil, otherwise a rate-limited reader.
func (rc *Controller) WrapReaderAt(ctx context.Context, r io.ReaderAt) io.ReaderAt {
	if rc == nil {
		return r
	}
	return NewRateLimitedReaderAt(ctx, r, rc)
}
