// Package compress selects stream compression by file suffix.
//
// Compression is transparent to the formats above it: a delimited text array
// named "x.npy.gz" is gzip text, "x.npy.zst" is zstd text, and so on.
package compress

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a stream compression algorithm.
type Algorithm uint8

const (
	// None stores data uncompressed.
	None Algorithm = iota
	// Gzip is RFC 1952 gzip, the format NumPy reads for ".gz" files.
	Gzip
	// Zstd is Zstandard (better ratio, good for cold data).
	Zstd
	// LZ4 is the LZ4 frame format (fast, good for hot data).
	LZ4
	// S2 is the S2 extension of Snappy.
	S2
	// Bzip2 is read-only.
	Bzip2
)

// ErrWriteUnsupported is returned by NewWriter for read-only algorithms.
var ErrWriteUnsupported = errors.New("compress: algorithm does not support writing")

var algorithms = []struct {
	alg  Algorithm
	ext  string
	name string
}{
	{Gzip, ".gz", "gzip"},
	{Zstd, ".zst", "zstd"},
	{LZ4, ".lz4", "lz4"},
	{S2, ".s2", "s2"},
	{Bzip2, ".bz2", "bzip2"},
}

// Ext returns the file suffix for the algorithm, including the leading dot.
// None has an empty suffix.
func (a Algorithm) Ext() string {
	for _, e := range algorithms {
		if e.alg == a {
			return e.ext
		}
	}
	return ""
}

func (a Algorithm) String() string {
	for _, e := range algorithms {
		if e.alg == a {
			return e.name
		}
	}
	return "none"
}

// FromName detects the algorithm from the suffix of a file name.
func FromName(name string) Algorithm {
	for _, e := range algorithms {
		if strings.HasSuffix(name, e.ext) {
			return e.alg
		}
	}
	return None
}

// Parse maps a configuration string ("gzip", "gz", "zstd", ...) to an Algorithm.
func Parse(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return None, nil
	}
	for _, e := range algorithms {
		if s == e.name || s == strings.TrimPrefix(e.ext, ".") {
			return e.alg, nil
		}
	}
	return None, fmt.Errorf("compress: unknown algorithm %q", s)
}

// NewWriter wraps w with a compressing writer. level 0 selects the
// algorithm's default. Closing the returned writer flushes the stream but
// does not close w.
func NewWriter(w io.Writer, alg Algorithm, level int) (io.WriteCloser, error) {
	switch alg {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case Zstd:
		opts := []zstd.EOption{}
		if level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		return zstd.NewWriter(w, opts...)
	case LZ4:
		zw := lz4.NewWriter(w)
		if level != 0 {
			if err := zw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
				return nil, err
			}
		}
		return zw, nil
	case S2:
		var opts []s2.WriterOption
		switch {
		case level >= 3:
			opts = append(opts, s2.WriterBestCompression())
		case level == 2:
			opts = append(opts, s2.WriterBetterCompression())
		}
		return s2.NewWriter(w, opts...), nil
	case Bzip2:
		return nil, fmt.Errorf("%w: %s", ErrWriteUnsupported, alg)
	default:
		return nil, fmt.Errorf("compress: unknown algorithm %d", alg)
	}
}

func lz4Level(level int) lz4.CompressionLevel {
	switch {
	case level <= 1:
		return lz4.Level1
	case level >= 9:
		return lz4.Level9
	default:
		return lz4.CompressionLevel(1 << (8 + level))
	}
}

// NewReader wraps r with a decompressing reader. Closing the returned reader
// releases decoder resources but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		dec := getZstdDecoder()
		if err := dec.Reset(r); err != nil {
			putZstdDecoder(dec)
			return nil, err
		}
		return &zstdReadCloser{dec: dec}, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("compress: unknown algorithm %d", alg)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// ZSTD decoders are expensive to build; keep them pooled.
var zstdDecoderPool sync.Pool

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	_ = dec.Reset(nil)
	zstdDecoderPool.Put(dec)
}

type zstdReadCloser struct {
	dec  *zstd.Decoder
	once sync.Once
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.once.Do(func() { putZstdDecoder(z.dec) })
	return nil
}
