package jsondata

import (
	"github.com/hupe1980/jsondata/blobstore"
	"github.com/hupe1980/jsondata/codec"
	"github.com/hupe1980/jsondata/compress"
	"github.com/hupe1980/jsondata/delimited"
	"github.com/hupe1980/jsondata/jsonl"
	"github.com/hupe1980/jsondata/resource"
)

type options struct {
	store              blobstore.BlobStore
	root               string
	codec              codec.Codec
	compression        compress.Algorithm
	compressionLevel   int
	archiveCompressed  bool
	textFormat         string
	ndmin              int
	maxLineSize        int
	logger             *Logger
	metricsCollector   MetricsCollector
	resourceController *resource.Controller
}

func defaultOptions() options {
	return options{
		root:             ".",
		codec:            codec.Default,
		compression:      compress.Gzip,
		textFormat:       delimited.DefaultFormat,
		maxLineSize:      jsonl.DefaultMaxLineSize,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures a Store.
type Option func(*options)

// WithStore sets the blob store files are written to and read from.
// It takes precedence over WithRoot.
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRoot sets the directory of the default local store. Default: ".".
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithCodec configures the codec used for record files.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression selects the compression of saved arrays. The file suffix
// follows the algorithm: ".npy.gz" for gzip (default), ".npy.zst" for zstd,
// ".npy" for none.
func WithCompression(alg compress.Algorithm) Option {
	return func(o *options) {
		o.compression = alg
	}
}

// WithCompressionLevel sets the compression level. 0 selects the
// algorithm's default.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.compressionLevel = level
	}
}

// WithArchiveCompression deflates the members of array-list archives.
// Default: stored, like numpy.savez.
func WithArchiveCompression(enabled bool) Option {
	return func(o *options) {
		o.archiveCompressed = enabled
	}
}

// WithTextFormat sets the fmt verb used for array values. Default: "%.18e".
// Saving an array fails with delimited.ErrInvalidFormat when the verb does
// not render numbers.
func WithTextFormat(format string) Option {
	return func(o *options) {
		if format == "" {
			format = delimited.DefaultFormat
		}
		o.textFormat = format
	}
}

// WithNdmin sets the minimum number of dimensions of arrays read from
// delimited text (0, 1 or 2).
func WithNdmin(ndmin int) Option {
	return func(o *options) {
		o.ndmin = ndmin
	}
}

// WithMaxLineSize bounds a single line of a record or array file.
func WithMaxLineSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineSize = n
		}
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController bounds memory and I/O throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}
