// Package config loads jsondata settings from YAML files.
//
// A minimal file for a local directory:
//
//	store:
//	  type: local
//	  root: ./data
//
// Storing on S3 with zstd compressed arrays and JSON logs:
//
//	store:
//	  type: s3
//	  bucket: my-bucket
//	  prefix: datasets
//	  region: eu-central-1
//	compression: zstd
//	logging:
//	  level: debug
//	  format: json
//
// References of the form ${VAR} are expanded from the environment before
// parsing, so credentials need not be written to the file.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/jsondata"
	"github.com/hupe1980/jsondata/blobstore"
	"github.com/hupe1980/jsondata/blobstore/dynamodb"
	"github.com/hupe1980/jsondata/blobstore/minio"
	"github.com/hupe1980/jsondata/blobstore/s3"
	"github.com/hupe1980/jsondata/codec"
	"github.com/hupe1980/jsondata/compress"
	"github.com/hupe1980/jsondata/delimited"
	"github.com/hupe1980/jsondata/resource"
)

// Store types.
const (
	StoreLocal    = "local"
	StoreMemory   = "memory"
	StoreS3       = "s3"
	StoreMinIO    = "minio"
	StoreDynamoDB = "dynamodb"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root of a configuration file.
type Config struct {
	Store StoreConfig `yaml:"store"`

	// Codec is the record codec: "go-json" (default) or "json".
	Codec string `yaml:"codec"`

	// Compression is the array compression: gzip (default), zstd, lz4, s2 or none.
	Compression        string `yaml:"compression"`
	CompressionLevel   int    `yaml:"compression_level"`
	ArchiveCompression bool   `yaml:"archive_compression"`

	TextFormat  string `yaml:"text_format"`
	Ndmin       int    `yaml:"ndmin"`
	MaxLineSize int    `yaml:"max_line_size"`

	Limits  LimitsConfig  `yaml:"limits"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects and configures the blob store backend.
type StoreConfig struct {
	Type string `yaml:"type"`

	// local
	Root string `yaml:"root"`

	// s3, minio
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`

	// minio
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`

	// dynamodb
	Table     string `yaml:"table"`
	Namespace string `yaml:"namespace"`

	Upload UploadConfig `yaml:"upload"`
}

// UploadConfig tunes S3 multipart uploads. Zero values keep the defaults.
type UploadConfig struct {
	PartSize        int64 `yaml:"part_size"`
	Concurrency     int   `yaml:"concurrency"`
	DisableChecksum bool  `yaml:"disable_checksum"`
}

// LimitsConfig bounds resource usage. Zero means unlimited.
type LimitsConfig struct {
	MemoryBytes   int64 `yaml:"memory_bytes"`
	IOBytesPerSec int64 `yaml:"io_bytes_per_sec"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error. Default: info.
	Level string `yaml:"level"`
	// Format is text, json or none (default).
	Format string `yaml:"format"`
}

// Default returns a configuration for a local store in the current directory.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type: StoreLocal,
			Root: ".",
		},
		Codec:       "go-json",
		Compression: "gzip",
	}
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	switch c.Store.Type {
	case StoreLocal, StoreMemory, "":
	case StoreS3:
		if c.Store.Bucket == "" {
			invalid("store.bucket is required for s3")
		}
	case StoreMinIO:
		if c.Store.Bucket == "" || c.Store.Endpoint == "" {
			invalid("store.bucket and store.endpoint are required for minio")
		}
	case StoreDynamoDB:
		if c.Store.Table == "" {
			invalid("store.table is required for dynamodb")
		}
	default:
		invalid("unknown store.type %q", c.Store.Type)
	}

	if _, ok := codec.ByName(c.Codec); !ok {
		invalid("unknown codec %q, want one of %v", c.Codec, codec.Names())
	}
	if alg, err := compress.Parse(c.Compression); err != nil {
		invalid("%v", err)
	} else if alg == compress.Bzip2 {
		invalid("compression %q is read-only", c.Compression)
	}
	if c.TextFormat != "" {
		if err := delimited.CheckFormat(c.TextFormat); err != nil {
			invalid("text_format: %v", err)
		}
	}
	if c.Ndmin < 0 || c.Ndmin > 2 {
		invalid("ndmin must be 0, 1 or 2, got %d", c.Ndmin)
	}
	if c.MaxLineSize < 0 || c.Limits.MemoryBytes < 0 || c.Limits.IOBytesPerSec < 0 {
		invalid("sizes and limits must not be negative")
	}
	if _, err := c.Logging.level(); err != nil {
		invalid("%v", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "none", "text", "json":
	default:
		invalid("unknown logging.format %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}

func (l LoggingConfig) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// NewStore creates the configured blob store. Cloud backends resolve
// credentials from the environment.
func (c *Config) NewStore(ctx context.Context) (blobstore.BlobStore, error) {
	sc := c.Store
	switch sc.Type {
	case StoreLocal, "":
		root := sc.Root
		if root == "" {
			root = "."
		}
		return blobstore.NewLocalStore(root), nil
	case StoreMemory:
		return blobstore.NewMemoryStore(), nil
	case StoreS3:
		upload := s3.DefaultUploadConfig()
		if sc.Upload.PartSize > 0 {
			upload.PartSize = sc.Upload.PartSize
		}
		if sc.Upload.Concurrency > 0 {
			upload.Concurrency = sc.Upload.Concurrency
		}
		upload.EnableChecksum = !sc.Upload.DisableChecksum

		opts := []s3.Option{s3.WithPrefix(sc.Prefix), s3.WithUploadConfig(upload)}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint, sc.PathStyle))
		}
		return s3.New(ctx, sc.Bucket, opts...)
	case StoreMinIO:
		return minio.Connect(minio.Config{
			Endpoint:  sc.Endpoint,
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Region:    sc.Region,
			Secure:    sc.Secure,
		}, sc.Bucket, sc.Prefix)
	case StoreDynamoDB:
		var opts []func(*awsconfig.LoadOptions) error
		if sc.Region != "" {
			opts = append(opts, awsconfig.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, awsconfig.WithBaseEndpoint(sc.Endpoint))
		}
		return dynamodb.New(ctx, sc.Table, sc.Namespace, opts...)
	}
	return nil, fmt.Errorf("%w: unknown store.type %q", ErrInvalidConfig, sc.Type)
}

// NewLogger creates the configured logger.
func (c *Config) NewLogger() (*jsondata.Logger, error) {
	level, err := c.Logging.level()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json":
		return jsondata.NewJSONLogger(level), nil
	case "text":
		return jsondata.NewTextLogger(level), nil
	default:
		return jsondata.NoopLogger(), nil
	}
}

// Options turns the configuration into jsondata options, creating the
// blob store on the way.
func (c *Config) Options(ctx context.Context) ([]jsondata.Option, error) {
	store, err := c.NewStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("config: store: %w", err)
	}
	logger, err := c.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("config: logger: %w", err)
	}
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalidConfig, c.Codec)
	}
	alg, err := compress.Parse(c.Compression)
	if err != nil {
		return nil, err
	}

	opts := []jsondata.Option{
		jsondata.WithStore(store),
		jsondata.WithCodec(cd),
		jsondata.WithCompression(alg),
		jsondata.WithCompressionLevel(c.CompressionLevel),
		jsondata.WithArchiveCompression(c.ArchiveCompression),
		jsondata.WithNdmin(c.Ndmin),
		jsondata.WithLogger(logger),
	}
	if c.TextFormat != "" {
		opts = append(opts, jsondata.WithTextFormat(c.TextFormat))
	}
	if c.MaxLineSize > 0 {
		opts = append(opts, jsondata.WithMaxLineSize(c.MaxLineSize))
	}
	if c.Limits.MemoryBytes > 0 || c.Limits.IOBytesPerSec > 0 {
		opts = append(opts, jsondata.WithResourceController(resource.NewController(resource.Config{
			MemoryLimitBytes:   c.Limits.MemoryBytes,
			IOLimitBytesPerSec: c.Limits.IOBytesPerSec,
		})))
	}
	return opts, nil
}
