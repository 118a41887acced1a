package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jsondata"
	"github.com/hupe1980/jsondata/blobstore"
	"github.com/hupe1980/jsondata/ndarray"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse(t *testing.T) {
	t.Setenv("JSONDATA_TEST_SECRET", "s3cr3t")

	cfg, err := Parse([]byte(`
store:
  type: minio
  endpoint: localhost:9000
  bucket: data
  prefix: runs/
  access_key: admin
  secret_key: ${JSONDATA_TEST_SECRET}
compression: zstd
compression_level: 3
archive_compression: true
ndmin: 1
max_line_size: 1024
limits:
  memory_bytes: 1048576
  io_bytes_per_sec: 10485760
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, StoreMinIO, cfg.Store.Type)
	assert.Equal(t, "s3cr3t", cfg.Store.SecretKey)
	assert.Equal(t, "runs/", cfg.Store.Prefix)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 3, cfg.CompressionLevel)
	assert.True(t, cfg.ArchiveCompression)
	assert.Equal(t, 1, cfg.Ndmin)
	assert.Equal(t, int64(1<<20), cfg.Limits.MemoryBytes)
	assert.Equal(t, "go-json", cfg.Codec)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown store", "store: {type: ftp}"},
		{"s3 without bucket", "store: {type: s3}"},
		{"minio without endpoint", "store: {type: minio, bucket: b}"},
		{"dynamodb without table", "store: {type: dynamodb}"},
		{"unknown codec", "codec: xml"},
		{"unknown compression", "compression: rar"},
		{"read-only compression", "compression: bzip2"},
		{"bad ndmin", "ndmin: 3"},
		{"integer text format", "text_format: \"%d\""},
		{"negative limit", "limits: {memory_bytes: -1}"},
		{"bad level", "logging: {level: loud}"},
		{"bad format", "logging: {format: xml}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Parse([]byte("store: [not, a, map]"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsondata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: memory\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Type)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Store.Root = t.TempDir()
	store, err := cfg.NewStore(ctx)
	require.NoError(t, err)
	local, ok := store.(*blobstore.LocalStore)
	require.True(t, ok)
	assert.Equal(t, cfg.Store.Root, local.Root())

	cfg.Store.Type = StoreMemory
	store, err = cfg.NewStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, store)

	cfg.Store.Type = StoreMinIO
	cfg.Store.Endpoint = "localhost:9000"
	cfg.Store.Bucket = "data"
	store, err = cfg.NewStore(ctx)
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestOptions(t *testing.T) {
	ctx := context.Background()

	cfg, err := Parse([]byte(`
store: {type: memory}
compression: none
text_format: "%g"
limits: {memory_bytes: 4096}
`))
	require.NoError(t, err)

	opts, err := cfg.Options(ctx)
	require.NoError(t, err)

	js := jsondata.New(opts...)
	require.NoError(t, js.Save(ctx, "v", ndarray.Vector(1.5, 2)))

	raw, err := blobstore.ReadAll(ctx, js.BlobStore(), "v.npy")
	require.NoError(t, err)
	assert.Equal(t, "1.5\n2\n", string(raw))
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"", "none", "text", "json"} {
		cfg := Default()
		cfg.Logging.Format = format
		logger, err := cfg.NewLogger()
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
