package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	fsys := OSFS{}
	require.NoError(t, fsys.MkdirAll(dir))

	name := filepath.Join(dir, "out.txt.tmp-1")
	f, err := fsys.CreateExclusive(name)
	require.NoError(t, err)
	assert.Equal(t, name, f.Name())
	_, err = io.WriteString(f, "hello")
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	_, err = fsys.CreateExclusive(name)
	assert.ErrorIs(t, err, os.ErrExist)

	final := filepath.Join(dir, "out.txt")
	require.NoError(t, fsys.Rename(name, final))
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())

	require.NoError(t, fsys.Remove(final))
	assert.ErrorIs(t, fsys.Remove(final), os.ErrNotExist)
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule(".npy.gz", Fault{FailAfterBytes: 5})

	f, err := ffs.CreateExclusive(filepath.Join(t.TempDir(), "w.npy.gz.tmp-1"))
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("1.0e0"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("\n"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Zero(t, n)
	assert.Equal(t, int64(5), ffs.Written())
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	ffs := NewFaultyFS(OSFS{})
	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
	ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})
	ffs.AddRule("final", Fault{FailAfterBytes: -1, FailOnRename: true})

	f, err := ffs.CreateExclusive(filepath.Join(dir, "sync.txt"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), boom)
	require.NoError(t, f.Close())

	f, err = ffs.CreateExclusive(filepath.Join(dir, "close.txt"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	src := filepath.Join(dir, "sync.txt")
	assert.ErrorIs(t, ffs.Rename(src, filepath.Join(dir, "final.txt")), ErrInjected)
	require.NoError(t, ffs.Rename(src, filepath.Join(dir, "other.txt")))
}

func TestFaultyFS_PassThrough(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	ffs := NewFaultyFS(nil)
	require.NoError(t, ffs.MkdirAll(dir))

	name := filepath.Join(dir, "records.txt")
	f, err := ffs.CreateExclusive(name)
	require.NoError(t, err)
	_, err = io.WriteString(f, "{}")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := ffs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, ffs.Remove(name))
	assert.Equal(t, int64(2), ffs.Written())
}
