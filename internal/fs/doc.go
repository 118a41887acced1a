// Package fs abstracts the file system beneath blobstore.LocalStore.
//
//   - [OSFS]: the os package
//   - [FaultyFS]: test wrapper that injects write, sync, close and rename failures
//
// Tests inject [FaultyFS] to prove that a failed save never leaves a partial
// file behind:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".npy.gz", fs.Fault{FailAfterBytes: 16})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Operations take no context.Context: local file system calls are not
// interruptible at the syscall level. Slow backends live behind
// blobstore.BlobStore, which does.
package fs
