// Package blobstore provides the storage abstraction beneath jsondata.Save
// and jsondata.Read.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic temp-file writes and mmap reads
//   - MemoryStore: in-memory, for tests and ephemeral data
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//   - dynamodb.Store: small files stored as DynamoDB items
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Writable blobs that also implement Abortable let callers discard a failed
// write without leaving a partial blob behind.
package blobstore
