// Package blobstore provides storage abstraction for hit inputs and
// architecture outputs.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap reads and atomic writes
//   - MemoryStore: In-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// The location package resolves URLs such as s3://bucket/run/hits.domtblout.zst
// to a store and a blob name.
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
package blobstore
