package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading and writing named blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for streaming writes. The blob becomes visible on Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadAt reads len(p) bytes at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader for length bytes at offset off, truncated at
	// the end of the blob. It returns io.EOF if off is past the end.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to stable storage where supported.
	Sync() error
}

// Aborter is implemented by WritableBlobs that can discard a write in
// progress. After Abort the blob is not visible and Close is a no-op.
type Aborter interface {
	Abort() error
}

// ContentType returns the media type stored with an object named name.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst":
		return "application/zstd"
	case ".lz4":
		return "application/x-lz4"
	case ".json", ".jsonl", ".ndjson":
		return "application/x-ndjson"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// NewReader returns a sequential reader over the whole blob.
// Closing the reader closes the blob.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	if b.Size() == 0 {
		return &blobReader{ReadCloser: io.NopCloser(bytes.NewReader(nil)), blob: b}, nil
	}
	r, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	return &blobReader{ReadCloser: r, blob: b}, nil
}

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}
