package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/domarch/blobstore"
)

// DefaultPartSize bounds the memory a streaming upload buffers per part.
const DefaultPartSize = 16 << 20

// Store implements blobstore.BlobStore on MinIO and other S3-compatible servers.
type Store struct {
	client   *minio.Client
	bucket   string
	prefix   string
	partSize uint64
}

var _ blobstore.BlobStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix stores every blob under prefix, e.g. "runs/2024-05/".
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithPartSize sets the multipart chunk size of streaming uploads.
func WithPartSize(n uint64) Option {
	return func(s *Store) { s.partSize = n }
}

// New connects to endpoint with credentials from MINIO_ACCESS_KEY and
// MINIO_SECRET_KEY, or MINIO_ROOT_USER and MINIO_ROOT_PASSWORD.
func New(endpoint, bucket string, secure bool, opts ...Option) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvMinio(),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: connect %s: %w", endpoint, err)
	}
	return NewStore(client, bucket, opts...), nil
}

// NewStore wraps an existing client.
func NewStore(client *minio.Client, bucket string, opts ...Option) *Store {
	s := &Store{client: client, bucket: bucket, partSize: DefaultPartSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object and returns a handle that reads it by range.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &object{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Put uploads data in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: blobstore.ContentType(name),
	})
	return err
}

// Create streams writes into a multipart upload. The object appears when
// Close returns nil.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	w := &upload{pw: pw, done: make(chan error, 1)}

	opts := minio.PutObjectOptions{
		ContentType: blobstore.ContentType(name),
		PartSize:    s.partSize,
	}
	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, opts)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Delete removes a blob. Missing blobs are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted blob names under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/"); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

type object struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (o *object) Size() int64  { return o.size }
func (o *object) Close() error { return nil }

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= o.size {
		return nil, io.EOF
	}
	end := min(off+length, o.size) - 1
	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, end); err != nil {
		return nil, err
	}
	return o.client.GetObject(ctx, o.bucket, o.key, opts)
}

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= o.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	rc, err := o.ReadRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	want := min(int64(len(p)), o.size-off)
	n, err := io.ReadFull(rc, p[:want])
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

type upload struct {
	pw     *io.PipeWriter
	done   chan error
	closed bool
}

func (u *upload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

func (u *upload) Sync() error { return nil }

func (u *upload) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}

// Abort cancels the upload; nothing is written.
func (u *upload) Abort() error {
	if u.closed {
		return nil
	}
	u.closed = true
	err := u.pw.CloseWithError(errUploadAborted)
	<-u.done
	return err
}

var errUploadAborted = errors.New("minio: upload aborted")

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
