package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/domarch/blobstore"
)

// Store implements blobstore.BlobStore on Amazon S3.
type Store struct {
	client Client
	bucket string
	prefix string
	upload UploadConfig
}

var _ blobstore.BlobStore = (*Store)(nil)

type options struct {
	prefix   string
	region   string
	endpoint string
	upload   UploadConfig
}

// Option configures a Store.
type Option func(*options)

// WithPrefix stores every blob under prefix, e.g. "runs/2024-06/".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region of the shared AWS configuration. Used by New only.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint targets an S3-compatible endpoint with path-style
// addressing. Used by New only.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithUploadConfig overrides the multipart upload settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) { o.upload = cfg }
}

func applyOptions(optFns []Option) options {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// New creates a Store with the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	return NewStore(client, bucket, optFns...), nil
}

// NewStore wraps an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	o := applyOptions(optFns)
	return &Store{client: client, bucket: bucket, prefix: o.prefix, upload: o.upload}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open heads the object and returns a handle that reads it by range.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &object{client: s.client, bucket: s.bucket, key: key, size: aws.ToInt64(head.ContentLength)}, nil
}

// Create streams writes into a multipart upload. The object appears when
// Close returns nil.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newUpload(ctx, s.client, s.upload, s.bucket, s.key(name), blobstore.ContentType(name)), nil
}

// Put uploads data in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putObject(ctx, s.client, s.upload, s.bucket, s.key(name), blobstore.ContentType(name), data)
}

// Delete removes a blob. Missing blobs are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted blob names under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if name = strings.TrimPrefix(name, "/"); name != "" {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
