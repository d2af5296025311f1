// Package location resolves input and output URLs to blob stores.
//
// Supported forms:
//
//	"-"                                standard input or output
//	hits.txt, /data/hits.txt           local file
//	file:///data/hits.txt              local file
//	s3://bucket/key                    Amazon S3 (default AWS credential chain)
//	minio://host:port/bucket/key       MinIO (credentials from the environment)
//
// A .zst or .lz4 suffix on the name selects stream compression.
package location

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hupe1980/domarch/blobstore"
	"github.com/hupe1980/domarch/blobstore/minio"
	"github.com/hupe1980/domarch/blobstore/s3"
	"github.com/hupe1980/domarch/codec"
	"github.com/hupe1980/domarch/resource"
)

// Scheme names a storage backend.
type Scheme string

// Supported schemes.
const (
	SchemeStdio Scheme = "stdio"
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinio Scheme = "minio"
)

// ErrInvalidLocation is returned for URLs that cannot be resolved.
var ErrInvalidLocation = errors.New("location: invalid location")

// Location is a parsed input or output URL.
type Location struct {
	Scheme Scheme
	// Endpoint is the MinIO host[:port].
	Endpoint string
	// Bucket is empty for local files.
	Bucket string
	// Key is the object key or local file path.
	Key string
}

// Parse parses raw into a Location.
func Parse(raw string) (Location, error) {
	switch {
	case raw == "":
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidLocation)
	case raw == "-":
		return Location{Scheme: SchemeStdio}, nil
	case !strings.Contains(raw, "://"):
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}

	switch Scheme(u.Scheme) {
	case SchemeFile:
		if u.Path == "" {
			return Location{}, fmt.Errorf("%w: %q has no path", ErrInvalidLocation, raw)
		}
		return Location{Scheme: SchemeFile, Key: u.Path}, nil
	case SchemeS3:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q is not s3://bucket/key", ErrInvalidLocation, raw)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Key: key}, nil
	case SchemeMinio:
		bucket, key, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q is not minio://endpoint/bucket/key", ErrInvalidLocation, raw)
		}
		return Location{Scheme: SchemeMinio, Endpoint: u.Host, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocation, u.Scheme)
	}
}

func (l Location) String() string {
	switch l.Scheme {
	case SchemeStdio:
		return "-"
	case SchemeS3:
		return "s3://" + l.Bucket + "/" + l.Key
	case SchemeMinio:
		return "minio://" + l.Endpoint + "/" + l.Bucket + "/" + l.Key
	default:
		return l.Key
	}
}

// Compression returns the compression implied by the key's suffix.
func (l Location) Compression() codec.Compression {
	return codec.CompressionFromPath(l.Key)
}

// Config configures a Resolver.
type Config struct {
	// Region overrides the AWS region for s3:// locations.
	Region string
	// S3Endpoint points s3:// locations at an S3-compatible service.
	S3Endpoint string
	// MinioSecure uses HTTPS for minio:// locations.
	MinioSecure bool
	// Controller rate limits input reads. Optional.
	Controller *resource.Controller
	// Stdin and Stdout back the "-" location. Default: os.Stdin and os.Stdout.
	Stdin  io.Reader
	Stdout io.Writer
}

// Resolver opens locations, reusing one store per bucket.
type Resolver struct {
	cfg Config

	mu     sync.Mutex
	stores map[string]blobstore.BlobStore
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	return &Resolver{cfg: cfg, stores: make(map[string]blobstore.BlobStore)}
}

func storeKey(loc Location) string {
	return string(loc.Scheme) + "://" + loc.Endpoint + "/" + loc.Bucket
}

// Register makes store serve every key in bucket for scheme, replacing the
// default client. endpoint is only used for minio.
func (r *Resolver) Register(scheme Scheme, endpoint, bucket string, store blobstore.BlobStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[storeKey(Location{Scheme: scheme, Endpoint: endpoint, Bucket: bucket})] = store
}

// Store returns the store holding loc and the blob name within it.
func (r *Resolver) Store(ctx context.Context, loc Location) (blobstore.BlobStore, string, error) {
	switch loc.Scheme {
	case SchemeFile:
		return blobstore.NewLocalStore(filepath.Dir(loc.Key)), filepath.Base(loc.Key), nil
	case SchemeS3, SchemeMinio:
	default:
		return nil, "", fmt.Errorf("%w: %s has no blob store", ErrInvalidLocation, loc)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := storeKey(loc)
	if s, ok := r.stores[k]; ok {
		return s, loc.Key, nil
	}

	var (
		s   blobstore.BlobStore
		err error
	)
	if loc.Scheme == SchemeS3 {
		var opts []s3.Option
		if r.cfg.Region != "" {
			opts = append(opts, s3.WithRegion(r.cfg.Region))
		}
		if r.cfg.S3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(r.cfg.S3Endpoint))
		}
		s, err = s3.New(ctx, loc.Bucket, opts...)
	} else {
		s, err = minio.New(loc.Endpoint, loc.Bucket, r.cfg.MinioSecure)
	}
	if err != nil {
		return nil, "", err
	}
	r.stores[k] = s
	return s, loc.Key, nil
}

// OpenReader opens raw for reading, decompressing by suffix.
func (r *Resolver) OpenReader(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	var src io.ReadCloser
	if loc.Scheme == SchemeStdio {
		src = io.NopCloser(r.cfg.Stdin)
	} else {
		store, name, err := r.Store(ctx, loc)
		if err != nil {
			return nil, err
		}
		blob, err := store.Open(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		if src, err = blobstore.NewReader(ctx, blob); err != nil {
			_ = blob.Close()
			return nil, fmt.Errorf("read %s: %w", loc, err)
		}
	}

	limited := r.cfg.Controller.Reader(ctx, src)
	dec, err := codec.NewReader(limited, loc.Compression())
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return &readCloser{Reader: dec, closers: []io.Closer{dec, src}}, nil
}

// CreateWriter creates raw for writing, compressing by suffix.
// The output becomes visible when the writer is closed.
func (r *Resolver) CreateWriter(ctx context.Context, raw string) (io.WriteCloser, error) {
	loc, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	var dst io.WriteCloser
	if loc.Scheme == SchemeStdio {
		dst = nopWriteCloser{r.cfg.Stdout}
	} else {
		store, name, err := r.Store(ctx, loc)
		if err != nil {
			return nil, err
		}
		if dst, err = store.Create(ctx, name); err != nil {
			return nil, fmt.Errorf("create %s: %w", loc, err)
		}
	}

	enc, err := codec.NewWriter(r.cfg.Controller.Writer(ctx, dst), loc.Compression())
	if err != nil {
		_ = dst.Close()
		return nil, err
	}
	return &writeCloser{Writer: enc, enc: enc, dst: dst}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	return closeAll(r.closers)
}

type writeCloser struct {
	io.Writer
	enc io.Closer
	dst io.WriteCloser
}

func (w *writeCloser) Close() error {
	return closeAll([]io.Closer{w.enc, w.dst})
}

// Abort discards the output where the store supports it and closes it
// otherwise. It implements blobstore.Aborter.
func (w *writeCloser) Abort() error {
	_ = w.enc.Close()
	if a, ok := w.dst.(blobstore.Aborter); ok {
		return a.Abort()
	}
	return w.dst.Close()
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
