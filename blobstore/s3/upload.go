package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/domarch/internal/hash"
)

// UploadConfig configures result uploads.
type UploadConfig struct {
	// PartSize is the multipart chunk size. Default: 8 MiB.
	PartSize int64
	// Concurrency is the number of parts uploaded in parallel. Default: 5.
	Concurrency int
	// EnableChecksum sends CRC32C checksums. Default: true.
	EnableChecksum bool
	// LeavePartsOnError keeps the parts of a failed multipart upload.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

// upload pipes writes into a background multipart upload.
type upload struct {
	pw   *io.PipeWriter
	done chan error

	mu     sync.Mutex
	closed bool
	err    error
}

func newUpload(ctx context.Context, client Client, cfg UploadConfig, bucket, key, contentType string) *upload {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})

	pr, pw := io.Pipe()
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        pr,
		ContentType: aws.String(contentType),
	}
	if cfg.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	u := &upload{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := uploader.Upload(ctx, input)
		_ = pr.CloseWithError(err)
		u.done <- err
	}()
	return u
}

func (u *upload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

// Sync is a no-op; data is committed on Close.
func (u *upload) Sync() error { return nil }

// Close completes the upload and returns its result. Later calls return the same error.
func (u *upload) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return u.err
	}
	u.closed = true
	if err := u.pw.Close(); err != nil {
		u.err = err
		return err
	}
	u.err = <-u.done
	return u.err
}

// Abort cancels the upload. A started multipart upload is aborted unless
// LeavePartsOnError is set.
func (u *upload) Abort() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	_ = u.pw.CloseWithError(context.Canceled)
	<-u.done
	return nil
}

func putObject(ctx context.Context, client Client, cfg UploadConfig, bucket, key, contentType string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if cfg.EnableChecksum {
		input.ChecksumCRC32C = aws.String(hash.CRC32CBase64(data))
	}
	_, err := client.PutObject(ctx, input)
	return err
}
