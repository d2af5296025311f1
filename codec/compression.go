package codec

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects a stream compression format.
type Compression uint8

const (
	// CompressionNone passes bytes through unchanged.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 frames (fast, good for intermediate files).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd frames (better ratio, good for archives).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Extension returns the file suffix for c, including the dot.
func (c Compression) Extension() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses a compression name.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "zst":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("codec: unknown compression %q", s)
	}
}

// CompressionFromPath picks the compression matching name's suffix.
func CompressionFromPath(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// NewReader wraps r with a decompressor for c.
// Closing the result does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("codec: unknown compression %v", c)
	}
}

// NewWriter wraps w with a compressor for c.
// Close flushes the final frame but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("codec: zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("codec: unknown compression %v", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
