package location

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/domarch/blobstore"
	"github.com/hupe1980/domarch/codec"
	"github.com/hupe1980/domarch/resource"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
	}{
		{"-", Location{Scheme: SchemeStdio}},
		{"hits.txt", Location{Scheme: SchemeFile, Key: "hits.txt"}},
		{"/data/hits.txt.zst", Location{Scheme: SchemeFile, Key: "/data/hits.txt.zst"}},
		{"file:///data/hits.txt", Location{Scheme: SchemeFile, Key: "/data/hits.txt"}},
		{"s3://bucket/run/hits.lz4", Location{Scheme: SchemeS3, Bucket: "bucket", Key: "run/hits.lz4"}},
		{"minio://localhost:9000/bucket/run/hits", Location{Scheme: SchemeMinio, Endpoint: "localhost:9000", Bucket: "bucket", Key: "run/hits"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", "s3://bucket", "s3:///key", "minio://host/bucket", "gs://bucket/key", "file://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidLocation)
		})
	}
}

func TestLocation_String(t *testing.T) {
	for _, raw := range []string{"-", "hits.txt", "s3://b/k.zst", "minio://h:1/b/k"} {
		loc, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, loc.String())
	}
}

func TestResolver_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	payload := strings.Repeat("q1 1abcA01 45.2 10-110\n", 200)

	for _, ext := range []string{"", ".zst", ".lz4"} {
		t.Run("ext"+ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "hits.txt"+ext)
			r := NewResolver(Config{Controller: resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})})

			w, err := r.CreateWriter(ctx, path)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			rc, err := r.OpenReader(ctx, path)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestResolver_Stdio(t *testing.T) {
	var out bytes.Buffer
	r := NewResolver(Config{Stdin: strings.NewReader("in"), Stdout: &out})

	rc, err := r.OpenReader(context.Background(), "-")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "in", string(got))

	w, err := r.CreateWriter(context.Background(), "-")
	require.NoError(t, err)
	_, err = io.WriteString(w, "out")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "out", out.String())
}

func TestResolver_RegisteredStore(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()

	var compressed bytes.Buffer
	w, err := codec.NewWriter(&compressed, codec.CompressionZSTD)
	require.NoError(t, err)
	_, err = io.WriteString(w, "remote hits")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, mem.Put(ctx, "run/hits.zst", compressed.Bytes()))

	r := NewResolver(Config{})
	r.Register(SchemeS3, "", "bucket", mem)

	rc, err := r.OpenReader(ctx, "s3://bucket/run/hits.zst")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "remote hits", string(got))

	_, err = r.OpenReader(ctx, "s3://bucket/run/missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestResolver_AbortDiscardsOutput(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	r := NewResolver(Config{})
	r.Register(SchemeS3, "", "bucket", mem)

	w, err := r.CreateWriter(ctx, "s3://bucket/out/results.json.zst")
	require.NoError(t, err)
	_, err = io.WriteString(w, `{"query_id":"q"}`)
	require.NoError(t, err)

	a, ok := w.(blobstore.Aborter)
	require.True(t, ok)
	require.NoError(t, a.Abort())

	names, err := mem.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
