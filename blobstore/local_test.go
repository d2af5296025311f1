package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	localfs "github.com/hupe1980/domarch/internal/fs"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "run-1/hits.txt"
	data := []byte("q1 1abcA01 45.2 10-110\nq1 2xyzB02 12.0 120-200\n")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, w.Close())

	// Verify file exists on disk
	_, err = os.Stat(filepath.Join(tmpDir, "run-1", "hits.txt"))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 8)
	n, err = blob.ReadAt(ctx, buf, 3) // "1abcA01 "
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, "1abcA01 ", string(buf))

	// 3. ReadRange
	rangeReader, err := blob.ReadRange(ctx, 11, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "45.2", string(rangeContent))

	mapped, err := blob.(Mappable).Bytes()
	require.NoError(t, err)
	require.Equal(t, data, mapped)

	// 4. List
	require.NoError(t, store.Put(ctx, "run-1/out.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "run-2/out.json", []byte("{}")))

	blobs, err := store.List(ctx, "run-1/")
	require.NoError(t, err)
	require.Equal(t, []string{"run-1/hits.txt", "run-1/out.json"}, blobs)

	// 5. Delete
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	blobsAfter, err := store.List(ctx, "run-1/")
	require.NoError(t, err)
	require.Equal(t, []string{"run-1/out.json"}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "boundary.bin", data))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Case 1: Read full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	// Case 2: Read past end
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Case 3: Offset past EOF
	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestNewReader(t *testing.T) {
	ctx := context.Background()
	stores := map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "full.txt", []byte("query match")))
			require.NoError(t, store.Put(ctx, "empty.txt", nil))

			for blobName, want := range map[string]string{"full.txt": "query match", "empty.txt": ""} {
				blob, err := store.Open(ctx, blobName)
				require.NoError(t, err)

				r, err := NewReader(ctx, blob)
				require.NoError(t, err)
				got, err := io.ReadAll(r)
				require.NoError(t, err)
				require.NoError(t, r.Close())
				assert.Equal(t, want, string(got))
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "b")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	require.NoError(t, store.Put(ctx, "a", []byte("x")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	blob, err := store.Open(ctx, "b")
	require.NoError(t, err)
	buf := make([]byte, 3)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "llo", string(buf[:n]))

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Open(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_WriteFaults(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("injected")

	tests := []struct {
		name  string
		fault localfs.Fault
	}{
		{"write", localfs.Fault{FailAfterBytes: 2, Err: boom}},
		{"sync", localfs.Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom}},
		{"close", localfs.Fault{FailAfterBytes: -1, FailOnClose: true, Err: boom}},
		{"rename", localfs.Fault{FailAfterBytes: -1, FailOnRename: true, Err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := localfs.NewFaultyFS(nil)
			ffs.AddRule(".out.txt.tmp-", tt.fault)
			store := NewLocalStore(dir, WithFileSystem(ffs))

			err := store.Put(ctx, "out.txt", []byte("results"))
			assert.ErrorIs(t, err, boom)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "failed writes leave no files behind")
		})
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"hits.txt":          "text/plain; charset=utf-8",
		"hits.domtblout":    "text/plain; charset=utf-8",
		"results.json":      "application/x-ndjson",
		"results.json.zst":  "application/zstd",
		"hits.txt.LZ4":      "application/x-lz4",
		"results/out.jsonl": "application/x-ndjson",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentType(name), name)
	}
}

func TestWritableBlob_Abort(t *testing.T) {
	ctx := context.Background()
	stores := map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			w, err := store.Create(ctx, "out/partial.txt")
			require.NoError(t, err)
			_, err = w.Write([]byte("q m 1 1-10\n"))
			require.NoError(t, err)

			a, ok := w.(Aborter)
			require.True(t, ok)
			require.NoError(t, a.Abort())
			require.NoError(t, w.Close())

			_, err = store.Open(ctx, "out/partial.txt")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
