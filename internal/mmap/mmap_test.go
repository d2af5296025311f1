package mmap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hits.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFile_ReadAt(t *testing.T) {
	content := "q1 m1 10.5 1-100\n"
	f, err := Open(writeFile(t, content), HintNormal)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, len(content), f.Len())
	assert.Equal(t, content, string(f.Bytes()))

	tests := []struct {
		name string
		size int
		off  int64
		want string
		err  error
	}{
		{"inside", 2, 3, "m1", nil},
		{"past end", 10, 100, "", io.EOF},
		{"partial", 10, int64(len(content) - 4), "100\n", io.EOF},
		{"negative", 2, -1, "", ErrOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.size)
			n, err := f.ReadAt(buf, tt.off)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
}

func TestFile_Reader(t *testing.T) {
	content := strings.Repeat("q1 m1 10.5 1-100\n", 1000)
	f, err := Open(writeFile(t, content), HintSequential)
	require.NoError(t, err)
	defer f.Close()

	r, err := f.NewReader(0, int64(f.Len()))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	r, err = f.NewReader(17, 34)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "q1 m1 10.5 1-100\n", string(got))

	_, err = f.NewReader(5, 4)
	assert.ErrorIs(t, err, ErrOffset)
}

func TestFile_ReaderReleasesPassedPages(t *testing.T) {
	page := os.Getpagesize()
	content := bytes.Repeat([]byte{'x'}, 4*page+10)
	f, err := Open(writeFile(t, string(content)), HintSequential)
	require.NoError(t, err)
	defer f.Close()

	r, err := f.NewReader(0, int64(f.Len()))
	require.NoError(t, err)
	r.every = int64(page)

	buf := make([]byte, page+page/2)
	_, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(page), r.Released())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, got, len(content)-len(buf))
	assert.Equal(t, int64(4*page), r.Released())

	// Released pages are faulted back in on access.
	assert.Equal(t, content, f.Bytes())
}

func TestFile_Empty(t *testing.T) {
	f, err := Open(writeFile(t, ""), HintWillNeed)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, f.Len())
	r, err := f.NewReader(0, 10)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFile_AfterClose(t *testing.T) {
	f, err := Open(writeFile(t, "data"), HintNormal)
	require.NoError(t, err)
	r, err := f.NewReader(0, 4)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	assert.Nil(t, f.Bytes())
	_, err = f.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), HintNormal)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
