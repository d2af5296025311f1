package blobstore

import (
	"bytes"
	"context"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in memory. Stored contents are never mutated,
// so readers share them without copying. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Open returns a snapshot of the named blob.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return memoryBlob(data), nil
}

// Create buffers writes and publishes them on Close.
func (m *MemoryStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memoryWriter{store: m, name: name}, nil
}

// Put stores a copy of data.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.store(name, bytes.Clone(data))
	return nil
}

// Delete removes a blob.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

// List returns the sorted names with the given prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := slices.Sorted(maps.Keys(m.blobs))
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, prefix)
	}), nil
}

func (m *MemoryStore) store(name string, data []byte) {
	if data == nil {
		data = []byte{}
	}
	m.mu.Lock()
	m.blobs[name] = data
	m.mu.Unlock()
}

type memoryBlob []byte

func (b memoryBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return bytes.NewReader(b).ReadAt(p, off)
}

func (b memoryBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= int64(len(b)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(b)))
	return io.NopCloser(bytes.NewReader(b[off:end])), nil
}

func (b memoryBlob) Size() int64  { return int64(len(b)) }
func (b memoryBlob) Close() error { return nil }

type memoryWriter struct {
	store  *MemoryStore
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Sync() error { return nil }

func (w *memoryWriter) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}

func (w *memoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.store.store(w.name, bytes.Clone(w.buf.Bytes()))
	return nil
}
