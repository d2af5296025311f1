package mmap

import (
	"errors"
	"io"
	"math"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned when reading from a closed File.
	ErrClosed = errors.New("mmap: file is closed")
	// ErrTooLarge is returned for files that do not fit the address space.
	ErrTooLarge = errors.New("mmap: file too large to map")
	// ErrOffset is returned for negative or reversed ranges.
	ErrOffset = errors.New("mmap: offset out of range")
)

// Hint tells the kernel how a mapping will be read.
type Hint int

const (
	// HintNormal applies no advice.
	HintNormal Hint = iota
	// HintSequential suits a single front-to-back pass.
	HintSequential
	// HintWillNeed prefetches the whole file.
	HintWillNeed
)

// releaseEvery is how far a Reader advances between page releases.
const releaseEvery = 32 << 20

// File is a read-only memory-mapped file.
type File struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path and applies hint.
func Open(path string, hint Hint) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &File{}, nil
	}
	if size > math.MaxInt {
		return nil, ErrTooLarge
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	_ = osAdvise(data, hint)
	return &File{data: data, unmap: unmap}, nil
}

// Close unmaps the file. It is idempotent.
func (m *File) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	return m.unmap(m.data)
}

// Len returns the mapped size in bytes.
func (m *File) Len() int {
	return len(m.data)
}

// Bytes returns the mapped contents, or nil after Close.
func (m *File) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// ReadAt implements io.ReaderAt.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// NewReader returns a sequential reader over [off, end), clamped to the file.
// Pages the reader has moved past are handed back to the kernel, so one pass
// over a file larger than memory keeps a bounded resident set.
func (m *File) NewReader(off, end int64) (*Reader, error) {
	if off < 0 || end < off {
		return nil, ErrOffset
	}
	end = min(end, int64(len(m.data)))
	off = min(off, end)
	page := int64(os.Getpagesize())
	return &Reader{
		m:        m,
		pos:      off,
		end:      end,
		released: (off + page - 1) / page * page,
		page:     page,
		every:    releaseEvery,
	}, nil
}

// Reader reads a File sequentially. It is not safe for concurrent use.
type Reader struct {
	m        *File
	pos, end int64
	released int64
	page     int64
	every    int64
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.m.closed.Load() {
		return 0, ErrClosed
	}
	if r.pos >= r.end {
		return 0, io.EOF
	}
	n := copy(p, r.m.data[r.pos:r.end])
	r.pos += int64(n)
	if r.pos-r.released >= r.every {
		r.release()
	}
	return n, nil
}

// Released returns the offset below which pages have been released.
func (r *Reader) Released() int64 {
	return r.released
}

func (r *Reader) release() {
	upTo := r.pos / r.page * r.page
	if upTo <= r.released {
		return
	}
	_ = osRelease(r.m.data[r.released:upTo])
	r.released = upTo
}
