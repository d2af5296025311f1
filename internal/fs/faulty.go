package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is returned by injected faults that set no Err.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes how operations on a matching file fail.
type Fault struct {
	// FailAfterBytes fails writes past this many bytes. Negative disables it.
	FailAfterBytes int64
	FailOnSync     bool
	FailOnClose    bool
	// FailOnRename fails renames whose source matches.
	FailOnRename bool
	Err          error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects faults into files whose name
// contains a registered pattern.
type FaultyFS struct {
	fs FileSystem

	mu      sync.Mutex
	rules   map[string]Fault
	written int64
}

// NewFaultyFS wraps fsys, or Default if nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{fs: fsys, rules: make(map[string]Fault)}
}

// AddRule injects fault into files whose name contains pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Written returns the bytes successfully written through f.
func (f *FaultyFS) Written() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			return rule, true
		}
	}
	return Fault{FailAfterBytes: -1}, false
}

func (f *FaultyFS) CreateExclusive(name string) (File, error) {
	file, err := f.fs.CreateExclusive(name)
	if err != nil {
		return nil, err
	}
	fault, _ := f.match(name)
	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error {
	return f.fs.Remove(name)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(oldpath); ok && fault.FailOnRename {
		return fault.err()
	}
	return f.fs.Rename(oldpath, newpath)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.fs.MkdirAll(path, perm)
}

type faultyFile struct {
	File
	fs      *FaultyFS
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailAfterBytes >= 0 && ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
		return 0, ff.fault.err()
	}
	n, err := ff.File.Write(p)
	ff.written += int64(n)

	ff.fs.mu.Lock()
	ff.fs.written += int64(n)
	ff.fs.mu.Unlock()
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.err()
	}
	return ff.File.Close()
}
