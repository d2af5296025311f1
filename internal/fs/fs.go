package fs

import (
	"io"
	"os"
)

// File is a staged output file.
type File interface {
	io.WriteCloser
	Sync() error
	Name() string
}

// FileSystem stages files next to their final path and moves them into
// place once complete.
type FileSystem interface {
	// CreateExclusive creates name for writing. It fails if name exists.
	CreateExclusive(name string) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm os.FileMode) error
}

// OS is the FileSystem of the host.
type OS struct{}

// FilePerm is the mode of files created by OS.
const FilePerm os.FileMode = 0o644

func (OS) CreateExclusive(name string) (File, error) {
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_EXCL, FilePerm)
}

func (OS) Remove(name string) error { return os.Remove(name) }

func (OS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (OS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// Default is the host file system.
var Default FileSystem = OS{}
