//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func osAdvise(data []byte, hint Hint) error {
	switch hint {
	case HintSequential:
		return madvise(data, unix.MADV_SEQUENTIAL)
	case HintWillNeed:
		return madvise(data, unix.MADV_WILLNEED)
	default:
		return nil
	}
}

// osRelease drops resident pages of a read-only shared mapping. They are
// faulted back in from the file if touched again.
func osRelease(data []byte) error {
	return madvise(data, unix.MADV_DONTNEED)
}

func madvise(data []byte, advice int) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Madvise(data, advice)
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
