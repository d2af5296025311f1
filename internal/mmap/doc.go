// Package mmap maps local hit files read-only.
//
// Searches against large domain libraries produce hit files of many
// gigabytes that are parsed exactly once. A Reader streams such a file from
// the page cache and releases the pages it has passed:
//
//	f, err := mmap.Open("hits.domtblout", mmap.HintSequential)
//	if err != nil { ... }
//	defer f.Close()
//
//	r, _ := f.NewReader(0, int64(f.Len()))
//
// Hints and page release are no-ops on Windows. Slices and readers obtained
// from a File are invalid after Close.
package mmap
