// Package fs abstracts the file operations behind atomic blob writes so tests
// can inject failures.
//
//   - [OS] is the host file system and the default.
//   - [FaultyFS] wraps another FileSystem and fails writes, syncs, closes or
//     renames of matching files.
//
// Reads are not covered: local blobs are memory mapped.
package fs
