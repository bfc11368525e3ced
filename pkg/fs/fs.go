// Package fs provides the filesystem abstraction behind hugevector's
// backing files.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Flaky]: testing implementation that injects failures on demand
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.CreateTemp("", "HugeContainerData*")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor with random access.
//
// This interface is satisfied by [os.File]. The random-access methods
// ([io.ReaderAt], [io.WriterAt]) do not disturb the seek position, so a
// caller can interleave positional reads with sequential appends.
type File interface {
	// Embedded interfaces from [io] package.
	// These provide Read, Write, Close, Seek, ReadAt, and WriteAt.
	io.ReadWriteCloser
	io.Seeker
	io.ReaderAt
	io.WriterAt

	// Name returns the path the file was opened with. See [os.File.Name].
	Name() string

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error
}

// FS defines the filesystem operations hugevector performs on its backing
// store.
//
// Two implementations are provided:
//   - [Real]: production use, wraps the [os] package
//   - [Flaky]: testing use, fails armed operations
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	//
	// Common flags: [os.O_RDONLY], [os.O_WRONLY], [os.O_RDWR],
	// [os.O_APPEND], [os.O_CREATE], [os.O_EXCL], [os.O_TRUNC].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// CreateTemp creates a new uniquely-named file in dir and opens it
	// read-write. See [os.CreateTemp]. An empty dir means the system
	// temporary directory.
	CreateTemp(dir, pattern string) (File, error)

	// WriteFileAtomic writes the contents of r to path atomically.
	// Uses a temp file + rename so a crash never leaves a partial file.
	WriteFileAtomic(path string, r io.Reader) error

	// ReadDir reads a directory and returns its entries. See [os.ReadDir].
	// Entries are sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
