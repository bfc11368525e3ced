package fs

import (
	"errors"
	"io"
	"os"
	"sync"
)

// InjectedError marks an error as intentionally injected by [Flaky].
//
// It wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Err error
}

// Error returns the underlying error's message.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by
// [Flaky]. Returns false if err is nil.
func IsInjected(err error) bool {
	if err == nil {
		return false
	}

	var injected *InjectedError

	return errors.As(err, &injected)
}

// Operation names accepted by [Flaky.FailNext].
const (
	OpOpen       = "open"
	OpOpenFile   = "openfile"
	OpCreateTemp = "createtemp"
	OpReadAt     = "readat"
	OpWriteAt    = "writeat"
	OpTruncate   = "truncate"
	OpRemove     = "remove"
	OpReadDir    = "readdir"
)

// Flaky wraps an [FS] and fails armed operations with injected errors.
//
// Unlike random fault injection, failures are armed explicitly per
// operation, so tests exercise exact failure points deterministically.
// An armed failure fires once and disarms.
type Flaky struct {
	inner FS

	mu    sync.Mutex
	armed map[string]error
}

// NewFlaky returns a [Flaky] wrapping inner with no failures armed.
func NewFlaky(inner FS) *Flaky {
	return &Flaky{
		inner: inner,
		armed: make(map[string]error),
	}
}

// FailNext arms op so its next invocation fails with err wrapped in an
// [InjectedError].
func (f *Flaky) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.armed[op] = err
}

// take returns the armed error for op, disarming it, or nil.
func (f *Flaky) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err, ok := f.armed[op]
	if !ok {
		return nil
	}

	delete(f.armed, op)

	return &InjectedError{Err: err}
}

func (f *Flaky) Open(path string) (File, error) {
	if err := f.take(OpOpen); err != nil {
		return nil, err
	}

	file, err := f.inner.Open(path)

	return f.wrap(file), err
}

func (f *Flaky) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := f.take(OpOpenFile); err != nil {
		return nil, err
	}

	file, err := f.inner.OpenFile(path, flag, perm)

	return f.wrap(file), err
}

func (f *Flaky) CreateTemp(dir, pattern string) (File, error) {
	if err := f.take(OpCreateTemp); err != nil {
		return nil, err
	}

	file, err := f.inner.CreateTemp(dir, pattern)

	return f.wrap(file), err
}

func (f *Flaky) WriteFileAtomic(path string, src io.Reader) error {
	if err := f.take(OpWriteAt); err != nil {
		return err
	}

	return f.inner.WriteFileAtomic(path, src)
}

func (f *Flaky) ReadDir(path string) ([]os.DirEntry, error) {
	if err := f.take(OpReadDir); err != nil {
		return nil, err
	}

	return f.inner.ReadDir(path)
}

func (f *Flaky) Stat(path string) (os.FileInfo, error) {
	return f.inner.Stat(path)
}

func (f *Flaky) Remove(path string) error {
	if err := f.take(OpRemove); err != nil {
		return err
	}

	return f.inner.Remove(path)
}

func (f *Flaky) wrap(file File) File {
	if file == nil {
		return nil
	}

	return &flakyFile{File: file, fs: f}
}

// flakyFile intercepts the random-access calls of an open [File].
type flakyFile struct {
	File

	fs *Flaky
}

func (f *flakyFile) ReadAt(p []byte, off int64) (int, error) {
	if err := f.fs.take(OpReadAt); err != nil {
		return 0, err
	}

	return f.File.ReadAt(p, off)
}

func (f *flakyFile) WriteAt(p []byte, off int64) (int, error) {
	if err := f.fs.take(OpWriteAt); err != nil {
		return 0, err
	}

	return f.File.WriteAt(p, off)
}

func (f *flakyFile) Truncate(size int64) error {
	if err := f.fs.take(OpTruncate); err != nil {
		return err
	}

	return f.File.Truncate(size)
}

// Compile-time interface checks.
var (
	_ FS   = (*Flaky)(nil)
	_ File = (*flakyFile)(nil)
)
