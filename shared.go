package hugevector

import (
	"fmt"
	"sync/atomic"

	"github.com/yashkanani/hugevector/pkg/fs"
)

const (
	// backingPrefix starts the name of every backing file so leftover
	// files from crashed runs are recognizable to CleanUp.
	backingPrefix = "HugeContainerData"

	// copyChunk is the buffer size used when streaming backing files.
	copyChunk = 1024
)

// sharedState bundles the two backing files of a container. Multiple
// container handles may reference the same state; mutators detach first so
// no two handles ever share a mutating view.
type sharedState struct {
	fsys fs.FS
	dir  string

	refs atomic.Int64

	data  *dataFile
	index *indexFile
}

// newSharedState creates a fresh state with two empty temporary backing
// files in dir (the system temp dir when dir is empty). The returned state
// carries one reference.
func newSharedState(fsys fs.FS, dir string) (*sharedState, error) {
	dataF, err := fsys.CreateTemp(dir, backingPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create data file: %w", err)
	}

	indexF, err := fsys.CreateTemp(dir, backingPrefix+"*")
	if err != nil {
		_ = dataF.Close()
		_ = fsys.Remove(dataF.Name())

		return nil, fmt.Errorf("create index file: %w", err)
	}

	s := &sharedState{
		fsys:  fsys,
		dir:   dir,
		data:  newDataFile(dataF),
		index: newIndexFile(fsys, dir, indexF),
	}
	s.refs.Store(1)

	return s, nil
}

// retain adds a reference and returns s.
func (s *sharedState) retain() *sharedState {
	s.refs.Add(1)

	return s
}

// shared reports whether more than one handle references s.
func (s *sharedState) shared() bool {
	return s.refs.Load() > 1
}

// release drops one reference. The last release closes and unlinks both
// backing files; the returned error is from that teardown.
func (s *sharedState) release() error {
	if s.refs.Add(-1) > 0 {
		return nil
	}

	dataErr := s.closeAndRemove(s.data.f)
	indexErr := s.closeAndRemove(s.index.f)

	if dataErr != nil {
		return dataErr
	}

	return indexErr
}

func (s *sharedState) closeAndRemove(f fs.File) error {
	name := f.Name()

	closeErr := f.Close()
	removeErr := s.fsys.Remove(name)

	if closeErr != nil {
		return fmt.Errorf("close backing file: %w", closeErr)
	}

	if removeErr != nil {
		return fmt.Errorf("remove backing file: %w", removeErr)
	}

	return nil
}

// deepClone builds an independent copy of s by streaming both backing
// files, byte for byte, into fresh temporary files. The clone carries one
// reference and leaves s untouched.
func (s *sharedState) deepClone() (*sharedState, error) {
	clone, err := newSharedState(s.fsys, s.dir)
	if err != nil {
		return nil, err
	}

	if _, err := copyRange(s.data.f, 0, s.data.size(), clone.data.f, 0); err != nil {
		_ = clone.release()

		return nil, fmt.Errorf("clone data file: %w", err)
	}

	clone.data.end = s.data.size()

	indexBytes := s.index.count() * frameStride

	if _, err := copyRange(s.index.f, 0, indexBytes, clone.index.f, 0); err != nil {
		_ = clone.release()

		return nil, fmt.Errorf("clone index file: %w", err)
	}

	clone.index.n = s.index.count()

	return clone, nil
}

// copyRange streams length bytes from src at srcOff to dst at dstOff in
// copyChunk-sized pieces, returning the number of bytes copied. Positional
// I/O only; neither file's seek position is disturbed.
func copyRange(src fs.File, srcOff, length int64, dst fs.File, dstOff int64) (int64, error) {
	buf := make([]byte, copyChunk)

	var copied int64

	for copied < length {
		chunk := int64(len(buf))
		if remaining := length - copied; remaining < chunk {
			chunk = remaining
		}

		if _, err := src.ReadAt(buf[:chunk], srcOff+copied); err != nil {
			return copied, err
		}

		if _, err := dst.WriteAt(buf[:chunk], dstOff+copied); err != nil {
			return copied, err
		}

		copied += chunk
	}

	return copied, nil
}
