package hugevector

import (
	"fmt"

	"github.com/yashkanani/hugevector/pkg/fs"
)

// indexFile is a fixed-stride log of frame records, one per live element.
//
// Record i lives at byte offset i*frameStride. The record count is the sole
// source of truth for container size and always equals the file length
// divided by the stride.
type indexFile struct {
	fsys fs.FS
	dir  string
	f    fs.File
	n    int64
}

// newIndexFile wraps an empty, freshly created backing file. Scratch files
// used by shift are created in dir through fsys.
func newIndexFile(fsys fs.FS, dir string, f fs.File) *indexFile {
	return &indexFile{fsys: fsys, dir: dir, f: f}
}

// openIndexFile wraps a backing file that already holds records, recovering
// the record count from the file size. Used after a deep clone.
func openIndexFile(fsys fs.FS, dir string, f fs.File) (*indexFile, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat index file: %w", err)
	}

	size := info.Size()
	if size%frameStride != 0 {
		return nil, fmt.Errorf("%w: index length %d not a multiple of %d", ErrCorrupt, size, frameStride)
	}

	return &indexFile{fsys: fsys, dir: dir, f: f, n: size / frameStride}, nil
}

// count returns the number of records.
func (x *indexFile) count() int64 {
	return x.n
}

// readFrame returns record i. The read is positional.
func (x *indexFile) readFrame(i int64) (frame, error) {
	var buf [frameStride]byte

	if _, err := x.f.ReadAt(buf[:], i*frameStride); err != nil {
		return invalidFrame, fmt.Errorf("read index record %d: %w", i, err)
	}

	return unmarshalFrame(buf[:]), nil
}

// appendFrame writes fr as a new record at the current end.
func (x *indexFile) appendFrame(fr frame) error {
	if err := x.writeFrame(x.n, fr); err != nil {
		return err
	}

	x.n++

	return nil
}

// overwriteFrame replaces record i in place. The record count is unchanged.
func (x *indexFile) overwriteFrame(i int64, fr frame) error {
	return x.writeFrame(i, fr)
}

func (x *indexFile) writeFrame(i int64, fr frame) error {
	var buf [frameStride]byte

	fr.marshal(buf[:])

	if _, err := x.f.WriteAt(buf[:], i*frameStride); err != nil {
		return fmt.Errorf("write index record %d: %w", i, err)
	}

	return nil
}

// shift relocates the record tail [i, count) to start at record dst, then
// truncates the file to the new logical length. dst = i+1 opens a hole for
// an insert; shifting [i+1, count) to i closes the hole left by a removal.
//
// The tail streams through a scratch temporary file in 1 KiB chunks so the
// index never has to fit in memory. The record count is adjusted exactly
// once, after the copy completes.
func (x *indexFile) shift(i, dst int64) error {
	src := i * frameStride
	end := x.n * frameStride

	var copied int64

	if src < end {
		scratch, err := x.fsys.CreateTemp(x.dir, backingPrefix+"*")
		if err != nil {
			return fmt.Errorf("create scratch file: %w", err)
		}

		defer func() {
			_ = scratch.Close()
			_ = x.fsys.Remove(scratch.Name())
		}()

		copied, err = copyRange(x.f, src, end-src, scratch, 0)
		if err != nil {
			return fmt.Errorf("copy index tail out: %w", err)
		}

		if _, err := copyRange(scratch, 0, copied, x.f, dst*frameStride); err != nil {
			return fmt.Errorf("copy index tail back: %w", err)
		}
	}

	newEnd := dst*frameStride + copied

	if err := x.f.Truncate(newEnd); err != nil {
		return fmt.Errorf("truncate index file: %w", err)
	}

	x.n = newEnd / frameStride

	return nil
}

// reset truncates the file to zero length and drops all records.
func (x *indexFile) reset() error {
	if err := x.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate index file: %w", err)
	}

	x.n = 0

	return nil
}
