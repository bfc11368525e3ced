package hugevector

import (
	"fmt"

	"github.com/yashkanani/hugevector/pkg/fs"
)

// dataFile is the append-only byte store holding encoded element blocks.
//
// Blocks are written back to back with no framing; their boundaries live in
// the index file. The append frontier is tracked in memory so positional
// reads never disturb where the next block lands.
type dataFile struct {
	f   fs.File
	end int64
}

// newDataFile wraps an empty, freshly created backing file.
func newDataFile(f fs.File) *dataFile {
	return &dataFile{f: f}
}

// openDataFile wraps a backing file that already holds blocks, recovering
// the append frontier from the file size. Used after a deep clone.
func openDataFile(f fs.File) (*dataFile, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}

	return &dataFile{f: f, end: info.Size()}, nil
}

// size returns the current append frontier, which equals the logical file
// length.
func (d *dataFile) size() int64 {
	return d.end
}

// appendBlock writes block at the current end and returns the offset where
// writing began. Existing bytes are never overwritten.
func (d *dataFile) appendBlock(block []byte) (int64, error) {
	off := d.end

	n, err := d.f.WriteAt(block, off)
	if err != nil {
		return -1, fmt.Errorf("%w: %w", ErrAppend, err)
	}

	if n != len(block) {
		return -1, fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(block))
	}

	d.end += int64(n)

	return off, nil
}

// readBlock reads exactly size bytes starting at off. The read is
// positional and leaves the append frontier untouched.
func (d *dataFile) readBlock(off, size int64) ([]byte, error) {
	buf := make([]byte, size)

	if _, err := d.f.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("read block at %d: %w", off, err)
	}

	return buf, nil
}

// reset truncates the file to zero length and rewinds the append frontier.
func (d *dataFile) reset() error {
	if err := d.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate data file: %w", err)
	}

	d.end = 0

	return nil
}
