package hugevector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Stream snapshot format: magic, element count, then each element's block
// with a length prefix. Element blocks pass through verbatim; no codec
// round-trip happens on either side.
const streamMagic = "HGV1"

// WriteTo writes a snapshot of the container to w, implementing
// [io.WriterTo]. Blocks stream straight from the data file one element at
// a time; the whole container is never held in memory.
func (c *Container[V]) WriteTo(w io.Writer) (int64, error) {
	if c.state == nil {
		return 0, ErrClosed
	}

	var written int64

	n, err := io.WriteString(w, streamMagic)
	written += int64(n)

	if err != nil {
		return written, fmt.Errorf("write snapshot header: %w", err)
	}

	var header [8]byte

	count := c.state.index.count()
	binary.LittleEndian.PutUint64(header[:], uint64(count))

	n, err = w.Write(header[:])
	written += int64(n)

	if err != nil {
		return written, fmt.Errorf("write snapshot header: %w", err)
	}

	for i := int64(0); i < count; i++ {
		fr, err := c.state.index.readFrame(i)
		if err != nil {
			return written, err
		}

		block, err := c.state.data.readBlock(fr.offset, fr.size)
		if err != nil {
			return written, err
		}

		var prefix [4]byte

		binary.LittleEndian.PutUint32(prefix[:], uint32(len(block)))

		n, err = w.Write(prefix[:])
		written += int64(n)

		if err != nil {
			return written, fmt.Errorf("write element %d: %w", i, err)
		}

		n, err = w.Write(block)
		written += int64(n)

		if err != nil {
			return written, fmt.Errorf("write element %d: %w", i, err)
		}
	}

	return written, nil
}

// ReadFrom replaces the container's contents with a snapshot previously
// produced by WriteTo, implementing [io.ReaderFrom]. Blocks are appended
// to the backing files as they arrive, without decoding.
func (c *Container[V]) ReadFrom(r io.Reader) (int64, error) {
	if c.state == nil {
		return 0, ErrClosed
	}

	if err := c.Clear(); err != nil {
		return 0, err
	}

	var read int64

	magic := make([]byte, len(streamMagic))

	n, err := io.ReadFull(r, magic)
	read += int64(n)

	if err != nil {
		return read, fmt.Errorf("read snapshot header: %w", err)
	}

	if string(magic) != streamMagic {
		return read, fmt.Errorf("%w: bad snapshot magic %q", ErrCorrupt, magic)
	}

	var header [8]byte

	n, err = io.ReadFull(r, header[:])
	read += int64(n)

	if err != nil {
		return read, fmt.Errorf("read snapshot header: %w", err)
	}

	count := int64(binary.LittleEndian.Uint64(header[:]))

	for i := int64(0); i < count; i++ {
		var prefix [4]byte

		n, err = io.ReadFull(r, prefix[:])
		read += int64(n)

		if err != nil {
			return read, fmt.Errorf("read element %d: %w", i, err)
		}

		size := binary.LittleEndian.Uint32(prefix[:])
		if size == 0 {
			return read, fmt.Errorf("%w: element %d has empty block", ErrCorrupt, i)
		}

		block := make([]byte, size)

		n, err = io.ReadFull(r, block)
		read += int64(n)

		if err != nil {
			return read, fmt.Errorf("read element %d: %w", i, err)
		}

		off, err := c.state.data.appendBlock(block)
		if err != nil {
			return read, err
		}

		if err := c.state.index.appendFrame(frame{offset: off, size: int64(size)}); err != nil {
			return read, err
		}
	}

	return read, nil
}

// SaveFile writes a snapshot of the container to path atomically: readers
// of path never observe a partial snapshot.
func (c *Container[V]) SaveFile(path string) error {
	if c.state == nil {
		return ErrClosed
	}

	pr, pw := io.Pipe()

	go func() {
		_, err := c.WriteTo(pw)
		pw.CloseWithError(err)
	}()

	if err := c.state.fsys.WriteFileAtomic(path, pr); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// LoadFile replaces the container's contents with the snapshot at path.
func (c *Container[V]) LoadFile(path string) error {
	if c.state == nil {
		return ErrClosed
	}

	f, err := c.state.fsys.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}

	defer func() { _ = f.Close() }()

	if _, err := c.ReadFrom(bufio.NewReader(f)); err != nil {
		return err
	}

	return nil
}
