// Package hugevector implements an ordered, index-addressable sequence
// container whose elements live in temporary backing files instead of
// process memory.
//
// A [Container] offers the ergonomics of an in-memory vector (append,
// random-access read, insert, remove, clear) while keeping bulk data on
// disk: each element is encoded by a [Codec] into a block appended to a
// data file, and a fixed-stride index file records where each element's
// block lives. The in-memory footprint is bounded by one decoded value in
// flight; files are streamed in small chunks, never loaded whole.
//
// Containers are cheap to copy: [Container.Clone] shares the backing state
// in O(1), and the first mutation through any handle detaches it onto a
// private deep copy, so no mutation is ever observable through another
// handle.
//
// Backing files are temporary. They are created in the system temp
// directory (or the directory given to [WithTempDir]) with the name prefix
// "HugeContainerData" and removed when the last handle is closed. Call
// [CleanUp] at process startup to sweep files leaked by crashed runs.
//
// A Container is not safe for concurrent use.
package hugevector

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yashkanani/hugevector/pkg/fs"
)

// Errors returned by container operations. I/O failures are fatal to the
// operation but wrapped so callers can inspect the cause; the container
// never recovers partial state on its own.
var (
	// ErrClosed is returned by operations on a closed container.
	ErrClosed = errors.New("hugevector: closed")

	// ErrAppend indicates the data file rejected an append.
	ErrAppend = errors.New("hugevector: append to backing file failed")

	// ErrShortWrite indicates an append wrote fewer bytes than encoded.
	ErrShortWrite = errors.New("hugevector: short write")

	// ErrEmptyBlock indicates a codec produced a zero-length block, which
	// the index cannot represent.
	ErrEmptyBlock = errors.New("hugevector: codec produced empty block")

	// ErrCorrupt indicates a backing file is not of the expected shape.
	ErrCorrupt = errors.New("hugevector: corrupt backing file")
)

// Option configures a new container.
type Option func(*settings)

type settings struct {
	fsys fs.FS
	dir  string
}

// WithTempDir places the backing files in dir instead of the system
// temporary directory.
func WithTempDir(dir string) Option {
	return func(s *settings) {
		s.dir = dir
	}
}

// withFS swaps the filesystem implementation. Tests use it to inject
// faults.
func withFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.fsys = fsys
	}
}

// Container is a disk-backed sequence of values of type V.
//
// The zero value is not usable; construct with [New]. Handles obtained via
// [Container.Clone] share backing files until one of them mutates.
type Container[V any] struct {
	codec Codec[V]
	state *sharedState
}

// New creates an empty container using codec for element serialization.
// Two temporary backing files are created eagerly; creation failure is the
// only way New fails.
func New[V any](codec Codec[V], opts ...Option) (*Container[V], error) {
	if codec == nil {
		panic("hugevector: nil codec")
	}

	cfg := settings{fsys: fs.NewReal()}
	for _, opt := range opts {
		opt(&cfg)
	}

	state, err := newSharedState(cfg.fsys, cfg.dir)
	if err != nil {
		return nil, err
	}

	return &Container[V]{codec: codec, state: state}, nil
}

// Clone returns a new handle sharing this container's backing state in
// O(1) with no file I/O. Either handle may mutate afterwards; the first
// mutation detaches onto a private copy of the files.
func (c *Container[V]) Clone() *Container[V] {
	if c.state == nil {
		panic("hugevector: clone of closed container")
	}

	return &Container[V]{codec: c.codec, state: c.state.retain()}
}

// Close releases this handle. The last handle to close removes the backing
// files. Close is idempotent.
func (c *Container[V]) Close() error {
	if c.state == nil {
		return nil
	}

	state := c.state
	c.state = nil

	return state.release()
}

// Len returns the number of elements. A closed container reports 0.
func (c *Container[V]) Len() int {
	if c.state == nil {
		return 0
	}

	return int(c.state.index.count())
}

// Count returns the number of elements.
func (c *Container[V]) Count() int {
	return c.Len()
}

// IsEmpty reports whether the container holds no elements.
func (c *Container[V]) IsEmpty() bool {
	return c.Len() == 0
}

// PushBack appends v. On success the new element is at index Len()-1.
func (c *Container[V]) PushBack(v V) error {
	if c.state == nil {
		return ErrClosed
	}

	if err := c.detach(); err != nil {
		return err
	}

	fr, err := c.writeElement(v)
	if err != nil {
		return err
	}

	return c.state.index.appendFrame(fr)
}

// Insert places v at index i, moving every element previously at index
// j >= i to j+1. i == Len() is equivalent to PushBack. Panics when i is
// outside [0, Len()].
func (c *Container[V]) Insert(i int, v V) error {
	if c.state == nil {
		return ErrClosed
	}

	if i < 0 || i > c.Len() {
		panic(fmt.Sprintf("hugevector: insert index %d out of range [0, %d]", i, c.Len()))
	}

	if i == c.Len() {
		return c.PushBack(v)
	}

	if err := c.detach(); err != nil {
		return err
	}

	fr, err := c.writeElement(v)
	if err != nil {
		return err
	}

	if err := c.state.index.shift(int64(i), int64(i)+1); err != nil {
		return err
	}

	return c.state.index.overwriteFrame(int64(i), fr)
}

// At returns the element at index i, decoded fresh from disk. Panics when
// i is outside [0, Len()).
func (c *Container[V]) At(i int) (V, error) {
	if c.state == nil {
		var zero V

		return zero, ErrClosed
	}

	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("hugevector: index %d out of range [0, %d)", i, c.Len()))
	}

	sl, err := c.loadSlot(int64(i))
	if err != nil {
		var zero V

		return zero, err
	}

	return sl.value(), nil
}

// First returns the element at index 0. Panics on an empty container.
func (c *Container[V]) First() (V, error) {
	if c.IsEmpty() {
		panic("hugevector: first of empty container")
	}

	return c.At(0)
}

// Last returns the element at index Len()-1. Panics on an empty container.
func (c *Container[V]) Last() (V, error) {
	if c.IsEmpty() {
		panic("hugevector: last of empty container")
	}

	return c.At(c.Len() - 1)
}

// RemoveAt deletes the element at index i, moving every element previously
// at index j > i to j-1. The element's bytes stay in the data file until
// Clear; only the index shrinks. Panics when i is outside [0, Len()).
func (c *Container[V]) RemoveAt(i int) error {
	if c.state == nil {
		return ErrClosed
	}

	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("hugevector: remove index %d out of range [0, %d)", i, c.Len()))
	}

	if err := c.detach(); err != nil {
		return err
	}

	return c.state.index.shift(int64(i)+1, int64(i))
}

// Clear removes all elements and truncates both backing files to zero
// length. On a shared handle this swaps in fresh empty files instead of
// copying state that is about to be discarded.
func (c *Container[V]) Clear() error {
	if c.state == nil {
		return ErrClosed
	}

	if c.state.shared() {
		fresh, err := newSharedState(c.state.fsys, c.state.dir)
		if err != nil {
			return err
		}

		_ = c.state.release()
		c.state = fresh

		return nil
	}

	if err := c.state.data.reset(); err != nil {
		return err
	}

	return c.state.index.reset()
}

// Swap exchanges the contents of c and other in O(1). Neither container's
// backing files are touched.
func (c *Container[V]) Swap(other *Container[V]) {
	c.codec, other.codec = other.codec, c.codec
	c.state, other.state = other.state, c.state
}

// detach replaces a shared state with a private deep copy. Mutators call
// it before touching any file.
func (c *Container[V]) detach() error {
	if !c.state.shared() {
		return nil
	}

	clone, err := c.state.deepClone()
	if err != nil {
		return err
	}

	_ = c.state.release()
	c.state = clone

	return nil
}

// writeElement encodes v and appends the block to the data file, returning
// the frame that locates it. On failure the returned frame is the invalid
// sentinel and the index has not been touched, so Len() is unchanged.
func (c *Container[V]) writeElement(v V) (frame, error) {
	var buf bytes.Buffer

	if err := c.codec.Encode(&buf, v); err != nil {
		return invalidFrame, fmt.Errorf("encode element: %w", err)
	}

	if buf.Len() == 0 {
		return invalidFrame, ErrEmptyBlock
	}

	off, err := c.state.data.appendBlock(buf.Bytes())
	if err != nil {
		return invalidFrame, err
	}

	return frame{offset: off, size: int64(buf.Len())}, nil
}

// loadSlot reads the frame at index record i and decodes its block into a
// resident slot.
func (c *Container[V]) loadSlot(i int64) (slot[V], error) {
	fr, err := c.state.index.readFrame(i)
	if err != nil {
		return slot[V]{}, err
	}

	if !fr.valid() {
		return slot[V]{}, fmt.Errorf("%w: index record %d is (%d, %d)", ErrCorrupt, i, fr.offset, fr.size)
	}

	disk := onDiskSlot[V](fr)

	block, err := c.state.data.readBlock(disk.fr.offset, disk.fr.size)
	if err != nil {
		return slot[V]{}, err
	}

	v, err := c.codec.Decode(bytes.NewReader(block))
	if err != nil {
		return slot[V]{}, fmt.Errorf("decode element %d: %w", i, err)
	}

	return residentSlot(v), nil
}
