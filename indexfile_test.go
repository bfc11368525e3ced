package hugevector

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashkanani/hugevector/pkg/fs"
)

func newTestIndexFile(t *testing.T) *indexFile {
	t.Helper()

	fsys := fs.NewReal()
	dir := t.TempDir()

	f, err := fsys.CreateTemp(dir, backingPrefix+"*")
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	return newIndexFile(fsys, dir, f)
}

func indexFrames(t *testing.T, x *indexFile) []frame {
	t.Helper()

	frames := make([]frame, 0, x.count())

	for i := int64(0); i < x.count(); i++ {
		fr, err := x.readFrame(i)
		require.NoError(t, err)

		frames = append(frames, fr)
	}

	return frames
}

func TestIndexFileAppendRead(t *testing.T) {
	t.Parallel()

	x := newTestIndexFile(t)

	assert.Equal(t, int64(0), x.count())

	want := []frame{{0, 8}, {8, 16}, {24, 100}}
	for _, fr := range want {
		require.NoError(t, x.appendFrame(fr))
	}

	assert.Equal(t, int64(3), x.count())
	assert.Equal(t, want, indexFrames(t, x))

	info, err := x.f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(3*frameStride), info.Size(), "file length must be count times stride")
}

func TestIndexFileOverwrite(t *testing.T) {
	t.Parallel()

	x := newTestIndexFile(t)

	require.NoError(t, x.appendFrame(frame{0, 8}))
	require.NoError(t, x.appendFrame(frame{8, 8}))

	require.NoError(t, x.overwriteFrame(0, frame{100, 50}))

	assert.Equal(t, int64(2), x.count(), "overwrite must not change count")
	assert.Equal(t, []frame{{100, 50}, {8, 8}}, indexFrames(t, x))
}

func TestIndexFileShiftOpensHole(t *testing.T) {
	t.Parallel()

	x := newTestIndexFile(t)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, x.appendFrame(frame{i * 10, 10}))
	}

	// Open a hole at record 2; the old record 2 is duplicated until the
	// caller overwrites the hole.
	require.NoError(t, x.shift(2, 3))

	assert.Equal(t, int64(6), x.count())
	assert.Equal(t,
		[]frame{{0, 10}, {10, 10}, {20, 10}, {20, 10}, {30, 10}, {40, 10}},
		indexFrames(t, x))
}

func TestIndexFileShiftClosesHole(t *testing.T) {
	t.Parallel()

	x := newTestIndexFile(t)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, x.appendFrame(frame{i * 10, 10}))
	}

	// Remove record 1 by shifting the tail after it down.
	require.NoError(t, x.shift(2, 1))

	assert.Equal(t, int64(4), x.count())
	assert.Equal(t,
		[]frame{{0, 10}, {20, 10}, {30, 10}, {40, 10}},
		indexFrames(t, x))

	info, err := x.f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(4*frameStride), info.Size(), "shift must truncate the file")
}

func TestIndexFileShiftLastRecord(t *testing.T) {
	t.Parallel()

	x := newTestIndexFile(t)

	require.NoError(t, x.appendFrame(frame{0, 10}))
	require.NoError(t, x.appendFrame(frame{10, 10}))

	// Removing the last record shifts an empty tail.
	require.NoError(t, x.shift(2, 1))

	assert.Equal(t, int64(1), x.count())
	assert.Equal(t, []frame{{0, 10}}, indexFrames(t, x))
}

// The shift tail streams through a 1 KiB scratch buffer; exercise a tail
// spanning several chunks.
func TestIndexFileShiftLargeTail(t *testing.T) {
	t.Parallel()

	x := newTestIndexFile(t)

	const records = 500 // 8000 bytes of tail, ~8 chunks

	for i := int64(0); i < records; i++ {
		require.NoError(t, x.appendFrame(frame{i, 1}))
	}

	require.NoError(t, x.shift(1, 2))

	assert.Equal(t, int64(records+1), x.count())

	frames := indexFrames(t, x)
	assert.Equal(t, frame{0, 1}, frames[0])

	for i := int64(1); i < records; i++ {
		assert.Equal(t, frame{i, 1}, frames[i+1], "record %d", i+1)
	}
}

func TestIndexFileScratchRemoved(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()
	dir := t.TempDir()

	f, err := fsys.CreateTemp(dir, backingPrefix+"*")
	require.NoError(t, err)

	defer f.Close()

	x := newIndexFile(fsys, dir, f)

	for i := int64(0); i < 10; i++ {
		require.NoError(t, x.appendFrame(frame{i, 1}))
	}

	require.NoError(t, x.shift(3, 4))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "scratch file must be removed after shift")
}

func TestOpenIndexFileRejectsOddLength(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()
	dir := t.TempDir()

	f, err := fsys.CreateTemp(dir, backingPrefix+"*")
	require.NoError(t, err)

	defer f.Close()

	_, err = f.WriteAt(make([]byte, frameStride+3), 0)
	require.NoError(t, err)

	_, err = openIndexFile(fsys, dir, f)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenIndexFileRecoversCount(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()
	dir := t.TempDir()

	f, err := fsys.CreateTemp(dir, backingPrefix+"*")
	require.NoError(t, err)

	defer f.Close()

	x := newIndexFile(fsys, dir, f)

	for i := int64(0); i < 7; i++ {
		require.NoError(t, x.appendFrame(frame{i, 1}))
	}

	reopened, err := openIndexFile(fsys, dir, f)
	require.NoError(t, err)
	assert.Equal(t, int64(7), reopened.count())
}
