package hugevector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashkanani/hugevector/pkg/fs"
)

func newTestDataFile(t *testing.T) *dataFile {
	t.Helper()

	f, err := fs.NewReal().CreateTemp(t.TempDir(), backingPrefix+"*")
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	return newDataFile(f)
}

func TestDataFileAppendReturnsOffsets(t *testing.T) {
	t.Parallel()

	d := newTestDataFile(t)

	off, err := d.appendBlock([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)

	off, err = d.appendBlock([]byte("world!"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), off)

	assert.Equal(t, int64(11), d.size())
}

func TestDataFileReadBlock(t *testing.T) {
	t.Parallel()

	d := newTestDataFile(t)

	first, err := d.appendBlock([]byte("alpha"))
	require.NoError(t, err)

	second, err := d.appendBlock([]byte("beta"))
	require.NoError(t, err)

	got, err := d.readBlock(second, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), got)

	got, err = d.readBlock(first, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
}

// Reads must not disturb where the next append lands.
func TestDataFileReadDoesNotMoveAppendFrontier(t *testing.T) {
	t.Parallel()

	d := newTestDataFile(t)

	_, err := d.appendBlock([]byte("aaaa"))
	require.NoError(t, err)

	_, err = d.readBlock(0, 4)
	require.NoError(t, err)

	off, err := d.appendBlock([]byte("bbbb"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), off)

	got, err := d.readBlock(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaabbbb"), got)
}

func TestDataFileReset(t *testing.T) {
	t.Parallel()

	d := newTestDataFile(t)

	_, err := d.appendBlock([]byte("data"))
	require.NoError(t, err)

	require.NoError(t, d.reset())
	assert.Equal(t, int64(0), d.size())

	info, err := d.f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())

	off, err := d.appendBlock([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), off, "appends restart at the beginning after reset")
}

func TestOpenDataFileRecoversFrontier(t *testing.T) {
	t.Parallel()

	d := newTestDataFile(t)

	_, err := d.appendBlock([]byte("0123456789"))
	require.NoError(t, err)

	reopened, err := openDataFile(d.f)
	require.NoError(t, err)
	assert.Equal(t, int64(10), reopened.size())
}
