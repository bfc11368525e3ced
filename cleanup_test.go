package hugevector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashkanani/hugevector/pkg/fs"
)

func TestCleanUpDirRemovesLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	leftovers := []string{
		backingPrefix + "abc123",
		backingPrefix + "def456",
	}
	for _, name := range leftovers {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("stale"), 0o644))
	}

	// Unrelated files and directories must survive.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, backingPrefix+"dir"), 0o755))

	removed := cleanUpDir(fs.NewReal(), dir)
	assert.Equal(t, 2, removed)

	for _, name := range leftovers {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.ErrorIs(t, err, os.ErrNotExist, "%s should be removed", name)
	}

	_, err := os.Stat(filepath.Join(dir, "other.txt"))
	assert.NoError(t, err, "unrelated file should survive")

	_, err = os.Stat(filepath.Join(dir, backingPrefix+"dir"))
	assert.NoError(t, err, "directories should survive")
}

func TestCleanUpDirSkipsReadOnlyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, backingPrefix+"readonly")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o444))

	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	removed := cleanUpDir(fs.NewReal(), dir)
	assert.Equal(t, 0, removed)

	_, err := os.Stat(path)
	assert.NoError(t, err, "read-only file should survive")
}

func TestCleanUpDirEmptyDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, cleanUpDir(fs.NewReal(), t.TempDir()))
}

func TestCleanUpDirUnreadableDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, cleanUpDir(fs.NewReal(), filepath.Join(t.TempDir(), "missing")))
}
