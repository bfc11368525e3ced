package hugevector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yashkanani/hugevector/pkg/fs"
)

// CleanUp removes leftover backing files from previous crashed runs.
//
// It scans the system temporary directory for writable regular files whose
// name begins with "HugeContainerData" and removes them, returning the
// number removed. Best-effort: per-file errors are ignored.
//
// Call it at process startup, before creating any container: files backing
// live containers in other processes match the same pattern.
func CleanUp() int {
	return cleanUpDir(fs.NewReal(), os.TempDir())
}

func cleanUpDir(fsys fs.FS, dir string) int {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), backingPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.Mode().Perm()&0o200 == 0 {
			continue
		}

		if fsys.Remove(filepath.Join(dir, entry.Name())) == nil {
			removed++
		}
	}

	return removed
}
