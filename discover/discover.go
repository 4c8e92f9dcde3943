// Package discover lists the input files a run will convert.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Files walks root and returns the absolute paths whose root-relative,
// slash-separated path matches pattern. Results are sorted so job order is
// stable across runs. Paths under any exclude directory are dropped, which
// keeps a nested output root (and the ledger under it) out of the batch.
func Files(root, pattern string, exclude ...string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input root %s is not a directory", root)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		abs := filepath.Join(root, filepath.FromSlash(m))
		if excluded(abs, exclude) {
			continue
		}
		files = append(files, abs)
	}
	sort.Strings(files)
	return files, nil
}

func excluded(path string, dirs []string) bool {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
