// Package fs locates exported session files on disk.
package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern indicates a glob pattern that cannot be parsed.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// Glob returns the regular files under root matching pattern, sorted.
// Patterns use forward slashes and support ** for recursive matching.
// Returned paths are joined with root.
func Glob(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var matches []string
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// SplitPattern separates a user-supplied pattern such as
// "exports/**/*.json" into the longest literal directory prefix and the
// remaining glob, suitable for Glob.
func SplitPattern(p string) (root, pattern string) {
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(p))
	return filepath.FromSlash(base), pattern
}
