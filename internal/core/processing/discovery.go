package processing

import (
	"fmt"
	"os"
	"path"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// FileMatcher selects repository files by include and exclude glob patterns.
// Patterns use forward slashes and support "**".
type FileMatcher struct {
	Include []string
	Exclude []string
}

// Match reports whether the slash separated relative path is included and not excluded.
func (m FileMatcher) Match(name string) bool {
	return matchAny(m.Include, name) && !matchAny(m.Exclude, name)
}

// Filter returns the matching entries of names, keeping their order.
func (m FileMatcher) Filter(names []string) []string {
	var matched []string
	for _, name := range names {
		if m.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched
}

// Discover walks root and returns the sorted relative paths of all matching files.
func (m FileMatcher) Discover(root string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var found []string

	for _, pattern := range m.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid map file pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok || matchAny(m.Exclude, match) {
				continue
			}
			seen[match] = struct{}{}
			found = append(found, match)
		}
	}

	slices.Sort(found)
	return found, nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// BaseNames returns the file name of every slash separated path.
func BaseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, path.Base(p))
	}
	return names
}
