package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Expand resolves glob patterns and plain paths to a deduplicated, sorted
// list of regular files. Directories are walked recursively.
func Expand(patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if info.IsDir() {
				if err := walkDir(pattern, add); err != nil {
					return nil, err
				}
			} else {
				add(pattern)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", pattern)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			add(match)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no readable files in %v", patterns)
	}

	// Sort for deterministic ordering
	sort.Strings(paths)
	return paths, nil
}

func walkDir(root string, add func(string)) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.Type().IsRegular() {
			add(path)
		}
		return nil
	})
}
