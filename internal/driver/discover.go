package driver

import (
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"weave/internal/config"
)

// Discover walks root and returns the slash-separated paths, relative to
// root, that match an include pattern and no exclude pattern. The result is
// sorted for a deterministic build order.
func Discover(fsys afero.Fs, root string, b config.Build) ([]string, error) {
	include := b.Include
	if len(include) == 0 {
		include = config.Default().Build.Include
	}
	for _, p := range slices.Concat(include, b.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid glob %q", p)
		}
	}
	if root == "" {
		root = "."
	}

	var files []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			// Skip excluded directories wholesale.
			if rel != "." && matchAny(b.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(include, rel) && !matchAny(b.Exclude, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("discover %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
