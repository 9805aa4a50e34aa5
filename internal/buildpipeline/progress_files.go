package buildpipeline

import (
	"path/filepath"
	"slices"
	"strings"
)

// DisplayFiles turns paths into the labels the progress UI shows: relative to
// baseDir when they lie under it, slash-separated, deduplicated and sorted.
func DisplayFiles(files []string, baseDir string) []string {
	if len(files) == 0 {
		return files
	}
	base := absOrSelf(strings.TrimSpace(baseDir))
	labels := make([]string, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		labels = append(labels, filepath.ToSlash(displayPath(filepath.Clean(file), base)))
	}
	slices.Sort(labels)
	return slices.Compact(labels)
}

func displayPath(p, base string) string {
	if base == "" {
		return p
	}
	rel, err := filepath.Rel(base, absOrSelf(p))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return absOrSelf(p)
	}
	return rel
}

func absOrSelf(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
