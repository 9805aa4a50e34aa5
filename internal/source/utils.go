package source

import (
	"fmt"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// bom is the UTF-8 encoding of U+FEFF.
const bom = "\xEF\xBB\xBF"

func hasBOM(content []byte) bool {
	return len(content) >= len(bom) && string(content[:len(bom)]) == bom
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("line offset overflow: %w", err))
			}
			out = append(out, off)
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// number of newlines strictly before off
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	ln, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: ln, Col: off - startOff + 1}
}

// lineStart returns the offset of the first byte of the 1-based line.
func lineStart(lineIdx []uint32, line uint32) (uint32, bool) {
	if line == 0 {
		return 0, false
	}
	if line == 1 {
		return 0, true
	}
	if int(line-2) >= len(lineIdx) {
		return 0, false
	}
	return lineIdx[line-2] + 1, true
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// BaseName returns the last element of the path.
func BaseName(p string) string {
	return filepath.Base(p)
}

// RelativePath returns p relative to base.
func RelativePath(p, base string) (string, error) {
	return filepath.Rel(base, p)
}

// AbsolutePath resolves p against the working directory.
func AbsolutePath(p string) (string, error) {
	return filepath.Abs(p)
}
