package source

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// FileSet manages a collection of source documents.
// It is safe for concurrent use; File values are immutable once added.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
	index map[string]FileID // path -> latest id
	fs    afero.Fs
}

// NewFileSet creates a FileSet that loads from the OS file system.
func NewFileSet() *FileSet {
	return NewFileSetFS(afero.NewOsFs())
}

// NewFileSetFS creates a FileSet backed by the given file system.
func NewFileSetFS(fs afero.Fs) *FileSet {
	return &FileSet{
		files: make([]*File, 0),
		index: make(map[string]FileID),
		fs:    fs,
	}
}

// Add stores a document, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, &File{
		ID:       id,
		Path:     normalizedPath,
		Content:  content,
		Encoding: DefaultEncoding,
		LineIdx:  lineIdx,
		Hash:     hash,
		Flags:    flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a document through the FileSet's file system and calls Add.
// The bytes are kept as they are on disk, CRLF and a leading BOM included,
// so every offset points into the real file.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	content, err := afero.ReadFile(fileSet.fs, path)
	if err != nil {
		return 0, errors.Errorf("reading %s: %w", path, err)
	}

	flags := FileFlags(0)
	if hasBOM(content) {
		flags |= FileHadBOM
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for the given ID or nil.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Len returns the number of files added so far.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

// Len returns the content length in bytes.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// BOMLen returns the width of a leading byte order mark, or 0.
func (f *File) BOMLen() uint32 {
	if hasBOM(f.Content) {
		return uint32(len(bom))
	}
	return 0
}

// Span returns the span covering the whole document.
func (f *File) Span() Span {
	return Span{File: f.ID, Start: 0, End: f.Len()}
}

// Slice returns the document text under sp. Out-of-range spans are clamped.
func (f *File) Slice(sp Span) string {
	end := min(sp.End, f.Len())
	start := min(sp.Start, end)
	return string(f.Content[start:end])
}

// Position converts a byte offset into a 1-based line/column in O(log n).
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, min(off, f.Len()))
}

// LineSpan converts sp into line/column form.
func (f *File) LineSpan(sp Span) LineSpan {
	return LineSpan{Start: f.Position(sp.Start), End: f.Position(sp.End)}
}

// Offset converts a 1-based line/column back into a byte offset.
// It reports false when the position does not exist in the document.
func (f *File) Offset(pos LineCol) (uint32, bool) {
	start, ok := lineStart(f.LineIdx, pos.Line)
	if !ok || pos.Col == 0 {
		return 0, false
	}
	end := f.Len()
	if int(pos.Line-1) < len(f.LineIdx) {
		end = f.LineIdx[pos.Line-1]
	}
	off := start + pos.Col - 1
	if off > end {
		return 0, false
	}
	return off, true
}

// GetLine returns the 1-based line without its line break ("\n" or "\r\n"),
// or "" when absent.
func (f *File) GetLine(lineNum uint32) string {
	start, ok := lineStart(f.LineIdx, lineNum)
	if !ok || start > f.Len() {
		return ""
	}
	end := f.Len()
	if int(lineNum-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	}
	return strings.TrimSuffix(string(f.Content[start:end]), "\r")
}

// LineCount returns the number of lines in the document.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}
