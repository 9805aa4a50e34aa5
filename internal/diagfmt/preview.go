package diagfmt

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"weave/internal/diag"
	"weave/internal/source"
)

// editPreview holds the whole lines an edit touches, before and after it is applied.
type editPreview struct {
	before []string
	after  []string
}

func previewEdit(fs *source.FileSet, edit diag.FixEdit) (editPreview, error) {
	if fs == nil {
		return editPreview{}, errors.New("no file set")
	}
	f := fs.Get(edit.Span.File)
	if f == nil {
		return editPreview{}, errors.Errorf("file %d not in file set", edit.Span.File)
	}
	if edit.Span.Start > edit.Span.End || edit.Span.End > f.Len() {
		return editPreview{}, errors.Errorf("edit %s outside %s", edit.Span, f.Path)
	}

	ls := f.LineSpan(edit.Span)
	from, _ := f.Offset(source.LineCol{Line: ls.Start.Line, Col: 1})
	to, ok := f.Offset(source.LineCol{Line: ls.End.Line + 1, Col: 1})
	if !ok {
		to = f.Len()
	}

	block := string(f.Content[from:to])
	head := block[:edit.Span.Start-from]
	tail := block[edit.Span.End-from:]
	return editPreview{
		before: previewLines(block),
		after:  previewLines(head + edit.NewText + tail),
	}, nil
}

// previewLines splits a block of whole lines; the final newline does not
// open another line. CRLF breaks are dropped like LF ones.
func previewLines(block string) []string {
	if block == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
