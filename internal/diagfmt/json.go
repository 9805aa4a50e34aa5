package diagfmt

import (
	"encoding/json"
	"io"

	"weave/internal/diag"
	"weave/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Total       int              `json:"total"`
}

// jsonWriter carries what every location needs.
type jsonWriter struct {
	fs   *source.FileSet
	opts *JSONOpts
}

func (w jsonWriter) location(span source.Span) LocationJSON {
	loc := LocationJSON{
		File:      displayPath(w.fs.Get(span.File), w.opts.PathMode, w.opts.BaseDir),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if w.opts.IncludePositions {
		start, end := w.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (w jsonWriter) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Location: w.location(d.Primary),
	}
	if w.opts.IncludeNotes {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: w.location(n.Span)})
		}
	}
	if w.opts.IncludeFixes {
		for _, fx := range d.Fixes {
			out.Fixes = append(out.Fixes, w.fix(fx))
		}
	}
	return out
}

func (w jsonWriter) fix(fx diag.Fix) FixJSON {
	out := FixJSON{Title: fx.Title, Edits: make([]FixEditJSON, 0, len(fx.Edits))}
	for _, edit := range fx.Edits {
		e := FixEditJSON{Location: w.location(edit.Span), NewText: edit.NewText}
		if f := w.fs.Get(edit.Span.File); f != nil {
			e.OldText = f.Slice(edit.Span)
		}
		if w.opts.IncludePreviews {
			if pv, err := previewEdit(w.fs, edit); err == nil {
				e.BeforeLines, e.AfterLines = pv.before, pv.after
			}
		}
		out.Edits = append(out.Edits, e)
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON document without encoding it.
// Total counts every item; Count only those kept under Max.
func BuildDiagnosticsOutput(items []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	kept := items
	if opts.Max > 0 && opts.Max < len(kept) {
		kept = kept[:opts.Max]
	}
	w := jsonWriter{fs: fs, opts: &opts}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(kept)),
		Total:       len(items),
	}
	for i := range kept {
		out.Diagnostics = append(out.Diagnostics, w.diagnostic(&kept[i]))
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, fs, opts))
}
