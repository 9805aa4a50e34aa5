package diag

import (
	"weave/internal/source"
)

// Diagnostic is one finding. Message is Code's template rendered with Args.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Args     []any
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Note points at a secondary location.
type Note struct {
	Span source.Span
	Msg  string
}

// Fix is a titled set of edits that resolves the finding.
type Fix struct {
	Title string
	Edits []FixEdit
}

// FixEdit replaces Span with NewText; an empty span inserts.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// New renders code's message with args.
func New(sev Severity, code Code, primary source.Span, args ...any) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Message: code.Format(args...), Args: args, Primary: primary}
}

func NewError(code Code, primary source.Span, args ...any) Diagnostic {
	return New(SevError, code, primary, args...)
}

// WithNote and WithFix return a copy; the receiver's slices are not shared
// past their length.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes[:len(d.Fixes):len(d.Fixes)], Fix{Title: title, Edits: edits})
	return d
}

func (d Diagnostic) String() string {
	return d.Code.ID() + " " + d.Severity.String() + " " + d.Primary.String() + ": " + d.Message
}
