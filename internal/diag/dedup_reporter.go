package diag

import (
	"weave/internal/source"
)

type dedupKey struct {
	code    Code
	sev     Severity
	primary source.Span
	msg     string
}

// DedupReporter forwards each distinct (code, severity, span, message) once.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, primary: d.Primary, msg: d.Message}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}

// CountingReporter forwards to Next and counts what passes through.
type CountingReporter struct {
	Next   Reporter
	Errors int
	Total  int
}

func (r *CountingReporter) Report(d Diagnostic) {
	r.Total++
	if d.Severity >= SevError {
		r.Errors++
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}
