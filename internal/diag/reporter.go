package diag

import "weave/internal/source"

// Reporter is the minimal contract every stage uses to emit diagnostics.
// Implementations: BagReporter (stores into a Bag), DedupReporter,
// CountingReporter, NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Emit renders a diagnostic and hands it to r. A nil r drops it.
func Emit(r Reporter, sev Severity, code Code, primary source.Span, args ...any) {
	if r != nil {
		r.Report(New(sev, code, primary, args...))
	}
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
