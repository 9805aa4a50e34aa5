package directive

import "weave/internal/diag"

// Tracker applies usage policies while a document is parsed.
type Tracker struct {
	counts  map[string]int
	content bool
}

func NewTracker() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// MarkContent records that markup content has been seen. File-scoped
// directives after this point are rejected.
func (t *Tracker) MarkContent() { t.content = true }

// ContentSeen reports whether MarkContent was called.
func (t *Tracker) ContentSeen() bool { return t.content }

// Verdict is the outcome of Admit.
type Verdict struct {
	// Index is the occurrence number of the directive name.
	Index int
	// Code is zero when the use is admitted.
	Code diag.Code
}

// Admitted reports whether the use may be lowered.
func (v Verdict) Admitted() bool { return v.Code == 0 }

// Admit records one use of d. nested is true inside elements, code or other
// directive bodies.
func (t *Tracker) Admit(d *Descriptor, nested bool) Verdict {
	idx := t.counts[d.Name]
	t.counts[d.Name]++
	v := Verdict{Index: idx}
	switch {
	case nested && (d.Usage.FileScoped() || d.Kind == KindRazorBlock):
		v.Code = diag.DirNotAllowedHere
	case d.Usage.FileScoped() && t.content:
		v.Code = diag.DirAfterContent
	case d.Usage == UsageFileScopedSingle && idx > 0:
		v.Code = diag.DirDuplicate
	}
	return v
}
