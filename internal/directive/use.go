package directive

import (
	"fmt"

	"weave/internal/source"
)

// Arg is one parsed directive argument.
type Arg struct {
	Kind    TokenKind
	Text    string
	Span    source.Span
	Missing bool
}

// Use is one occurrence of a directive in a document.
type Use struct {
	Descriptor *Descriptor
	// Span covers the directive from '@' to the end of its line or block.
	Span source.Span
	// Index is the occurrence number of this directive name in the document.
	Index int
	Args  []Arg
	// Rejected uses violate the usage policy. They stay in the tree but are
	// not lowered.
	Rejected bool
}

// Arg returns the argument for the i-th token descriptor.
func (u *Use) Arg(i int) (Arg, bool) {
	if i < 0 || i >= len(u.Args) || u.Args[i].Missing {
		return Arg{}, false
	}
	return u.Args[i], true
}

// MemberName is a stable Go identifier for per-occurrence generated members.
func (u *Use) MemberName() string {
	return fmt.Sprintf("__directive_%s_%d__", u.Descriptor.Name, u.Index)
}
