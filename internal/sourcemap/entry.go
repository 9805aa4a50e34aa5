package sourcemap

import (
	"fmt"

	"weave/internal/source"
)

// Kind says what the generator wrote for an entry.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindLiteral is markup written as a quoted string literal.
	KindLiteral
	// KindExpression is verbatim code whose value is written.
	KindExpression
	// KindStatement is verbatim code that is executed.
	KindStatement
	// KindMember is a directive argument used in a declaration: a field
	// type, an embedded base, an interface or a constant.
	KindMember
	// KindImport is an import path.
	KindImport
	// KindComment is an unclassified directive argument kept as a comment.
	KindComment
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindLiteral:    "literal",
	KindExpression: "expression",
	KindStatement:  "statement",
	KindMember:     "member",
	KindImport:     "import",
	KindComment:    "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Verbatim reports kinds whose generated text equals the source text.
func (k Kind) Verbatim() bool {
	switch k {
	case KindExpression, KindStatement, KindMember, KindImport, KindComment:
		return true
	}
	return false
}

// Range is a half-open byte range of the generated text.
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) Len() uint32 { return r.End - r.Start }
func (r Range) Empty() bool { return r.Start >= r.End }

// Contains reports whether off lies inside r.
func (r Range) Contains(off uint32) bool { return off >= r.Start && off < r.End }

func (r Range) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Entry pairs a generated region with the template span it came from.
type Entry struct {
	Generated Range
	Source    source.Span
	Kind      Kind
	// Reordered marks entries that a lowering pass moved out of source
	// order. They are exempt from the ordering check.
	Reordered bool
}

func (e Entry) String() string {
	s := fmt.Sprintf("%s %s <- %s", e.Kind, e.Generated, e.Source)
	if e.Reordered {
		s += " reordered"
	}
	return s
}
