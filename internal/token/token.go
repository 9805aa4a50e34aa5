package token

import (
	"strings"

	"weave/internal/source"
)

// Flags carries recovery information about a token.
type Flags uint8

const (
	// FlagMissing marks a zero-width token synthesized where punctuation was expected.
	FlagMissing Flags = 1 << iota
	// FlagUnterminated marks a string or comment body that ran into the end of input.
	FlagUnterminated
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind     Kind
	Span     source.Span
	Text     string
	Leading  []Trivia
	Trailing []Trivia
	Flags    Flags
}

// Missing returns a zero-width synthesized token of kind k at off.
func Missing(k Kind, file source.FileID, off uint32) Token {
	return Token{Kind: k, Span: source.At(file, off), Flags: FlagMissing}
}

// IsMissing reports whether the token was synthesized by error recovery.
func (t Token) IsMissing() bool { return t.Flags&FlagMissing != 0 }

// IsUnterminated reports whether the token ran into the end of input.
func (t Token) IsUnterminated() bool { return t.Flags&FlagUnterminated != 0 }

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// FullSpan covers the token together with its trivia.
func (t Token) FullSpan() source.Span {
	sp := t.Span
	if len(t.Leading) > 0 {
		sp.Start = t.Leading[0].Span.Start
	}
	if len(t.Trailing) > 0 {
		sp.End = t.Trailing[len(t.Trailing)-1].Span.End
	}
	return sp
}

// FullText returns leading trivia, text and trailing trivia concatenated.
func (t Token) FullText() string {
	if len(t.Leading) == 0 && len(t.Trailing) == 0 {
		return t.Text
	}
	var b strings.Builder
	for _, tr := range t.Leading {
		b.WriteString(tr.Text)
	}
	b.WriteString(t.Text)
	for _, tr := range t.Trailing {
		b.WriteString(tr.Text)
	}
	return b.String()
}
