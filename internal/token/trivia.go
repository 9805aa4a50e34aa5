package token

import (
	"strings"

	"weave/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	}
	return "Trivia(?)"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// TriviaText concatenates the text of all pieces.
func TriviaText(ts []Trivia) string {
	switch len(ts) {
	case 0:
		return ""
	case 1:
		return ts[0].Text
	}
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.Text)
	}
	return b.String()
}

// HasNewline reports whether any piece contains a line break.
func HasNewline(ts []Trivia) bool {
	for _, t := range ts {
		if t.Kind == TriviaNewline || strings.Contains(t.Text, "\n") {
			return true
		}
	}
	return false
}
