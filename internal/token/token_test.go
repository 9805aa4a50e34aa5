package token

import (
	"testing"

	"weave/internal/source"
)

func TestKindStringCoversAllKinds(t *testing.T) {
	for k := Invalid; k <= Operator; k++ {
		if k.String() == "Kind(?)" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(250).String() != "Kind(?)" {
		t.Errorf("unexpected name for unknown kind")
	}
}

func TestKindClasses(t *testing.T) {
	if !Text.IsMarkup() || !AttrText.IsMarkup() || Ident.IsMarkup() {
		t.Errorf("markup classification is wrong")
	}
	if !Ident.IsCode() || !Operator.IsCode() || Name.IsCode() {
		t.Errorf("code classification is wrong")
	}
	for _, k := range []Kind{RParen, RBrace, RBracket, TagClose, SelfClose} {
		if !k.Closes() {
			t.Errorf("%s should close", k)
		}
	}
	if LBrace.Closes() || DoubleQuote.Closes() {
		t.Errorf("openers must not close")
	}
}

func TestKeywords(t *testing.T) {
	if !LookupKeyword("range") || LookupKeyword("Model") {
		t.Errorf("keyword lookup is wrong")
	}
	if !StatementKeyword("switch") || StatementKeyword("else") {
		t.Errorf("statement keyword lookup is wrong")
	}
}

func TestFullTextAndSpan(t *testing.T) {
	tok := Token{
		Kind:     Ident,
		Span:     source.Span{Start: 3, End: 6},
		Text:     "foo",
		Leading:  []Trivia{{Kind: TriviaNewline, Span: source.Span{Start: 0, End: 1}, Text: "\n"}, {Kind: TriviaSpace, Span: source.Span{Start: 1, End: 3}, Text: "  "}},
		Trailing: []Trivia{{Kind: TriviaSpace, Span: source.Span{Start: 6, End: 7}, Text: " "}},
	}
	if got := tok.FullText(); got != "\n  foo " {
		t.Errorf("FullText = %q", got)
	}
	if sp := tok.FullSpan(); sp.Start != 0 || sp.End != 7 {
		t.Errorf("FullSpan = %v", sp)
	}
	if !HasNewline(tok.Leading) || HasNewline(tok.Trailing) {
		t.Errorf("HasNewline is wrong")
	}
	m := Missing(RBrace, 0, 9)
	if !m.IsMissing() || m.Text != "" || !m.Span.Empty() {
		t.Errorf("Missing token is wrong: %+v", m)
	}
}
