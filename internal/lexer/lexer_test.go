package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки в заданном режиме
func makeTestLexer(input string, mode lexer.Mode) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.weave", []byte(input))
	bag := diag.NewBag(0)
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: diag.BagReporter{Bag: bag}, Mode: mode})
	return lx, bag
}

// collectAllTokens собирает все токены до EOF включительно
func collectAllTokens(lx *lexer.Lexer) []token.Token {
	tokens := make([]token.Token, 0, 16)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		out = append(out, t.Kind)
	}
	return out
}

func texts(toks []token.Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		out = append(out, t.Text)
	}
	return out
}

func fullText(toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.FullText())
	}
	return b.String()
}

func TestMarkupTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []token.Kind
		texts []string
	}{
		{
			name:  "text and whitespace",
			input: "Hi there\n",
			kinds: []token.Kind{token.Text, token.Whitespace, token.Text, token.NewLine},
			texts: []string{"Hi", " ", "there", "\n"},
		},
		{
			name:  "transition",
			input: "Hi @name!",
			kinds: []token.Kind{token.Text, token.Whitespace, token.Transition, token.Text},
			texts: []string{"Hi", " ", "@", "name!"},
		},
		{
			name:  "email stays text",
			input: "mail user@example.com",
			kinds: []token.Kind{token.Text, token.Whitespace, token.Text},
			texts: []string{"mail", " ", "user@example.com"},
		},
		{
			name:  "escaped transition",
			input: "@@x",
			kinds: []token.Kind{token.EscapedTransition, token.Text},
			texts: []string{"@@", "x"},
		},
		{
			name:  "razor comment",
			input: "@* c *@",
			kinds: []token.Kind{token.RazorCommentStart, token.RazorCommentText, token.RazorCommentEnd},
			texts: []string{"@*", " c ", "*@"},
		},
		{
			name:  "markup comment",
			input: "<!-- hi -->",
			kinds: []token.Kind{token.CommentOpen, token.CommentText, token.CommentClose},
			texts: []string{"<!--", " hi ", "-->"},
		},
		{
			name:  "declaration",
			input: "<!DOCTYPE html>",
			kinds: []token.Kind{token.Declaration},
			texts: []string{"<!DOCTYPE html>"},
		},
		{
			name:  "tags",
			input: "<b></b>",
			kinds: []token.Kind{token.TagOpen, token.Text, token.EndTagOpen, token.Text},
			texts: []string{"<", "b>", "</", "b>"},
		},
		{
			name:  "lone angle is text",
			input: "a < b",
			kinds: []token.Kind{token.Text, token.Whitespace, token.Text, token.Whitespace, token.Text},
			texts: []string{"a", " ", "<", " ", "b"},
		},
		{
			name:  "braces are separate",
			input: "{x}",
			kinds: []token.Kind{token.Text, token.Text, token.Text},
			texts: []string{"{", "x", "}"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input, lexer.ModeMarkup)
			toks := collectAllTokens(lx)
			assert.Equal(t, tt.kinds, kinds(toks))
			assert.Equal(t, tt.texts, texts(toks))
			assert.Equal(t, tt.input, fullText(toks))
			assert.Zero(t, bag.Len())
		})
	}
}

func TestTagTokens(t *testing.T) {
	input := `div class="x" disabled />`
	lx, bag := makeTestLexer(input, lexer.ModeTag)
	toks := collectAllTokens(lx)
	assert.Equal(t, []token.Kind{
		token.Name, token.Name, token.Equals, token.DoubleQuote, token.Name,
		token.DoubleQuote, token.Name, token.SelfClose,
	}, kinds(toks))
	assert.Equal(t, input, fullText(toks))
	require.Len(t, toks[0].Trailing, 1)
	assert.Equal(t, " ", toks[0].Trailing[0].Text)
	assert.Zero(t, bag.Len())
}

func TestTagStopsAtNextTag(t *testing.T) {
	lx, _ := makeTestLexer("a <b", lexer.ModeTag)
	toks := collectAllTokens(lx)
	assert.Equal(t, []token.Kind{token.Name, token.TagOpen, token.Name}, kinds(toks))
}

func TestAttrValueTokens(t *testing.T) {
	tests := []struct {
		name  string
		mode  lexer.Mode
		input string
		kinds []token.Kind
		texts []string
	}{
		{
			name:  "double quoted with transition",
			mode:  lexer.ModeAttrDouble,
			input: `a @b c"`,
			kinds: []token.Kind{token.AttrText, token.Transition, token.AttrText, token.DoubleQuote},
			texts: []string{"a ", "@", "b c", `"`},
		},
		{
			name:  "email in value",
			mode:  lexer.ModeAttrSingle,
			input: `x@y.z'`,
			kinds: []token.Kind{token.AttrText, token.SingleQuote},
			texts: []string{"x@y.z", "'"},
		},
		{
			name:  "other quote is text",
			mode:  lexer.ModeAttrDouble,
			input: `it's"`,
			kinds: []token.Kind{token.AttrText, token.DoubleQuote},
			texts: []string{"it's", `"`},
		},
		{
			name:  "unquoted",
			mode:  lexer.ModeAttrUnquoted,
			input: "foo bar",
			kinds: []token.Kind{token.AttrText, token.Whitespace, token.AttrText},
			texts: []string{"foo", " ", "bar"},
		},
		{
			name:  "unquoted before self close",
			mode:  lexer.ModeAttrUnquoted,
			input: "a/>",
			kinds: []token.Kind{token.AttrText, token.SelfClose},
			texts: []string{"a", "/>"},
		},
		{
			name:  "unquoted keeps slash",
			mode:  lexer.ModeAttrUnquoted,
			input: "/img/a.png>",
			kinds: []token.Kind{token.AttrText, token.TagClose},
			texts: []string{"/img/a.png", ">"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, _ := makeTestLexer(tt.input, tt.mode)
			toks := collectAllTokens(lx)
			assert.Equal(t, tt.kinds, kinds(toks))
			assert.Equal(t, tt.texts, texts(toks))
		})
	}
}

func TestCodeTokens(t *testing.T) {
	input := "x := a.b(1, \"s\") // c\n}"
	lx, bag := makeTestLexer(input, lexer.ModeCode)
	toks := collectAllTokens(lx)
	assert.Equal(t, []token.Kind{
		token.Ident, token.Operator, token.Ident, token.Dot, token.Ident, token.LParen,
		token.Number, token.Comma, token.String, token.RParen, token.RBrace,
	}, kinds(toks))
	assert.Equal(t, input, fullText(toks))
	assert.Zero(t, bag.Len())

	closing := toks[10]
	require.Len(t, closing.Leading, 3)
	assert.Equal(t, token.TriviaSpace, closing.Leading[0].Kind)
	assert.Equal(t, token.TriviaLineComment, closing.Leading[1].Kind)
	assert.Equal(t, "// c", closing.Leading[1].Text)
	assert.Equal(t, token.TriviaNewline, closing.Leading[2].Kind)
	assert.True(t, token.HasNewline(closing.Leading))
}

func TestCodeKeywordsAndOperators(t *testing.T) {
	lx, _ := makeTestLexer("if x <<= 2 && y... {", lexer.ModeCode)
	toks := collectAllTokens(lx)
	assert.Equal(t, []string{"if", "x", "<<=", "2", "&&", "y", "...", "{"}, texts(toks))
	assert.Equal(t, token.Keyword, toks[0].Kind)
	assert.Equal(t, token.LBrace, toks[7].Kind)
}

func TestCodeNumbers(t *testing.T) {
	lx, _ := makeTestLexer("0x1F 1e+9 .5 1_000", lexer.ModeCode)
	toks := collectAllTokens(lx)
	assert.Equal(t, []string{"0x1F", "1e+9", ".5", "1_000"}, texts(toks))
	for _, tok := range toks[:4] {
		assert.Equal(t, token.Number, tok.Kind)
	}
}

func TestCodeStrings(t *testing.T) {
	lx, bag := makeTestLexer("\"a\\n\\x41\\u00e9\" `raw\nline` 'r' '\\''", lexer.ModeCode)
	toks := collectAllTokens(lx)
	assert.Equal(t, []token.Kind{token.String, token.String, token.String, token.String}, kinds(toks))
	assert.Zero(t, bag.Len())
}

func TestInlineModeHasNoTrivia(t *testing.T) {
	lx, _ := makeTestLexer("a.b c", lexer.ModeInline)
	toks := collectAllTokens(lx)
	assert.Equal(t, []token.Kind{token.Ident, token.Dot, token.Ident, token.Whitespace, token.Ident}, kinds(toks))
	for _, tok := range toks {
		assert.Empty(t, tok.Leading)
		assert.Empty(t, tok.Trailing)
	}
}

func TestDirectiveModeKeepsNewlines(t *testing.T) {
	lx, _ := makeTestLexer("  Foo bar\nx", lexer.ModeDirective)
	toks := collectAllTokens(lx)
	assert.Equal(t, []token.Kind{token.Ident, token.Ident, token.NewLine, token.Ident}, kinds(toks))
	require.Len(t, toks[0].Leading, 1)
	assert.Equal(t, "  ", toks[0].Leading[0].Text)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		mode  lexer.Mode
		input string
		codes []diag.Code
	}{
		{"unterminated string", lexer.ModeCode, `"abc`, []diag.Code{diag.LexUnterminatedString}},
		{"unterminated raw string", lexer.ModeCode, "`abc", []diag.Code{diag.LexUnterminatedString}},
		{"newline in string", lexer.ModeCode, "\"ab\ncd\"", []diag.Code{diag.LexNewlineInString, diag.LexUnterminatedString}},
		{"invalid escape", lexer.ModeCode, `"a\qb"`, []diag.Code{diag.LexInvalidEscape}},
		{"unknown char", lexer.ModeCode, "#", []diag.Code{diag.LexUnknownChar}},
		{"unterminated block comment", lexer.ModeCode, "x /* y", []diag.Code{diag.LexUnterminatedBlockComment}},
		{"unterminated razor comment", lexer.ModeMarkup, "@* abc", []diag.Code{diag.LexUnterminatedRazorComment}},
		{"unterminated markup comment", lexer.ModeMarkup, "<!-- abc", []diag.Code{diag.LexUnterminatedMarkupComment}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, bag := makeTestLexer(tt.input, tt.mode)
			toks := collectAllTokens(lx)
			assert.Equal(t, tt.codes, bag.Codes())
			assert.Equal(t, tt.input, fullText(toks))
		})
	}
}

func TestUnterminatedCommentHasMissingEnd(t *testing.T) {
	lx, _ := makeTestLexer("@* abc", lexer.ModeMarkup)
	toks := collectAllTokens(lx)
	require.Len(t, toks, 4)
	end := toks[2]
	assert.Equal(t, token.RazorCommentEnd, end.Kind)
	assert.True(t, end.IsMissing())
	assert.True(t, end.Span.Empty())
	assert.True(t, toks[1].IsUnterminated())
}

func TestSetModeRelexes(t *testing.T) {
	lx, _ := makeTestLexer("<div class='a'>", lexer.ModeMarkup)
	assert.Equal(t, token.TagOpen, lx.Next().Kind)
	assert.Equal(t, token.Text, lx.Peek().Kind)

	lx.SetMode(lexer.ModeTag)
	name := lx.Next()
	assert.Equal(t, token.Name, name.Kind)
	assert.Equal(t, "div", name.Text)
	assert.Equal(t, "class", lx.Next().Text)
	assert.Equal(t, token.Equals, lx.Next().Kind)
	assert.Equal(t, token.SingleQuote, lx.Next().Kind)

	lx.SetMode(lexer.ModeAttrSingle)
	assert.Equal(t, "a", lx.Next().Text)
	assert.Equal(t, token.SingleQuote, lx.Next().Kind)
	lx.SetMode(lexer.ModeTag)
	assert.Equal(t, token.TagClose, lx.Next().Kind)
	assert.Equal(t, token.EOF, lx.Next().Kind)
}

func TestRestoreDoesNotDuplicateDiagnostics(t *testing.T) {
	lx, bag := makeTestLexer(`"abc`, lexer.ModeCode)

	cp := lx.Checkpoint()
	assert.Equal(t, token.String, lx.Peek().Kind)
	assert.Zero(t, bag.Len(), "peeked tokens report nothing")
	lx.Restore(cp)

	cp = lx.Checkpoint()
	assert.Equal(t, token.String, lx.Next().Kind)
	assert.Equal(t, 1, bag.Len())
	lx.Restore(cp)

	assert.Equal(t, token.String, lx.Next().Kind)
	assert.Equal(t, token.EOF, lx.Next().Kind)
	assert.Equal(t, 1, bag.Len())
}

func TestSetModeDropsPeekedDiagnostics(t *testing.T) {
	lx, bag := makeTestLexer("#x", lexer.ModeCode)
	assert.Equal(t, token.Invalid, lx.Peek().Kind)
	lx.SetMode(lexer.ModeMarkup)
	assert.Equal(t, token.Text, lx.Next().Kind)
	assert.Equal(t, token.EOF, lx.Next().Kind)
	assert.Zero(t, bag.Len())
}

func TestOffsetTracksLookahead(t *testing.T) {
	lx, _ := makeTestLexer("a b", lexer.ModeCode)
	assert.Equal(t, uint32(0), lx.Offset())
	lx.Next()
	assert.Equal(t, uint32(2), lx.Offset())
	lx.Peek()
	assert.Equal(t, uint32(2), lx.Offset())
}

func TestTakeLeadingSplitsTrivia(t *testing.T) {
	lx, _ := makeTestLexer("{\n  <p>", lexer.ModeCode)
	assert.Equal(t, token.LBrace, lx.Next().Kind)

	carrier, ok := lx.TakeLeading()
	require.True(t, ok)
	assert.Equal(t, "\n  ", carrier.FullText())
	assert.True(t, carrier.Span.Empty())

	lx.SetMode(lexer.ModeMarkup)
	open := lx.Next()
	assert.Equal(t, token.TagOpen, open.Kind)
	assert.Empty(t, open.Leading)
	assert.Equal(t, uint32(4), open.Span.Start)

	_, ok = lx.TakeLeading()
	assert.False(t, ok)
}

func TestTakeLeadingReportsCommentDiagnostics(t *testing.T) {
	lx, bag := makeTestLexer("x /* c", lexer.ModeCode)
	assert.Equal(t, token.Ident, lx.Next().Kind)

	carrier, ok := lx.TakeLeading()
	require.True(t, ok)
	assert.Equal(t, "/* c", carrier.FullText())
	assert.Equal(t, []diag.Code{diag.LexUnterminatedBlockComment}, bag.Codes())

	lx.SetMode(lexer.ModeMarkup)
	assert.Equal(t, token.EOF, lx.Next().Kind)
	assert.Equal(t, 1, bag.Len())
}

func TestByteOrderMarkIsTrivia(t *testing.T) {
	for _, mode := range []lexer.Mode{lexer.ModeMarkup, lexer.ModeCode} {
		lx, bag := makeTestLexer("\uFEFFa b", mode)
		toks := collectAllTokens(lx)
		assert.Zero(t, bag.Len())
		assert.Equal(t, "\uFEFFa b", fullText(toks))
		require.NotEmpty(t, toks[0].Leading)
		assert.Equal(t, "\uFEFF", toks[0].Leading[0].Text)
		assert.Equal(t, "a", toks[0].Text)
		assert.Equal(t, uint32(3), toks[0].Span.Start)
	}
}
