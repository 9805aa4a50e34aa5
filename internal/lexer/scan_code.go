package lexer

import (
	"weave/internal/diag"
	"weave/internal/token"
)

// scanCode lexes one token of embedded Go. It serves the code, inline and
// directive modes; the latter two see whitespace the code mode treats as trivia.
func (lx *Lexer) scanCode() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Peek()

	switch {
	case b == '\n':
		lx.cursor.Bump()
		return lx.emit(token.NewLine, start)
	case isSpace(b):
		lx.bumpSpaces()
		return lx.emit(token.Whitespace, start)
	case b == '@':
		if lx.cursor.PeekAt(1) == '*' {
			return lx.scanRazorComment()
		}
		lx.cursor.Bump()
		return lx.emit(token.Transition, start)
	case isIdentStartByte(b):
		return lx.scanIdent()
	case isDec(b) || (b == '.' && isDec(lx.cursor.PeekAt(1))):
		return lx.scanNumber()
	case b == '"':
		return lx.scanString()
	case b == '`':
		return lx.scanRawString()
	case b == '\'':
		return lx.scanRune()
	}

	if b >= 0x80 {
		if r, _ := lx.peekRune(); isIdentStartRune(r) {
			return lx.scanIdent()
		}
	}

	if tok, ok := lx.scanPunct(); ok {
		return tok
	}

	r, _ := lx.peekRune()
	lx.bumpRune()
	tok := lx.emit(token.Invalid, start)
	lx.errLex(tok.Span.Start, diag.LexUnknownChar, tok.Span, r)
	return tok
}

func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < 0x80 {
			if !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if r, _ := lx.peekRune(); !isIdentContinueRune(r) {
			break
		}
		lx.bumpRune()
	}
	tok := lx.emit(token.Ident, start)
	if token.LookupKeyword(tok.Text) {
		tok.Kind = token.Keyword
	}
	return tok
}

// scanNumber accepts any Go numeric literal shape without validating digits.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isAlnum(b) || b == '_' || b == '.':
			lx.cursor.Bump()
			if (b == 'e' || b == 'E' || b == 'p' || b == 'P') && (lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-') {
				lx.cursor.Bump()
			}
		default:
			return lx.emit(token.Number, start)
		}
	}
	return lx.emit(token.Number, start)
}

// scanString lexes an interpreted "..." literal.
func (lx *Lexer) scanString() token.Token {
	return lx.scanQuoted('"')
}

// scanRune lexes a '...' literal.
func (lx *Lexer) scanRune() token.Token {
	return lx.scanQuoted('\'')
}

func (lx *Lexer) scanQuoted(q byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	var bad []badEscape
	for {
		if lx.cursor.EOF() {
			tok := lx.emit(token.String, start)
			tok.Flags |= token.FlagUnterminated
			lx.reportEscapes(tok, bad)
			lx.errLex(tok.Span.Start, diag.LexUnterminatedString, tok.Span)
			return tok
		}
		b := lx.cursor.Peek()
		switch b {
		case q:
			lx.cursor.Bump()
			tok := lx.emit(token.String, start)
			lx.reportEscapes(tok, bad)
			return tok
		case '\n':
			tok := lx.emit(token.String, start)
			tok.Flags |= token.FlagUnterminated
			lx.reportEscapes(tok, bad)
			lx.errLex(tok.Span.Start, diag.LexNewlineInString, tok.Span)
			return tok
		case '\\':
			escStart := lx.cursor.Off
			if !lx.scanEscape(q) {
				bad = append(bad, badEscape{escStart, lx.cursor.Off})
			}
		default:
			lx.bumpRune()
		}
	}
}

type badEscape struct{ start, end uint32 }

func (lx *Lexer) reportEscapes(tok token.Token, bad []badEscape) {
	for _, e := range bad {
		sp := tok.Span
		sp.Start, sp.End = e.start, e.end
		lx.errLex(tok.Span.Start, diag.LexInvalidEscape, sp, lx.text(sp))
	}
}

// scanEscape consumes one escape sequence and reports whether it is valid.
func (lx *Lexer) scanEscape(q byte) bool {
	lx.cursor.Bump() // '\\'
	b := lx.cursor.Peek()
	switch b {
	case 'a', 'b', 'f', 'n', 'r', 't', 'v', '\\':
		lx.cursor.Bump()
		return true
	case '"', '\'':
		lx.cursor.Bump()
		return b == q
	case 'x':
		lx.cursor.Bump()
		return lx.eatDigits(2, isHex)
	case 'u':
		lx.cursor.Bump()
		return lx.eatDigits(4, isHex)
	case 'U':
		lx.cursor.Bump()
		return lx.eatDigits(8, isHex)
	}
	if isOctal(b) {
		return lx.eatDigits(3, isOctal)
	}
	if b != '\n' && !lx.cursor.EOF() {
		lx.bumpRune()
	}
	return false
}

func (lx *Lexer) eatDigits(n int, ok func(byte) bool) bool {
	for range n {
		if !ok(lx.cursor.Peek()) {
			return false
		}
		lx.cursor.Bump()
	}
	return true
}

// scanRawString lexes a `...` literal; newlines are allowed.
func (lx *Lexer) scanRawString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == '`' {
			return lx.emit(token.String, start)
		}
	}
	tok := lx.emit(token.String, start)
	tok.Flags |= token.FlagUnterminated
	lx.errLex(tok.Span.Start, diag.LexUnterminatedString, tok.Span)
	return tok
}

// operators ordered longest first.
var operators = []string{
	"<<=", ">>=", "&^=", "...",
	"&&", "||", "<-", "++", "--", "==", "!=", "<=", ">=", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "&^",
	"+", "-", "*", "/", "%", "&", "|", "^", "<", ">", "=", "!", "~",
}

func (lx *Lexer) scanPunct() (token.Token, bool) {
	start := lx.cursor.Mark()
	for _, op := range operators {
		if lx.cursor.EatString(op) {
			return lx.emit(token.Operator, start), true
		}
	}
	var k token.Kind
	switch lx.cursor.Peek() {
	case '(':
		k = token.LParen
	case ')':
		k = token.RParen
	case '{':
		k = token.LBrace
	case '}':
		k = token.RBrace
	case '[':
		k = token.LBracket
	case ']':
		k = token.RBracket
	case '.':
		k = token.Dot
	case ',':
		k = token.Comma
	case ';':
		k = token.Semicolon
	case ':':
		k = token.Colon
	default:
		return token.Token{}, false
	}
	lx.cursor.Bump()
	return lx.emit(k, start), true
}
