package lexer

import "weave/internal/token"

// scanTag lexes one token between '<name' and '>'.
func (lx *Lexer) scanTag() token.Token {
	start := lx.cursor.Mark()
	switch b := lx.cursor.Peek(); b {
	case '>':
		lx.cursor.Bump()
		return lx.emit(token.TagClose, start)
	case '/':
		lx.cursor.Bump()
		if lx.cursor.Eat('>') {
			return lx.emit(token.SelfClose, start)
		}
		return lx.emit(token.Invalid, start)
	case '=':
		lx.cursor.Bump()
		return lx.emit(token.Equals, start)
	case '"':
		lx.cursor.Bump()
		return lx.emit(token.DoubleQuote, start)
	case '\'':
		lx.cursor.Bump()
		return lx.emit(token.SingleQuote, start)
	case '<':
		// An unclosed tag runs into the next one; the parser synthesizes '>'.
		if lx.cursor.PeekAt(1) == '/' && isLetter(lx.cursor.PeekAt(2)) {
			lx.cursor.BumpN(2)
			return lx.emit(token.EndTagOpen, start)
		}
		lx.cursor.Bump()
		if isLetter(lx.cursor.Peek()) {
			return lx.emit(token.TagOpen, start)
		}
		return lx.emit(token.Invalid, start)
	case '@':
		if lx.cursor.PeekAt(1) == '*' {
			return lx.scanRazorComment()
		}
	}

	for !lx.cursor.EOF() && isNameByte(lx.cursor.Peek()) {
		lx.bumpRune()
	}
	if lx.cursor.Off == uint32(start) {
		lx.bumpRune()
		return lx.emit(token.Invalid, start)
	}
	return lx.emit(token.Name, start)
}

func isNameByte(b byte) bool {
	switch b {
	case '"', '\'', '<', '>', '/', '=':
		return false
	}
	return !isWhitespace(b)
}

// scanAttrValue lexes the body of a quoted attribute value.
func (lx *Lexer) scanAttrValue(q byte) token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Peek()
	if b == q {
		lx.cursor.Bump()
		if q == '"' {
			return lx.emit(token.DoubleQuote, start)
		}
		return lx.emit(token.SingleQuote, start)
	}
	if b == '@' {
		if tok, ok := lx.scanTransition(); ok {
			return tok
		}
		lx.cursor.Bump()
	}
	for !lx.cursor.EOF() {
		c := lx.cursor.Peek()
		if c == q || (c == '@' && !lx.isEmbeddedAt()) {
			break
		}
		lx.bumpRune()
	}
	return lx.emit(token.AttrText, start)
}

// scanAttrUnquoted lexes an unquoted attribute value. Anything that ends the
// value is lexed as a tag token so the parser can switch back.
func (lx *Lexer) scanAttrUnquoted() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Peek()
	switch {
	case isWhitespace(b):
		for isWhitespace(lx.cursor.Peek()) && !lx.cursor.EOF() {
			lx.cursor.Bump()
		}
		return lx.emit(token.Whitespace, start)
	case endsUnquoted(b, lx.cursor.PeekAt(1)):
		return lx.scanTag()
	case b == '@':
		if tok, ok := lx.scanTransition(); ok {
			return tok
		}
		lx.cursor.Bump()
	}
	for !lx.cursor.EOF() {
		c := lx.cursor.Peek()
		if isWhitespace(c) || endsUnquoted(c, lx.cursor.PeekAt(1)) || (c == '@' && !lx.isEmbeddedAt()) {
			break
		}
		lx.bumpRune()
	}
	return lx.emit(token.AttrText, start)
}

func endsUnquoted(b, next byte) bool {
	switch b {
	case '>', '"', '\'', '=', '<':
		return true
	case '/':
		return next == '>'
	}
	return false
}
