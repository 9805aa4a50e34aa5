package lexer

import "weave/internal/token"

// scanMarkup lexes one token of document content.
func (lx *Lexer) scanMarkup() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Peek()

	switch {
	case b == '\n':
		lx.cursor.Bump()
		return lx.emit(token.NewLine, start)
	case isSpace(b):
		lx.bumpSpaces()
		return lx.emit(token.Whitespace, start)
	case b == '{' || b == '}':
		lx.cursor.Bump()
		return lx.emit(token.Text, start)
	case b == '@':
		if tok, ok := lx.scanTransition(); ok {
			return tok
		}
	case b == '<':
		return lx.scanAngle()
	}

	lx.scanTextRun()
	return lx.emit(token.Text, start)
}

// scanTransition handles '@', "@@" and "@*". It reports false for an '@'
// embedded in a word (user@example.com), which stays text.
func (lx *Lexer) scanTransition() (token.Token, bool) {
	start := lx.cursor.Mark()
	switch lx.cursor.PeekAt(1) {
	case '@':
		lx.cursor.BumpN(2)
		return lx.emit(token.EscapedTransition, start), true
	case '*':
		return lx.scanRazorComment(), true
	}
	if lx.isEmbeddedAt() {
		return token.Token{}, false
	}
	lx.cursor.Bump()
	return lx.emit(token.Transition, start), true
}

// isEmbeddedAt reports an '@' with letters or digits on both sides.
func (lx *Lexer) isEmbeddedAt() bool {
	return isAlnum(lx.cursor.Prev()) && isAlnum(lx.cursor.PeekAt(1))
}

func (lx *Lexer) scanTextRun() {
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == '<' || b == '{' || b == '}' || isWhitespace(b):
			return
		case b == '@':
			if !lx.isEmbeddedAt() {
				return
			}
		}
		lx.bumpRune()
	}
}

// scanAngle lexes a construct starting with '<'.
func (lx *Lexer) scanAngle() token.Token {
	start := lx.cursor.Mark()
	next := lx.cursor.PeekAt(1)
	switch {
	case lx.cursor.HasPrefix("<!--"):
		return lx.scanMarkupComment()
	case next == '!' || next == '?':
		lx.scanDeclaration()
		return lx.emit(token.Declaration, start)
	case next == '/' && isLetter(lx.cursor.PeekAt(2)):
		lx.cursor.BumpN(2)
		return lx.emit(token.EndTagOpen, start)
	case isLetter(next):
		lx.cursor.Bump()
		return lx.emit(token.TagOpen, start)
	}
	lx.cursor.Bump()
	return lx.emit(token.Text, start)
}

// scanDeclaration consumes <!DOCTYPE ...> or <?...?> through the closing '>'.
func (lx *Lexer) scanDeclaration() {
	lx.cursor.BumpN(2)
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == '>' {
			return
		}
	}
}
