package lexer

import (
	"weave/internal/diag"
	"weave/internal/token"
)

// collectLeadingTrivia gathers trivia in front of the next token according to the mode:
//   - spaces, tabs, \r and \f coalesce into one TriviaSpace
//   - consecutive '\n' coalesce into one TriviaNewline (tag and code modes only)
//   - // ... and /* ... */ become comment trivia (code mode only)
//
// A byte order mark at offset 0 is TriviaSpace in every mode.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	if n := lx.file.BOMLen(); n > 0 && lx.cursor.Off == 0 {
		start := lx.cursor.Mark()
		lx.cursor.BumpN(n)
		lx.holdTrivia(token.TriviaSpace, start)
	}
	if !lx.mode.leadingTrivia() {
		return
	}
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isSpace(b) {
			lx.bumpSpaces()
			lx.holdTrivia(token.TriviaSpace, start)
			continue
		}

		if b == '\n' && lx.mode.newlineTrivia() {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.holdTrivia(token.TriviaNewline, start)
			continue
		}

		if b == '/' && lx.mode == ModeCode {
			if lx.scanCommentIntoHold() {
				continue
			}
		}
		break
	}
}

// collectTrailingTrivia takes spaces up to (not including) the end of the line.
func (lx *Lexer) collectTrailingTrivia() []token.Trivia {
	if !isSpace(lx.cursor.Peek()) {
		return nil
	}
	start := lx.cursor.Mark()
	lx.bumpSpaces()
	sp := lx.cursor.SpanFrom(start)
	return []token.Trivia{{Kind: token.TriviaSpace, Span: sp, Text: lx.text(sp)}}
}

func (lx *Lexer) bumpSpaces() {
	for isSpace(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) holdTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)})
}

// scanCommentIntoHold consumes // and /* */ comments.
func (lx *Lexer) scanCommentIntoHold() bool {
	start := lx.cursor.Mark()
	switch lx.cursor.PeekAt(1) {
	case '/':
		lx.cursor.BumpN(2)
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.holdTrivia(token.TriviaLineComment, start)
		return true
	case '*':
		lx.cursor.BumpN(2)
		closed := false
		for !lx.cursor.EOF() {
			if lx.cursor.EatString("*/") {
				closed = true
				break
			}
			lx.cursor.Bump()
		}
		lx.holdTrivia(token.TriviaBlockComment, start)
		if !closed {
			lx.errLex(uint32(start), diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start))
		}
		return true
	}
	return false
}
