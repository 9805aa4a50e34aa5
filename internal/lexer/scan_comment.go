package lexer

import (
	"weave/internal/diag"
	"weave/internal/token"
)

// scanRazorComment lexes "@* ... *@". The start token is returned and the body
// and end tokens are queued. A missing "*@" yields a zero-width end token.
func (lx *Lexer) scanRazorComment() token.Token {
	return lx.scanDelimitedComment("@*", "*@",
		token.RazorCommentStart, token.RazorCommentText, token.RazorCommentEnd,
		diag.LexUnterminatedRazorComment)
}

// scanMarkupComment lexes "<!-- ... -->" the same way.
func (lx *Lexer) scanMarkupComment() token.Token {
	return lx.scanDelimitedComment("<!--", "-->",
		token.CommentOpen, token.CommentText, token.CommentClose,
		diag.LexUnterminatedMarkupComment)
}

func (lx *Lexer) scanDelimitedComment(open, closer string, openK, bodyK, closeK token.Kind, code diag.Code) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.EatString(open)
	first := lx.emit(openK, start)

	bodyStart := lx.cursor.Mark()
	for !lx.cursor.EOF() && !lx.cursor.HasPrefix(closer) {
		lx.cursor.Bump()
	}
	if lx.cursor.Off > uint32(bodyStart) {
		body := lx.emit(bodyK, bodyStart)
		if lx.cursor.EOF() {
			body.Flags |= token.FlagUnterminated
		}
		lx.pending = append(lx.pending, body)
	}

	if lx.cursor.EOF() {
		end := token.Missing(closeK, lx.file.ID, lx.cursor.Off)
		lx.pending = append(lx.pending, end)
		lx.errLex(end.Span.Start, code, lx.cursor.SpanFrom(start), closer)
		return first
	}
	endStart := lx.cursor.Mark()
	lx.cursor.EatString(closer)
	lx.pending = append(lx.pending, lx.emit(closeK, endStart))
	return first
}
