package lexer

import (
	"iter"

	"weave/internal/source"
	"weave/internal/token"
)

// Lexer produces tokens lazily. It is restartable: Checkpoint/Restore and
// SetMode may rewind the cursor, and tokens are re-lexed on demand.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	mode    Mode
	look    *token.Token  // one-token lookahead
	pending []token.Token // rest of a multi-token construct (comments)
	hold    []token.Trivia
	diags   []pendingDiag

	// flushedTo is the start of the furthest token consumed so far.
	flushedTo uint32
	flushed   bool
}

// Checkpoint captures the lexer state for Restore.
type Checkpoint struct {
	off     uint32
	mode    Mode
	look    *token.Token
	pending []token.Token
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		mode:   opts.Mode,
	}
}

// File returns the document being lexed.
func (lx *Lexer) File() *source.File { return lx.file }

// Mode returns the current mode.
func (lx *Lexer) Mode() Mode { return lx.mode }

// SetMode switches the token set. Any token already peeked under the old mode
// is discarded and its text is lexed again under the new one.
func (lx *Lexer) SetMode(m Mode) {
	if m == lx.mode {
		return
	}
	lx.unread()
	lx.mode = m
}

// unread rewinds the cursor to the first buffered token.
func (lx *Lexer) unread() {
	var first *token.Token
	switch {
	case lx.look != nil:
		first = lx.look
	case len(lx.pending) > 0:
		first = &lx.pending[0]
	default:
		return
	}
	start := first.FullSpan().Start
	lx.cursor.Reset(Mark(start))
	lx.dropDiags(start)
	lx.look = nil
	lx.pending = nil
}

// Offset returns the offset of the next unread byte (before any lookahead).
func (lx *Lexer) Offset() uint32 {
	switch {
	case lx.look != nil:
		return lx.look.FullSpan().Start
	case len(lx.pending) > 0:
		return lx.pending[0].FullSpan().Start
	}
	return lx.cursor.Off
}

// Checkpoint saves the lexer position and mode.
func (lx *Lexer) Checkpoint() Checkpoint {
	cp := Checkpoint{off: lx.cursor.Off, mode: lx.mode}
	if lx.look != nil {
		look := *lx.look
		cp.look = &look
	}
	if len(lx.pending) > 0 {
		cp.pending = append([]token.Token(nil), lx.pending...)
	}
	return cp
}

// Restore rewinds to cp. Diagnostics of tokens lexed after cp are forgotten.
func (lx *Lexer) Restore(cp Checkpoint) {
	lx.cursor.Reset(Mark(cp.off))
	lx.mode = cp.mode
	lx.look = cp.look
	lx.pending = cp.pending
	limit := cp.off
	switch {
	case len(cp.pending) > 0:
		limit = cp.pending[len(cp.pending)-1].Span.Start + 1
	case cp.look != nil:
		limit = cp.look.Span.Start + 1
	}
	lx.dropDiags(limit)
}

// Next consumes and returns the next token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	var tok token.Token
	switch {
	case lx.look != nil:
		tok = *lx.look
		lx.look = nil
	case len(lx.pending) > 0:
		tok = lx.pending[0]
		lx.pending = lx.pending[1:]
	default:
		tok = lx.scan()
	}
	lx.flushDiags(tok.Span.Start, tok.Kind == token.EOF)
	lx.markFlushed(tok.Span.Start, tok.Kind == token.EOF)
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.look == nil {
		var tok token.Token
		if len(lx.pending) > 0 {
			tok = lx.pending[0]
			lx.pending = lx.pending[1:]
		} else {
			tok = lx.scan()
		}
		lx.look = &tok
	}
	return *lx.look
}

// TakeLeading detaches the leading trivia of the peeked token and returns it
// on a zero-width Whitespace carrier token. A later SetMode then rewinds to the
// token itself, so the trivia stays with whatever precedes it. Diagnostics of
// the trivia are reported now, since it will not be lexed again.
func (lx *Lexer) TakeLeading() (token.Token, bool) {
	tok := lx.Peek()
	if len(tok.Leading) == 0 {
		return token.Token{}, false
	}
	lx.flushDiags(tok.Span.Start-1, false)
	lx.markFlushed(tok.Span.Start-1, false)
	carrier := token.Token{
		Kind:    token.Whitespace,
		Span:    source.At(lx.file.ID, tok.Span.Start),
		Leading: tok.Leading,
	}
	lx.look.Leading = nil
	return carrier, true
}

// All lexes the rest of the input in the current mode, EOF excluded.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if tok.Kind == token.EOF || !yield(tok) {
				return
			}
		}
	}
}

// EmptySpan returns a zero-width span at the cursor.
func (lx *Lexer) EmptySpan() source.Span {
	return source.At(lx.file.ID, lx.Offset())
}

func (lx *Lexer) scan() token.Token {
	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{Kind: token.EOF, Span: lx.emptySpan(), Leading: lx.takeHold()}
		return tok
	}

	var tok token.Token
	switch lx.mode {
	case ModeMarkup:
		tok = lx.scanMarkup()
	case ModeTag:
		tok = lx.scanTag()
	case ModeAttrDouble:
		tok = lx.scanAttrValue('"')
	case ModeAttrSingle:
		tok = lx.scanAttrValue('\'')
	case ModeAttrUnquoted:
		tok = lx.scanAttrUnquoted()
	default:
		tok = lx.scanCode()
	}

	tok.Leading = lx.takeHold()
	if lx.mode.leadingTrivia() && !noTrailing(tok) && len(lx.pending) == 0 {
		tok.Trailing = lx.collectTrailingTrivia()
	}
	return tok
}

func (lx *Lexer) takeHold() []token.Trivia {
	if len(lx.hold) == 0 {
		return nil
	}
	out := lx.hold
	lx.hold = nil
	return out
}

func (lx *Lexer) emptySpan() source.Span {
	return source.At(lx.file.ID, lx.cursor.Off)
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
}

// noTrailing lists tokens whose following whitespace belongs to the next construct.
func noTrailing(tok token.Token) bool {
	if tok.Kind.Closes() {
		return true
	}
	switch tok.Kind {
	case token.DoubleQuote, token.SingleQuote, token.Transition, token.EscapedTransition,
		token.RazorCommentStart, token.RazorCommentText, token.RazorCommentEnd,
		token.NewLine, token.EOF:
		return true
	}
	return tok.IsMissing()
}
