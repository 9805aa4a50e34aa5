package parser

import (
	"weave/internal/lexer"
	"weave/internal/syntax"
	"weave/internal/token"
)

// codeRun groups consecutive code tokens into one CodeSpan node, opened lazily.
type codeRun struct {
	p    *Parser
	open bool
}

func (r *codeRun) start() {
	if !r.open {
		r.p.b.StartNode(syntax.KindCodeSpan)
		r.open = true
	}
}

func (r *codeRun) bump() {
	r.start()
	r.p.bump()
}

// add appends a token that did not come from Next (trivia carriers).
func (r *codeRun) add(tok token.Token) {
	r.start()
	r.p.b.Token(tok)
	if end := tok.FullSpan().End; end > r.p.lastEnd {
		r.p.lastEnd = end
	}
}

func (r *codeRun) close() {
	if r.open {
		r.p.b.FinishNode()
		r.open = false
	}
}

// parseCodeContent parses the inside of a code block up to the '}' that
// closes it (not consumed) or EOF. Markup and transitions may be interleaved.
func (p *Parser) parseCodeContent() {
	p.open = append(p.open, "")
	defer func() { p.open = p.open[:len(p.open)-1] }()

	run := codeRun{p: p}
	defer run.close()
	depth := 0
	prev := token.LBrace
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.EOF:
			return
		case tok.Kind == token.RBrace && depth == 0:
			return
		case tok.Kind == token.Transition:
			run.close()
			p.parseCodeTransition(tok)
			prev = token.Semicolon
			continue
		case tok.Kind == token.RazorCommentStart:
			run.close()
			p.parseRazorComment()
			continue
		case p.startsMarkup(tok, prev):
			p.parseCodeMarkup(&run)
			prev = token.Semicolon
			continue
		}
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		run.bump()
		prev = tok.Kind
	}
}

// startsMarkup reports a '<' that begins an element inside code: it must be
// followed by a letter, '/' or '!' and stand where a statement may begin
// (after '{', '}', ';', a case label or a line break).
func (p *Parser) startsMarkup(tok token.Token, prev token.Kind) bool {
	if tok.Kind != token.Operator || tok.Text != "<" {
		return false
	}
	switch next := p.byteAt(tok.Span.End); {
	case next == '/' || next == '!':
	case next >= 'a' && next <= 'z', next >= 'A' && next <= 'Z':
	default:
		return false
	}
	switch prev {
	case token.LBrace, token.RBrace, token.Semicolon, token.Colon:
		return true
	}
	return token.HasNewline(tok.Leading)
}

// parseCodeMarkup parses one markup construct embedded in code. Whitespace
// before the '<' stays with the code.
func (p *Parser) parseCodeMarkup(run *codeRun) {
	if ws, ok := p.lx.TakeLeading(); ok {
		run.add(ws)
	}
	run.close()
	p.setMode(lexer.ModeMarkup)
	p.parseMarkupItem()
	p.setMode(lexer.ModeCode)
}

// parseMarkupItem parses exactly one element, comment or stray '<'.
func (p *Parser) parseMarkupItem() {
	switch tok := p.lx.Peek(); tok.Kind {
	case token.TagOpen:
		p.tracker.MarkContent()
		p.parseElement(true)
	case token.EndTagOpen:
		p.parseOrphanEndTag(p.peekEndTagName())
	case token.CommentOpen:
		p.parseMarkupComment()
	default:
		p.b.StartNode(syntax.KindTextLiteral)
		p.bump()
		p.b.FinishNode()
	}
}

func (p *Parser) parseCodeTransition(at token.Token) {
	if p.byteAt(at.Span.End) == ':' {
		p.parseTextLine()
		return
	}
	p.parseTransition(inCode, lexer.ModeCode)
}

// parseTextLine parses "@:" and the markup up to and including the newline.
func (p *Parser) parseTextLine() {
	p.b.StartNode(syntax.KindTextLine)
	defer p.b.FinishNode()

	p.bump() // @
	p.setMode(lexer.ModeInline)
	p.bump() // :
	p.setMode(lexer.ModeMarkup)
	p.parseMarkupContent(&content{line: true})
	p.setMode(lexer.ModeCode)
}
