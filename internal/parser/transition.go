package parser

import (
	"unicode"
	"unicode/utf8"

	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/syntax"
	"weave/internal/token"
)

// where says which construct an '@' appears in.
type where uint8

const (
	inMarkup where = iota
	inAttr
	inCode
)

func (p *Parser) parseMarkupTransition() {
	p.parseTransition(inMarkup, lexer.ModeMarkup)
}

// parseTransition parses whatever '@' introduces and returns the lexer to back.
func (p *Parser) parseTransition(w where, back lexer.Mode) {
	defer p.setMode(back)

	cp := p.b.Checkpoint()
	at := p.bump()
	next := p.byteAt(at.Span.End)

	switch {
	case next == '(':
		p.parseExplicitExpression(cp)
		return
	case next == '{' && w != inAttr:
		p.parseCodeBlock(cp)
		return
	case next == ':' && w == inMarkup:
		p.b.StartNodeAt(cp, syntax.KindError)
		p.b.FinishNode()
		p.err(diag.SynTextLineOutsideCode, at.Span)
		return
	case !p.identStartAt(at.Span.End):
		p.invalidTransition(cp, at)
		return
	}

	p.setMode(lexer.ModeInline)
	word := p.lx.Peek()
	if w == inMarkup && p.opts.Registry != nil {
		if desc, ok := p.opts.Registry.Lookup(word.Text); ok {
			p.parseDirective(cp, at, desc)
			return
		}
	}
	if word.Kind == token.Keyword {
		if w != inAttr && token.StatementKeyword(word.Text) {
			p.parseStatement(cp, word)
			return
		}
		p.invalidTransition(cp, at)
		return
	}
	p.parseImplicitExpression(cp)
}

func (p *Parser) invalidTransition(cp syntax.Checkpoint, at token.Token) {
	p.b.StartNodeAt(cp, syntax.KindError)
	p.b.FinishNode()
	p.err(diag.SynInvalidTransition, at.Span, p.describeAt(at.Span.End))
}

// describeAt renders the character at off for messages.
func (p *Parser) describeAt(off uint32) string {
	if int(off) >= len(p.file.Content) {
		return "end of input"
	}
	r, _ := utf8.DecodeRune(p.file.Content[off:])
	return string(r)
}

func (p *Parser) identStartAt(off uint32) bool {
	if int(off) >= len(p.file.Content) {
		return false
	}
	r, _ := utf8.DecodeRune(p.file.Content[off:])
	return r == '_' || unicode.IsLetter(r)
}

// parseImplicitExpression parses @a.b(c)[d]. A trailing '.' stays markup.
func (p *Parser) parseImplicitExpression(cp syntax.Checkpoint) {
	p.tracker.MarkContent()
	p.b.StartNodeAt(cp, syntax.KindImplicitExpression)
	defer p.b.FinishNode()
	p.b.StartNode(syntax.KindCodeSpan)
	defer p.b.FinishNode()

	p.bump() // identifier
	for {
		switch p.byteAt(p.lastEnd) {
		case '.':
			if !p.identStartAt(p.lastEnd + 1) {
				return
			}
			p.bump() // .
			p.bump() // member
		case '(':
			p.setMode(lexer.ModeCode)
			p.parseGroup(token.LParen, token.RParen, diag.SynMissingCloseParen)
			p.setMode(lexer.ModeInline)
		case '[':
			p.setMode(lexer.ModeCode)
			p.parseGroup(token.LBracket, token.RBracket, diag.SynMissingCloseBracket)
			p.setMode(lexer.ModeInline)
		default:
			return
		}
	}
}

// parseExplicitExpression parses @( ... ). Like implicit expressions it
// writes output, so it counts as content.
func (p *Parser) parseExplicitExpression(cp syntax.Checkpoint) {
	p.tracker.MarkContent()
	p.b.StartNodeAt(cp, syntax.KindExplicitExpression)
	defer p.b.FinishNode()

	p.setMode(lexer.ModeCode)
	open := p.bump() // (
	p.b.StartNode(syntax.KindCodeSpan)
	found := p.skipBalanced(token.LParen, token.RParen)
	p.b.FinishNode()
	p.closeGroup(found, open, token.RParen, diag.SynMissingCloseParen)
}

// parseGroup consumes an already peeked opener through its closer, flat.
func (p *Parser) parseGroup(openK, closeK token.Kind, code diag.Code) {
	open := p.bump()
	found := p.skipBalanced(openK, closeK)
	p.closeGroup(found, open, closeK, code)
}

// skipBalanced bumps tokens up to the closer matching an opener that was
// already consumed. It stops before that closer and reports whether it exists.
func (p *Parser) skipBalanced(openK, closeK token.Kind) bool {
	depth := 0
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.EOF:
			return false
		case token.RazorCommentStart:
			p.parseRazorComment()
			continue
		case openK:
			depth++
		case closeK:
			if depth == 0 {
				return true
			}
			depth--
		}
		p.bump()
	}
}

func (p *Parser) closeGroup(found bool, open token.Token, closeK token.Kind, code diag.Code) {
	if found {
		p.bump()
		return
	}
	p.missing(closeK)
	p.err(code, p.emptySpan(), p.position(open.Span.Start))
}

// parseCodeBlock parses @{ ... }.
func (p *Parser) parseCodeBlock(cp syntax.Checkpoint) {
	p.b.StartNodeAt(cp, syntax.KindCodeBlock)
	defer p.b.FinishNode()

	p.setMode(lexer.ModeCode)
	open := p.bump() // {
	p.nested++
	p.parseCodeContent()
	p.nested--
	p.closeBrace(open)
}

func (p *Parser) closeBrace(open token.Token) {
	if p.at(token.RBrace) {
		p.bump()
		return
	}
	p.missing(token.RBrace)
	p.err(diag.SynMissingCloseBrace, p.emptySpan(), p.position(open.Span.Start))
}

// parseStatement parses @if, @for and @switch with their bodies; an if
// statement keeps any else / else if clauses that follow.
func (p *Parser) parseStatement(cp syntax.Checkpoint, kw token.Token) {
	p.b.StartNodeAt(cp, syntax.KindStatement)
	defer p.b.FinishNode()

	p.setMode(lexer.ModeCode)
	p.parseClause(kw.Text)
	if kw.Text != "if" {
		return
	}
	for {
		tok := p.lx.Peek()
		if tok.Kind != token.Keyword || tok.Text != "else" {
			return
		}
		p.parseClause(tok.Text)
	}
}

// parseClause parses a header (keyword through the '{') and the body.
func (p *Parser) parseClause(kw string) {
	p.b.StartNode(syntax.KindCodeSpan)
	depth := 0
header:
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.EOF:
			break header
		case token.LBrace, token.RBrace:
			if depth == 0 {
				break header
			}
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		}
		p.bump()
	}
	p.b.FinishNode()

	if !p.at(token.LBrace) {
		p.err(diag.SynMissingStatementBody, p.emptySpan(), kw)
		p.missing(token.LBrace)
		p.missing(token.RBrace)
		return
	}
	open := p.bump()
	p.nested++
	p.parseCodeContent()
	p.nested--
	p.closeBrace(open)
}
