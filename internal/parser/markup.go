package parser

import (
	"strings"

	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

// content describes where a run of markup content ends.
type content struct {
	// braces stops at a '}' that closes the enclosing code or section block.
	braces bool
	depth  int
	// line stops after the first newline (@: text lines).
	line bool
	done bool
}

// parseMarkupContent parses markup items until EOF, an end tag that closes an
// open element, or the end of the block or line described by c.
func (p *Parser) parseMarkupContent(c *content) {
	for !c.done {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.EOF:
			return
		case token.Text, token.Whitespace, token.NewLine, token.Declaration:
			if p.closesBlock(c, tok) {
				return
			}
			p.parseTextLiteral(c)
		case token.TagOpen:
			if c.line {
				p.parseTextLiteral(c)
				continue
			}
			p.tracker.MarkContent()
			p.parseElement(c.braces)
		case token.EndTagOpen:
			if c.line {
				p.parseTextLiteral(c)
				continue
			}
			name := p.peekEndTagName()
			if p.isOpen(name) {
				return
			}
			p.parseOrphanEndTag(name)
		case token.CommentOpen:
			p.parseMarkupComment()
		case token.RazorCommentStart:
			p.parseRazorComment()
		case token.EscapedTransition:
			p.tracker.MarkContent()
			p.b.StartNode(syntax.KindEscapedTransition)
			p.bump()
			p.b.FinishNode()
		case token.Transition:
			p.parseMarkupTransition()
		default:
			p.errorNode(tok)
		}
	}
}

// closesBlock reports a '}' text token that ends the enclosing block.
func (p *Parser) closesBlock(c *content, tok token.Token) bool {
	return c.braces && c.depth == 0 && tok.Kind == token.Text && tok.Text == "}"
}

// parseTextLiteral: склеивает подряд идущий текст разметки в один узел.
func (p *Parser) parseTextLiteral(c *content) {
	p.b.StartNode(syntax.KindTextLiteral)
	defer p.b.FinishNode()
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.Text, token.Whitespace, token.NewLine, token.Declaration:
		case token.TagOpen, token.EndTagOpen:
			if !c.line {
				return
			}
		default:
			return
		}
		if c.braces && tok.Kind == token.Text {
			switch tok.Text {
			case "{":
				c.depth++
			case "}":
				if c.depth == 0 {
					return
				}
				c.depth--
			}
		}
		if tok.Kind != token.Whitespace && tok.Kind != token.NewLine && strings.TrimSpace(tok.Text) != "" {
			p.tracker.MarkContent()
		}
		p.bump()
		if c.line && tok.Kind == token.NewLine {
			c.done = true
			return
		}
	}
}

// peekEndTagName: смотрит имя закрывающего тега, не сдвигая лексер.
func (p *Parser) peekEndTagName() string {
	cp := p.lx.Checkpoint()
	p.lx.Next() // </
	p.setMode(lexer.ModeTag)
	name := p.lx.Peek()
	p.lx.Restore(cp)
	if name.Kind != token.Name || len(name.Leading) > 0 {
		return ""
	}
	return name.Text
}

// isOpen reports whether name closes an element open above the nearest barrier.
func (p *Parser) isOpen(name string) bool {
	if name == "" {
		return false
	}
	for i := len(p.open) - 1; i >= 0; i-- {
		if p.open[i] == "" {
			return false
		}
		if strings.EqualFold(p.open[i], name) {
			return true
		}
	}
	return false
}

func (p *Parser) parseOrphanEndTag(name string) {
	start := p.lx.Peek().Span.Start
	p.parseEndTag()
	sp := source.Span{File: p.file.ID, Start: start, End: p.lastEnd}
	if isVoid(name) {
		p.err(diag.SynVoidElementEndTag, sp, name)
		return
	}
	p.err(diag.SynUnexpectedEndTag, sp, name)
}

// parseMarkupComment parses <!-- ... -->. The lexer guarantees the close token.
func (p *Parser) parseMarkupComment() {
	p.b.StartNode(syntax.KindMarkupComment)
	p.bump()
	if p.at(token.CommentText) {
		p.bump()
	}
	p.bump() // CommentClose, possibly missing
	p.b.FinishNode()
}

// parseRazorComment parses @* ... *@ in any mode.
func (p *Parser) parseRazorComment() {
	p.b.StartNode(syntax.KindRazorComment)
	p.bump()
	if p.at(token.RazorCommentText) {
		p.bump()
	}
	p.bump() // RazorCommentEnd, possibly missing
	p.b.FinishNode()
}
