package parser

import (
	"strings"

	"golang.org/x/net/html/atom"

	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/syntax"
	"weave/internal/token"
)

// isVoid reports HTML elements that never have content or an end tag.
func isVoid(name string) bool {
	switch atom.Lookup([]byte(strings.ToLower(name))) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}

// parseElement parses a start tag, its content and the matching end tag.
// braces is inherited by the content, so a '}' can close an enclosing block.
func (p *Parser) parseElement(braces bool) {
	p.b.StartNode(syntax.KindMarkupElement)
	defer p.b.FinishNode()

	nameTok, selfClosing := p.parseStartTag()
	name := nameTok.Text
	if selfClosing || name == "" || isVoid(name) {
		return
	}

	p.open = append(p.open, name)
	p.parseMarkupContent(&content{braces: braces})
	p.open = p.open[:len(p.open)-1]

	if p.at(token.EndTagOpen) && strings.EqualFold(p.peekEndTagName(), name) {
		p.parseEndTag()
		return
	}
	// закрывающий тег отсутствует: синтезируем пустой EndTag
	p.b.StartNode(syntax.KindEndTag)
	p.missing(token.EndTagOpen)
	p.b.FinishNode()
	p.err(diag.SynMissingEndTag, nameTok.Span, name)
}

// parseStartTag returns the tag name token and whether the tag ends in "/>".
func (p *Parser) parseStartTag() (token.Token, bool) {
	p.b.StartNode(syntax.KindStartTag)
	defer p.b.FinishNode()

	p.bump() // <
	p.setMode(lexer.ModeTag)
	defer p.setMode(lexer.ModeMarkup)

	var nameTok token.Token
	if p.at(token.Name) {
		nameTok = p.bump()
	} else {
		nameTok = p.missing(token.Name)
		p.err(diag.SynMissingTagName, p.emptySpan())
	}

	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.Name:
			p.parseAttribute()
		case token.TagClose:
			p.bump()
			return nameTok, false
		case token.SelfClose:
			p.bump()
			return nameTok, true
		case token.RazorCommentStart:
			p.parseRazorComment()
		case token.EOF, token.TagOpen, token.EndTagOpen:
			p.missing(token.TagClose)
			p.err(diag.SynMissingTagClose, nameTok.Span, nameTok.Text)
			return nameTok, false
		default:
			p.errorNode(tok)
		}
	}
}

// parseEndTag parses "</name>" including stray tokens before '>'.
func (p *Parser) parseEndTag() {
	p.b.StartNode(syntax.KindEndTag)
	defer p.b.FinishNode()

	p.bump() // </
	p.setMode(lexer.ModeTag)
	defer p.setMode(lexer.ModeMarkup)

	var nameTok token.Token
	if p.at(token.Name) {
		nameTok = p.bump()
	} else {
		nameTok = p.missing(token.Name)
		p.err(diag.SynMissingTagName, p.emptySpan())
	}
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.TagClose:
			p.bump()
			return
		case token.EOF, token.TagOpen, token.EndTagOpen:
			p.missing(token.TagClose)
			p.err(diag.SynMissingTagClose, nameTok.Span, nameTok.Text)
			return
		default:
			p.errorNode(tok)
		}
	}
}

// parseAttribute parses name, name=value, name="..." and name='...'.
func (p *Parser) parseAttribute() {
	p.b.StartNode(syntax.KindAttribute)
	defer p.b.FinishNode()

	nameTok := p.bump()
	if !p.at(token.Equals) {
		return
	}
	p.bump()
	switch p.lx.Peek().Kind {
	case token.DoubleQuote:
		p.parseQuotedValue(nameTok, lexer.ModeAttrDouble, token.DoubleQuote)
	case token.SingleQuote:
		p.parseQuotedValue(nameTok, lexer.ModeAttrSingle, token.SingleQuote)
	default:
		p.parseUnquotedValue(nameTok)
	}
}

func (p *Parser) parseQuotedValue(nameTok token.Token, mode lexer.Mode, quote token.Kind) {
	p.b.StartNode(syntax.KindAttributeValue)
	defer p.b.FinishNode()

	open := p.bump()
	p.setMode(mode)
	defer p.setMode(lexer.ModeTag)
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case quote:
			p.bump()
			return
		case token.EOF:
			p.missing(quote)
			p.err(diag.SynMissingAttrQuote, open.Span, nameTok.Text)
			return
		default:
			p.parseValuePart(tok, mode)
		}
	}
}

func (p *Parser) parseUnquotedValue(nameTok token.Token) {
	p.b.StartNode(syntax.KindAttributeValue)
	defer p.b.FinishNode()

	p.setMode(lexer.ModeAttrUnquoted)
	defer p.setMode(lexer.ModeTag)
	parts := 0
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.AttrText, token.EscapedTransition, token.Transition, token.RazorCommentStart:
			p.parseValuePart(tok, lexer.ModeAttrUnquoted)
			parts++
			continue
		}
		if parts == 0 {
			p.missing(token.AttrText)
			p.err(diag.SynMissingAttrValue, nameTok.Span, nameTok.Text)
		}
		return
	}
}

// parseValuePart parses one piece of an attribute value in the given mode.
func (p *Parser) parseValuePart(tok token.Token, mode lexer.Mode) {
	switch tok.Kind {
	case token.AttrText:
		p.bump()
	case token.EscapedTransition:
		p.b.StartNode(syntax.KindEscapedTransition)
		p.bump()
		p.b.FinishNode()
	case token.Transition:
		p.parseTransition(inAttr, mode)
	case token.RazorCommentStart:
		p.parseRazorComment()
	default:
		p.errorNode(tok)
	}
}
