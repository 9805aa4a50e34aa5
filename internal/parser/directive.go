package parser

import (
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

// parseDirective parses a registered directive after its '@'. The name token
// is still peeked in inline mode.
func (p *Parser) parseDirective(cp syntax.Checkpoint, at token.Token, desc *directive.Descriptor) {
	p.b.StartNodeAt(cp, syntax.KindDirective)
	defer p.b.FinishNode()

	nameTok := p.bump()
	verdict := p.tracker.Admit(desc, p.nested > 0)
	switch verdict.Code {
	case 0:
	case diag.DirNotAllowedHere:
		p.err(verdict.Code, nameTok.Span, desc.Name, "a nested block")
	default:
		p.err(verdict.Code, nameTok.Span, desc.Name)
	}
	// место в списке резервируется сразу: вложенные директивы идут после
	slot := len(p.uses)
	p.uses = append(p.uses, directive.Use{})

	p.setMode(lexer.ModeDirective)
	use := directive.Use{
		Descriptor: desc,
		Index:      verdict.Index,
		Rejected:   !verdict.Admitted(),
	}
	use.Args = p.parseDirectiveArgs(desc)

	switch desc.Kind {
	case directive.KindCodeBlock:
		p.parseDirectiveCode(desc)
	case directive.KindRazorBlock:
		p.parseDirectiveMarkup(desc)
	default:
		p.finishDirectiveLine(desc)
	}
	use.Span = source.Span{File: p.file.ID, Start: at.Span.Start, End: p.lastEnd}
	p.uses[slot] = use
}

// endOfArgs reports tokens that end the argument list.
func endOfArgs(tok token.Token) bool {
	switch tok.Kind {
	case token.NewLine, token.EOF, token.LBrace:
		return true
	}
	return false
}

// parseDirectiveArgs returns one Arg per token descriptor, in order.
func (p *Parser) parseDirectiveArgs(desc *directive.Descriptor) []directive.Arg {
	args := make([]directive.Arg, 0, len(desc.Tokens))
	for _, td := range desc.Tokens {
		tok := p.lx.Peek()
		if !endOfArgs(tok) {
			args = append(args, p.parseDirectiveToken(desc, td))
			continue
		}
		arg := directive.Arg{Kind: td.Kind, Span: source.At(p.file.ID, p.lx.Offset()), Missing: true}
		if !td.Optional {
			p.b.StartNode(syntax.KindDirectiveToken)
			p.missing(placeholderKind(td.Kind))
			p.b.FinishNode()
			p.err(diag.DirMissingArgument, arg.Span, desc.Name, td.Kind)
		}
		args = append(args, arg)
	}
	return args
}

func placeholderKind(k directive.TokenKind) token.Kind {
	switch k {
	case directive.TokenString:
		return token.String
	default:
		return token.Ident
	}
}

// parseDirectiveToken parses one argument into a DirectiveToken node.
func (p *Parser) parseDirectiveToken(desc *directive.Descriptor, td directive.TokenDescriptor) directive.Arg {
	p.b.StartNode(syntax.KindDirectiveToken)
	defer p.b.FinishNode()

	first := p.lx.Peek()
	last := first
	ok := false
	switch td.Kind {
	case directive.TokenType:
		ok = startsType(first)
		last = p.bumpType()
	case directive.TokenMember:
		ok = first.Kind == token.Ident
		p.bump()
	case directive.TokenString:
		ok = first.Kind == token.String && !first.IsUnterminated()
		p.bump()
	case directive.TokenBoolean:
		ok = first.Kind == token.Ident && (first.Text == "true" || first.Text == "false")
		p.bump()
	}

	sp := source.Span{File: p.file.ID, Start: first.Span.Start, End: last.Span.End}
	if !ok {
		p.err(diag.DirInvalidArgument, sp, desc.Name, td.Kind, first.Text)
	}
	return directive.Arg{Kind: td.Kind, Text: string(p.file.Content[sp.Start:sp.End]), Span: sp}
}

func startsType(tok token.Token) bool {
	switch tok.Kind {
	case token.Ident, token.LBracket, token.LParen:
		return true
	case token.Keyword:
		switch tok.Text {
		case "map", "chan", "func", "interface", "struct":
			return true
		}
	case token.Operator:
		return tok.Text == "*" || tok.Text == "<-"
	}
	return false
}

// bumpType consumes a Go type expression: tokens without separating spaces,
// spaces allowed only inside brackets. It returns the last token consumed.
func (p *Parser) bumpType() token.Token {
	last := p.bump()
	depth := 0
	if opensGroup(last) {
		depth++
	}
	for {
		tok := p.lx.Peek()
		if tok.Kind == token.EOF || tok.Kind == token.NewLine {
			return last
		}
		if depth == 0 && (len(last.Trailing) > 0 || len(tok.Leading) > 0) {
			return last
		}
		switch {
		case tok.Kind == token.LBrace && depth == 0 && !(last.Kind == token.Keyword && (last.Text == "interface" || last.Text == "struct")):
			return last
		case opensGroup(tok):
			depth++
		case tok.Kind == token.RParen, tok.Kind == token.RBracket, tok.Kind == token.RBrace:
			if depth == 0 {
				return last
			}
			depth--
		}
		last = p.bump()
	}
}

func opensGroup(tok token.Token) bool {
	return tok.Kind == token.LParen || tok.Kind == token.LBracket || tok.Kind == token.LBrace
}

// finishDirectiveLine reports stray arguments and consumes the line break.
func (p *Parser) finishDirectiveLine(desc *directive.Descriptor) {
	if tok := p.lx.Peek(); tok.Kind != token.NewLine && tok.Kind != token.EOF {
		p.b.StartNode(syntax.KindError)
		for !p.at(token.NewLine) && !p.at(token.EOF) {
			p.bump()
		}
		p.b.FinishNode()
		sp := source.Span{File: p.file.ID, Start: tok.Span.Start, End: p.lastEnd}
		p.err(diag.DirUnexpectedArgument, sp, desc.Name, tok.Text)
	}
	if p.at(token.NewLine) {
		p.bump()
	}
}

// parseDirectiveCode parses the { code } of a code-block directive.
func (p *Parser) parseDirectiveCode(desc *directive.Descriptor) {
	p.setMode(lexer.ModeCode)
	if !p.at(token.LBrace) {
		p.err(diag.DirMissingBlock, p.emptySpan(), desc.Name)
		return
	}
	p.b.StartNode(syntax.KindDirectiveBody)
	defer p.b.FinishNode()
	open := p.bump()
	p.nested++
	p.parseCodeContent()
	p.nested--
	p.closeBrace(open)
}

// parseDirectiveMarkup parses the { markup } of a block directive. The
// closing '}' is re-lexed as code so both block kinds end in RBrace.
func (p *Parser) parseDirectiveMarkup(desc *directive.Descriptor) {
	p.setMode(lexer.ModeCode)
	if !p.at(token.LBrace) {
		p.err(diag.DirMissingBlock, p.emptySpan(), desc.Name)
		return
	}
	p.b.StartNode(syntax.KindDirectiveBody)
	defer p.b.FinishNode()
	open := p.bump()

	p.setMode(lexer.ModeMarkup)
	p.open = append(p.open, "")
	p.nested++
	p.parseMarkupContent(&content{braces: true})
	p.nested--
	p.open = p.open[:len(p.open)-1]

	p.setMode(lexer.ModeCode)
	p.closeBrace(open)
}
