package parser

import (
	"fmt"

	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

// bump: съедает следующий токен и добавляет его в дерево
func (p *Parser) bump() token.Token {
	tok := p.lx.Next()
	p.b.Token(tok)
	if !tok.IsMissing() {
		p.lastEnd = tok.FullSpan().End
	}
	return tok
}

// missing adds a zero-width token of kind k at the current position. At the
// end of code input the trailing trivia (an unterminated comment, say) is kept
// in front of it, so a later switch to markup does not lex it as text.
func (p *Parser) missing(k token.Kind) token.Token {
	if p.lx.Mode() == lexer.ModeCode && p.at(token.EOF) {
		if ws, ok := p.lx.TakeLeading(); ok {
			p.b.Token(ws)
			p.lastEnd = ws.FullSpan().End
		}
	}
	tok := token.Missing(k, p.file.ID, p.lx.Offset())
	p.b.Token(tok)
	return tok
}

func (p *Parser) setMode(m lexer.Mode) {
	p.lx.SetMode(m)
}

// byteAt returns the source byte at off or 0 past the end.
func (p *Parser) byteAt(off uint32) byte {
	if int(off) >= len(p.file.Content) {
		return 0
	}
	return p.file.Content[off]
}

func (p *Parser) emptySpan() source.Span {
	return source.At(p.file.ID, p.lx.Offset())
}

func (p *Parser) position(off uint32) string {
	pos := p.file.Position(off)
	return fmt.Sprintf("%d:%d", pos.Line, pos.Col)
}

// errorNode wraps tok into an Error node and reports it as unexpected.
func (p *Parser) errorNode(tok token.Token) {
	p.b.StartNode(syntax.KindError)
	p.bump()
	p.b.FinishNode()
	p.err(diag.SynUnexpectedToken, tok.Span, tok.Kind, tok.Text)
}

// репортует ошибку
func (p *Parser) err(code diag.Code, sp source.Span, args ...any) bool {
	return p.report(code, diag.SevError, sp, args...)
}

func (p *Parser) warn(code diag.Code, sp source.Span, args ...any) bool {
	return p.report(code, diag.SevWarning, sp, args...)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, args ...any) bool {
	if p.opts.Reporter == nil || p.tooMany {
		return false
	}
	if sev == diag.SevError {
		if p.opts.Enough() {
			p.tooMany = true
			diag.Emit(p.opts.Reporter, diag.SevError, diag.SynTooManyErrors, sp)
			return false // достигли максимального количества ошибок
		}
		p.opts.CurrentErrors++
	}
	diag.Emit(p.opts.Reporter, sev, code, sp, args...)
	return true
}
