package lower

import (
	"weave/internal/ir"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

// pieces turns a token sequence into Token nodes. Tokens that follow each
// other in the source form one piece so the emitted code is a verbatim slice;
// missing tokens become synthesized pieces with their canonical text.
type pieces struct {
	file *source.File
	out  []*ir.Node
	// text is the source range of the current piece, fullEnd the end of its
	// last token including trailing trivia.
	text    source.Span
	fullEnd uint32
	open    bool
	// broken is set when a comment or a missing token split the run.
	broken bool
}

func (p *pieces) token(t *syntax.Token) {
	if t.IsMissing() {
		p.flush()
		p.out = append(p.out, ir.SynthToken(" "+t.Kind().Placeholder()))
		return
	}
	if t.Text() == "" {
		return
	}
	full, sp := t.FullSpan(), t.Span()
	if p.open && full.Start == p.fullEnd && !p.broken {
		p.text.End = sp.End
		p.fullEnd = full.End
		return
	}
	gap := p.open || p.broken
	p.flush()
	if gap && len(p.out) > 0 {
		p.out = append(p.out, ir.SynthToken(" "))
	}
	p.text, p.fullEnd, p.open, p.broken = sp, full.End, true, false
}

// skip records that something was left out between two tokens.
func (p *pieces) skip() {
	if p.open {
		p.broken = true
	}
}

func (p *pieces) flush() {
	if !p.open {
		return
	}
	p.out = append(p.out, ir.Token(p.file.Slice(p.text), p.text))
	p.open = false
}

func (p *pieces) collect(e syntax.Element) {
	switch e := e.(type) {
	case *syntax.Token:
		p.token(e)
	case *syntax.Node:
		if e.Kind() == syntax.KindRazorComment {
			p.skip()
			return
		}
		for _, c := range e.Children() {
			p.collect(c)
		}
	}
}

func (p *pieces) take() []*ir.Node {
	p.flush()
	return p.out
}

// codeTokens lowers the code under the given elements into Token nodes.
func (l *lowerer) codeTokens(elems ...syntax.Element) []*ir.Node {
	p := pieces{file: l.file}
	for _, e := range elems {
		p.collect(e)
	}
	return p.take()
}

func (l *lowerer) statement(elems ...syntax.Element) *ir.Node {
	toks := l.codeTokens(elems...)
	if len(toks) == 0 {
		return nil
	}
	return withSource(ir.New(ir.KindStatement, toks...))
}

// withSource gives a node the span from its first to its last mapped child.
func withSource(n *ir.Node) *ir.Node {
	var first, last *source.Span
	for _, c := range n.Children {
		if c.Source == nil {
			continue
		}
		if first == nil {
			first = c.Source
		}
		last = c.Source
	}
	if first != nil {
		n.Source = ir.At(source.Span{File: first.File, Start: first.Start, End: last.End})
	}
	return n
}

// expression lowers @x.y and @( ... ). Empty expressions produce nothing.
func (l *lowerer) expression(n *syntax.Node) *ir.Node {
	code := n.ChildNode(syntax.KindCodeSpan)
	if code == nil {
		return nil
	}
	toks := l.codeTokens(code)
	if len(toks) == 0 {
		return nil
	}
	return withSource(ir.New(ir.KindExpression, toks...))
}

// code lowers the items of a code block, statement body or functions body.
func (l *lowerer) code(s *sink, items []syntax.Element) {
	for _, item := range items {
		n, ok := item.(*syntax.Node)
		if !ok {
			continue
		}
		switch n.Kind() {
		case syntax.KindCodeSpan:
			s.add(l.statement(n))
		case syntax.KindRazorComment:
		default:
			l.markup(s, n)
		}
	}
}

// blockItems returns the children between the opening and closing brace.
func blockItems(n *syntax.Node) []syntax.Element {
	var out []syntax.Element
	for _, c := range n.Children() {
		if t, ok := c.(*syntax.Token); ok && (t.Kind().IsCode() || t.Kind() == token.Transition) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// controlStatement lowers @if / @for / @switch. Headers are merged with the
// braces around them so "} else {" stays one verbatim statement.
func (l *lowerer) controlStatement(s *sink, n *syntax.Node) {
	var pending []syntax.Element
	flush := func() {
		if len(pending) > 0 {
			s.add(l.statement(pending...))
			pending = nil
		}
	}
	kids := n.Children()
	for i, c := range kids {
		if i == 0 {
			continue // transition
		}
		switch c := c.(type) {
		case *syntax.Token:
			pending = append(pending, c)
			if c.Kind() == token.LBrace {
				flush()
			}
		case *syntax.Node:
			if c.Kind() == syntax.KindCodeSpan && isHeader(kids[i-1]) {
				pending = append(pending, c)
				continue
			}
			flush()
			l.code(s, []syntax.Element{c})
		}
	}
	flush()
}

// isHeader reports whether a CodeSpan after prev is a statement header:
// headers follow the transition or a closing brace.
func isHeader(prev syntax.Element) bool {
	t, ok := prev.(*syntax.Token)
	if !ok {
		return false
	}
	return t.Kind() == token.Transition || t.Kind() == token.RBrace
}
