package lower

import (
	"fmt"

	"weave/internal/binder"
	"weave/internal/directive"
	"weave/internal/ir"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

type lowerer struct {
	opts    *Options
	file    *source.File
	helpers int
}

// Document builds the initial IR tree of a parsed document:
//
//	Document
//	  Namespace name=<package>
//	    Class name=<class>
//	      Method name=Execute
//	        ...document body in source order
func Document(opts Options) *ir.Node {
	l := &lowerer{opts: &opts, file: opts.File}
	s := newSink(l.file)
	if opts.Parse != nil && opts.Parse.Root != nil {
		l.markup(s, opts.Parse.Root)
	}
	exec := ir.New(ir.KindMethod, s.take()...)
	exec.Name = ExecuteMethod
	class := ir.New(ir.KindClass, exec)
	class.Name = opts.class()
	ns := ir.New(ir.KindNamespace, class)
	ns.Name = opts.pkg()
	return ir.New(ir.KindDocument, ns)
}

// markup lowers a markup-context element into s.
func (l *lowerer) markup(s *sink, e syntax.Element) {
	switch e := e.(type) {
	case *syntax.Token:
		if !e.IsMissing() {
			s.text(e.FullSpan())
		}
	case *syntax.Node:
		l.markupNode(s, e)
	}
}

func (l *lowerer) markupNode(s *sink, n *syntax.Node) {
	switch n.Kind() {
	case syntax.KindRazorComment:
	case syntax.KindEscapedTransition:
		sp := n.Span()
		s.flush()
		s.text(source.Span{File: sp.File, Start: sp.Start + 1, End: sp.End})
		s.flush()
	case syntax.KindImplicitExpression, syntax.KindExplicitExpression:
		s.add(l.expression(n))
	case syntax.KindCodeBlock:
		l.code(s, blockItems(n))
	case syntax.KindStatement:
		l.controlStatement(s, n)
	case syntax.KindCodeSpan:
		s.add(l.statement(n))
	case syntax.KindDirective:
		s.add(l.directive(n))
	case syntax.KindTextLine:
		for i, c := range n.Children() {
			if i < 2 {
				continue // "@" ":"
			}
			l.markup(s, c)
		}
		s.flush()
	case syntax.KindMarkupElement:
		if eb, ok := l.opts.Bindings.Element(n); ok {
			s.add(l.scope(eb))
			return
		}
		l.children(s, n)
	default:
		l.children(s, n)
	}
}

// children lowers the children of n as one group of literals.
func (l *lowerer) children(s *sink, n *syntax.Node) {
	s.flush()
	for _, c := range n.Children() {
		l.markup(s, c)
	}
	s.flush()
}

// directive lowers an admitted directive occurrence. Rejected ones are
// dropped; their diagnostics were reported by the parser.
func (l *lowerer) directive(n *syntax.Node) *ir.Node {
	if l.opts.Parse == nil {
		return nil
	}
	use, ok := l.opts.Parse.DirectiveAt(n.TextSpan().Start)
	if !ok || use.Rejected {
		return nil
	}
	d := &ir.Node{Kind: ir.KindDirective, Name: use.Descriptor.Name, Directive: use, Source: ir.At(use.Span)}
	for _, arg := range use.Args {
		if arg.Missing {
			continue
		}
		// Name holds the argument kind: type, member, string or boolean.
		d.Children = append(d.Children, &ir.Node{
			Kind: ir.KindDirectiveToken, Name: arg.Kind.String(), Content: arg.Text, Source: ir.At(arg.Span),
		})
	}
	if body := n.ChildNode(syntax.KindDirectiveBody); body != nil {
		s := newSink(l.file)
		switch use.Descriptor.Kind {
		case directive.KindCodeBlock:
			l.code(s, blockItems(body))
		default:
			for _, c := range blockItems(body) {
				l.markup(s, c)
			}
		}
		d.Children = append(d.Children, s.take()...)
	}
	return d
}

// scope lowers an element bound to tag helpers.
func (l *lowerer) scope(eb *binder.ElementBinding) *ir.Node {
	el := eb.Node
	sc := &ir.Node{
		Kind:       ir.KindScope,
		Name:       el.Name(),
		Descriptor: eb.Descriptors[0],
		Source:     ir.At(el.TextSpan()),
	}
	if el.SelfClosing() || !el.HasEndTag() {
		sc.Content = "self-closing"
	}

	vars := make(map[string]string, len(eb.Descriptors))
	for _, d := range eb.Descriptors {
		name := fmt.Sprintf("__th%d", l.helpers)
		l.helpers++
		vars[d.ID] = name
		sc.Children = append(sc.Children, &ir.Node{Kind: ir.KindCreate, Name: name, Type: d.Type, Descriptor: d})
	}

	for _, attr := range el.Attributes() {
		ab, bound := eb.AttributeFor(attr.Node)
		if !bound {
			sc.Children = append(sc.Children, &ir.Node{
				Kind:     ir.KindHTMLAttribute,
				Name:     attr.Name(),
				Source:   ir.At(attr.TextSpan()),
				Children: l.attrValue(attr),
			})
			continue
		}
		for _, tg := range ab.Targets {
			prop := &ir.Node{
				Kind:       ir.KindProperty,
				Name:       vars[tg.Descriptor.ID],
				Descriptor: tg.Descriptor,
				Attribute:  tg.Attribute,
				Source:     ir.At(attr.TextSpan()),
			}
			if tg.Attribute.IsString() {
				prop.Children = l.attrValue(attr)
			} else {
				prop.Children = []*ir.Node{l.attrExpression(attr)}
			}
			sc.Children = append(sc.Children, prop)
		}
	}

	body := newSink(l.file)
	for _, c := range el.Content() {
		l.markup(body, c)
	}
	sc.Children = append(sc.Children, ir.New(ir.KindBody, body.take()...))
	return sc
}

// attrValue lowers a value into Literal and Expression parts.
func (l *lowerer) attrValue(attr syntax.Attribute) []*ir.Node {
	s := newSink(l.file)
	for _, part := range attr.ValueParts() {
		l.markup(s, part)
	}
	return s.take()
}

// attrExpression lowers a value assigned to a non-string property: literal
// text is code, so the whole value becomes one Expression.
func (l *lowerer) attrExpression(attr syntax.Attribute) *ir.Node {
	if !attr.HasValue() {
		return ir.New(ir.KindExpression, ir.SynthToken("true"))
	}
	var toks []*ir.Node
	for _, part := range attr.ValueParts() {
		switch part := part.(type) {
		case *syntax.Token:
			if part.Kind() == token.AttrText && !part.IsMissing() {
				toks = append(toks, ir.Token(part.Text(), part.Span()))
			}
		case *syntax.Node:
			switch {
			case part.Kind().IsExpression():
				if e := l.expression(part); e != nil {
					toks = append(toks, e.Children...)
				}
			case part.Kind() == syntax.KindEscapedTransition:
				sp := part.Span()
				toks = append(toks, ir.Token("@", source.Span{File: sp.File, Start: sp.Start + 1, End: sp.End}))
			}
		}
	}
	if len(toks) == 0 {
		toks = append(toks, ir.SynthToken(`""`))
	}
	return withSource(ir.New(ir.KindExpression, toks...))
}
