package lower

import (
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/ir"
)

// Members collects what classification moves out of the document body.
type Members struct {
	// Package replaces the namespace name when set.
	Package *ir.Node
	Imports []*ir.Node
	Class   []*ir.Node
}

// DirectiveRule moves one directive occurrence into members. Returning
// false keeps the directive in place.
type DirectiveRule func(m *Members, d *ir.Node) bool

// BuiltinRules returns the classification rules of the builtin directives.
func BuiltinRules() map[string]DirectiveRule {
	return map[string]DirectiveRule{
		directive.Import: func(m *Members, d *ir.Node) bool {
			for _, t := range d.ChildrenOf(ir.KindDirectiveToken) {
				m.Imports = append(m.Imports, moved(&ir.Node{Kind: ir.KindImport, Content: t.Content, Source: t.Source}))
			}
			return true
		},
		directive.Package: func(m *Members, d *ir.Node) bool {
			if t := d.Child(ir.KindDirectiveToken); t != nil {
				m.Package = &ir.Node{Kind: ir.KindNamespace, Name: t.Content, Source: t.Source}
			}
			return true
		},
		directive.Model: func(m *Members, d *ir.Node) bool {
			if t := d.Child(ir.KindDirectiveToken); t != nil {
				m.Class = append(m.Class, moved(ir.New(ir.KindField, ir.SynthToken("Model"), argToken(t))))
			}
			return true
		},
		directive.Inherits: func(m *Members, d *ir.Node) bool {
			if t := d.Child(ir.KindDirectiveToken); t != nil {
				f := moved(ir.New(ir.KindField, argToken(t)))
				f.Flags |= ir.FlagEmbedded
				m.Class = append(m.Class, f)
			}
			return true
		},
		directive.Inject: func(m *Members, d *ir.Node) bool {
			toks := d.ChildrenOf(ir.KindDirectiveToken)
			if len(toks) == 2 {
				m.Class = append(m.Class, moved(ir.New(ir.KindField, argToken(toks[1]), argToken(toks[0]))))
			}
			return true
		},
		directive.Implements: func(m *Members, d *ir.Node) bool {
			if t := d.Child(ir.KindDirectiveToken); t != nil {
				m.Class = append(m.Class, moved(ir.New(ir.KindInterfaceCheck, argToken(t))))
			}
			return true
		},
		directive.Page: func(m *Members, d *ir.Node) bool {
			route := ir.SynthToken(`""`)
			if t := d.Child(ir.KindDirectiveToken); t != nil {
				route = argToken(t)
			}
			n := moved(ir.New(ir.KindConstMethod, route))
			n.Name = "Route"
			m.Class = append(m.Class, n)
			return true
		},
		directive.Layout: func(m *Members, d *ir.Node) bool {
			if t := d.Child(ir.KindDirectiveToken); t != nil {
				n := moved(ir.New(ir.KindConstMethod, argToken(t)))
				n.Name = "Layout"
				m.Class = append(m.Class, n)
			}
			return true
		},
		// The prefix is applied by the binder.
		directive.TagHelperPrefix: func(*Members, *ir.Node) bool { return true },
		directive.Functions: func(m *Members, d *ir.Node) bool {
			n := moved(ir.New(ir.KindMemberCode, bodyOf(d)...))
			n.Source = d.Source
			m.Class = append(m.Class, n)
			return true
		},
		directive.Section: func(m *Members, d *ir.Node) bool {
			t := d.Child(ir.KindDirectiveToken)
			if t == nil {
				return true
			}
			n := moved(ir.New(ir.KindSection, bodyOf(d)...))
			n.Name = t.Content
			n.Source = t.Source
			m.Class = append(m.Class, n)
			return true
		},
	}
}

func moved(n *ir.Node) *ir.Node {
	n.Flags |= ir.FlagReordered
	return n
}

// argToken turns a directive argument into verbatim code. Name keeps the
// argument kind so later passes can find type references.
func argToken(t *ir.Node) *ir.Node {
	tok := ir.Token(t.Content, *t.Source)
	tok.Name = t.Name
	return tok
}

func bodyOf(d *ir.Node) []*ir.Node {
	var out []*ir.Node
	for _, c := range d.Children {
		if c.Kind != ir.KindDirectiveToken {
			out = append(out, c)
		}
	}
	return out
}

// classifyDirectives moves directive nodes into the namespace and the class.
// Directives without a rule stay where they are.
func classifyDirectives(opts *Options, doc *ir.Node) (*ir.Node, error) {
	rules := BuiltinRules()
	for name, r := range opts.Rules {
		rules[name] = r
	}
	var m Members
	out := ir.Rewrite(doc, func(n *ir.Node) []*ir.Node {
		switch n.Kind {
		case ir.KindDirective:
			if rule, ok := rules[n.Name]; ok && rule(&m, n) {
				return nil
			}
		case ir.KindClass:
			if len(m.Class) == 0 {
				break
			}
			cp := n.Clone()
			for _, c := range m.Class {
				if c.Kind == ir.KindMemberCode {
					c = onlyStatements(opts, c)
				}
				cp.Children = append(cp.Children, c)
			}
			m.Class = nil
			return []*ir.Node{cp}
		case ir.KindNamespace:
			cp := n.Clone()
			if m.Package != nil {
				cp.Name, cp.Source = m.Package.Name, m.Package.Source
			}
			cp.Children = append(m.Imports, cp.Children...)
			return []*ir.Node{cp}
		}
		return ir.Keep(n)
	})
	return out, nil
}

// onlyStatements drops markup from member code, which has no writer.
func onlyStatements(opts *Options, n *ir.Node) *ir.Node {
	keep := n.Children[:0:0]
	for _, c := range n.Children {
		if c.Kind == ir.KindStatement {
			keep = append(keep, c)
			continue
		}
		sp := opts.fileStart()
		if c.Source != nil {
			sp = *c.Source
		}
		opts.report(diag.LowUnsupportedNode, diag.SevWarning, sp, c.Kind)
	}
	if len(keep) == len(n.Children) {
		return n
	}
	cp := n.Clone()
	cp.Children = keep
	return cp
}
