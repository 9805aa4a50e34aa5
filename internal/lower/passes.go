package lower

import (
	"fmt"
	"slices"

	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/ir"
	"weave/internal/source"
)

// isBody reports nodes whose children render in sequence.
func isBody(k ir.Kind) bool {
	switch k {
	case ir.KindMethod, ir.KindSection, ir.KindBody:
		return true
	}
	return false
}

// designTime drops markup writes, which tooling does not need, and adds a
// helper referencing every type named by a directive.
func designTime(_ *Options, doc *ir.Node) (*ir.Node, error) {
	typeName := directive.TokenType.String()
	var refs []*ir.Node
	for n := range ir.All(doc) {
		if n.Source == nil || n.Name != typeName {
			continue
		}
		switch n.Kind {
		case ir.KindToken:
			refs = append(refs, n)
		case ir.KindDirectiveToken:
			refs = append(refs, ir.Token(n.Content, *n.Source))
		}
	}
	return ir.Rewrite(doc, func(n *ir.Node) []*ir.Node {
		switch {
		case isBody(n.Kind) || n.Kind == ir.KindHTMLAttribute:
			if !slices.ContainsFunc(n.Children, isLiteral) {
				break
			}
			cp := n.Clone()
			cp.Children = slices.DeleteFunc(cp.Children, isLiteral)
			return []*ir.Node{cp}
		case n.Kind == ir.KindClass && len(refs) > 0:
			helper := ir.New(ir.KindDesignTimeHelper, refs...)
			helper.Flags |= ir.FlagDesignTime
			cp := n.Clone()
			cp.Children = append(cp.Children, helper)
			return []*ir.Node{cp}
		}
		return ir.Keep(n)
	}), nil
}

func isLiteral(n *ir.Node) bool { return n.Kind == ir.KindLiteral }

// instrument brackets every mapped write in a body with context calls that
// carry its source position.
func instrument(_ *Options, doc *ir.Node) (*ir.Node, error) {
	return ir.Rewrite(doc, func(n *ir.Node) []*ir.Node {
		if !isBody(n.Kind) {
			return ir.Keep(n)
		}
		var kids []*ir.Node
		for _, c := range n.Children {
			if !c.Kind.IsWrite() || c.Source == nil {
				kids = append(kids, c)
				continue
			}
			begin := &ir.Node{
				Kind:    ir.KindContextBegin,
				Content: fmt.Sprintf("%d, %d, %t", c.Source.Start, c.Source.Len(), c.Kind == ir.KindLiteral),
			}
			kids = append(kids, begin, c, ir.New(ir.KindContextEnd))
		}
		if len(kids) == len(n.Children) {
			return ir.Keep(n)
		}
		cp := n.Clone()
		cp.Children = kids
		return []*ir.Node{cp}
	}), nil
}

// mergeLiterals joins adjacent literal writes whose source spans touch.
func mergeLiterals(_ *Options, doc *ir.Node) (*ir.Node, error) {
	return ir.Rewrite(doc, func(n *ir.Node) []*ir.Node {
		var kids []*ir.Node
		merged := false
		for _, c := range n.Children {
			if k := len(kids); k > 0 && touches(kids[k-1], c) {
				prev := kids[k-1]
				kids[k-1] = &ir.Node{
					Kind:    ir.KindLiteral,
					Content: prev.Content + c.Content,
					Source:  ir.At(source.Span{File: prev.Source.File, Start: prev.Source.Start, End: c.Source.End}),
					Flags:   prev.Flags | c.Flags,
				}
				merged = true
				continue
			}
			kids = append(kids, c)
		}
		if !merged {
			return ir.Keep(n)
		}
		cp := n.Clone()
		cp.Children = kids
		return []*ir.Node{cp}
	}), nil
}

func touches(a, b *ir.Node) bool {
	return a.Kind == ir.KindLiteral && b.Kind == ir.KindLiteral &&
		a.Source != nil && b.Source != nil &&
		a.Source.File == b.Source.File && a.Source.End == b.Source.Start &&
		a.Flags == b.Flags
}

// memberRank orders class members: embedded base, fields, interface
// checks, constant methods, member code, Execute, sections, design-time helper.
func memberRank(n *ir.Node) int {
	switch n.Kind {
	case ir.KindField:
		if n.Flags.Has(ir.FlagEmbedded) {
			return 0
		}
		return 1
	case ir.KindInterfaceCheck:
		return 2
	case ir.KindConstMethod:
		return 3
	case ir.KindMemberCode:
		return 4
	case ir.KindMethod:
		return 5
	case ir.KindSection:
		return 6
	case ir.KindDesignTimeHelper:
		return 7
	}
	return 8
}

func organizeMembers(_ *Options, doc *ir.Node) (*ir.Node, error) {
	return ir.Rewrite(doc, func(n *ir.Node) []*ir.Node {
		if n.Kind != ir.KindClass {
			return ir.Keep(n)
		}
		cmp := func(a, b *ir.Node) int { return memberRank(a) - memberRank(b) }
		if slices.IsSortedFunc(n.Children, cmp) {
			return ir.Keep(n)
		}
		cp := n.Clone()
		slices.SortStableFunc(cp.Children, cmp)
		return []*ir.Node{cp}
	}), nil
}

// validateProvenance reports nodes whose span is not part of the document.
// The tree is returned unchanged.
func validateProvenance(opts *Options, doc *ir.Node) (*ir.Node, error) {
	if opts.File == nil {
		return doc, nil
	}
	whole := opts.File.Span()
	for n := range ir.All(doc) {
		if n.Source == nil {
			continue
		}
		if sp := *n.Source; sp.Start > sp.End || !sp.Within(whole) {
			opts.report(diag.LowInvalidProvenance, diag.SevError, opts.fileStart(), n.Kind, sp)
		}
	}
	return doc, nil
}
