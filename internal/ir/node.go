package ir

import (
	"slices"
	"strings"

	"weave/internal/catalog"
	"weave/internal/directive"
	"weave/internal/source"
)

// Node is one IR node. Which fields are meaningful depends on Kind.
type Node struct {
	Kind Kind
	// Source is the provenance span; nil for generated scaffolding.
	Source  *source.Span
	Name    string
	Type    string
	Content string
	Flags   Flags

	Directive  *directive.Use
	Descriptor *catalog.Descriptor
	Attribute  *catalog.BoundAttribute

	Children []*Node
}

// At returns a provenance pointer for sp.
func At(sp source.Span) *source.Span { return &sp }

// New builds a node without provenance.
func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Literal writes text taken verbatim from sp.
func Literal(text string, sp source.Span) *Node {
	return &Node{Kind: KindLiteral, Content: text, Source: At(sp)}
}

// Token is verbatim code from sp.
func Token(text string, sp source.Span) *Node {
	return &Node{Kind: KindToken, Content: text, Source: At(sp)}
}

// SynthToken is code that has no source text.
func SynthToken(text string) *Node {
	return &Node{Kind: KindToken, Content: text, Flags: FlagSynthesized}
}

// Clone returns a shallow copy with its own children slice.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = slices.Clone(n.Children)
	return &c
}

// HasSource reports whether n carries provenance.
func (n *Node) HasSource() bool { return n != nil && n.Source != nil }

// Code concatenates the Content of the Token children.
func (n *Node) Code() string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.Kind == KindToken {
			b.WriteString(c.Content)
		}
	}
	return b.String()
}

// Child returns the first child of kind k.
func (n *Node) Child(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// ChildrenOf returns the children of kind k.
func (n *Node) ChildrenOf(k Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}
