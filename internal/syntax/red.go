package syntax

import (
	"iter"
	"sync"

	"weave/internal/source"
	"weave/internal/token"
)

// Element is a positioned child: *Node or *Token.
type Element interface {
	// FullSpan covers the element including trivia.
	FullSpan() source.Span
	Parent() *Node
	element()
}

// Key identifies a positioned node independently of the red wrapper that
// produced it. Side tables (binding results, lowering maps) are keyed by it.
type Key struct {
	Green  *GreenNode
	Offset uint32
}

// Node is a positioned view of a green node. Children are materialized on
// first access. The parent link is for navigation only.
type Node struct {
	green  *GreenNode
	file   source.FileID
	offset uint32
	parent *Node
	index  int

	once sync.Once
	kids []Element
}

// Token is a positioned view of a green token.
type Token struct {
	green  *GreenToken
	file   source.FileID
	offset uint32 // start of the leading trivia
	parent *Node
	index  int
}

// NewRoot returns the positioned root for a document tree.
func NewRoot(green *GreenNode, file source.FileID) *Node {
	return &Node{green: green, file: file, index: -1}
}

func (n *Node) element() {}

func (n *Node) Green() *GreenNode     { return n.green }
func (n *Node) Kind() Kind            { return n.green.kind }
func (n *Node) File() source.FileID   { return n.file }
func (n *Node) Offset() uint32        { return n.offset }
func (n *Node) Width() uint32         { return n.green.width }
func (n *Node) Parent() *Node         { return n.parent }
func (n *Node) Key() Key              { return Key{Green: n.green, Offset: n.offset} }
func (n *Node) Text() string          { return Text(n.green) }
func (n *Node) IndexInParent() int    { return n.index }
func (n *Node) Is(kinds ...Kind) bool { return isKind(n.green.kind, kinds) }

// Span covers the node including all trivia.
func (n *Node) Span() source.Span {
	return source.Span{File: n.file, Start: n.offset, End: n.offset + n.green.width}
}

// FullSpan is Span; it lets nodes and tokens share the Element interface.
func (n *Node) FullSpan() source.Span { return n.Span() }

func isKind(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Children returns the positioned children in order.
func (n *Node) Children() []Element {
	n.once.Do(func() {
		kids := make([]Element, len(n.green.children))
		off := n.offset
		for i, c := range n.green.children {
			switch g := c.(type) {
			case *GreenNode:
				kids[i] = &Node{green: g, file: n.file, offset: off, parent: n, index: i}
			case *GreenToken:
				kids[i] = &Token{green: g, file: n.file, offset: off, parent: n, index: i}
			}
			off += c.Width()
		}
		n.kids = kids
	})
	return n.kids
}

// ChildNodes returns the child nodes, skipping tokens.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn)
		}
	}
	return out
}

// ChildNode returns the first child node of one of the kinds.
func (n *Node) ChildNode(kinds ...Kind) *Node {
	for _, c := range n.Children() {
		if cn, ok := c.(*Node); ok && isKind(cn.Kind(), kinds) {
			return cn
		}
	}
	return nil
}

// ChildToken returns the first direct child token of kind k.
func (n *Node) ChildToken(k token.Kind) *Token {
	for _, c := range n.Children() {
		if ct, ok := c.(*Token); ok && ct.Kind() == k {
			return ct
		}
	}
	return nil
}

// Tokens yields every token below n in document order.
func (n *Node) Tokens() iter.Seq[*Token] {
	return func(yield func(*Token) bool) {
		n.walkTokens(yield)
	}
}

func (n *Node) walkTokens(yield func(*Token) bool) bool {
	for _, c := range n.Children() {
		switch c := c.(type) {
		case *Token:
			if !yield(c) {
				return false
			}
		case *Node:
			if !c.walkTokens(yield) {
				return false
			}
		}
	}
	return true
}

// FirstToken returns the first token below n, or nil for an empty node.
func (n *Node) FirstToken() *Token {
	for t := range n.Tokens() {
		return t
	}
	return nil
}

// LastToken returns the last token below n, or nil for an empty node.
func (n *Node) LastToken() *Token {
	kids := n.Children()
	for i := len(kids) - 1; i >= 0; i-- {
		switch c := kids[i].(type) {
		case *Token:
			return c
		case *Node:
			if t := c.LastToken(); t != nil {
				return t
			}
		}
	}
	return nil
}

// TextSpan is Span without the leading trivia of the first token and the
// trailing trivia of the last one.
func (n *Node) TextSpan() source.Span {
	sp := n.Span()
	if first := n.FirstToken(); first != nil {
		sp.Start = first.Span().Start
	}
	if last := n.LastToken(); last != nil {
		sp.End = last.Span().End
	}
	if sp.End < sp.Start {
		sp.End = sp.Start
	}
	return sp
}

// Preorder yields n and all descendant nodes, parents first.
func (n *Node) Preorder() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.preorder(yield)
	}
}

func (n *Node) preorder(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children() {
		if cn, ok := c.(*Node); ok && !cn.preorder(yield) {
			return false
		}
	}
	return true
}

// Ancestors yields the parents of n, innermost first.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// NextSibling returns the element after n in its parent.
func (n *Node) NextSibling() Element {
	if n.parent == nil {
		return nil
	}
	kids := n.parent.Children()
	if n.index+1 < len(kids) {
		return kids[n.index+1]
	}
	return nil
}

// TokenAt returns the token whose full span contains off. At a boundary the
// token starting at off wins.
func (n *Node) TokenAt(off uint32) *Token {
	if off < n.offset || off >= n.offset+n.green.width {
		return nil
	}
	for _, c := range n.Children() {
		sp := c.FullSpan()
		if off < sp.Start || off >= sp.End {
			continue
		}
		switch c := c.(type) {
		case *Token:
			return c
		case *Node:
			return c.TokenAt(off)
		}
	}
	return nil
}

// Find returns the node with the given key below (or equal to) n.
func (n *Node) Find(k Key) *Node {
	for d := range n.Preorder() {
		if d.offset > k.Offset {
			return nil
		}
		if d.green == k.Green && d.offset == k.Offset {
			return d
		}
	}
	return nil
}

func (t *Token) element() {}

func (t *Token) Green() *GreenToken { return t.green }
func (t *Token) Kind() token.Kind   { return t.green.kind }
func (t *Token) Text() string       { return t.green.text }
func (t *Token) Parent() *Node      { return t.parent }
func (t *Token) IsMissing() bool    { return t.green.IsMissing() }
func (t *Token) IndexInParent() int { return t.index }

// Span covers the token text only.
func (t *Token) Span() source.Span {
	start := t.offset + t.green.LeadingWidth()
	return source.Span{File: t.file, Start: start, End: start + widthOf(t.green.text)}
}

// FullSpan covers the token with its trivia.
func (t *Token) FullSpan() source.Span {
	return source.Span{File: t.file, Start: t.offset, End: t.offset + t.green.width}
}

// Token materializes the lexer token, trivia positions included.
func (t *Token) Token() token.Token {
	tok := token.Token{Kind: t.green.kind, Span: t.Span(), Text: t.green.text, Flags: t.green.flags}
	tok.Leading = placeTrivia(t.file, t.offset, t.green.leading)
	tok.Trailing = placeTrivia(t.file, tok.Span.End, t.green.trailing)
	return tok
}

func placeTrivia(file source.FileID, off uint32, ts []GreenTrivia) []token.Trivia {
	if len(ts) == 0 {
		return nil
	}
	out := make([]token.Trivia, len(ts))
	for i, tr := range ts {
		end := off + widthOf(tr.Text)
		out[i] = token.Trivia{Kind: tr.Kind, Span: source.Span{File: file, Start: off, End: end}, Text: tr.Text}
		off = end
	}
	return out
}
