package syntax

import (
	"strings"

	"weave/internal/token"
)

// MarkupElement is a view over a KindMarkupElement node.
type MarkupElement struct{ *Node }

// Attribute is a view over a KindAttribute node.
type Attribute struct{ *Node }

// AsElement wraps n when it is a markup element.
func AsElement(n *Node) (MarkupElement, bool) {
	if n == nil || n.Kind() != KindMarkupElement {
		return MarkupElement{}, false
	}
	return MarkupElement{n}, true
}

// StartTag returns the start tag node.
func (e MarkupElement) StartTag() *Node { return e.ChildNode(KindStartTag) }

// EndTag returns the end tag node, or nil. A synthesized end tag is returned too.
func (e MarkupElement) EndTag() *Node {
	kids := e.Children()
	if len(kids) == 0 {
		return nil
	}
	if last, ok := kids[len(kids)-1].(*Node); ok && last.Kind() == KindEndTag && len(kids) > 1 {
		return last
	}
	return nil
}

// HasEndTag reports whether the source spells out an end tag.
func (e MarkupElement) HasEndTag() bool {
	end := e.EndTag()
	if end == nil {
		return false
	}
	open := end.ChildToken(token.EndTagOpen)
	return open != nil && !open.IsMissing()
}

// NameToken returns the tag name token of the start tag.
func (e MarkupElement) NameToken() *Token {
	if st := e.StartTag(); st != nil {
		return st.ChildToken(token.Name)
	}
	return nil
}

// Name returns the tag name as written.
func (e MarkupElement) Name() string {
	if t := e.NameToken(); t != nil {
		return t.Text()
	}
	return ""
}

// SelfClosing reports a start tag closed with "/>".
func (e MarkupElement) SelfClosing() bool {
	st := e.StartTag()
	return st != nil && st.ChildToken(token.SelfClose) != nil
}

// Attributes returns the attributes of the start tag in source order.
func (e MarkupElement) Attributes() []Attribute {
	st := e.StartTag()
	if st == nil {
		return nil
	}
	var out []Attribute
	for _, c := range st.ChildNodes() {
		if c.Kind() == KindAttribute {
			out = append(out, Attribute{c})
		}
	}
	return out
}

// Attribute returns the first attribute whose name equals name, ignoring case.
func (e MarkupElement) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes() {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return Attribute{}, false
}

// Content returns the nodes between the start and the end tag.
func (e MarkupElement) Content() []*Node {
	var out []*Node
	for _, c := range e.ChildNodes() {
		if c.Kind() == KindStartTag || c.Kind() == KindEndTag {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ParentElement returns the closest enclosing markup element.
func (e MarkupElement) ParentElement() (MarkupElement, bool) {
	for p := range e.Ancestors() {
		if p.Kind() == KindMarkupElement {
			return MarkupElement{p}, true
		}
	}
	return MarkupElement{}, false
}

// NameToken returns the attribute name token.
func (a Attribute) NameToken() *Token { return a.ChildToken(token.Name) }

// Name returns the attribute name as written.
func (a Attribute) Name() string {
	if t := a.NameToken(); t != nil {
		return t.Text()
	}
	return ""
}

// HasValue reports whether the attribute has "=" and a value.
func (a Attribute) HasValue() bool { return a.Value() != nil }

// Value returns the attribute value node, or nil.
func (a Attribute) Value() *Node { return a.ChildNode(KindAttributeValue) }

// Quote returns the opening quote byte, or 0 for unquoted values.
func (a Attribute) Quote() byte {
	v := a.Value()
	if v == nil {
		return 0
	}
	if q := v.ChildToken(token.DoubleQuote); q != nil {
		return '"'
	}
	if q := v.ChildToken(token.SingleQuote); q != nil {
		return '\''
	}
	return 0
}

// ValueParts returns the text tokens and expression nodes of the value.
func (a Attribute) ValueParts() []Element {
	v := a.Value()
	if v == nil {
		return nil
	}
	var out []Element
	for _, c := range v.Children() {
		switch c := c.(type) {
		case *Token:
			if c.Kind() == token.DoubleQuote || c.Kind() == token.SingleQuote {
				continue
			}
			out = append(out, c)
		case *Node:
			if c.Kind() == KindRazorComment {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// IsLiteral reports a value without expression parts.
func (a Attribute) IsLiteral() bool {
	for _, p := range a.ValueParts() {
		if n, ok := p.(*Node); ok && n.Kind().IsExpression() {
			return false
		}
	}
	return true
}

// LiteralValue returns the value text with "@@" unescaped. Expression parts
// are skipped.
func (a Attribute) LiteralValue() string {
	var b strings.Builder
	for _, p := range a.ValueParts() {
		switch p := p.(type) {
		case *Token:
			b.WriteString(p.Text())
		case *Node:
			if p.Kind() == KindEscapedTransition {
				b.WriteByte('@')
			}
		}
	}
	return b.String()
}
