package binder

import (
	"weave/internal/catalog"
	"weave/internal/syntax"
)

// Target is one descriptor property that receives an attribute value.
type Target struct {
	Descriptor *catalog.Descriptor
	Attribute  *catalog.BoundAttribute
}

// AttributeBinding is the result for one bound attribute.
type AttributeBinding struct {
	Node syntax.Attribute
	// Targets lists every matched descriptor that takes the value, in
	// catalog order. Targets[0] decides how the value is generated.
	Targets []Target
	// Ambiguous is set when other matched descriptors declared the
	// attribute with a different type and lost.
	Ambiguous bool
}

// Primary returns the target that decides code generation.
func (a *AttributeBinding) Primary() Target { return a.Targets[0] }

// ElementBinding is the result for one bound element.
type ElementBinding struct {
	Node syntax.MarkupElement
	// Name is the element name without the tag helper prefix.
	Name        string
	Descriptors []*catalog.Descriptor
	Attributes  []*AttributeBinding
}

// Component reports whether any matched descriptor replaces the element.
func (e *ElementBinding) Component() bool {
	for _, d := range e.Descriptors {
		if d.Component {
			return true
		}
	}
	return false
}

// AttributeFor returns the binding of attr if it is bound.
func (e *ElementBinding) AttributeFor(attr *syntax.Node) (*AttributeBinding, bool) {
	for _, a := range e.Attributes {
		if a.Node.Key() == attr.Key() {
			return a, true
		}
	}
	return nil, false
}

// Table is the side table produced by Bind.
type Table struct {
	elements map[syntax.Key]*ElementBinding
	attrs    map[syntax.Key]*AttributeBinding
	order    []*ElementBinding
}

func newTable() *Table {
	return &Table{
		elements: make(map[syntax.Key]*ElementBinding),
		attrs:    make(map[syntax.Key]*AttributeBinding),
	}
}

func (t *Table) add(eb *ElementBinding) {
	t.elements[eb.Node.Key()] = eb
	t.order = append(t.order, eb)
	for _, a := range eb.Attributes {
		t.attrs[a.Node.Key()] = a
	}
}

// Element returns the binding of a MarkupElement node.
func (t *Table) Element(n *syntax.Node) (*ElementBinding, bool) {
	if t == nil || n == nil {
		return nil, false
	}
	eb, ok := t.elements[n.Key()]
	return eb, ok
}

// Attribute returns the binding of an Attribute node.
func (t *Table) Attribute(n *syntax.Node) (*AttributeBinding, bool) {
	if t == nil || n == nil {
		return nil, false
	}
	ab, ok := t.attrs[n.Key()]
	return ab, ok
}

// Elements returns the bound elements in document order.
func (t *Table) Elements() []*ElementBinding {
	if t == nil {
		return nil
	}
	return t.order
}

// Len returns the number of bound elements.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
