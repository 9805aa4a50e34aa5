package binder

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"weave/internal/catalog"
	"weave/internal/diag"
	"weave/internal/source"
	"weave/internal/syntax"
)

// Options configures Bind.
type Options struct {
	Catalog  *catalog.Catalog
	Reporter diag.Reporter
	// Prefix comes from @tagHelperPrefix. When set, elements without it are
	// plain markup.
	Prefix string
	// CaseSensitive forces ordinal comparison of tag and attribute names.
	CaseSensitive bool
	Ambiguity     AmbiguityPolicy
}

type binder struct {
	opts  Options
	table *Table
}

// Bind walks root in document order and records a binding for every
// element matched by at least one descriptor. Bind does not modify the tree.
func Bind(root *syntax.Node, opts Options) *Table {
	b := &binder{opts: opts, table: newTable()}
	if root == nil {
		return b.table
	}
	for n := range root.Preorder() {
		if el, ok := syntax.AsElement(n); ok {
			b.bindElement(el)
		}
	}
	return b.table
}

func (b *binder) bindElement(el syntax.MarkupElement) {
	nameTok := el.NameToken()
	if nameTok == nil || nameTok.IsMissing() {
		return
	}
	name, ok := b.strip(el.Name())
	if !ok {
		return
	}
	var matched []*catalog.Descriptor
	for _, d := range b.opts.Catalog.Candidates(name) {
		rule, ok := b.matchDescriptor(d, el, name)
		if !ok {
			continue
		}
		matched = append(matched, d)
		if rule.Structure == catalog.StructureWithoutEndTag && el.HasEndTag() {
			b.report(diag.BndTagStructure, diag.SevError, el.EndTag().Span(), el.Name(), d.ID)
		}
	}
	if len(matched) == 0 {
		if looksLikeComponent(name) {
			b.report(diag.BndUnresolvedComponent, diag.SevWarning, nameTok.Span(), el.Name())
		}
		return
	}

	eb := &ElementBinding{Node: el, Name: name, Descriptors: matched}
	for _, attr := range el.Attributes() {
		if ab := b.bindAttribute(el, eb, attr); ab != nil {
			eb.Attributes = append(eb.Attributes, ab)
		}
	}
	b.checkRequired(el, eb, nameTok.Span())
	b.table.add(eb)
}

// matchDescriptor returns the first rule of d that matches el.
func (b *binder) matchDescriptor(d *catalog.Descriptor, el syntax.MarkupElement, name string) (*catalog.Rule, bool) {
	for i := range d.Rules {
		if r := &d.Rules[i]; b.matchRule(r, el, name) {
			return r, true
		}
	}
	return nil, false
}

func (b *binder) matchRule(r *catalog.Rule, el syntax.MarkupElement, name string) bool {
	cs := r.CaseSensitive || b.opts.CaseSensitive
	if r.Tag != catalog.AnyTag && !catalog.NamesEqual(r.Tag, name, cs) {
		return false
	}
	if r.Parent != "" {
		parent, ok := el.ParentElement()
		if !ok {
			return false
		}
		pname, ok := b.strip(parent.Name())
		if !ok {
			pname = parent.Name()
		}
		if !catalog.NamesEqual(r.Parent, pname, cs) {
			return false
		}
	}
	attrs := el.Attributes()
	for i := range r.Attributes {
		if !b.anyAttribute(&r.Attributes[i], attrs) {
			return false
		}
	}
	return true
}

func (b *binder) anyAttribute(req *catalog.RequiredAttribute, attrs []syntax.Attribute) bool {
	cs := req.CaseSensitive || b.opts.CaseSensitive
	for _, a := range attrs {
		var nameOK bool
		switch req.NameMatch {
		case catalog.NamePrefix:
			nameOK = catalog.HasNamePrefix(a.Name(), req.Name, cs)
		default:
			nameOK = catalog.NamesEqual(a.Name(), req.Name, cs)
		}
		if nameOK && matchValue(req, a) {
			return true
		}
	}
	return false
}

// matchValue compares the literal attribute value. Values are compared
// ordinally.
func matchValue(req *catalog.RequiredAttribute, a syntax.Attribute) bool {
	if req.ValueMatch == catalog.ValueNone {
		return true
	}
	if !a.IsLiteral() {
		return false
	}
	v := a.LiteralValue()
	switch req.ValueMatch {
	case catalog.ValueFull:
		return v == req.Value
	case catalog.ValuePrefix:
		return strings.HasPrefix(v, req.Value)
	case catalog.ValueSuffix:
		return strings.HasSuffix(v, req.Value)
	}
	return false
}

func (b *binder) bindAttribute(el syntax.MarkupElement, eb *ElementBinding, attr syntax.Attribute) *AttributeBinding {
	nameTok := attr.NameToken()
	if nameTok == nil || nameTok.IsMissing() {
		return nil
	}
	var hits []Target
	for _, d := range eb.Descriptors {
		if ba, ok := d.Attribute(attr.Name(), b.opts.CaseSensitive); ok {
			hits = append(hits, Target{Descriptor: d, Attribute: ba})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	first := hits[0]
	ab := &AttributeBinding{Node: attr}
	var conflict *Target
	for i := range hits {
		h := hits[i]
		if h.Attribute.Type != first.Attribute.Type {
			if conflict == nil {
				conflict = &hits[i]
			}
			continue
		}
		ab.Targets = append(ab.Targets, h)
	}
	if conflict != nil {
		switch b.opts.Ambiguity {
		case AmbiguityReject:
			b.report(diag.BndAmbiguousAttribute, diag.SevError, nameTok.Span(),
				attr.Name(), el.Name(), first.Descriptor.ID, first.Attribute.Type,
				conflict.Descriptor.ID, conflict.Attribute.Type, "neither")
			return nil
		default:
			b.report(diag.BndAmbiguousAttribute, diag.SevWarning, nameTok.Span(),
				attr.Name(), el.Name(), first.Descriptor.ID, first.Attribute.Type,
				conflict.Descriptor.ID, conflict.Attribute.Type, first.Descriptor.ID)
			ab.Ambiguous = true
		}
	}
	if !attr.HasValue() && !first.Attribute.IsBool() {
		b.report(diag.BndMissingAttributeValue, diag.SevError, nameTok.Span(), attr.Name(), first.Attribute.Type)
	}
	return ab
}

func (b *binder) checkRequired(el syntax.MarkupElement, eb *ElementBinding, at source.Span) {
	for _, d := range eb.Descriptors {
		for i := range d.Attributes {
			ba := &d.Attributes[i]
			if ba.Required && !hasTarget(eb, ba) {
				b.report(diag.BndMissingRequiredAttribute, diag.SevError, at, el.Name(), ba.Name, d.ID)
			}
		}
	}
}

func hasTarget(eb *ElementBinding, ba *catalog.BoundAttribute) bool {
	for _, ab := range eb.Attributes {
		for _, t := range ab.Targets {
			if t.Attribute == ba {
				return true
			}
		}
	}
	return false
}

// strip removes the tag helper prefix. It reports false when a prefix is
// configured and name does not carry it.
func (b *binder) strip(name string) (string, bool) {
	p := b.opts.Prefix
	if p == "" {
		return name, true
	}
	if len(name) <= len(p) || !catalog.HasNamePrefix(name, p, b.opts.CaseSensitive) {
		return "", false
	}
	return name[len(p):], true
}

// looksLikeComponent reports PascalCase names, which never denote HTML.
func looksLikeComponent(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (b *binder) report(code diag.Code, sev diag.Severity, sp source.Span, args ...any) {
	if b.opts.Reporter == nil {
		return
	}
	diag.Emit(b.opts.Reporter, sev, code, sp, args...)
}
