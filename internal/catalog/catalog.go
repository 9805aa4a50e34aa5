package catalog

import (
	"slices"
	"strings"
	"unicode"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// Catalog is an ordered, validated set of descriptors.
type Catalog struct {
	descs []*Descriptor
	byID  map[string]*Descriptor
	// byTag indexes descriptors by folded tag name; wildcard rules live in any.
	byTag map[string][]*Descriptor
	any   []*Descriptor
	fp    Digest
}

// New validates descs and builds a catalog in the given order.
func New(descs ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		descs: make([]*Descriptor, 0, len(descs)),
		byID:  make(map[string]*Descriptor, len(descs)),
		byTag: make(map[string][]*Descriptor),
	}
	var errs *multierror.Error
	for i := range descs {
		d := cloneDescriptor(&descs[i])
		if err := validate(d); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if _, dup := c.byID[d.ID]; dup {
			errs = multierror.Append(errs, errors.Errorf("descriptor %q declared twice", d.ID))
			continue
		}
		d.order = len(c.descs)
		c.descs = append(c.descs, d)
		c.byID[d.ID] = d
		c.index(d)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, errors.WithStack(err)
	}
	fp, err := fingerprint(c.descs)
	if err != nil {
		return nil, err
	}
	c.fp = fp
	return c, nil
}

// MustNew is New for tests and static tables.
func MustNew(descs ...Descriptor) *Catalog {
	c, err := New(descs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Empty returns a catalog without descriptors.
func Empty() *Catalog { return MustNew() }

func (c *Catalog) index(d *Descriptor) {
	seen := make(map[string]bool, len(d.Rules))
	wild := false
	for _, r := range d.Rules {
		if r.Tag == AnyTag {
			wild = true
			continue
		}
		key := Fold(r.Tag)
		if !seen[key] {
			seen[key] = true
			c.byTag[key] = append(c.byTag[key], d)
		}
	}
	if wild {
		c.any = append(c.any, d)
	}
}

func cloneDescriptor(d *Descriptor) *Descriptor {
	out := *d
	out.Rules = make([]Rule, len(d.Rules))
	for i, r := range d.Rules {
		r.Attributes = slices.Clone(r.Attributes)
		out.Rules[i] = r
	}
	out.Attributes = slices.Clone(d.Attributes)
	for i := range out.Attributes {
		if out.Attributes[i].Property == "" {
			out.Attributes[i].Property = PropertyName(out.Attributes[i].Name)
		}
	}
	return &out
}

func validate(d *Descriptor) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("descriptor with empty id")
	}
	if strings.TrimSpace(d.Type) == "" {
		return errors.Errorf("descriptor %q: missing type", d.ID)
	}
	if len(d.Rules) == 0 {
		return errors.Errorf("descriptor %q: no tag rules", d.ID)
	}
	for i, r := range d.Rules {
		if r.Tag == "" {
			return errors.Errorf("descriptor %q: rule %d has no tag", d.ID, i)
		}
		for _, a := range r.Attributes {
			if a.Name == "" {
				return errors.Errorf("descriptor %q: rule %d requires an attribute without a name", d.ID, i)
			}
		}
	}
	seen := make(map[string]bool, len(d.Attributes))
	for _, a := range d.Attributes {
		if a.Name == "" || a.Type == "" {
			return errors.Errorf("descriptor %q: bound attribute needs a name and a type", d.ID)
		}
		key := Fold(a.Name)
		if seen[key] {
			return errors.Errorf("descriptor %q: bound attribute %q declared twice", d.ID, a.Name)
		}
		seen[key] = true
	}
	return nil
}

// PropertyName turns an attribute name like "asp-for" into "AspFor".
func PropertyName(attr string) string {
	var b strings.Builder
	upper := true
	for _, r := range attr {
		if r == '-' || r == '_' || r == ':' || r == '.' {
			upper = true
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.descs)
}

// All returns the descriptors in catalog order.
func (c *Catalog) All() []*Descriptor {
	if c == nil {
		return nil
	}
	return slices.Clone(c.descs)
}

// Lookup returns the descriptor with the given id.
func (c *Catalog) Lookup(id string) (*Descriptor, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.byID[id]
	return d, ok
}

// Candidates returns, in catalog order, the descriptors with a rule that may
// match tag. Rule conditions still have to be checked by the caller.
func (c *Catalog) Candidates(tag string) []*Descriptor {
	if c == nil {
		return nil
	}
	named := c.byTag[Fold(tag)]
	switch {
	case len(c.any) == 0:
		return named
	case len(named) == 0:
		return c.any
	}
	out := make([]*Descriptor, 0, len(named)+len(c.any))
	out = append(out, named...)
	out = append(out, c.any...)
	slices.SortFunc(out, func(a, b *Descriptor) int { return a.order - b.order })
	return slices.CompactFunc(out, func(a, b *Descriptor) bool { return a == b })
}

// Fingerprint identifies the catalog content.
func (c *Catalog) Fingerprint() Digest {
	if c == nil {
		return Digest{}
	}
	return c.fp
}
