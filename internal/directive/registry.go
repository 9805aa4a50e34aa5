package directive

import (
	"slices"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// Registry maps directive names to descriptors. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	descriptors []Descriptor
	byName      map[string]int // name -> index into descriptors
}

// NewRegistry validates descs and builds a registry. Names are matched
// case-sensitively.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]Descriptor, 0, len(descs)),
		byName:      make(map[string]int, len(descs)),
	}
	var errs *multierror.Error
	for i := range descs {
		d := descs[i]
		if err := validate(&d); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if _, dup := r.byName[d.Name]; dup {
			errs = multierror.Append(errs, errors.Errorf("directive %q registered twice", d.Name))
			continue
		}
		d.Tokens = slices.Clone(d.Tokens)
		r.byName[d.Name] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, errors.WithStack(err)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables.
func MustRegistry(descs ...Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

func validate(d *Descriptor) error {
	if d.Name == "" {
		return errors.New("directive with empty name")
	}
	for _, c := range d.Name {
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return errors.Errorf("directive %q: name must be an identifier", d.Name)
		}
	}
	if d.Name[0] >= '0' && d.Name[0] <= '9' {
		return errors.Errorf("directive %q: name must be an identifier", d.Name)
	}
	switch d.Name {
	case "if", "for", "switch", "else":
		return errors.Errorf("directive %q: name is reserved", d.Name)
	}
	seenOptional := false
	for _, t := range d.Tokens {
		if t.Optional {
			seenOptional = true
		} else if seenOptional {
			return errors.Errorf("directive %q: required argument %q after an optional one", d.Name, t.Name)
		}
	}
	return nil
}

// Extend returns a new registry with descs added after the existing entries.
func (r *Registry) Extend(descs ...Descriptor) (*Registry, error) {
	all := make([]Descriptor, 0, len(r.descriptors)+len(descs))
	all = append(all, r.descriptors...)
	all = append(all, descs...)
	return NewRegistry(all...)
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return &r.descriptors[i], true
}

// All returns the descriptors in registration order.
func (r *Registry) All() []Descriptor {
	if r == nil {
		return nil
	}
	return slices.Clone(r.descriptors)
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.descriptors)
}
