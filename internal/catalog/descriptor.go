package catalog

import (
	"fmt"
	"strings"
)

// AnyTag is the tag name that matches every element.
const AnyTag = "*"

// StringType is the bound attribute type whose values are written as literals.
const StringType = "string"

// BoolType is the bound attribute type that may be used without a value.
const BoolType = "bool"

// NameMatch selects how a required attribute name is compared.
type NameMatch uint8

const (
	NameFull NameMatch = iota
	NamePrefix
)

var nameMatchNames = [...]string{NameFull: "full", NamePrefix: "prefix"}

func (m NameMatch) String() string { return enumString(nameMatchNames[:], int(m)) }

func (m NameMatch) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *NameMatch) UnmarshalText(b []byte) error {
	v, err := parseEnum("name match", nameMatchNames[:], string(b))
	*m = NameMatch(v)
	return err
}

// ValueMatch selects how a required attribute value is compared.
type ValueMatch uint8

const (
	// ValueNone only requires the attribute to be present.
	ValueNone ValueMatch = iota
	ValueFull
	ValuePrefix
	ValueSuffix
)

var valueMatchNames = [...]string{ValueNone: "none", ValueFull: "full", ValuePrefix: "prefix", ValueSuffix: "suffix"}

func (m ValueMatch) String() string { return enumString(valueMatchNames[:], int(m)) }

func (m ValueMatch) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ValueMatch) UnmarshalText(b []byte) error {
	v, err := parseEnum("value match", valueMatchNames[:], string(b))
	*m = ValueMatch(v)
	return err
}

// TagStructure constrains how a bound element may be written.
type TagStructure uint8

const (
	StructureUnspecified TagStructure = iota
	// StructureWithoutEndTag elements must be self-closing or void.
	StructureWithoutEndTag
)

var structureNames = [...]string{StructureUnspecified: "unspecified", StructureWithoutEndTag: "without-end-tag"}

func (s TagStructure) String() string { return enumString(structureNames[:], int(s)) }

func (s TagStructure) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *TagStructure) UnmarshalText(b []byte) error {
	v, err := parseEnum("tag structure", structureNames[:], string(b))
	*s = TagStructure(v)
	return err
}

func enumString(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("(%d)", i)
}

func parseEnum(what string, names []string, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", what, s, strings.Join(names, ", "))
}

// RequiredAttribute is a predicate over the attributes of an element.
type RequiredAttribute struct {
	Name          string     `yaml:"name" toml:"name" msgpack:"name"`
	NameMatch     NameMatch  `yaml:"name_match,omitempty" toml:"name_match,omitempty" msgpack:"name_match"`
	Value         string     `yaml:"value,omitempty" toml:"value,omitempty" msgpack:"value"`
	ValueMatch    ValueMatch `yaml:"value_match,omitempty" toml:"value_match,omitempty" msgpack:"value_match"`
	CaseSensitive bool       `yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty" msgpack:"case_sensitive"`
}

// Rule is one way a descriptor can match an element. All conditions of a
// rule must hold.
type Rule struct {
	Tag           string              `yaml:"tag" toml:"tag" msgpack:"tag"`
	Parent        string              `yaml:"parent,omitempty" toml:"parent,omitempty" msgpack:"parent"`
	Attributes    []RequiredAttribute `yaml:"attributes,omitempty" toml:"attributes,omitempty" msgpack:"attributes"`
	Structure     TagStructure        `yaml:"structure,omitempty" toml:"structure,omitempty" msgpack:"structure"`
	CaseSensitive bool                `yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty" msgpack:"case_sensitive"`
}

// BoundAttribute maps a markup attribute to a property of the helper type.
type BoundAttribute struct {
	Name string `yaml:"name" toml:"name" msgpack:"name"`
	// Property is the Go field set on the helper; defaults to Name in PascalCase.
	Property      string `yaml:"property,omitempty" toml:"property,omitempty" msgpack:"property"`
	Type          string `yaml:"type" toml:"type" msgpack:"type"`
	CaseSensitive bool   `yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty" msgpack:"case_sensitive"`
	Required      bool   `yaml:"required,omitempty" toml:"required,omitempty" msgpack:"required"`
}

// IsString reports whether values are written as string literals.
func (a *BoundAttribute) IsString() bool { return a.Type == StringType }

// IsBool reports whether the attribute may appear without a value.
func (a *BoundAttribute) IsBool() bool { return a.Type == BoolType }

// Descriptor describes one tag helper or component.
type Descriptor struct {
	// ID is the stable identity used in diagnostics and caching.
	ID string `yaml:"id" toml:"id" msgpack:"id"`
	// Type is the Go type constructed for a bound element, e.g. "ui.Button".
	Type       string           `yaml:"type" toml:"type" msgpack:"type"`
	Rules      []Rule           `yaml:"rules" toml:"rules" msgpack:"rules"`
	Attributes []BoundAttribute `yaml:"attributes,omitempty" toml:"attributes,omitempty" msgpack:"attributes"`
	// Component descriptors replace the element entirely; others add
	// behavior to ordinary markup.
	Component bool `yaml:"component,omitempty" toml:"component,omitempty" msgpack:"component"`

	order int
}

// Order is the position of the descriptor in its catalog.
func (d *Descriptor) Order() int { return d.order }

// Attribute returns the bound attribute named name.
func (d *Descriptor) Attribute(name string, caseSensitive bool) (*BoundAttribute, bool) {
	for i := range d.Attributes {
		a := &d.Attributes[i]
		if NamesEqual(a.Name, name, caseSensitive || a.CaseSensitive) {
			return a, true
		}
	}
	return nil, false
}

// Tags lists the tag names of all rules.
func (d *Descriptor) Tags() []string {
	out := make([]string, 0, len(d.Rules))
	for _, r := range d.Rules {
		out = append(out, r.Tag)
	}
	return out
}
