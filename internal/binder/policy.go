package binder

import (
	"fmt"
	"strings"
)

// AmbiguityPolicy decides what happens when matched descriptors declare the
// same bound attribute with different types.
type AmbiguityPolicy uint8

const (
	// AmbiguityFirst binds the attribute to the first descriptor in catalog
	// order and reports a warning.
	AmbiguityFirst AmbiguityPolicy = iota
	// AmbiguityReject leaves the attribute unbound and reports an error.
	AmbiguityReject
)

func (p AmbiguityPolicy) String() string {
	switch p {
	case AmbiguityFirst:
		return "first"
	case AmbiguityReject:
		return "reject"
	}
	return fmt.Sprintf("AmbiguityPolicy(%d)", uint8(p))
}

func (p AmbiguityPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *AmbiguityPolicy) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "first":
		*p = AmbiguityFirst
	case "reject":
		*p = AmbiguityReject
	default:
		return fmt.Errorf("unknown ambiguity policy %q (want first or reject)", b)
	}
	return nil
}
