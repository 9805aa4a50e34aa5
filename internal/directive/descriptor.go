package directive

import "fmt"

// Kind is the overall shape of a directive.
type Kind uint8

const (
	// KindSingleLine directives take their arguments up to the end of the line.
	KindSingleLine Kind = iota
	// KindCodeBlock directives are followed by a { code } block.
	KindCodeBlock
	// KindRazorBlock directives are followed by a { markup } block.
	KindRazorBlock
)

func (k Kind) String() string {
	switch k {
	case KindSingleLine:
		return "single-line"
	case KindCodeBlock:
		return "code-block"
	case KindRazorBlock:
		return "razor-block"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Usage restricts where and how often a directive may appear.
type Usage uint8

const (
	// UsageUnrestricted directives may appear anywhere at the document level, any number of times.
	UsageUnrestricted Usage = iota
	// UsageFileScopedSingle directives must precede content and appear once.
	UsageFileScopedSingle
	// UsageFileScopedMultiple directives must precede content and may repeat.
	UsageFileScopedMultiple
)

func (u Usage) String() string {
	switch u {
	case UsageUnrestricted:
		return "unrestricted"
	case UsageFileScopedSingle:
		return "file-scoped, single"
	case UsageFileScopedMultiple:
		return "file-scoped, repeatable"
	}
	return fmt.Sprintf("Usage(%d)", uint8(u))
}

// FileScoped reports whether the directive belongs in the document prologue.
func (u Usage) FileScoped() bool {
	return u == UsageFileScopedSingle || u == UsageFileScopedMultiple
}

// TokenKind is the grammar of one directive argument.
type TokenKind uint8

const (
	// TokenType is a Go type expression: pkg.Name, *T, []T, map[K]V.
	TokenType TokenKind = iota
	// TokenMember is a Go identifier.
	TokenMember
	// TokenString is a Go string literal.
	TokenString
	// TokenBoolean is true or false.
	TokenBoolean
)

func (k TokenKind) String() string {
	switch k {
	case TokenType:
		return "type"
	case TokenMember:
		return "member"
	case TokenString:
		return "string"
	case TokenBoolean:
		return "boolean"
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// TokenDescriptor describes one argument.
type TokenDescriptor struct {
	Kind     TokenKind
	Optional bool
	Name     string
}

// Descriptor describes a directive. Descriptors are values; a Registry copies them.
type Descriptor struct {
	Name        string
	Kind        Kind
	Usage       Usage
	Tokens      []TokenDescriptor
	Description string
}

// Syntax renders a usage line such as "@inject <type> <member>".
func (d *Descriptor) Syntax() string {
	s := "@" + d.Name
	for _, t := range d.Tokens {
		name := t.Name
		if name == "" {
			name = t.Kind.String()
		}
		if t.Optional {
			s += " [" + name + "]"
		} else {
			s += " <" + name + ">"
		}
	}
	switch d.Kind {
	case KindCodeBlock:
		s += " { code }"
	case KindRazorBlock:
		s += " { markup }"
	}
	return s
}

// RequiredTokens counts the non-optional arguments.
func (d *Descriptor) RequiredTokens() int {
	n := 0
	for _, t := range d.Tokens {
		if !t.Optional {
			n++
		}
	}
	return n
}
