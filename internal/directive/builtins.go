package directive

import "sync"

// Names of the builtin directives.
const (
	Import          = "import"
	Model           = "model"
	Inherits        = "inherits"
	Inject          = "inject"
	Page            = "page"
	Layout          = "layout"
	Package         = "package"
	Implements      = "implements"
	TagHelperPrefix = "tagHelperPrefix"
	Functions       = "functions"
	Section         = "section"
)

// BuiltinDescriptors returns the default directive set.
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name: Import, Kind: KindSingleLine, Usage: UsageFileScopedMultiple,
			Tokens:      []TokenDescriptor{{Kind: TokenString, Name: "path"}},
			Description: "Adds a Go import to the generated file.",
		},
		{
			Name: Model, Kind: KindSingleLine, Usage: UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "type"}},
			Description: "Declares the type of the Model field.",
		},
		{
			Name: Inherits, Kind: KindSingleLine, Usage: UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "base"}},
			Description: "Embeds a base type in the generated page.",
		},
		{
			Name: Inject, Kind: KindSingleLine, Usage: UsageFileScopedMultiple,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "type"}, {Kind: TokenMember, Name: "field"}},
			Description: "Adds an injected field to the generated page.",
		},
		{
			Name: Page, Kind: KindSingleLine, Usage: UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenString, Name: "route", Optional: true}},
			Description: "Marks the document as a routable page.",
		},
		{
			Name: Layout, Kind: KindSingleLine, Usage: UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenString, Name: "layout"}},
			Description: "Names the layout the page renders into.",
		},
		{
			Name: Package, Kind: KindSingleLine, Usage: UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenMember, Name: "name"}},
			Description: "Sets the Go package of the generated file.",
		},
		{
			Name: Implements, Kind: KindSingleLine, Usage: UsageFileScopedMultiple,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "interface"}},
			Description: "Asserts that the page implements an interface.",
		},
		{
			Name: TagHelperPrefix, Kind: KindSingleLine, Usage: UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenString, Name: "prefix"}},
			Description: "Requires a prefix on elements bound to tag helpers.",
		},
		{
			Name: Functions, Kind: KindCodeBlock, Usage: UsageUnrestricted,
			Description: "Adds members to the generated page.",
		},
		{
			Name: Section, Kind: KindRazorBlock, Usage: UsageUnrestricted,
			Tokens:      []TokenDescriptor{{Kind: TokenMember, Name: "name"}},
			Description: "Defines a named section rendered by the layout.",
		},
	}
}

var builtins = sync.OnceValue(func() *Registry {
	return MustRegistry(BuiltinDescriptors()...)
})

// Builtins returns the shared registry of builtin directives.
func Builtins() *Registry { return builtins() }
