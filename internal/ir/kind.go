package ir

import "fmt"

// Kind tags an IR node.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindDocument is the root. Its only child is the namespace.
	KindDocument
	// KindNamespace is the generated Go file: Name is the package.
	KindNamespace
	// KindImport is one import path; Content is the quoted path.
	KindImport
	// KindClass is the generated page type.
	KindClass
	// KindField is a struct field: Name and Type. FlagEmbedded marks the base type.
	KindField
	// KindInterfaceCheck asserts that the page implements Type.
	KindInterfaceCheck
	// KindConstMethod is a method returning the string literal in Content.
	KindConstMethod
	// KindMemberCode holds Statement children copied into file scope.
	KindMemberCode
	// KindMethod is a render method with a body.
	KindMethod
	// KindSection is a section render method; Name is the section name.
	KindSection
	// KindDesignTimeHelper references directive type tokens so tooling can
	// resolve them.
	KindDesignTimeHelper

	// KindDirective is an unclassified directive occurrence.
	KindDirective
	// KindDirectiveToken is one directive argument.
	KindDirectiveToken

	// KindLiteral writes Content as markup.
	KindLiteral
	// KindExpression writes the value of its Token children.
	KindExpression
	// KindStatement executes its Token children.
	KindStatement
	// KindToken is verbatim target code.
	KindToken

	// KindScope runs tag helpers around the lowered content of one element.
	// Opening the node begins the execution scope, closing it ends it.
	KindScope
	// KindCreate constructs one helper; Name is the variable.
	KindCreate
	// KindProperty assigns a bound attribute to a helper property.
	KindProperty
	// KindHTMLAttribute is an unbound attribute of a bound element.
	KindHTMLAttribute
	// KindBody is the content of a scope.
	KindBody

	// KindContextBegin and KindContextEnd bracket writes with instrumentation calls.
	KindContextBegin
	KindContextEnd
)

var kindNames = [...]string{
	KindInvalid:          "Invalid",
	KindDocument:         "Document",
	KindNamespace:        "Namespace",
	KindImport:           "Import",
	KindClass:            "Class",
	KindField:            "Field",
	KindInterfaceCheck:   "InterfaceCheck",
	KindConstMethod:      "ConstMethod",
	KindMemberCode:       "MemberCode",
	KindMethod:           "Method",
	KindSection:          "Section",
	KindDesignTimeHelper: "DesignTimeHelper",
	KindDirective:        "Directive",
	KindDirectiveToken:   "DirectiveToken",
	KindLiteral:          "Literal",
	KindExpression:       "Expression",
	KindStatement:        "Statement",
	KindToken:            "Token",
	KindScope:            "Scope",
	KindCreate:           "Create",
	KindProperty:         "Property",
	KindHTMLAttribute:    "HTMLAttribute",
	KindBody:             "Body",
	KindContextBegin:     "ContextBegin",
	KindContextEnd:       "ContextEnd",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsWrite reports nodes that produce output at render time.
func (k Kind) IsWrite() bool {
	return k == KindLiteral || k == KindExpression
}

// IsMember reports nodes that live in the class or file scope.
func (k Kind) IsMember() bool {
	switch k {
	case KindField, KindInterfaceCheck, KindConstMethod, KindMemberCode,
		KindMethod, KindSection, KindDesignTimeHelper:
		return true
	}
	return false
}

// Flags carry per-node facts for passes and the generator.
type Flags uint8

const (
	// FlagReordered marks nodes that a pass moved away from source order.
	FlagReordered Flags = 1 << iota
	// FlagEmbedded marks an embedded struct field.
	FlagEmbedded
	// FlagDesignTime marks scaffolding that exists only for tooling.
	FlagDesignTime
	// FlagSynthesized marks tokens whose text is not in the source.
	FlagSynthesized
)

func (f Flags) Has(x Flags) bool { return f&x == x }
