package syntax

// Kind identifies a syntax node production.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindDocument is the root: markup items followed by the EOF token.
	KindDocument
	// KindTextLiteral is a run of markup text, whitespace and declarations.
	KindTextLiteral
	// KindMarkupElement holds a start tag, content items and an optional end tag.
	KindMarkupElement
	KindStartTag
	KindEndTag
	// KindAttribute is name [= value].
	KindAttribute
	// KindAttributeValue holds optional quotes around text and expression parts.
	KindAttributeValue
	KindMarkupComment
	KindRazorComment
	KindEscapedTransition
	// KindImplicitExpression is @ident(.ident|(...)|[...])*.
	KindImplicitExpression
	// KindExplicitExpression is @( ... ).
	KindExplicitExpression
	// KindCodeBlock is @{ ... }.
	KindCodeBlock
	// KindStatement is @if / @for / @switch with its bodies.
	KindStatement
	// KindCodeSpan is an opaque run of embedded-code tokens.
	KindCodeSpan
	// KindTextLine is @: up to the end of the line.
	KindTextLine
	KindDirective
	// KindDirectiveToken wraps one directive argument.
	KindDirectiveToken
	// KindDirectiveBody is the { ... } part of a block directive.
	KindDirectiveBody
	// KindError collects tokens the parser could not place.
	KindError
)

var kindNames = [...]string{
	KindInvalid:            "Invalid",
	KindDocument:           "Document",
	KindTextLiteral:        "TextLiteral",
	KindMarkupElement:      "MarkupElement",
	KindStartTag:           "StartTag",
	KindEndTag:             "EndTag",
	KindAttribute:          "Attribute",
	KindAttributeValue:     "AttributeValue",
	KindMarkupComment:      "MarkupComment",
	KindRazorComment:       "RazorComment",
	KindEscapedTransition:  "EscapedTransition",
	KindImplicitExpression: "ImplicitExpression",
	KindExplicitExpression: "ExplicitExpression",
	KindCodeBlock:          "CodeBlock",
	KindStatement:          "Statement",
	KindCodeSpan:           "CodeSpan",
	KindTextLine:           "TextLine",
	KindDirective:          "Directive",
	KindDirectiveToken:     "DirectiveToken",
	KindDirectiveBody:      "DirectiveBody",
	KindError:              "Error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsExpression reports whether k writes an expression value.
func (k Kind) IsExpression() bool {
	return k == KindImplicitExpression || k == KindExplicitExpression
}

// IsCode reports whether k carries embedded code.
func (k Kind) IsCode() bool {
	switch k {
	case KindImplicitExpression, KindExplicitExpression, KindCodeBlock, KindStatement, KindCodeSpan:
		return true
	}
	return false
}
