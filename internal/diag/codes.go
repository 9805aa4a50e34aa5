package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                      Code = 1000
	LexUnknownChar               Code = 1001
	LexUnterminatedString        Code = 1002
	LexUnterminatedBlockComment  Code = 1003
	LexUnterminatedMarkupComment Code = 1004
	LexUnterminatedRazorComment  Code = 1005
	LexInvalidEscape             Code = 1006
	LexNewlineInString           Code = 1007

	// Syntactic
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynMissingCloseBrace    Code = 2002
	SynMissingCloseParen    Code = 2003
	SynMissingCloseBracket  Code = 2004
	SynMissingEndTag        Code = 2005
	SynUnexpectedEndTag     Code = 2006
	SynMissingTagClose      Code = 2007
	SynMissingTagName       Code = 2008
	SynMissingAttrQuote     Code = 2009
	SynMissingAttrValue     Code = 2010
	SynInvalidTransition    Code = 2011
	SynTextLineOutsideCode  Code = 2012
	SynMissingStatementBody Code = 2013
	SynVoidElementEndTag    Code = 2014
	SynTooManyErrors        Code = 2099

	// Directives
	DirInfo               Code = 3000
	DirMissingArgument    Code = 3001
	DirUnexpectedArgument Code = 3002
	DirInvalidArgument    Code = 3003
	DirDuplicate          Code = 3004
	DirAfterContent       Code = 3005
	DirMissingBlock       Code = 3006
	DirNotAllowedHere     Code = 3007

	// Binding
	BndInfo                     Code = 4000
	BndAmbiguousAttribute       Code = 4001
	BndUnresolvedComponent      Code = 4002
	BndMissingRequiredAttribute Code = 4003
	BndMissingAttributeValue    Code = 4004
	BndTagStructure             Code = 4005

	// Lowering
	LowInfo              Code = 5000
	LowPassFailed        Code = 5001
	LowInvalidProvenance Code = 5002
	LowUnsupportedNode   Code = 5003

	// Code generation
	GenInfo         Code = 6000
	GenUnmappedSpan Code = 6001
	GenInternal     Code = 6002

	// I/O (driver only)
	IOLoadFileError  Code = 7001
	IOWriteFileError Code = 7002
)

type codeInfo struct {
	title  string
	format string
}

var codeDescription = map[Code]codeInfo{
	UnknownCode: {"Unknown error", "%v"},

	LexInfo:                      {"Lexical information", "%v"},
	LexUnknownChar:               {"Unknown character", "unexpected character %q"},
	LexUnterminatedString:        {"Unterminated string", "unterminated string literal"},
	LexUnterminatedBlockComment:  {"Unterminated block comment", "unterminated block comment"},
	LexUnterminatedMarkupComment: {"Unterminated markup comment", "markup comment is missing its closing %q"},
	LexUnterminatedRazorComment:  {"Unterminated template comment", "template comment is missing its closing %q"},
	LexInvalidEscape:             {"Invalid escape", "invalid escape sequence %q"},
	LexNewlineInString:           {"Newline in string", "newline in string literal"},

	SynInfo:                 {"Syntax information", "%v"},
	SynUnexpectedToken:      {"Unexpected token", "unexpected %s %q"},
	SynMissingCloseBrace:    {"Missing close brace", "expected '}' to close the block opened at %s"},
	SynMissingCloseParen:    {"Missing close parenthesis", "expected ')' to close the expression opened at %s"},
	SynMissingCloseBracket:  {"Missing close bracket", "expected ']' to close the index opened at %s"},
	SynMissingEndTag:        {"Missing end tag", "element <%s> is missing its end tag"},
	SynUnexpectedEndTag:     {"Unexpected end tag", "end tag </%s> does not match any open element"},
	SynMissingTagClose:      {"Missing tag close", "tag <%s> is missing its closing '>'"},
	SynMissingTagName:       {"Missing tag name", "expected a tag name"},
	SynMissingAttrQuote:     {"Missing attribute quote", "attribute %q is missing its closing quote"},
	SynMissingAttrValue:     {"Missing attribute value", "attribute %q has '=' but no value"},
	SynInvalidTransition:    {"Invalid transition", "'@' must be followed by an identifier, '(', '{', ':' or '*'; found %q"},
	SynTextLineOutsideCode:  {"Text line outside code", "'@:' is only valid inside a code block"},
	SynMissingStatementBody: {"Missing statement body", "%s statement is missing its '{' body"},
	SynVoidElementEndTag:    {"End tag on void element", "void element <%s> cannot have an end tag"},
	SynTooManyErrors:        {"Too many errors", "too many syntax errors, further errors are suppressed"},

	DirInfo:               {"Directive information", "%v"},
	DirMissingArgument:    {"Missing directive argument", "directive '%s' expects a %s argument"},
	DirUnexpectedArgument: {"Unexpected directive argument", "directive '%s' takes no further arguments; found %q"},
	DirInvalidArgument:    {"Invalid directive argument", "directive '%s' expects a %s argument, found %q"},
	DirDuplicate:          {"Duplicate directive", "directive '%s' may appear only once per document"},
	DirAfterContent:       {"Directive after content", "directive '%s' must appear before any markup content"},
	DirMissingBlock:       {"Missing directive block", "directive '%s' expects a '{' block"},
	DirNotAllowedHere:     {"Directive not allowed", "directive '%s' is not allowed inside %s"},

	BndInfo:                     {"Binding information", "%v"},
	BndAmbiguousAttribute:       {"Ambiguous attribute binding", "attribute %q on <%s> is bound by %s (%s) and %s (%s); using %s"},
	BndUnresolvedComponent:      {"Unresolved component", "element <%s> looks like a component but no descriptor matches it"},
	BndMissingRequiredAttribute: {"Missing required attribute", "<%s> requires attribute %q (from %s)"},
	BndMissingAttributeValue:    {"Missing attribute value", "bound attribute %q of type %s requires a value"},
	BndTagStructure:             {"Invalid tag structure", "<%s> must not have an end tag (required by %s)"},

	LowInfo:              {"Lowering information", "%v"},
	LowPassFailed:        {"Lowering pass failed", "pass %s failed: %v"},
	LowInvalidProvenance: {"Invalid provenance", "%s node has provenance %s outside of the document"},
	LowUnsupportedNode:   {"Unsupported node", "cannot lower %s node"},

	GenInfo:         {"Generation information", "%v"},
	GenUnmappedSpan: {"Unmapped span", "%s node with provenance %s produced no output"},
	GenInternal:     {"Generator failure", "code generation failed: %v"},

	IOLoadFileError:  {"I/O load error", "failed to load file: %v"},
	IOWriteFileError: {"I/O write error", "failed to write file: %v"},
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DIR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode].title
	}
	return desc.title
}

// Format renders the message template of c with args.
func (c Code) Format(args ...any) string {
	desc, ok := codeDescription[c]
	if !ok {
		desc = codeDescription[UnknownCode]
	}
	return fmt.Sprintf(desc.format, args...)
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
