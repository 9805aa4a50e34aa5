package lexer

// Mode selects the token set the lexer produces. The parser drives mode
// changes; the lexer itself never switches.
type Mode uint8

const (
	// ModeMarkup lexes document content. Whitespace is significant text.
	ModeMarkup Mode = iota
	// ModeTag lexes inside '<' ... '>'. Whitespace is trivia.
	ModeTag
	// ModeAttrDouble lexes a "..." attribute value body.
	ModeAttrDouble
	// ModeAttrSingle lexes a '...' attribute value body.
	ModeAttrSingle
	// ModeAttrUnquoted lexes an unquoted attribute value.
	ModeAttrUnquoted
	// ModeCode lexes embedded Go. Whitespace and comments are trivia.
	ModeCode
	// ModeInline lexes implicit expressions; nothing is trivia.
	ModeInline
	// ModeDirective lexes directive arguments; spaces are trivia, newlines are tokens.
	ModeDirective
)

func (m Mode) String() string {
	switch m {
	case ModeMarkup:
		return "markup"
	case ModeTag:
		return "tag"
	case ModeAttrDouble:
		return "attr-double"
	case ModeAttrSingle:
		return "attr-single"
	case ModeAttrUnquoted:
		return "attr-unquoted"
	case ModeCode:
		return "code"
	case ModeInline:
		return "inline"
	case ModeDirective:
		return "directive"
	}
	return "mode(?)"
}

func (m Mode) leadingTrivia() bool {
	return m == ModeTag || m == ModeCode || m == ModeDirective
}

func (m Mode) newlineTrivia() bool {
	return m == ModeTag || m == ModeCode
}
