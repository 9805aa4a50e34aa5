package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid is a single byte the current mode cannot classify.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Transition is the '@' that switches from markup to code.
	Transition
	// EscapedTransition is "@@", a literal '@'.
	EscapedTransition
	RazorCommentStart // @*
	RazorCommentText
	RazorCommentEnd // *@

	// Text is a run of markup characters without whitespace.
	Text
	Whitespace
	NewLine
	TagOpen      // <
	EndTagOpen   // </
	CommentOpen  // <!--
	CommentText  // body of a markup comment
	CommentClose // -->
	Declaration  // <!DOCTYPE ...>, <?xml ...?>

	// Name is a tag or attribute name.
	Name
	Equals
	DoubleQuote
	SingleQuote
	TagClose  // >
	SelfClose // />
	AttrText  // literal attribute value text

	Ident
	Keyword
	Number
	String // "...", `...` and '...'
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Dot
	Comma
	Semicolon
	Colon
	Operator
)

var kindNames = [...]string{
	Invalid:           "Invalid",
	EOF:               "EOF",
	Transition:        "Transition",
	EscapedTransition: "EscapedTransition",
	RazorCommentStart: "RazorCommentStart",
	RazorCommentText:  "RazorCommentText",
	RazorCommentEnd:   "RazorCommentEnd",
	Text:              "Text",
	Whitespace:        "Whitespace",
	NewLine:           "NewLine",
	TagOpen:           "TagOpen",
	EndTagOpen:        "EndTagOpen",
	CommentOpen:       "CommentOpen",
	CommentText:       "CommentText",
	CommentClose:      "CommentClose",
	Declaration:       "Declaration",
	Name:              "Name",
	Equals:            "Equals",
	DoubleQuote:       "DoubleQuote",
	SingleQuote:       "SingleQuote",
	TagClose:          "TagClose",
	SelfClose:         "SelfClose",
	AttrText:          "AttrText",
	Ident:             "Ident",
	Keyword:           "Keyword",
	Number:            "Number",
	String:            "String",
	LParen:            "LParen",
	RParen:            "RParen",
	LBrace:            "LBrace",
	RBrace:            "RBrace",
	LBracket:          "LBracket",
	RBracket:          "RBracket",
	Dot:               "Dot",
	Comma:             "Comma",
	Semicolon:         "Semicolon",
	Colon:             "Colon",
	Operator:          "Operator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsEOF reports whether k is EOF.
func (k Kind) IsEOF() bool { return k == EOF }

// IsMarkup reports whether k is produced by the markup modes.
func (k Kind) IsMarkup() bool {
	return k >= Text && k <= AttrText
}

// IsCode reports whether k is produced by the embedded-code modes.
func (k Kind) IsCode() bool {
	return k >= Ident && k <= Operator
}

// Closes reports whether k closes a delimited construct.
// Closing tokens never carry trailing trivia: what follows them belongs to the outer mode.
func (k Kind) Closes() bool {
	switch k {
	case RParen, RBrace, RBracket, TagClose, SelfClose:
		return true
	}
	return false
}

// Placeholder returns the canonical text of a synthesized token of kind k.
// It is used only for messages; missing tokens have empty text in the tree.
func (k Kind) Placeholder() string {
	switch k {
	case RazorCommentEnd:
		return "*@"
	case CommentClose:
		return "-->"
	case TagClose:
		return ">"
	case DoubleQuote:
		return `"`
	case SingleQuote:
		return "'"
	case RParen:
		return ")"
	case RBrace:
		return "}"
	case LBrace:
		return "{"
	case RBracket:
		return "]"
	case Name:
		return "name"
	case Ident:
		return "identifier"
	case String:
		return "string"
	}
	return k.String()
}
