package token

// keywords of the embedded language (Go).
var keywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {}, "default": {},
	"defer": {}, "else": {}, "fallthrough": {}, "for": {}, "func": {}, "go": {},
	"goto": {}, "if": {}, "import": {}, "interface": {}, "map": {}, "package": {},
	"range": {}, "return": {}, "select": {}, "struct": {}, "switch": {}, "type": {},
	"var": {},
}

// LookupKeyword reports whether ident is a reserved word of the embedded language.
func LookupKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// StatementKeyword reports whether a transition followed by ident starts a
// block statement whose body may contain markup.
func StatementKeyword(ident string) bool {
	switch ident {
	case "if", "for", "switch":
		return true
	}
	return false
}
