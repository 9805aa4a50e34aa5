package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"weave/internal/pool"
)

// Casers are stateful, so each caller borrows its own.
var folders = pool.New(
	func() *cases.Caser {
		c := cases.Fold()
		return &c
	},
	func(c *cases.Caser) { c.Reset() },
)

// Fold returns the case-folded form of s used for case-insensitive names.
func Fold(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(s)
	}
	c, release := folders.Acquire()
	defer release()
	return c.String(s)
}

// NamesEqual compares tag or attribute names.
func NamesEqual(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return a == b || Fold(a) == Fold(b)
}

// HasNamePrefix reports whether name starts with prefix.
func HasNamePrefix(name, prefix string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.HasPrefix(name, prefix)
	}
	return strings.HasPrefix(Fold(name), Fold(prefix))
}
