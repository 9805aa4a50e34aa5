package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"weave/internal/token"
)

// Dump writes an indented outline of the tree: one line per node and token,
// with byte ranges. Missing tokens are marked with '!'.
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, 0)
}

// DumpString is Dump into a string.
func DumpString(n *Node) string {
	var b strings.Builder
	_ = Dump(&b, n)
	return b.String()
}

func dump(w io.Writer, n *Node, depth int) error {
	sp := n.Span()
	if _, err := fmt.Fprintf(w, "%s%s@%d..%d\n", strings.Repeat("  ", depth), n.Kind(), sp.Start, sp.End); err != nil {
		return err
	}
	for _, c := range n.Children() {
		switch c := c.(type) {
		case *Node:
			if err := dump(w, c, depth+1); err != nil {
				return err
			}
		case *Token:
			if _, err := io.WriteString(w, formatToken(c, depth+1)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatToken(t *Token, depth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	sp := t.Span()
	if t.IsMissing() {
		b.WriteByte('!')
	}
	fmt.Fprintf(&b, "%s@%d..%d %s", t.Kind(), sp.Start, sp.End, strconv.Quote(t.Text()))
	if lead := t.green.leading; len(lead) > 0 {
		fmt.Fprintf(&b, " leading=%s", strconv.Quote(triviaText(lead)))
	}
	if trail := t.green.trailing; len(trail) > 0 {
		fmt.Fprintf(&b, " trailing=%s", strconv.Quote(triviaText(trail)))
	}
	if t.green.flags&token.FlagUnterminated != 0 {
		b.WriteString(" unterminated")
	}
	b.WriteByte('\n')
	return b.String()
}

func triviaText(ts []GreenTrivia) string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.Text)
	}
	return b.String()
}
