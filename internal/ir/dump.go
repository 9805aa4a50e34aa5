package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes an indented listing of n, one node per line.
func Dump(w io.Writer, n *Node) error {
	p := printer{w: w}
	p.node(n, 0)
	return p.err
}

// DumpString renders Dump into a string.
func DumpString(n *Node) string {
	var b strings.Builder
	_ = Dump(&b, n)
	return b.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) node(n *Node, depth int) {
	if n == nil {
		return
	}
	p.printf("%s%s", strings.Repeat("  ", depth), n.Kind)
	if n.Name != "" {
		p.printf(" name=%s", n.Name)
	}
	if n.Type != "" {
		p.printf(" type=%s", n.Type)
	}
	if n.Directive != nil {
		p.printf(" directive=%s", n.Directive.Descriptor.Name)
	}
	if n.Descriptor != nil {
		p.printf(" descriptor=%s", n.Descriptor.ID)
	}
	if n.Attribute != nil {
		p.printf(" property=%s", n.Attribute.Property)
	}
	if n.Content != "" {
		p.printf(" %s", strconv.Quote(n.Content))
	}
	if n.Source != nil {
		p.printf(" @%d-%d", n.Source.Start, n.Source.End)
	}
	if f := n.Flags.String(); f != "" {
		p.printf(" [%s]", f)
	}
	p.printf("\n")
	for _, c := range n.Children {
		p.node(c, depth+1)
	}
}

// String lists the set flags, comma separated.
func (f Flags) String() string {
	var out []string
	if f.Has(FlagReordered) {
		out = append(out, "reordered")
	}
	if f.Has(FlagEmbedded) {
		out = append(out, "embedded")
	}
	if f.Has(FlagDesignTime) {
		out = append(out, "design-time")
	}
	if f.Has(FlagSynthesized) {
		out = append(out, "synthesized")
	}
	return strings.Join(out, ",")
}
