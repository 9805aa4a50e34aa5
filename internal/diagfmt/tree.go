package diagfmt

import (
	"encoding/json"
	"io"

	"weave/internal/ir"
	"weave/internal/source"
	"weave/internal/syntax"
)

// SyntaxJSON is one node or token of a positioned syntax tree.
type SyntaxJSON struct {
	Kind     string        `json:"kind"`
	Start    uint32        `json:"start"`
	End      uint32        `json:"end"`
	Line     uint32        `json:"line,omitempty"`
	Col      uint32        `json:"col,omitempty"`
	Text     string        `json:"text,omitempty"`
	Missing  bool          `json:"missing,omitempty"`
	Children []*SyntaxJSON `json:"children,omitempty"`
}

// BuildSyntaxJSON converts the tree under n. File positions are added when f is not nil.
func BuildSyntaxJSON(n *syntax.Node, f *source.File) *SyntaxJSON {
	if n == nil {
		return nil
	}
	sp := n.Span()
	out := &SyntaxJSON{Kind: n.Kind().String(), Start: sp.Start, End: sp.End}
	setPos(out, f, sp.Start)
	for _, c := range n.Children() {
		switch c := c.(type) {
		case *syntax.Node:
			out.Children = append(out.Children, BuildSyntaxJSON(c, f))
		case *syntax.Token:
			tsp := c.Span()
			tj := &SyntaxJSON{
				Kind:    c.Kind().String(),
				Start:   tsp.Start,
				End:     tsp.End,
				Text:    c.Text(),
				Missing: c.IsMissing(),
			}
			setPos(tj, f, tsp.Start)
			out.Children = append(out.Children, tj)
		}
	}
	return out
}

func setPos(out *SyntaxJSON, f *source.File, off uint32) {
	if f == nil {
		return
	}
	pos := f.Position(off)
	out.Line, out.Col = pos.Line, pos.Col
}

// FormatSyntaxJSON writes the tree under n as indented JSON.
func FormatSyntaxJSON(w io.Writer, n *syntax.Node, f *source.File) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildSyntaxJSON(n, f))
}

// IRJSON is one IR node.
type IRJSON struct {
	Kind       string     `json:"kind"`
	Name       string     `json:"name,omitempty"`
	Type       string     `json:"type,omitempty"`
	Content    string     `json:"content,omitempty"`
	Source     *[2]uint32 `json:"source,omitempty"`
	Flags      string     `json:"flags,omitempty"`
	Directive  string     `json:"directive,omitempty"`
	Descriptor string     `json:"descriptor,omitempty"`
	Attribute  string     `json:"attribute,omitempty"`
	Children   []*IRJSON  `json:"children,omitempty"`
}

// BuildIRJSON converts the IR tree under n.
func BuildIRJSON(n *ir.Node) *IRJSON {
	if n == nil {
		return nil
	}
	out := &IRJSON{
		Kind:    n.Kind.String(),
		Name:    n.Name,
		Type:    n.Type,
		Content: n.Content,
		Flags:   n.Flags.String(),
	}
	if n.Source != nil {
		out.Source = &[2]uint32{n.Source.Start, n.Source.End}
	}
	if n.Directive != nil && n.Directive.Descriptor != nil {
		out.Directive = n.Directive.Descriptor.Name
	}
	if n.Descriptor != nil {
		out.Descriptor = n.Descriptor.ID
	}
	if n.Attribute != nil {
		out.Attribute = n.Attribute.Name
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, BuildIRJSON(c))
	}
	return out
}

// FormatIRJSON writes the IR tree under n as indented JSON.
func FormatIRJSON(w io.Writer, n *ir.Node) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildIRJSON(n))
}
