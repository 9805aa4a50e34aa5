// Package testkit holds checks shared by tests and fuzz targets.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"weave/internal/diag"
	"weave/internal/source"
	"weave/internal/syntax"
)

// CheckTreeInvariants runs the structural invariants on a parsed document:
// 1) the root spans the whole file and its text is the file content
// 2) every child lies inside its parent, children are contiguous and their
// widths add up to the parent width
// 3) every node and token belongs to the file
func CheckTreeInvariants(root *syntax.Node, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil root or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	// 1) root sanity
	sp := root.Span()
	if sp.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", sp.File, sf.ID)
	}
	if sp.Start != 0 || sp.End != lenContent {
		return fmt.Errorf("root span %v does not cover content of %d bytes", sp, lenContent)
	}
	if text := root.Text(); text != string(sf.Content) {
		return fmt.Errorf("root text differs from content (%d vs %d bytes)", len(text), lenContent)
	}

	// 2) + 3)
	for n := range root.Preorder() {
		if err := checkChildren(n, sf.ID); err != nil {
			return err
		}
	}
	return nil
}

func checkChildren(n *syntax.Node, file source.FileID) error {
	parent := n.Span()
	next := parent.Start
	for i, c := range n.Children() {
		sp := c.FullSpan()
		if sp.File != file {
			return fmt.Errorf("child %d of %s: file mismatch: got=%d want=%d", i, n.Kind(), sp.File, file)
		}
		if sp.Start != next {
			return fmt.Errorf("child %d of %s starts at %d, want %d", i, n.Kind(), sp.Start, next)
		}
		if sp.End < sp.Start || sp.End > parent.End {
			return fmt.Errorf("child %d of %s: span %v is outside parent span %v", i, n.Kind(), sp, parent)
		}
		if c.Parent() != n {
			return fmt.Errorf("child %d of %s has a different parent", i, n.Kind())
		}
		next = sp.End
	}
	if len(n.Children()) > 0 && next != parent.End {
		return fmt.Errorf("children of %s end at %d, parent ends at %d", n.Kind(), next, parent.End)
	}
	return nil
}

// CheckDiagnosticSpans verifies that every primary, note and fix span of
// items lies inside sf.
func CheckDiagnosticSpans(items []diag.Diagnostic, sf *source.File) error {
	size := sf.Len()
	check := func(what string, d *diag.Diagnostic, sp source.Span) error {
		if sp.File != sf.ID || sp.Start > sp.End || sp.End > size {
			return fmt.Errorf("%s %s: span %v outside file %d of %d bytes", d.Code.ID(), what, sp, sf.ID, size)
		}
		return nil
	}
	for i := range items {
		d := &items[i]
		if err := check("primary", d, d.Primary); err != nil {
			return err
		}
		for _, n := range d.Notes {
			if err := check("note", d, n.Span); err != nil {
				return err
			}
		}
		for _, f := range d.Fixes {
			for _, e := range f.Edits {
				if err := check("fix", d, e.Span); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
