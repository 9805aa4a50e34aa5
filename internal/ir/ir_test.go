package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/ir"
	"weave/internal/source"
)

func sampleTree() *ir.Node {
	body := ir.New(ir.KindMethod,
		ir.Literal("<p>", source.Span{Start: 0, End: 3}),
		ir.New(ir.KindExpression, ir.Token("name", source.Span{Start: 4, End: 8})),
		ir.Literal("</p>", source.Span{Start: 8, End: 12}),
	)
	body.Name = "Execute"
	cls := ir.New(ir.KindClass, body)
	cls.Name = "Page"
	return ir.New(ir.KindDocument, ir.New(ir.KindNamespace, cls))
}

func TestRewriteSharesUnchangedNodes(t *testing.T) {
	in := sampleTree()
	out := ir.Rewrite(in, ir.Keep)
	assert.Same(t, in, out)
}

func TestRewriteCopiesChangedPath(t *testing.T) {
	in := sampleTree()
	before := ir.DumpString(in)

	out := ir.Rewrite(in, func(n *ir.Node) []*ir.Node {
		if n.Kind == ir.KindLiteral && n.Content == "</p>" {
			return nil
		}
		return ir.Keep(n)
	})
	require.NotSame(t, in, out)
	assert.Equal(t, before, ir.DumpString(in), "input must not change")

	method := ir.Find(out, ir.KindMethod)
	require.NotNil(t, method)
	assert.Len(t, method.Children, 2)
	assert.Same(t, ir.Find(in, ir.KindExpression), ir.Find(out, ir.KindExpression))
}

func TestRewriteSplices(t *testing.T) {
	out := ir.Rewrite(sampleTree(), func(n *ir.Node) []*ir.Node {
		if n.Kind == ir.KindExpression {
			return []*ir.Node{ir.New(ir.KindContextBegin), n, ir.New(ir.KindContextEnd)}
		}
		return ir.Keep(n)
	})
	var kinds []ir.Kind
	for _, c := range ir.Find(out, ir.KindMethod).Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []ir.Kind{ir.KindLiteral, ir.KindContextBegin, ir.KindExpression, ir.KindContextEnd, ir.KindLiteral}, kinds)
}

func TestRewriteKeepsRoot(t *testing.T) {
	in := sampleTree()
	out := ir.Rewrite(in, func(n *ir.Node) []*ir.Node {
		if n.Kind == ir.KindDocument {
			return nil
		}
		return ir.Keep(n)
	})
	assert.Same(t, in, out)
}

func TestDump(t *testing.T) {
	want := "Document\n" +
		"  Namespace\n" +
		"    Class name=Page\n" +
		"      Method name=Execute\n" +
		"        Literal \"<p>\" @0-3\n" +
		"        Expression\n" +
		"          Token \"name\" @4-8\n" +
		"        Literal \"</p>\" @8-12\n"
	assert.Equal(t, want, ir.DumpString(sampleTree()))
}

func TestCodeAndFlags(t *testing.T) {
	st := ir.New(ir.KindStatement, ir.Token("if x", source.Span{End: 4}), ir.SynthToken(" {"))
	assert.Equal(t, "if x {", st.Code())
	assert.True(t, st.Children[1].Flags.Has(ir.FlagSynthesized))
	assert.False(t, st.Children[1].HasSource())
	assert.True(t, ir.KindLiteral.IsWrite())
	assert.True(t, ir.KindSection.IsMember())
	assert.Equal(t, "Kind(250)", ir.Kind(250).String())
}
