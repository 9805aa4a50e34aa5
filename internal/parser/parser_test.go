package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/parser"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

// parseSrc разбирает строку со встроенными директивами и собирает диагностики
func parseSrc(t *testing.T, src string, tweak ...func(*parser.Options)) (parser.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.weave", []byte(src))
	bag := diag.NewBag(0)
	opts := parser.Options{
		Registry: directive.Builtins(),
		Reporter: diag.BagReporter{Bag: bag},
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	return parser.ParseFile(fs.Get(id), opts), bag
}

// firstOf возвращает первый узел заданного вида в прямом обходе
func firstOf(root *syntax.Node, k syntax.Kind) *syntax.Node {
	for n := range root.Preorder() {
		if n.Kind() == k {
			return n
		}
	}
	return nil
}

func allOf(root *syntax.Node, k syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	for n := range root.Preorder() {
		if n.Kind() == k {
			out = append(out, n)
		}
	}
	return out
}

var fidelityInputs = []string{
	"",
	"plain text",
	"<p>Hello</p>",
	"<div><p>a</div>",
	"</span>",
	"<br></br>",
	`<input value="x">`,
	`<a href='@url'>x</a>`,
	"<a href=@url>x</a>",
	`<p class="unterminated>`,
	"<p",
	"<",
	"@",
	"@ x",
	"@@",
	"me@example.com",
	"@name.First.",
	"@items[0].Name(1, 2)",
	"@(a + b)",
	"@(a + (b",
	"@{ x := 1 }",
	"@{ doSomething(",
	"@{ <p>@x</p> }",
	"@{\n  if x {\n    <li>y</li>\n  }\n}",
	"@{ @: hello @name\n }",
	"@if x { <b>y</b> } else { z }",
	"@for i := range xs {\n<li>@i</li>\n}",
	"@switch v { case 1: <p>one</p> }",
	"@if x",
	"@model Foo\n@model Bar\n",
	"@import \"fmt\"\n",
	"@inject *log.Logger logger\n",
	"@section Scripts { <script>go</script> }",
	"@section Scripts {",
	"@functions { func f() {} }",
	"<!-- c",
	"@* c",
	"<!DOCTYPE html><html></html>",
	"@page \"/x\" extra\n",
	"<p @* c *@ class=a>x</p>",
	"text } { more",
	"<ul>\r\n\t<li a=1 b c='2'>x</li>\r\n</ul>",
	"@{ var s = \"unterminated }",
	"@{ /* c",
	"@(a /* c",
	"<p>@:not a line</p>",
	"\uFEFF<p>x</p>\r\n",
	"\uFEFF@model Foo\r\n@x",
}

func TestParseFidelity(t *testing.T) {
	for _, src := range fidelityInputs {
		t.Run(src, func(t *testing.T) {
			res, _ := parseSrc(t, src)
			require.NotNil(t, res.Root)
			assert.Equal(t, src, res.Root.Text())
			assert.Equal(t, uint32(len(src)), res.Root.Width())
			assert.Equal(t, syntax.KindDocument, res.Root.Kind())
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	for _, src := range fidelityInputs {
		a, bagA := parseSrc(t, src)
		b, bagB := parseSrc(t, src)
		assert.True(t, syntax.Equal(a.Green, b.Green), "trees differ for %q", src)
		assert.Equal(t, bagA.Codes(), bagB.Codes(), "diagnostics differ for %q", src)
	}
}

func TestParseSpansAreContiguous(t *testing.T) {
	res, _ := parseSrc(t, "<div a=\"@x\">@if y { <b>z</b> }</div>")
	for n := range res.Root.Preorder() {
		next := n.Offset()
		for _, c := range n.Children() {
			sp := c.FullSpan()
			assert.Equal(t, next, sp.Start, "gap inside %s", n.Kind())
			next = sp.End
		}
		assert.Equal(t, n.Span().End, next, "children of %s do not cover it", n.Kind())
	}
}

func TestParseSimpleElement(t *testing.T) {
	res, bag := parseSrc(t, "<p>Hello</p>")
	assert.Zero(t, bag.Len())

	el, ok := syntax.AsElement(firstOf(res.Root, syntax.KindMarkupElement))
	require.True(t, ok)
	assert.Equal(t, "p", el.Name())
	assert.True(t, el.HasEndTag())
	require.Len(t, el.Content(), 1)
	assert.Equal(t, syntax.KindTextLiteral, el.Content()[0].Kind())
	assert.Equal(t, "Hello", el.Content()[0].Text())
}

func TestParseRecovery(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []diag.Code
	}{
		{"unclosed block", "@{ doSomething(", []diag.Code{diag.SynMissingCloseBrace}},
		{"unclosed explicit", "@(a + (b", []diag.Code{diag.SynMissingCloseParen}},
		{"unclosed index", "@a[1", []diag.Code{diag.SynMissingCloseBracket}},
		{"missing end tag", "<div><p>a</div>", []diag.Code{diag.SynMissingEndTag}},
		{"orphan end tag", "</span>", []diag.Code{diag.SynUnexpectedEndTag}},
		{"void end tag", "<br></br>", []diag.Code{diag.SynVoidElementEndTag}},
		{"unterminated tag", "<p", []diag.Code{diag.SynMissingTagClose, diag.SynMissingEndTag}},
		{"unterminated quote", `<p class="x>`, []diag.Code{diag.SynMissingAttrQuote, diag.SynMissingTagClose, diag.SynMissingEndTag}},
		{"empty unquoted value", "<p a= >x</p>", []diag.Code{diag.SynMissingAttrValue}},
		{"bare transition", "@ x", []diag.Code{diag.SynInvalidTransition}},
		{"keyword transition", "@return", []diag.Code{diag.SynInvalidTransition}},
		{"text line in markup", "@:x", []diag.Code{diag.SynTextLineOutsideCode}},
		{"statement without body", "@if x", []diag.Code{diag.SynMissingStatementBody}},
		{"stray tag token", "<p =x>a</p>", []diag.Code{diag.SynUnexpectedToken}},
		{"unterminated section", "@section S {", []diag.Code{diag.SynMissingCloseBrace}},
		{"comment at end of block", "@{ /* c", []diag.Code{diag.LexUnterminatedBlockComment, diag.SynMissingCloseBrace}},
		{"comment after statement", "@{ x := 1 /* c", []diag.Code{diag.LexUnterminatedBlockComment, diag.SynMissingCloseBrace}},
		{"comment at end of explicit", "@(a /* c", []diag.Code{diag.LexUnterminatedBlockComment, diag.SynMissingCloseParen}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, bag := parseSrc(t, tt.src)
			assert.Equal(t, tt.src, res.Root.Text())
			assert.Equal(t, tt.codes, bag.Codes())
		})
	}
}

func TestParseMissingCloseBraceAtEOF(t *testing.T) {
	src := "@{ doSomething("
	res, bag := parseSrc(t, src)
	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, uint32(len(src)), d.Primary.Start)

	block := firstOf(res.Root, syntax.KindCodeBlock)
	require.NotNil(t, block)
	last := block.LastToken()
	assert.True(t, last.IsMissing())
}

func TestParseUnterminatedCommentStaysInCode(t *testing.T) {
	for _, src := range []string{"@{ /* c", "@{ x := 1 /* c", "@(a /* c"} {
		t.Run(src, func(t *testing.T) {
			res, bag := parseSrc(t, src)
			assert.Contains(t, bag.Codes(), diag.LexUnterminatedBlockComment)
			assert.Empty(t, allOf(res.Root, syntax.KindTextLiteral))
			assert.Equal(t, src, res.Root.Text())
		})
	}
}

func TestParseMaxErrors(t *testing.T) {
	_, bag := parseSrc(t, "</a></b></c>", func(o *parser.Options) { o.MaxErrors = 1 })
	assert.Equal(t, []diag.Code{diag.SynUnexpectedEndTag, diag.SynTooManyErrors}, bag.Codes())
}

func TestParseAttributes(t *testing.T) {
	res, bag := parseSrc(t, `<a href="/u/@id" title='t' hidden data-x=1>x</a>`)
	assert.Zero(t, bag.Len())
	el, ok := syntax.AsElement(firstOf(res.Root, syntax.KindMarkupElement))
	require.True(t, ok)

	attrs := el.Attributes()
	require.Len(t, attrs, 4)
	assert.Equal(t, "href", attrs[0].Name())
	assert.False(t, attrs[0].IsLiteral())
	assert.Equal(t, byte('"'), attrs[0].Quote())
	assert.Equal(t, byte('\''), attrs[1].Quote())
	assert.Equal(t, "t", attrs[1].LiteralValue())
	assert.False(t, attrs[2].HasValue())
	assert.Equal(t, "1", attrs[3].LiteralValue())

	expr := firstOf(attrs[0].Node, syntax.KindImplicitExpression)
	require.NotNil(t, expr)
	assert.Equal(t, "@id", expr.Text())
}

func TestParseImplicitExpression(t *testing.T) {
	res, bag := parseSrc(t, "Hi @user.Name(1)[0].!")
	assert.Zero(t, bag.Len())
	expr := firstOf(res.Root, syntax.KindImplicitExpression)
	require.NotNil(t, expr)
	assert.Equal(t, "@user.Name(1)[0]", expr.Text())
	assert.Equal(t, "user.Name(1)[0]", expr.ChildNode(syntax.KindCodeSpan).Text())
}

func TestParseEmailIsText(t *testing.T) {
	res, bag := parseSrc(t, "mail me@example.com")
	assert.Zero(t, bag.Len())
	assert.Nil(t, firstOf(res.Root, syntax.KindImplicitExpression))
}

func TestParseExplicitExpression(t *testing.T) {
	res, _ := parseSrc(t, "@(a + b)")
	expr := firstOf(res.Root, syntax.KindExplicitExpression)
	require.NotNil(t, expr)
	assert.Equal(t, "a + b", expr.ChildNode(syntax.KindCodeSpan).Text())
}

func TestParseMarkupInCode(t *testing.T) {
	res, bag := parseSrc(t, "@{\n  if x {\n    <li>y</li>\n  }\n}")
	assert.Zero(t, bag.Len())

	li := firstOf(res.Root, syntax.KindMarkupElement)
	require.NotNil(t, li)
	assert.Equal(t, "<li>y</li>", li.Text())

	var inBlock bool
	for a := range li.Ancestors() {
		if a.Kind() == syntax.KindCodeBlock {
			inBlock = true
		}
	}
	assert.True(t, inBlock)
}

func TestParseTextLine(t *testing.T) {
	res, bag := parseSrc(t, "@{ @: hello @name\n }")
	assert.Zero(t, bag.Len())
	line := firstOf(res.Root, syntax.KindTextLine)
	require.NotNil(t, line)
	assert.Equal(t, "@: hello @name\n", line.Text())
	assert.NotNil(t, firstOf(line, syntax.KindImplicitExpression))
}

func TestParseStatementElseChain(t *testing.T) {
	res, bag := parseSrc(t, "@if x { <b>y</b> } else if z { w } else { <i>v</i> }")
	assert.Zero(t, bag.Len())
	st := firstOf(res.Root, syntax.KindStatement)
	require.NotNil(t, st)

	// заголовок идёт сразу после '@' или после '}' предыдущей ветки
	var headers []string
	var prev syntax.Element
	for _, c := range st.Children() {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == syntax.KindCodeSpan {
			if tok, ok := prev.(*syntax.Token); ok && (tok.Kind() == token.Transition || tok.Kind() == token.RBrace) {
				headers = append(headers, n.Text())
			}
		}
		prev = c
	}
	assert.Equal(t, []string{"if x ", " else if z ", " else "}, headers)
	assert.Len(t, allOf(st, syntax.KindMarkupElement), 2)
}

func TestParseDirectives(t *testing.T) {
	res, bag := parseSrc(t, "@import \"fmt\"\n@inject map[string]int cache\n@page\n<p>x</p>")
	assert.Zero(t, bag.Len())
	require.Len(t, res.Directives, 3)

	imp := res.Directives[0]
	assert.Equal(t, directive.Import, imp.Descriptor.Name)
	arg, ok := imp.Arg(0)
	require.True(t, ok)
	assert.Equal(t, `"fmt"`, arg.Text)

	inj := res.Directives[1]
	typ, _ := inj.Arg(0)
	field, _ := inj.Arg(1)
	assert.Equal(t, "map[string]int", typ.Text)
	assert.Equal(t, "cache", field.Text)

	page := res.Directives[2]
	_, ok = page.Arg(0)
	assert.False(t, ok)

	got, ok := res.DirectiveAt(inj.Span.Start)
	require.True(t, ok)
	assert.Equal(t, directive.Inject, got.Descriptor.Name)
	assert.Len(t, allOf(res.Root, syntax.KindDirective), 3)
}

func TestParseDirectivePolicy(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		codes    []diag.Code
		rejected []bool
	}{
		{"duplicate", "@model Foo\n@model Bar\n", []diag.Code{diag.DirDuplicate}, []bool{false, true}},
		{"after content", "<p>x</p>\n@model Foo\n", []diag.Code{diag.DirAfterContent}, []bool{true}},
		{"after implicit expression", "@Model\n@model Foo\n", []diag.Code{diag.DirAfterContent}, []bool{true}},
		{"after explicit expression", "@(x)\n@model Foo\n", []diag.Code{diag.DirAfterContent}, []bool{true}},
		{"after code block", "@{ x := 1 }\n@model Foo\n", nil, []bool{false}},
		{"after byte order mark", "\uFEFF@model Foo\n", nil, []bool{false}},
		{"repeatable", "@import \"a\"\n@import \"b\"\n", nil, []bool{false, false}},
		{"nested section", "@section A { @section B { } }", []diag.Code{diag.DirNotAllowedHere}, []bool{false, true}},
		{"missing argument", "@inject Foo\n", []diag.Code{diag.DirMissingArgument}, []bool{false}},
		{"invalid argument", "@package \"main\"\n", []diag.Code{diag.DirInvalidArgument}, []bool{false}},
		{"extra argument", "@page \"/x\" extra\n", []diag.Code{diag.DirUnexpectedArgument}, []bool{false}},
		{"missing block", "@functions\nx", []diag.Code{diag.DirMissingBlock}, []bool{false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, bag := parseSrc(t, tt.src)
			assert.Equal(t, tt.src, res.Root.Text())
			assert.Equal(t, tt.codes, bag.Codes())
			var rejected []bool
			for _, u := range res.Directives {
				rejected = append(rejected, u.Rejected)
			}
			assert.Equal(t, tt.rejected, rejected)
		})
	}
}

func TestParseSectionBody(t *testing.T) {
	res, bag := parseSrc(t, "@section Scripts { <script>go()</script> }\n<p>x</p>")
	assert.Zero(t, bag.Len())
	body := firstOf(res.Root, syntax.KindDirectiveBody)
	require.NotNil(t, body)
	assert.Equal(t, "{ <script>go()</script> }", body.Text())
	assert.Len(t, allOf(res.Root, syntax.KindMarkupElement), 2)
}

func TestParseWithoutRegistry(t *testing.T) {
	res, bag := parseSrc(t, "@model Foo\n", func(o *parser.Options) { o.Registry = nil })
	assert.Zero(t, bag.Len())
	assert.Empty(t, res.Directives)
	assert.NotNil(t, firstOf(res.Root, syntax.KindImplicitExpression))
}

func TestParseSharedCache(t *testing.T) {
	cache := syntax.NewCache()
	withCache := func(o *parser.Options) { o.Cache = cache }
	a, _ := parseSrc(t, `<a href="x">1</a>`, withCache)
	b, _ := parseSrc(t, `<b><a href="x">2</a></b>`, withCache)

	attrA := firstOf(a.Root, syntax.KindAttribute)
	attrB := firstOf(b.Root, syntax.KindAttribute)
	require.NotNil(t, attrA)
	require.NotNil(t, attrB)
	assert.Same(t, attrA.Green(), attrB.Green())
	assert.NotZero(t, cache.Stats().NodeHits)
}
