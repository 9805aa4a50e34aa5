package codegen_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/binder"
	"weave/internal/catalog"
	"weave/internal/codegen"
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/ir"
	"weave/internal/lower"
	"weave/internal/parser"
	"weave/internal/source"
)

type fixture struct {
	file *source.File
	doc  *ir.Node
	bag  *diag.Bag
}

func build(t *testing.T, src string, cat *catalog.Catalog, tweak ...func(*lower.Options)) fixture {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.weave", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := parser.ParseFile(file, parser.Options{Registry: directive.Builtins(), Reporter: rep})
	tbl := binder.Bind(res.Root, binder.Options{Catalog: cat, Reporter: rep})
	opts := lower.Options{File: file, Parse: &res, Bindings: tbl, Reporter: rep}
	for _, fn := range tweak {
		fn(&opts)
	}
	return fixture{file: file, doc: lower.Lower(context.Background(), opts), bag: bag}
}

func generate(t *testing.T, fx fixture, tweak ...func(*codegen.Options)) *codegen.Output {
	t.Helper()
	opts := codegen.Options{File: fx.file, Reporter: diag.BagReporter{Bag: fx.bag}}
	for _, fn := range tweak {
		fn(&opts)
	}
	out, err := codegen.Generate(context.Background(), fx.doc, opts)
	require.NoError(t, err)
	require.NoError(t, out.Map.Validate())
	return out
}

// body отрезает заголовок с контрольной суммой
func body(t *testing.T, text string) string {
	t.Helper()
	_, rest, ok := strings.Cut(text, "\n\n")
	require.True(t, ok)
	return rest
}

func TestGenerateMarkup(t *testing.T) {
	fx := build(t, "<p>Hello</p>", catalog.Empty())
	out := generate(t, fx)
	assert.Nil(t, fx.bag.Codes())

	want := `package views

import (
	rt "weave/rt"
)

type Page struct {
}

func (p *Page) Execute(w rt.Writer) error {
	w.WriteLiteral("<p>Hello</p>")
	return nil
}
`
	if diff := cmp.Diff(want, body(t, out.Text)); diff != "" {
		t.Fatalf("generated text mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 1, out.Map.Len())
	e := out.Map.Entries()[0]
	assert.Equal(t, `"<p>Hello</p>"`, out.Text[e.Generated.Start:e.Generated.End])
	assert.Equal(t, uint32(0), e.Source.Start)
	assert.Equal(t, uint32(12), e.Source.End)
}

func TestGenerateHeader(t *testing.T) {
	fx := build(t, "<p>Hello</p>", catalog.Empty())
	out := generate(t, fx)

	lines := strings.SplitN(out.Text, "\n", 5)
	assert.Equal(t, "// Code generated by weave. DO NOT EDIT.", lines[0])
	assert.Equal(t, "// source: page.weave", lines[1])
	assert.Equal(t, "// checksum: sha256:"+out.Checksum, lines[2])
	assert.Equal(t, "// document: "+out.DocumentID.String(), lines[3])
	assert.Len(t, out.Checksum, 64)

	again := generate(t, build(t, "<p>Hello</p>", catalog.Empty()))
	assert.Equal(t, out.DocumentID, again.DocumentID, "ids are deterministic")
	other := generate(t, build(t, "<p>Bye</p>", catalog.Empty()))
	assert.NotEqual(t, out.DocumentID, other.DocumentID)
}

func TestGenerateDirectives(t *testing.T) {
	src := "@package pages\n@import \"fmt\"\n@model *Person\n@inherits base.Page\n@inject *log.Logger Log\n" +
		"@implements fmt.Stringer\n@page \"/home\"\n@layout \"main\"\n" +
		"<p>@Model.Name</p>\n@section scripts {<script>x</script>}\n@functions { func (p *Page) Hi() {} }"
	fx := build(t, src, catalog.Empty())
	out := generate(t, fx)
	assert.Nil(t, fx.bag.Codes())

	want := `package pages

import (
	rt "weave/rt"
	"fmt"
)

type Page struct {
	base.Page
	Model *Person
	Log *log.Logger
}

var _ fmt.Stringer = (*Page)(nil)

func (p *Page) Route() string { return "/home" }

func (p *Page) Layout() string { return "main" }

func (p *Page) Hi() {}

func (p *Page) Execute(w rt.Writer) error {
	Model := p.Model
	_ = Model
	Log := p.Log
	_ = Log
	w.WriteLiteral("<p>")
	w.Write(Model.Name)
	w.WriteLiteral("</p>\n")
	w.WriteLiteral("\n")
	return nil
}

func (p *Page) Section_scripts(w rt.Writer) error {
	Model := p.Model
	_ = Model
	Log := p.Log
	_ = Log
	w.WriteLiteral("<script>x</script>")
	return nil
}
`
	if diff := cmp.Diff(want, body(t, out.Text)); diff != "" {
		t.Fatalf("generated text mismatch (-want +got):\n%s", diff)
	}

	execStart := uint32(strings.Index(out.Text, "func (p *Page) Execute"))
	execEnd := uint32(strings.Index(out.Text, "func (p *Page) Section_"))
	for _, e := range out.Map.Entries() {
		inExecute := e.Generated.Start >= execStart && e.Generated.Start < execEnd
		assert.Equal(t, !inExecute, e.Reordered, "entry %s", e)
	}
}

func TestGenerateBoundAttributeIsExpression(t *testing.T) {
	cat := catalog.MustNew(catalog.Descriptor{
		ID: "forms.Input", Type: "forms.Input",
		Rules:      []catalog.Rule{{Tag: "input"}},
		Attributes: []catalog.BoundAttribute{{Name: "value", Type: "int"}},
	})
	fx := build(t, `<input value="x">`, cat)
	out := generate(t, fx)
	assert.Nil(t, fx.bag.Codes())

	assert.Contains(t, out.Text, `__scope := rt.BeginScope(w, "input", rt.TagSelfClosing)`)
	assert.Contains(t, out.Text, "__th0 := &forms.Input{}\n")
	assert.Contains(t, out.Text, "__th0.Value = x\n")
	assert.NotContains(t, out.Text, `WriteLiteral("x")`)
	assert.NotContains(t, out.Text, "SetContent", "void elements have no content")
}

func TestGenerateScope(t *testing.T) {
	cat := catalog.MustNew(catalog.Descriptor{
		ID: "ui.Card", Type: "ui.Card",
		Rules:      []catalog.Rule{{Tag: "card"}},
		Attributes: []catalog.BoundAttribute{{Name: "title", Type: "string"}},
	})
	fx := build(t, `<card title="Hi @name" class="c">body</card>`, cat)
	out := generate(t, fx)
	assert.Nil(t, fx.bag.Codes())

	want := `func (p *Page) Execute(w rt.Writer) error {
	{
		__scope := rt.BeginScope(w, "card", rt.TagStartAndEnd)
		__th0 := &ui.Card{}
		__scope.Add(__th0)
		__th0.Title = rt.Concat("Hi ", name)
		__scope.AddAttribute("class", "c")
		__scope.SetContent(func(w rt.Writer) error {
			w.WriteLiteral("body")
			return nil
		})
		if err := __scope.Execute(); err != nil {
			return err
		}
	}
	return nil
}
`
	_, got, ok := strings.Cut(out.Text, "func (p *Page) Execute")
	require.True(t, ok)
	if diff := cmp.Diff(want, "func (p *Page) Execute"+got); diff != "" {
		t.Fatalf("scope mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateStatementIndentation(t *testing.T) {
	fx := build(t, "@if x > 1 {<b>a</b>} else {c()}", catalog.Empty())
	out := generate(t, fx)
	assert.Contains(t, out.Text, "\tif x > 1 {\n\t\tw.WriteLiteral(\"<b>a</b>\")\n\t} else {\n\t\tc()\n\t}\n\treturn nil\n")
}

func TestGenerateLinePragmas(t *testing.T) {
	fx := build(t, "<p>@Name</p>\n@{ x := 1 }", catalog.Empty())
	out := generate(t, fx, func(o *codegen.Options) { o.LinePragmas = true })
	assert.Contains(t, out.Text, "w.Write(/*line page.weave:1:5*/Name)")
	assert.Contains(t, out.Text, "/*line page.weave:2:4*/x := 1")

	hits := out.Map.LookupSource(5)
	require.Len(t, hits, 1)
	assert.Equal(t, "Name", out.Text[hits[0].Generated.Start:hits[0].Generated.End])
}

func TestGenerateInstrumentation(t *testing.T) {
	fx := build(t, "<p>@x</p>", catalog.Empty(), func(o *lower.Options) { o.Instrumentation = true })
	out := generate(t, fx)
	assert.Contains(t, out.Text, "\tw.BeginContext(0, 3, true)\n\tw.WriteLiteral(\"<p>\")\n\tw.EndContext()\n")
	assert.Contains(t, out.Text, "\tw.BeginContext(4, 1, false)\n\tw.Write(x)\n\tw.EndContext()\n")
}

func TestGenerateDesignTime(t *testing.T) {
	fx := build(t, "@model *Person\n@implements fmt.Stringer\n<p>@Model.Name</p>", catalog.Empty(),
		func(o *lower.Options) { o.DesignTime = true })
	out := generate(t, fx)
	assert.NotContains(t, out.Text, "WriteLiteral")
	assert.Contains(t, out.Text, "func (p *Page) __designTime() {\n\tvar _ *Person\n\tvar _ fmt.Stringer\n}\n")
}

func TestGenerateUnclassifiedDirective(t *testing.T) {
	reg, err := directive.Builtins().Extend(directive.Descriptor{
		Name: "title", Kind: directive.KindSingleLine,
		Tokens: []directive.TokenDescriptor{{Kind: directive.TokenString}},
	})
	require.NoError(t, err)
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.weave", []byte("@title \"Home\"\n<p>x</p>")))
	res := parser.ParseFile(file, parser.Options{Registry: reg})
	doc := lower.Lower(context.Background(), lower.Options{File: file, Parse: &res})

	out, err := codegen.Generate(context.Background(), doc, codegen.Options{File: file})
	require.NoError(t, err)
	require.NoError(t, out.Map.Validate())
	assert.Contains(t, out.Text, "\t// @title \"Home\"\n\tw.WriteLiteral(\"<p>x</p>\")\n")
}

func TestSourceMapSoundness(t *testing.T) {
	for _, src := range []string{
		"",
		"a@@b",
		"@foo(1",
		"<div><p>x</div>",
		"@{ x := 1\n<p>@x</p> }",
		"@{ doSomething(",
		"<a href=\"@url\">@user.Name and @(1 + 2)</a>",
		"@{\n@:hello @name\n}",
		"a@* note *@b",
		"@if a {<b>x</b>",
	} {
		t.Run(src, func(t *testing.T) {
			fx := build(t, src, catalog.Empty())
			out := generate(t, fx, func(o *codegen.Options) { o.LinePragmas = true })
			for _, e := range out.Map.Entries() {
				for off := e.Generated.Start; off < e.Generated.End; off++ {
					sp, ok := out.Map.SourceOffset(off)
					require.True(t, ok)
					assert.Less(t, sp, uint32(len(src)))
				}
			}
		})
	}
}

func TestGenerateReportsUnmappedNodes(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.weave", []byte("<p>stray</p>")))
	class := ir.New(ir.KindClass, ir.Literal("<p>stray</p>", file.Span()))
	class.Name = "Page"
	ns := ir.New(ir.KindNamespace, class)
	ns.Name = "views"

	bag := diag.NewBag(0)
	out, err := codegen.Generate(context.Background(), ir.New(ir.KindDocument, ns),
		codegen.Options{File: file, Reporter: diag.BagReporter{Bag: bag}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Map.Len())
	assert.Equal(t, []diag.Code{diag.GenUnmappedSpan}, bag.Codes())
}

func TestGenerateRecoversFromPanics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.weave", []byte("x")))
	// A property without an attribute cannot be written.
	sc := ir.New(ir.KindScope, ir.New(ir.KindProperty))
	exec := ir.New(ir.KindMethod, sc)
	exec.Name = "Execute"
	class := ir.New(ir.KindClass, exec)
	class.Name = "Page"
	ns := ir.New(ir.KindNamespace, class)
	ns.Name = "views"

	bag := diag.NewBag(0)
	out, err := codegen.Generate(context.Background(), ir.New(ir.KindDocument, ns),
		codegen.Options{File: file, Reporter: diag.BagReporter{Bag: bag}})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "package views")
	assert.Equal(t, []diag.Code{diag.GenInternal}, bag.Codes())
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := codegen.Generate(context.Background(), nil, codegen.Options{})
	require.Error(t, err)
	_, err = codegen.Generate(context.Background(), ir.New(ir.KindDocument), codegen.Options{})
	require.Error(t, err)
}

func TestWriterOptions(t *testing.T) {
	w := codegen.NewWriter(codegen.WriterOptions{UseSpaces: true, IndentWidth: 2, Newline: "\r\n"})
	w.Write("a {")
	w.Newline()
	w.Indent()
	w.Write("b")
	w.Newline()
	w.WriteRaw("raw")
	w.Newline()
	w.Dedent()
	w.Dedent()
	w.Write("}")
	assert.Equal(t, "a {\r\n  b\r\nraw\r\n}", w.String())
	assert.Equal(t, uint32(len(w.String())), w.Mark())
}

func TestCustomWriter(t *testing.T) {
	fx := build(t, "<p>x</p>", catalog.Empty())
	var used bool
	out := generate(t, fx, func(o *codegen.Options) {
		o.NewWriter = func(opt codegen.WriterOptions) codegen.CodeWriter {
			used = true
			opt.UseSpaces, opt.IndentWidth = true, 3
			return codegen.NewWriter(opt)
		}
	})
	assert.True(t, used)
	assert.Contains(t, out.Text, "\n   w.WriteLiteral(\"<p>x</p>\")\n")
}
