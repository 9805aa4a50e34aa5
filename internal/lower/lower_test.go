package lower_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/binder"
	"weave/internal/catalog"
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/ir"
	"weave/internal/lower"
	"weave/internal/parser"
	"weave/internal/source"
)

// setup разбирает и связывает документ, возвращает готовые опции лоуэринга
func setup(t *testing.T, src string, cat *catalog.Catalog) (lower.Options, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.weave", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := parser.ParseFile(file, parser.Options{Registry: directive.Builtins(), Reporter: rep})
	tbl := binder.Bind(res.Root, binder.Options{Catalog: cat, Reporter: rep})
	return lower.Options{File: file, Parse: &res, Bindings: tbl, Reporter: rep}, bag
}

func lowerSrc(t *testing.T, src string, tweak ...func(*lower.Options)) (*ir.Node, *diag.Bag) {
	t.Helper()
	opts, bag := setup(t, src, catalog.Empty())
	for _, fn := range tweak {
		fn(&opts)
	}
	return lower.Lower(context.Background(), opts), bag
}

func execute(t *testing.T, doc *ir.Node) *ir.Node {
	t.Helper()
	for n := range ir.All(doc) {
		if n.Kind == ir.KindMethod && n.Name == lower.ExecuteMethod {
			return n
		}
	}
	t.Fatal("no Execute method")
	return nil
}

func contents(ns []*ir.Node) []string {
	var out []string
	for _, n := range ns {
		switch n.Kind {
		case ir.KindLiteral:
			out = append(out, "L:"+n.Content)
		case ir.KindExpression:
			out = append(out, "E:"+n.Code())
		case ir.KindStatement:
			out = append(out, "S:"+n.Code())
		default:
			out = append(out, n.Kind.String())
		}
	}
	return out
}

func TestDocumentShape(t *testing.T) {
	opts, _ := setup(t, "<p>Hello</p>", catalog.Empty())
	doc := lower.Document(opts)

	require.Equal(t, ir.KindDocument, doc.Kind)
	ns := doc.Child(ir.KindNamespace)
	require.NotNil(t, ns)
	assert.Equal(t, lower.DefaultPackage, ns.Name)
	class := ns.Child(ir.KindClass)
	require.NotNil(t, class)
	assert.Equal(t, lower.DefaultClass, class.Name)
	assert.Equal(t, []string{"L:<p>", "L:Hello", "L:</p>"}, contents(execute(t, doc).Children))
}

func TestLowerPlainMarkup(t *testing.T) {
	doc, bag := lowerSrc(t, "<p>Hello</p>")
	body := execute(t, doc).Children
	require.Len(t, body, 1)
	assert.Equal(t, "<p>Hello</p>", body[0].Content)
	assert.Equal(t, source.Span{File: body[0].Source.File, Start: 0, End: 12}, *body[0].Source)
	assert.Nil(t, bag.Codes())
}

func TestLowerExpressions(t *testing.T) {
	doc, _ := lowerSrc(t, `<a href="@url">@user.Name and @(1 + 2)</a>`)
	assert.Equal(t, []string{
		`L:<a href="`, "E:url", `L:">`, "E:user.Name", "L: and ", "E:1 + 2", "L:</a>",
	}, contents(execute(t, doc).Children))
}

func TestLowerEscapedTransition(t *testing.T) {
	doc, _ := lowerSrc(t, "a@@b")
	body := execute(t, doc).Children
	assert.Equal(t, []string{"L:a", "L:@b"}, contents(body))
	assert.Equal(t, uint32(2), body[1].Source.Start, "the first @ is not written")
}

func TestLowerRazorCommentSplitsLiterals(t *testing.T) {
	doc, _ := lowerSrc(t, "a@* note *@b")
	assert.Equal(t, []string{"L:a", "L:b"}, contents(execute(t, doc).Children))
}

func TestLowerCodeBlock(t *testing.T) {
	doc, _ := lowerSrc(t, "@{ x := 1\n<p>@x</p> }")
	assert.Equal(t, []string{"S:x := 1", "L:<p>", "E:x", "L:</p>"}, contents(execute(t, doc).Children))
}

func TestLowerStatementChain(t *testing.T) {
	doc, _ := lowerSrc(t, "@if x > 1 {<b>a</b>} else if y {<i>b</i>} else {c()}")
	assert.Equal(t, []string{
		"S:if x > 1 {", "L:<b>a</b>", "S:} else if y {", "L:<i>b</i>", "S:} else {", "S:c()", "S:}",
	}, contents(execute(t, doc).Children))
}

func TestLowerUnterminatedCodeBlock(t *testing.T) {
	doc, bag := lowerSrc(t, "@{ doSomething(")
	assert.Equal(t, []diag.Code{diag.SynMissingCloseBrace}, bag.Codes())
	assert.Equal(t, []string{"S:doSomething("}, contents(execute(t, doc).Children))
}

func TestLowerMissingTokenIsSynthesized(t *testing.T) {
	doc, bag := lowerSrc(t, "@foo(1")
	assert.Equal(t, []diag.Code{diag.SynMissingCloseParen}, bag.Codes())
	body := execute(t, doc).Children
	require.Len(t, body, 1)
	expr := body[0]
	assert.Equal(t, "foo(1 )", expr.Code())
	last := expr.Children[len(expr.Children)-1]
	assert.True(t, last.Flags.Has(ir.FlagSynthesized))
	assert.False(t, last.HasSource())
}

func TestLowerTextLine(t *testing.T) {
	doc, _ := lowerSrc(t, "@{\n@:hello @name\n}")
	assert.Equal(t, []string{"L:hello ", "E:name", "L:\n"}, contents(execute(t, doc).Children))
}

func TestClassifyDirectives(t *testing.T) {
	src := "@package pages\n@import \"fmt\"\n@model *Person\n@inherits base.Page\n@inject *log.Logger Log\n" +
		"@implements fmt.Stringer\n@page \"/home\"\n@layout \"main\"\n" +
		"<p>@Model.Name</p>\n@section scripts {<script>x</script>}\n@functions { func (p *Page) Hi() {} }"
	doc, bag := lowerSrc(t, src)
	require.Nil(t, bag.Codes())

	ns := doc.Child(ir.KindNamespace)
	assert.Equal(t, "pages", ns.Name)
	require.NotNil(t, ns.Source)
	imp := ns.Child(ir.KindImport)
	require.NotNil(t, imp)
	assert.Equal(t, `"fmt"`, imp.Content)
	assert.True(t, imp.Flags.Has(ir.FlagReordered))

	class := ns.Child(ir.KindClass)
	var members []string
	for _, c := range class.Children {
		members = append(members, c.Kind.String()+":"+c.Name+c.Code())
	}
	assert.Equal(t, []string{
		"Field:base.Page",
		"Field:Model*Person",
		"Field:Log*log.Logger",
		"InterfaceCheck:fmt.Stringer",
		`ConstMethod:Route"/home"`,
		`ConstMethod:Layout"main"`,
		"MemberCode:",
		"Method:Execute",
		"Section:scripts",
	}, members)

	assert.Equal(t, []string{"L:<p>", "E:Model.Name", "L:</p>\n", "L:\n"}, contents(execute(t, doc).Children))
	assert.Nil(t, ir.Find(doc, ir.KindDirective))

	fn := class.Child(ir.KindMemberCode)
	assert.Equal(t, []string{"S:func (p *Page) Hi() {}"}, contents(fn.Children))
	sec := class.Child(ir.KindSection)
	assert.Equal(t, []string{"L:<script>x</script>"}, contents(sec.Children))
}

func TestRejectedDirectiveIsNotLowered(t *testing.T) {
	doc, bag := lowerSrc(t, "@model A\n@model B\n")
	assert.Equal(t, []diag.Code{diag.DirDuplicate}, bag.Codes())
	fields := doc.Child(ir.KindNamespace).Child(ir.KindClass).ChildrenOf(ir.KindField)
	require.Len(t, fields, 1)
	assert.Equal(t, "ModelA", fields[0].Code())
}

func TestCustomDirectiveRule(t *testing.T) {
	reg, err := directive.Builtins().Extend(directive.Descriptor{
		Name: "title", Kind: directive.KindSingleLine,
		Tokens: []directive.TokenDescriptor{{Kind: directive.TokenString}},
	})
	require.NoError(t, err)

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.weave", []byte("@title \"Home\"\n")))
	res := parser.ParseFile(file, parser.Options{Registry: reg})
	opts := lower.Options{File: file, Parse: &res}

	doc := lower.Lower(context.Background(), opts)
	assert.NotNil(t, ir.Find(doc, ir.KindDirective), "no rule keeps the directive")

	opts.Rules = map[string]lower.DirectiveRule{
		"title": func(m *lower.Members, d *ir.Node) bool {
			n := ir.New(ir.KindConstMethod, d.Child(ir.KindDirectiveToken))
			n.Name = "Title"
			m.Class = append(m.Class, n)
			return true
		},
	}
	doc = lower.Lower(context.Background(), opts)
	assert.Nil(t, ir.Find(doc, ir.KindDirective))
	assert.NotNil(t, ir.Find(doc, ir.KindConstMethod))
}

func TestLowerTagHelperScope(t *testing.T) {
	cat := catalog.MustNew(catalog.Descriptor{
		ID: "forms.Input", Type: "forms.Input",
		Rules:      []catalog.Rule{{Tag: "input"}},
		Attributes: []catalog.BoundAttribute{{Name: "value", Type: "int"}, {Name: "label", Type: "string"}},
	})
	opts, bag := setup(t, `<input value="x" label="Age @n" class="c">`, cat)
	doc := lower.Lower(context.Background(), opts)
	require.Nil(t, bag.Codes())

	body := execute(t, doc).Children
	require.Len(t, body, 1)
	sc := body[0]
	require.Equal(t, ir.KindScope, sc.Kind)
	assert.Equal(t, "input", sc.Name)
	assert.Equal(t, "forms.Input", sc.Descriptor.ID)
	assert.Equal(t, []string{"Create", "Property", "Property", "HTMLAttribute", "Body"}, contents(sc.Children))

	create := sc.Child(ir.KindCreate)
	assert.Equal(t, "__th0", create.Name)
	props := sc.ChildrenOf(ir.KindProperty)
	assert.Equal(t, "Value", props[0].Attribute.Property)
	assert.Equal(t, []string{"E:x"}, contents(props[0].Children), "non-string values are expressions")
	assert.Equal(t, []string{"L:Age ", "E:n"}, contents(props[1].Children))
	attr := sc.Child(ir.KindHTMLAttribute)
	assert.Equal(t, "class", attr.Name)
	assert.Equal(t, []string{"L:c"}, contents(attr.Children))
}

func TestLowerAmbiguousAttributeUsesFirstDescriptor(t *testing.T) {
	cat := catalog.MustNew(
		catalog.Descriptor{ID: "a.Text", Type: "a.Text", Rules: []catalog.Rule{{Tag: "field"}},
			Attributes: []catalog.BoundAttribute{{Name: "name", Type: "string"}}},
		catalog.Descriptor{ID: "b.Number", Type: "b.Number", Rules: []catalog.Rule{{Tag: "field"}},
			Attributes: []catalog.BoundAttribute{{Name: "name", Type: "int"}}},
	)
	opts, bag := setup(t, `<field name="n"></field>`, cat)
	doc := lower.Lower(context.Background(), opts)
	assert.Equal(t, []diag.Code{diag.BndAmbiguousAttribute}, bag.Codes())

	sc := ir.Find(doc, ir.KindScope)
	require.NotNil(t, sc)
	assert.Len(t, sc.ChildrenOf(ir.KindCreate), 2)
	props := sc.ChildrenOf(ir.KindProperty)
	require.Len(t, props, 1)
	assert.Equal(t, "a.Text", props[0].Descriptor.ID)
}

func TestDesignTimePass(t *testing.T) {
	doc, _ := lowerSrc(t, "@model *Person\n@inject Clock Now\n<p>@x</p>", func(o *lower.Options) {
		o.DesignTime = true
	})
	assert.Equal(t, []string{"E:x"}, contents(execute(t, doc).Children))
	helper := ir.Find(doc, ir.KindDesignTimeHelper)
	require.NotNil(t, helper)
	assert.Equal(t, []string{"*Person", "Clock"}, []string{helper.Children[0].Content, helper.Children[1].Content})
}

func TestInstrumentationPass(t *testing.T) {
	doc, _ := lowerSrc(t, "<p>@x</p>", func(o *lower.Options) { o.Instrumentation = true })
	body := execute(t, doc).Children
	assert.Equal(t, []string{
		"ContextBegin", "L:<p>", "ContextEnd",
		"ContextBegin", "E:x", "ContextEnd",
		"ContextBegin", "L:</p>", "ContextEnd",
	}, contents(body))
	assert.Equal(t, "0, 3, true", body[0].Content)
	assert.Equal(t, "4, 1, false", body[3].Content)
}

func TestFailingPassKeepsInput(t *testing.T) {
	opts, bag := setup(t, "<p>x</p>", catalog.Empty())
	doc := lower.Document(opts)
	passes := []lower.Pass{
		{Name: "explode", Fn: func(*lower.Options, *ir.Node) (*ir.Node, error) { panic("boom") }},
		{Name: "nothing", Fn: func(*lower.Options, *ir.Node) (*ir.Node, error) { return nil, nil }},
	}
	out := lower.Run(context.Background(), doc, opts, passes)
	assert.Same(t, doc, out)
	require.Equal(t, []diag.Code{diag.LowPassFailed, diag.LowPassFailed}, bag.Codes())
	assert.Contains(t, bag.Items()[0].Message, "boom")
}

func TestValidateProvenance(t *testing.T) {
	opts, bag := setup(t, "<p>x</p>", catalog.Empty())
	doc := lower.Document(opts)
	bad := ir.Literal("zzz", source.Span{File: opts.File.ID, Start: 5, End: 50})
	exec := execute(t, doc)
	exec.Children = append(exec.Children, bad)

	var validate lower.Pass
	for _, p := range lower.Passes() {
		if p.Name == "validate-provenance" {
			validate = p
		}
	}
	out := lower.Run(context.Background(), doc, opts, []lower.Pass{validate})
	assert.Same(t, doc, out)
	assert.Equal(t, []diag.Code{diag.LowInvalidProvenance}, bag.Codes())
}

func TestLoweringIsPure(t *testing.T) {
	opts, _ := setup(t, "@model M\n<p>@a</p>@section s {x}", catalog.Empty())
	doc := lower.Document(opts)
	before := ir.DumpString(doc)
	lower.Run(context.Background(), doc, opts, lower.Passes())
	assert.Equal(t, before, ir.DumpString(doc))
}
