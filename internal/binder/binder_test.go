package binder_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/binder"
	"weave/internal/catalog"
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/parser"
	"weave/internal/source"
	"weave/internal/syntax"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		catalog.Descriptor{
			ID: "forms.Email", Type: "forms.Email",
			Rules: []catalog.Rule{{Tag: "input", Attributes: []catalog.RequiredAttribute{
				{Name: "type", Value: "email", ValueMatch: catalog.ValueFull},
			}}},
			Attributes: []catalog.BoundAttribute{{Name: "for", Type: "string"}},
		},
		catalog.Descriptor{
			ID: "nav.Anchor", Type: "nav.Anchor",
			Rules: []catalog.Rule{{Tag: "a", Attributes: []catalog.RequiredAttribute{
				{Name: "asp-", NameMatch: catalog.NamePrefix},
			}}},
			Attributes: []catalog.BoundAttribute{{Name: "asp-action", Type: "string"}, {Name: "asp-id", Type: "int"}},
		},
		catalog.Descriptor{
			ID: "ui.Counter", Type: "ui.Counter", Component: true,
			Rules:      []catalog.Rule{{Tag: "Counter"}},
			Attributes: []catalog.BoundAttribute{{Name: "start", Type: "int", Required: true}, {Name: "label", Type: "string"}},
		},
		catalog.Descriptor{
			ID: "ui.Track", Type: "ui.Track",
			Rules:      []catalog.Rule{{Tag: catalog.AnyTag, Attributes: []catalog.RequiredAttribute{{Name: "track"}}}},
			Attributes: []catalog.BoundAttribute{{Name: "track", Type: "bool"}},
		},
		catalog.Descriptor{
			ID: "ui.Badge", Type: "ui.Badge",
			Rules: []catalog.Rule{{Tag: "badge", Structure: catalog.StructureWithoutEndTag}},
		},
		catalog.Descriptor{
			ID: "list.Item", Type: "list.Item",
			Rules: []catalog.Rule{{Tag: "li", Parent: "ul"}},
		},
	)
	require.NoError(t, err)
	return c
}

// bindSrc разбирает и связывает строку, диагностики парсера отбрасываются
func bindSrc(t *testing.T, src string, cat *catalog.Catalog, tweak ...func(*binder.Options)) (*syntax.Node, *binder.Table, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.weave", []byte(src))
	res := parser.ParseFile(fs.Get(id), parser.Options{Registry: directive.Builtins()})
	bag := diag.NewBag(0)
	opts := binder.Options{Catalog: cat, Reporter: diag.BagReporter{Bag: bag}}
	for _, fn := range tweak {
		fn(&opts)
	}
	return res.Root, binder.Bind(res.Root, opts), bag
}

func boundNames(tbl *binder.Table) []string {
	var out []string
	for _, eb := range tbl.Elements() {
		out = append(out, eb.Name)
	}
	return out
}

func descriptorIDs(eb *binder.ElementBinding) []string {
	var out []string
	for _, d := range eb.Descriptors {
		out = append(out, d.ID)
	}
	return out
}

func TestBindEmptyCatalog(t *testing.T) {
	_, tbl, bag := bindSrc(t, "<p>Hello</p>", catalog.Empty())
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, bag.Codes())
}

func TestBindRequiredAttributeValue(t *testing.T) {
	cat := testCatalog(t)

	_, tbl, bag := bindSrc(t, `<input type="email" for="Name"><input type="text" for="Name">`, cat)
	require.Equal(t, 1, tbl.Len())
	eb := tbl.Elements()[0]
	assert.Equal(t, []string{"forms.Email"}, descriptorIDs(eb))
	require.Len(t, eb.Attributes, 1)
	assert.Equal(t, "for", eb.Attributes[0].Node.Name())
	assert.Equal(t, "string", eb.Attributes[0].Primary().Attribute.Type)
	assert.Nil(t, bag.Codes())

	_, tbl, _ = bindSrc(t, `<input type="@kind">`, cat)
	assert.Equal(t, 0, tbl.Len(), "dynamic values never satisfy a value predicate")
}

func TestBindNamePrefix(t *testing.T) {
	cat := testCatalog(t)
	_, tbl, bag := bindSrc(t, `<a asp-action="Index" asp-id="@id" href="/">x</a><a href="/">y</a>`, cat)
	require.Equal(t, 1, tbl.Len())
	eb := tbl.Elements()[0]
	require.Len(t, eb.Attributes, 2)
	assert.Equal(t, "int", eb.Attributes[1].Primary().Attribute.Type)
	assert.Nil(t, bag.Codes())
}

func TestBindAnyTagAndMultipleDescriptors(t *testing.T) {
	cat := testCatalog(t)
	_, tbl, bag := bindSrc(t, `<input type="email" track>`, cat)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"forms.Email", "ui.Track"}, descriptorIDs(tbl.Elements()[0]))
	assert.Nil(t, bag.Codes(), "bool attributes need no value")
}

func TestBindParentRule(t *testing.T) {
	cat := testCatalog(t)
	root, tbl, _ := bindSrc(t, `<ul><li>a</li></ul><ol><li>b</li></ol>`, cat)
	require.Equal(t, []string{"li"}, boundNames(tbl))
	lis := []*syntax.Node{}
	for n := range root.Preorder() {
		if el, ok := syntax.AsElement(n); ok && el.Name() == "li" {
			lis = append(lis, n)
		}
	}
	require.Len(t, lis, 2)
	_, ok := tbl.Element(lis[0])
	assert.True(t, ok)
	_, ok = tbl.Element(lis[1])
	assert.False(t, ok)
}

func TestBindDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []diag.Code
		sev   diag.Severity
	}{
		{"unresolved component", `<Widget />`, []diag.Code{diag.BndUnresolvedComponent}, diag.SevWarning},
		{"missing required", `<Counter label="x" />`, []diag.Code{diag.BndMissingRequiredAttribute}, diag.SevError},
		{"missing value", `<Counter start />`, []diag.Code{diag.BndMissingAttributeValue}, diag.SevError},
		{"tag structure", `<badge></badge>`, []diag.Code{diag.BndTagStructure}, diag.SevError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := bindSrc(t, tt.src, testCatalog(t))
			require.Equal(t, tt.codes, bag.Codes())
			assert.Equal(t, tt.sev, bag.Items()[0].Severity)
		})
	}

	_, tbl, bag := bindSrc(t, `<badge />`, testCatalog(t))
	assert.Equal(t, 1, tbl.Len())
	assert.Nil(t, bag.Codes())
}

func TestBindComponent(t *testing.T) {
	_, tbl, bag := bindSrc(t, `<Counter start="@n" label="Clicks" />`, testCatalog(t))
	require.Equal(t, 1, tbl.Len())
	eb := tbl.Elements()[0]
	assert.True(t, eb.Component())
	assert.Len(t, eb.Attributes, 2)
	assert.Nil(t, bag.Codes())
}

func ambiguousCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.MustNew(
		catalog.Descriptor{ID: "a.Text", Type: "a.Text", Rules: []catalog.Rule{{Tag: "field"}},
			Attributes: []catalog.BoundAttribute{{Name: "value", Type: "string"}}},
		catalog.Descriptor{ID: "b.Number", Type: "b.Number", Rules: []catalog.Rule{{Tag: "field"}},
			Attributes: []catalog.BoundAttribute{{Name: "value", Type: "int"}}},
		catalog.Descriptor{ID: "c.Label", Type: "c.Label", Rules: []catalog.Rule{{Tag: "field"}},
			Attributes: []catalog.BoundAttribute{{Name: "value", Type: "string"}}},
	)
}

func TestBindAmbiguousAttribute(t *testing.T) {
	cat := ambiguousCatalog(t)

	root, tbl, bag := bindSrc(t, `<field value="3"></field>`, cat)
	require.Equal(t, []diag.Code{diag.BndAmbiguousAttribute}, bag.Codes())
	assert.Equal(t, diag.SevWarning, bag.Items()[0].Severity)
	assert.Contains(t, bag.Items()[0].Message, "using a.Text")

	var attr *syntax.Node
	for n := range root.Preorder() {
		if n.Kind() == syntax.KindAttribute {
			attr = n
			break
		}
	}
	ab, ok := tbl.Attribute(attr)
	require.True(t, ok)
	assert.True(t, ab.Ambiguous)
	var ids []string
	for _, tg := range ab.Targets {
		ids = append(ids, tg.Descriptor.ID)
	}
	assert.Equal(t, []string{"a.Text", "c.Label"}, ids)

	_, tbl, bag = bindSrc(t, `<field value="3"></field>`, cat, func(o *binder.Options) {
		o.Ambiguity = binder.AmbiguityReject
	})
	require.Equal(t, []diag.Code{diag.BndAmbiguousAttribute}, bag.Codes())
	assert.Equal(t, diag.SevError, bag.Items()[0].Severity)
	require.Equal(t, 1, tbl.Len())
	assert.Empty(t, tbl.Elements()[0].Attributes)
}

func TestBindPrefix(t *testing.T) {
	cat := testCatalog(t)
	withPrefix := func(o *binder.Options) { o.Prefix = "th:" }

	_, tbl, bag := bindSrc(t, `<th:badge /><badge /><Widget />`, cat, withPrefix)
	assert.Equal(t, []string{"badge"}, boundNames(tbl))
	assert.Nil(t, bag.Codes(), "unprefixed elements are plain markup")
}

func TestBindCaseSensitivity(t *testing.T) {
	cat := testCatalog(t)
	_, tbl, _ := bindSrc(t, `<BADGE />`, cat)
	assert.Equal(t, 1, tbl.Len())

	_, tbl, bag := bindSrc(t, `<BADGE />`, cat, func(o *binder.Options) { o.CaseSensitive = true })
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, []diag.Code{diag.BndUnresolvedComponent}, bag.Codes())
}

func TestBindIsStable(t *testing.T) {
	src := `<ul><li track>x</li></ul><input type="email" for="a"><Counter start="1" /><a asp-id="2">k</a>`
	cat := testCatalog(t)

	_, first, bag1 := bindSrc(t, src, cat)
	_, second, bag2 := bindSrc(t, src, cat)
	assert.Equal(t, boundNames(first), boundNames(second))
	assert.Equal(t, bag1.Codes(), bag2.Codes())

	reversed := cat.All()
	slices.Reverse(reversed)
	descs := make([]catalog.Descriptor, 0, len(reversed))
	for _, d := range reversed {
		descs = append(descs, *d)
	}
	_, third, bag3 := bindSrc(t, src, catalog.MustNew(descs...))
	assert.Equal(t, boundNames(first), boundNames(third))
	assert.Equal(t, bag1.Codes(), bag3.Codes())
	for i, eb := range first.Elements() {
		assert.ElementsMatch(t, descriptorIDs(eb), descriptorIDs(third.Elements()[i]))
	}
}

func TestAmbiguityPolicyText(t *testing.T) {
	var p binder.AmbiguityPolicy
	require.NoError(t, p.UnmarshalText([]byte("Reject")))
	assert.Equal(t, binder.AmbiguityReject, p)
	assert.Error(t, p.UnmarshalText([]byte("last")))
	b, err := binder.AmbiguityFirst.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))
}
