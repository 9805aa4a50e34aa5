package testkit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/parser"
	"weave/internal/source"
	"weave/internal/testkit"
)

func parse(t *testing.T, src string) (*source.File, parser.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.weave", []byte(src)))
	bag := diag.NewBag(0)
	res := parser.ParseFile(file, parser.Options{Registry: directive.Builtins(), Reporter: diag.BagReporter{Bag: bag}})
	return file, res, bag
}

func TestCheckTreeInvariants(t *testing.T) {
	for _, src := range []string{
		"",
		"<p>Hello @Name</p>\n",
		"@{ x := 1 }\n<ul>@for _, i := range items { <li>@i</li> }</ul>",
		"<div><p>a</div>",
		"@(",
	} {
		t.Run(src, func(t *testing.T) {
			file, res, bag := parse(t, src)
			require.NoError(t, testkit.CheckTreeInvariants(res.Root, file))
			require.NoError(t, testkit.CheckDiagnosticSpans(bag.Items(), file))
		})
	}
}

func TestCheckTreeInvariantsRejectsForeignFile(t *testing.T) {
	_, res, _ := parse(t, "<p>a</p>")
	other := source.NewFileSet()
	other.AddVirtual("x", nil)
	f := other.Get(other.AddVirtual("y.weave", []byte("<p>a</p>")))
	assert.Error(t, testkit.CheckTreeInvariants(res.Root, f))
	assert.Error(t, testkit.CheckTreeInvariants(nil, f))
}

func TestCheckDiagnosticSpans(t *testing.T) {
	file, _, _ := parse(t, "abc")
	ok := []diag.Diagnostic{diag.NewError(diag.SynMissingTagName, source.Span{File: file.ID, Start: 1, End: 3})}
	assert.NoError(t, testkit.CheckDiagnosticSpans(ok, file))

	bad := []diag.Diagnostic{diag.NewError(diag.SynMissingTagName, source.Span{File: file.ID, Start: 2, End: 9})}
	err := testkit.CheckDiagnosticSpans(bad, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYN2008 primary")
}

func TestDiff(t *testing.T) {
	assert.Empty(t, testkit.Diff("a\nb\n", "a\nb\n"))
	d := testkit.Diff("a\nb\n", "a\nc\n")
	assert.True(t, strings.HasPrefix(d, "--- want\n+++ got\n"), d)
	assert.Contains(t, d, "-b\n")
	assert.Contains(t, d, "+c\n")
}
