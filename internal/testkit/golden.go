package testkit

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff between want and got, or "" when they match.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// EqualText fails t with a line diff when got differs from want.
func EqualText(t testing.TB, want, got string) {
	t.Helper()
	if d := Diff(want, got); d != "" {
		t.Errorf("text mismatch:\n%s", d)
	}
}
