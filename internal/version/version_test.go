package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withVars(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate = v, commit, date
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, color.NoColor = origVersion, origCommit, origDate, origNoColor
	})
}

func TestVersion_DefaultIsPlain(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotContains(t, Version, "\x1b[")
}

func TestColored(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			withVars(t, tt.version, "", "")
			assert.Equal(t, tt.want, Colored())
		})
	}
}

func TestColored_WithColor(t *testing.T) {
	withVars(t, "1.2.3", "", "")
	color.NoColor = false
	got := Colored()
	assert.Contains(t, got, "\x1b[")
	assert.NotEqual(t, "1.2.3", got)
}

func TestBanner(t *testing.T) {
	withVars(t, "1.2.3", "", "")
	assert.Equal(t, "weave 1.2.3\n", Banner())

	withVars(t, "1.2.3", "abc123", "2024-01-15T10:30:00Z")
	assert.Equal(t, "weave 1.2.3\ncommit: abc123\nbuilt:  2024-01-15T10:30:00Z\n", Banner())
}
