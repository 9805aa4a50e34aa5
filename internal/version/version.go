// Package version holds build information for the weave CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
	labelColor        = color.New(color.Faint)
)

var (
	// Version is the semantic version of the CLI. It takes part in disk
	// cache keys, so a new release never reads an older cache entry.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with the major, minor and patch numbers in
// distinct colors. Colors follow color.NoColor.
func Colored() string {
	core, rest, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2])
	if rest != "" {
		out += "-" + rest
	}
	return out
}

// Banner is the text printed by "weave version".
func Banner() string {
	var b strings.Builder
	b.WriteString("weave ")
	b.WriteString(Colored())
	b.WriteByte('\n')
	if GitCommit != "" {
		b.WriteString(labelColor.Sprint("commit: "))
		b.WriteString(GitCommit)
		b.WriteByte('\n')
	}
	if BuildDate != "" {
		b.WriteString(labelColor.Sprint("built:  "))
		b.WriteString(BuildDate)
		b.WriteByte('\n')
	}
	return b.String()
}
