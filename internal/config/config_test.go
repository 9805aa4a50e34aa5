package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/binder"
	"weave/internal/codegen"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, TargetGo, cfg.Target)
	assert.True(t, cfg.LinePragmas)
	assert.Equal(t, binder.AmbiguityFirst, cfg.Binding.Ambiguity)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
package = "pages"
design_time = true
line_pragmas = false

[binding]
ambiguity = "reject"
catalogs = ["helpers.yaml"]

[output]
indent_style = "space"
indent_size = 2
source_maps = true

[build]
include = ["views/**/*.weave"]
jobs = 4
`))
	require.NoError(t, err)
	assert.Equal(t, "pages", cfg.Package)
	assert.True(t, cfg.DesignTime)
	assert.False(t, cfg.LinePragmas)
	assert.Equal(t, binder.AmbiguityReject, cfg.Binding.Ambiguity)
	assert.Equal(t, []string{"helpers.yaml"}, cfg.Binding.Catalogs)
	assert.Equal(t, "space", cfg.Output.IndentStyle)
	assert.Equal(t, ".go", cfg.Output.Suffix, "defaults survive")
	assert.Equal(t, []string{"views/**/*.weave"}, cfg.Build.Include)
	assert.Equal(t, 4, cfg.Build.Jobs)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name, src, want string
	}{
		{"unknown key", "colour = 1", `unknown key "colour"`},
		{"bad toml", "package = ", "failed to parse TOML"},
		{"bad policy", "[binding]\nambiguity = \"last\"", "want first or reject"},
		{"bad newline", "[output]\nnewline = \"cr\"", "want lf or crlf"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Target = "js"
	cfg.Package = "1pages"
	cfg.Build.Jobs = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `target "js" is not supported`)
	assert.Contains(t, err.Error(), `package "1pages" is not a Go identifier`)
	assert.Contains(t, err.Error(), "build.jobs must not be negative")
}

func TestDiscover(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/proj/weave.toml", []byte("package = \"site\"\n"), 0o644))
	require.NoError(t, fsys.MkdirAll("/proj/views/admin", 0o755))

	cfg, root, err := Discover(fsys, "/proj/views/admin")
	require.NoError(t, err)
	assert.Equal(t, "/proj", root)
	assert.Equal(t, "site", cfg.Package)

	cfg, root, err = Discover(fsys, "/elsewhere")
	require.NoError(t, err)
	assert.Empty(t, root)
	assert.Equal(t, Default(), cfg)
}

func TestStyle(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/.editorconfig", []byte("[*]\nindent_size = 8\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/.editorconfig",
		[]byte("root = true\n\n[*]\nindent_style = space\nindent_size = 2\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/out/.editorconfig", []byte("[*]\nend_of_line = crlf\n"), 0o644))

	cfg := Default()
	opt, err := cfg.Style(fsys, "/proj/out/page.weave.go")
	require.NoError(t, err)
	assert.Equal(t, codegen.WriterOptions{UseSpaces: true, IndentWidth: 2, Newline: "\r\n"}, opt,
		"the root file stops the walk")

	cfg.Output.IndentStyle = "tab"
	cfg.Output.Newline = "lf"
	opt, err = cfg.Style(fsys, "/proj/out/page.weave.go")
	require.NoError(t, err)
	assert.False(t, opt.UseSpaces)
	assert.Empty(t, opt.Newline)
}

func TestStyleWithoutEditorConfig(t *testing.T) {
	cfg := Default()
	opt, err := cfg.Style(afero.NewMemMapFs(), "/proj/page.weave.go")
	require.NoError(t, err)
	assert.Equal(t, codegen.WriterOptions{}, opt)
}

func TestFingerprint(t *testing.T) {
	a, b := Default(), Default()
	b.Build.Jobs = 8
	b.Output.Dir = "gen"
	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb, "build settings do not change output")

	b.DesignTime = true
	fb, err = b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}
