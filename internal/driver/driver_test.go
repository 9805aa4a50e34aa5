package driver_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"weave/internal/config"
	"weave/internal/diag"
	"weave/internal/driver"
	"weave/internal/token"
)

const root = "/proj"

func project(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, root+"/"+name, []byte(content), 0o644))
	}
	return fs
}

func build(t *testing.T, opts driver.Options) *driver.Result {
	t.Helper()
	if opts.Root == "" {
		opts.Root = root
	}
	res, err := driver.Build(context.Background(), opts)
	require.NoError(t, err)
	return res
}

func TestDiscover(t *testing.T) {
	fs := project(t, map[string]string{
		"views/a.weave":              "a",
		"views/sub/b.weave":          "b",
		"index.weave":                "i",
		"node_modules/pkg/x.weave":   "x",
		"views/readme.md":            "r",
		"views/a.weave.go":           "generated",
		"views/sub/skip.draft.weave": "d",
	})

	files, err := driver.Discover(fs, root, config.Build{
		Include: []string{"**/*.weave"},
		Exclude: []string{"node_modules/**", "**/*.draft.weave"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.weave", "views/a.weave", "views/sub/b.weave"}, files)

	files, err = driver.Discover(fs, root, config.Build{})
	require.NoError(t, err)
	assert.Len(t, files, 5)

	_, err = driver.Discover(fs, root, config.Build{Include: []string{"[a-"}})
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		rel  string
		out  config.Output
		want string
	}{
		{"views/card.weave", config.Output{Suffix: ".go"}, "views/card.weave.go"},
		{"card.weave", config.Output{}, "card.weave.go"},
		{"views/card.weave", config.Output{Suffix: "_gen.go", Dir: "gen"}, "gen/views/card.weave_gen.go"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, driver.OutputPath(tt.rel, tt.out))
		})
	}
	assert.Equal(t, "a.weave.go.map", driver.MapPath("a.weave.go"))
}

func TestBuildWritesOutputs(t *testing.T) {
	fs := project(t, map[string]string{
		"views/a.weave":     "<p>Hello @Name</p>\n",
		"views/sub/b.weave": "<b>@Title</b>\n",
	})
	cfg := config.Default()
	cfg.Output.SourceMaps = true

	res := build(t, driver.Options{Fs: fs, Config: &cfg, Write: true})
	require.Len(t, res.Documents, 2)
	assert.False(t, res.HasErrors())
	assert.Empty(t, res.Diagnostics())

	a := res.Documents[0]
	assert.Equal(t, "views/a.weave", a.Path)
	assert.Equal(t, "views/a.weave.go", a.Output)
	assert.Contains(t, a.Text, "/*line views/a.weave:1:11*/Name")
	assert.Contains(t, a.Text, "func (p *A) Execute(")

	written, err := afero.ReadFile(fs, root+"/views/a.weave.go")
	require.NoError(t, err)
	assert.Equal(t, a.Text, string(written))

	raw, err := afero.ReadFile(fs, root+"/views/sub/b.weave.go.map")
	require.NoError(t, err)
	var m struct {
		Version int      `json:"version"`
		File    string   `json:"file"`
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, "b.weave.go", m.File)
	assert.Equal(t, []string{"views/sub/b.weave"}, m.Sources)

	var phases []string
	for _, p := range res.Timings.Phases {
		phases = append(phases, p.Name)
	}
	assert.Equal(t, []string{"parse", "bind", "lower", "codegen"}, phases)
}

func TestBuildSkipsWritingDocumentsWithErrors(t *testing.T) {
	fs := project(t, map[string]string{
		"ok.weave":  "<p>ok</p>\n",
		"bad.weave": "<div>\n",
	})
	res := build(t, driver.Options{Fs: fs, Write: true})
	require.Len(t, res.Documents, 2)
	assert.True(t, res.HasErrors())

	bad, ok := res.Documents[0], res.Documents[1]
	assert.Equal(t, "bad.weave", bad.Path)
	assert.True(t, bad.HasErrors())
	assert.Empty(t, bad.Output)
	assert.Equal(t, "ok.weave.go", ok.Output)

	exists, err := afero.Exists(fs, root+"/bad.weave.go")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBuildExplicitFilesAndLoadErrors(t *testing.T) {
	fs := project(t, map[string]string{"a.weave": "<p>a</p>"})
	res, err := driver.Build(context.Background(), driver.Options{
		Fs:    fs,
		Root:  root,
		Files: []string{"a.weave", "missing.weave"},
	})
	require.Error(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Documents, 2)

	assert.NotEmpty(t, res.Documents[0].Text)
	missing := res.Documents[1]
	assert.Empty(t, missing.Text)
	require.Len(t, missing.Diagnostics, 1)
	assert.Equal(t, diag.IOLoadFileError, missing.Diagnostics[0].Code)
	assert.Equal(t, "missing.weave", res.FileSet.Get(missing.FileID).Path)
}

func TestBuildCache(t *testing.T) {
	fs := project(t, map[string]string{
		"a.weave":   "<p>Hello @Name</p>\n",
		"bad.weave": "<div>\n",
	})
	cache, err := driver.OpenDiskCache(fs, "/cache")
	require.NoError(t, err)

	first := build(t, driver.Options{Fs: fs, Cache: cache})
	assert.Equal(t, 0, first.CachedCount())

	second := build(t, driver.Options{Fs: fs, Cache: cache})
	assert.Equal(t, 2, second.CachedCount())
	for i := range first.Documents {
		assert.Equal(t, first.Documents[i].Text, second.Documents[i].Text)
		assert.Equal(t, first.Documents[i].Checksum, second.Documents[i].Checksum)
		if diff := cmp.Diff(first.Documents[i].Diagnostics, second.Documents[i].Diagnostics,
			cmpopts.IgnoreFields(diag.Diagnostic{}, "Args"), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("cached diagnostics differ (-fresh +cached):\n%s", diff)
		}
	}

	require.NoError(t, afero.WriteFile(fs, root+"/a.weave", []byte("<p>Bye @Name</p>\n"), 0o644))
	third := build(t, driver.Options{Fs: fs, Cache: cache})
	assert.False(t, third.Documents[0].Cached)
	assert.True(t, third.Documents[1].Cached)
	assert.Contains(t, third.Documents[0].Text, "Bye ")

	cfg := config.Default()
	cfg.Package = "pages"
	fourth := build(t, driver.Options{Fs: fs, Cache: cache, Config: &cfg})
	assert.Equal(t, 0, fourth.CachedCount())

	require.NoError(t, cache.DropAll())
	fifth := build(t, driver.Options{Fs: fs, Cache: cache})
	assert.Equal(t, 0, fifth.CachedCount())
}

func TestBuildObserver(t *testing.T) {
	fs := project(t, map[string]string{"a.weave": "a", "b.weave": "b"})

	var (
		mu     sync.Mutex
		events []driver.PhaseEvent
	)
	build(t, driver.Options{Fs: fs, Write: true, Jobs: 2, Observer: func(ev driver.PhaseEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}})

	count := map[string]int{}
	for _, ev := range events {
		if ev.Status == driver.PhaseEnd {
			assert.NoError(t, ev.Err)
			count[ev.Name]++
		}
	}
	assert.Equal(t, map[string]int{
		driver.PhaseLoad:    2,
		driver.PhaseCompile: 2,
		driver.PhaseWrite:   2,
	}, count)
}

func TestBuildCancelled(t *testing.T) {
	fs := project(t, map[string]string{"a.weave": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := driver.Build(ctx, driver.Options{Fs: fs, Root: root})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

const catalogA = `
descriptors:
  - id: ui.Card
    type: ui.Card
    rules:
      - tag: card
    attributes:
      - name: title
        type: string
`

const catalogB = `{"descriptors": [{"id": "ui.Input", "type": "ui.Input", "rules": [{"tag": "input"}]}]}`

func TestLoadCatalogs(t *testing.T) {
	fs := project(t, map[string]string{
		"tags/a.yaml": catalogA,
		"tags/b.json": catalogB,
	})

	cat, err := driver.LoadCatalogs(fs, root, []string{"tags/a.yaml", "tags/b.json"})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	empty, err := driver.LoadCatalogs(fs, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = driver.LoadCatalogs(fs, root, []string{"tags/a.yaml", "tags/a.yaml"})
	assert.Error(t, err, "duplicate descriptor ids")

	_, err = driver.LoadCatalogs(fs, root, []string{"tags/x.yaml", "tags/y.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
}

func TestBuildUsesConfiguredCatalogs(t *testing.T) {
	fs := project(t, map[string]string{
		"tags/a.yaml": catalogA,
		"page.weave":  `<card title="Hi">x</card>`,
	})
	cfg := config.Default()
	cfg.Binding.Catalogs = []string{"tags/a.yaml"}

	res := build(t, driver.Options{Fs: fs, Config: &cfg})
	require.Len(t, res.Documents, 1)
	assert.Contains(t, res.Documents[0].Text, "ui.Card")
}

func TestTokenizeAndParse(t *testing.T) {
	fs := project(t, map[string]string{"a.weave": "<p>Hi</p>"})

	tr, err := driver.Tokenize(fs, root+"/a.weave", 0)
	require.NoError(t, err)
	require.NotEmpty(t, tr.Tokens)
	assert.Equal(t, token.EOF, tr.Tokens[len(tr.Tokens)-1].Kind)
	assert.Equal(t, 0, tr.Bag.Len())

	pr, err := driver.Parse(fs, root+"/a.weave", 10)
	require.NoError(t, err)
	assert.NotNil(t, pr.Result.Root)
	assert.Equal(t, 0, pr.Bag.Len())

	_, err = driver.Tokenize(fs, root+"/none.weave", 0)
	assert.Error(t, err)
}
