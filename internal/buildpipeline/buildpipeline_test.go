package buildpipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/internal/driver"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// last returns the final status each file reached.
func (r *recorder) last() map[string]Status {
	out := map[string]Status{}
	for _, ev := range r.events {
		if ev.File != "" {
			out[ev.File] = ev.Status
		}
	}
	return out
}

func TestBuildEmitsProgress(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a.weave", []byte("<p>@A</p>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/p/views/b.weave", []byte("<div>"), 0o644))

	rec := &recorder{}
	res, err := Build(context.Background(), &Request{Fs: fs, Root: "/p", Write: true, Progress: rec})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.weave", "views/b.weave"}, res.Files)
	require.Len(t, res.Build.Documents, 2)

	assert.Equal(t, map[string]Status{
		"a.weave":       StatusDone,
		"views/b.weave": StatusError,
	}, rec.last())
	assert.Equal(t, Event{File: "a.weave", Stage: StageLoad, Status: StatusQueued}, rec.events[0])
	assert.True(t, res.Timings.Has(StageDiscover))
	assert.True(t, res.Timings.Has(StageCompile))
	assert.True(t, res.Timings.Has(StageWrite))
}

func TestBuildReportsCachedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p/a.weave", []byte("<p>@A</p>"), 0o644))
	cache, err := driver.OpenDiskCache(fs, "/cache")
	require.NoError(t, err)

	_, err = Build(context.Background(), &Request{Fs: fs, Root: "/p", Cache: cache})
	require.NoError(t, err)

	rec := &recorder{}
	_, err = Build(context.Background(), &Request{Fs: fs, Root: "/p", Cache: cache, Progress: rec})
	require.NoError(t, err)
	assert.Equal(t, StatusCached, rec.last()["a.weave"])
}

func TestBuildDiscoverError(t *testing.T) {
	rec := &recorder{}
	_, err := Build(context.Background(), &Request{Fs: afero.NewMemMapFs(), Root: "/missing", Progress: rec})
	require.Error(t, err)
	require.NotEmpty(t, rec.events)
	assert.Equal(t, StatusError, rec.events[len(rec.events)-1].Status)
}

func TestDisplayFiles(t *testing.T) {
	got := DisplayFiles([]string{"b.weave", "./a.weave", "b.weave", ""}, "")
	assert.Equal(t, []string{"a.weave", "b.weave"}, got)

	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "other.weave")
	got = DisplayFiles([]string{filepath.Join(base, "views", "x.weave"), outside}, base)
	assert.Equal(t, []string{filepath.ToSlash(outside), "views/x.weave"}, got)
}

func TestTimings(t *testing.T) {
	var tm Timings
	tm.Add(StageCompile, 2)
	tm.Add(StageCompile, 3)
	tm.Set(StageWrite, 4)
	assert.EqualValues(t, 5, tm.Duration(StageCompile))
	assert.EqualValues(t, 9, tm.Sum(StageCompile, StageWrite))
	assert.False(t, tm.Has(StageLoad))
}
