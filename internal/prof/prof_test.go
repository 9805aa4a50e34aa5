package prof

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWritesProfiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := Start(fs, Options{CPU: "/cpu.pprof", Mem: "/mem.pprof"})
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	for _, p := range []string{"/cpu.pprof", "/mem.pprof"} {
		info, err := fs.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}
}

func TestSessionDisabled(t *testing.T) {
	s, err := Start(afero.NewMemMapFs(), Options{})
	require.NoError(t, err)
	assert.NoError(t, s.Stop())

	var nilSession *Session
	assert.NoError(t, nilSession.Stop())
}

func TestStartFailsOnBadPath(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := Start(fs, Options{CPU: "/cpu.pprof"})
	assert.Error(t, err)
}
