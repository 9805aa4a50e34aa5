package config

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Find walks up from startDir to locate weave.toml.
func Find(fsys afero.Fs, startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := fsys.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, afero.ErrFileNotFound) {
			return "", false, errors.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads a weave.toml over the defaults and validates the result.
func Load(fsys afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Config{}, errors.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.WithDetails(errors.Errorf("%s: %w", path, err), "path", path)
	}
	return cfg, nil
}

// Parse decodes weave.toml content over the defaults. Unknown keys are
// errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Discover finds and loads the project configuration for startDir. Without
// a weave.toml it returns the defaults and an empty root.
func Discover(fsys afero.Fs, startDir string) (cfg Config, root string, err error) {
	path, ok, err := Find(fsys, startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err = Load(fsys, path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, filepath.Dir(path), nil
}
