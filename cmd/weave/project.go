package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/catalog"
	"weave/internal/config"
	"weave/internal/driver"
)

// project is the resolved build context of a command: configuration, root,
// catalog and the documents named on the command line.
type project struct {
	fs      afero.Fs
	root    string
	cfg     config.Config
	catalog *catalog.Catalog
	// files are root-relative; empty means discovery from the root.
	files []string
}

func loadProject(cmd *cobra.Command, args []string) (*project, error) {
	fs := afero.NewOsFs()
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("working directory: %w", err)
	}

	cfg, root, err := loadConfig(cmd, fs, cwd)
	if err != nil {
		return nil, err
	}
	p := &project{fs: fs, root: root, cfg: cfg}

	extra, err := cmd.Root().PersistentFlags().GetStringSlice("catalog")
	if err != nil {
		return nil, errors.Errorf("failed to get catalog flag: %w", err)
	}
	catalogs := slices.Clone(cfg.Binding.Catalogs)
	for _, c := range extra {
		abs, err := filepath.Abs(c)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, abs)
	}
	p.catalog, err = driver.LoadCatalogs(fs, root, catalogs)
	if err != nil {
		return nil, errors.Errorf("load catalogs: %w", err)
	}

	for _, arg := range args {
		files, err := p.resolve(arg)
		if err != nil {
			return nil, err
		}
		p.files = append(p.files, files...)
	}
	return p, nil
}

// loadConfig reads --config or searches weave.toml upwards from start. The
// project root is the directory of the config file, or start without one.
func loadConfig(cmd *cobra.Command, fs afero.Fs, start string) (config.Config, string, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, "", errors.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return config.Config{}, "", err
		}
		cfg, err := config.Load(fs, abs)
		if err != nil {
			return config.Config{}, "", err
		}
		return cfg, filepath.Dir(abs), nil
	}
	cfg, root, err := config.Discover(fs, start)
	if err != nil {
		return config.Config{}, "", err
	}
	if root == "" {
		root = start
	}
	return cfg, root, nil
}

// resolve turns a command line path into root-relative documents. A directory
// expands through the configured globs.
func (p *project) resolve(arg string) ([]string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(p.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.Errorf("%s is outside the project root %s", arg, p.root)
	}
	info, err := p.fs.Stat(abs)
	if err != nil {
		return nil, errors.Errorf("%s: %w", arg, err)
	}
	if !info.IsDir() {
		return []string{filepath.ToSlash(rel)}, nil
	}
	found, err := driver.Discover(p.fs, abs, p.cfg.Build)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, filepath.ToSlash(filepath.Join(rel, f)))
	}
	return out, nil
}

// openCache returns the disk cache configured in build.cache, or nil.
func (p *project) openCache(disabled bool) (*driver.DiskCache, error) {
	dir := p.cfg.Build.Cache
	if disabled || dir == "" {
		return nil, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.root, dir)
	}
	return driver.OpenDiskCache(p.fs, dir)
}
