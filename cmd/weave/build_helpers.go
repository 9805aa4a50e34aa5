package main

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/buildpipeline"
	"weave/internal/driver"
)

type buildSettings struct {
	title   string
	write   bool
	noCache bool
	ui      uiMode
}

// runProjectBuild resolves the project from args and runs the build pipeline,
// with the progress UI when the mode allows it. The result is returned even
// when the build reports I/O errors.
func runProjectBuild(cmd *cobra.Command, args []string, s buildSettings) (*project, *buildpipeline.Result, error) {
	p, err := loadProject(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	cache, err := p.openCache(s.noCache)
	if err != nil {
		return p, nil, err
	}
	req := &buildpipeline.Request{
		Fs:      p.fs,
		Root:    p.root,
		Files:   p.files,
		Config:  &p.cfg,
		Catalog: p.catalog,
		Cache:   cache,
		Write:   s.write,
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return p, nil, errors.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet && s.ui.enabled() {
		// Модели прогресса нужен список файлов заранее
		if len(req.Files) == 0 {
			found, err := driver.Discover(p.fs, p.root, p.cfg.Build)
			if err != nil {
				return p, nil, err
			}
			req.Files = found
		}
		if len(req.Files) > 0 {
			res, err := runBuildWithUI(cmd.Context(), cmd.OutOrStdout(), s.title, buildpipeline.DisplayFiles(req.Files, ""), req)
			return p, res, err
		}
	}
	res, err := buildpipeline.Build(cmd.Context(), req)
	return p, res, err
}

// reportBuild prints diagnostics and, with --timings, the stage timings.
// It returns errDiagnostics when a document has errors.
func reportBuild(cmd *cobra.Command, p *project, res *buildpipeline.Result) error {
	if res == nil || res.Build == nil {
		return nil
	}
	if err := printDiagnostics(cmd, res.Build.Diagnostics(), res.Build.FileSet, p.root); err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return errors.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		if err := printStageTimings(cmd.ErrOrStderr(), res.Timings, res.Build.Timings); err != nil {
			return err
		}
	}
	if res.Build.HasErrors() {
		return errDiagnostics
	}
	return nil
}
