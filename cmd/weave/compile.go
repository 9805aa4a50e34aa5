package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] [path...]",
		Short: "Compile templates into Go source files",
		Long: `Compile generates a Go file (and optionally a source map) for every template
of the project, or for the given files and directories. Documents with errors
are not written.`,
		RunE: runCompile,
	}
	addUIFlag(cmd, uiModeAuto)
	cmd.Flags().Bool("no-cache", false, "ignore the disk cache")
	cmd.Flags().Bool("stdout", false, "print generated code instead of writing files")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	mode := uiModeFlag(cmd)
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return errors.Errorf("failed to get no-cache flag: %w", err)
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return errors.Errorf("failed to get stdout flag: %w", err)
	}
	if toStdout {
		// Прогресс смешался бы с кодом
		mode = uiModeOff
	}

	p, res, buildErr := runProjectBuild(cmd, args, buildSettings{
		title:   "weave compile",
		write:   !toStdout,
		noCache: noCache,
		ui:      mode,
	})
	if res == nil || res.Build == nil {
		if buildErr == nil {
			buildErr = errors.New("build produced no result")
		}
		return buildErr
	}

	out := cmd.OutOrStdout()
	if toStdout {
		for i := range res.Build.Documents {
			doc := &res.Build.Documents[i]
			if doc.HasErrors() || doc.Text == "" {
				continue
			}
			if _, err := io.WriteString(out, doc.Text); err != nil {
				return err
			}
		}
	}
	reportErr := reportBuild(cmd, p, res)

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return errors.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet && !toStdout {
		written := 0
		for i := range res.Build.Documents {
			if res.Build.Documents[i].Output != "" {
				written++
			}
		}
		fmt.Fprintf(out, "compiled %d of %d %s (%d cached)\n",
			written, len(res.Build.Documents), plural(len(res.Build.Documents), "file", "files"),
			res.Build.CachedCount())
	}
	if buildErr != nil {
		return buildErr
	}
	return reportErr
}
