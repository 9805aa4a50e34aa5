package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Compile templates and report diagnostics without writing output",
		Long: `Check compiles every template of the project, or the given files and
directories, and prints the diagnostics. Nothing is written except the disk cache.`,
		RunE: runCheck,
	}
	addUIFlag(cmd, uiModeOff)
	cmd.Flags().Bool("no-cache", false, "ignore the disk cache")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	mode := uiModeFlag(cmd)
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return errors.Errorf("failed to get no-cache flag: %w", err)
	}

	p, res, buildErr := runProjectBuild(cmd, args, buildSettings{title: "weave check", noCache: noCache, ui: mode})
	if res == nil || res.Build == nil {
		if buildErr == nil {
			buildErr = errors.New("build produced no result")
		}
		return buildErr
	}
	reportErr := reportBuild(cmd, p, res)

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return errors.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		errs, warnings := countSeverities(res.Build.Diagnostics())
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d %s: %d %s, %d %s\n",
			len(res.Build.Documents), plural(len(res.Build.Documents), "file", "files"),
			errs, plural(errs, "error", "errors"),
			warnings, plural(warnings, "warning", "warnings"))
	}
	if buildErr != nil {
		return buildErr
	}
	return reportErr
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
