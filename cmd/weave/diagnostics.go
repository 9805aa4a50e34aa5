package main

import (
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/diag"
	"weave/internal/diagfmt"
	"weave/internal/source"
	"weave/internal/version"
)

// errDiagnostics marks a run whose diagnostics contained errors.
var errDiagnostics = errors.Base("diagnostics reported errors")

// printDiagnostics renders items to stderr in the selected format.
func printDiagnostics(cmd *cobra.Command, items []diag.Diagnostic, fs *source.FileSet, baseDir string) error {
	flags := cmd.Root().PersistentFlags()
	format, err := flags.GetString("diagnostics-format")
	if err != nil {
		return errors.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return errors.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	modeStr, err := flags.GetString("path-mode")
	if err != nil {
		return errors.Errorf("failed to get path-mode flag: %w", err)
	}
	mode, ok := diagfmt.ParsePathMode(modeStr)
	if !ok {
		return errors.Errorf("invalid --path-mode value %q", modeStr)
	}

	total := len(items)
	if maxDiagnostics > 0 && len(items) > maxDiagnostics {
		items = items[:maxDiagnostics]
	}
	out := cmd.ErrOrStderr()

	switch format {
	case "pretty":
		if len(items) == 0 {
			return nil
		}
		useColor, err := colorEnabled(cmd, os.Stderr)
		if err != nil {
			return err
		}
		if err := diagfmt.Pretty(out, items, fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     1,
			PathMode:    mode,
			BaseDir:     baseDir,
			ShowNotes:   true,
			ShowFixes:   true,
			ShowPreview: true,
		}); err != nil {
			return err
		}
		if total > len(items) {
			_, err = out.Write([]byte("... and more diagnostics; raise --max-diagnostics to see them\n"))
		}
		return err
	case "json":
		return diagfmt.JSON(out, items, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         mode,
			BaseDir:          baseDir,
			IncludeNotes:     true,
			IncludeFixes:     true,
		})
	case "sarif":
		return diagfmt.Sarif(out, items, fs, diagfmt.SarifRunMeta{
			ToolName:       "weave",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
			BaseDir:        baseDir,
		})
	default:
		return errors.Errorf("unknown diagnostics format %q (expected pretty|json|sarif)", format)
	}
}

// countSeverities returns the number of errors and warnings in items.
func countSeverities(items []diag.Diagnostic) (errs, warnings int) {
	for i := range items {
		switch items[i].Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warnings++
		}
	}
	return errs, warnings
}
