package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/diagfmt"
	"weave/internal/driver"
	"weave/internal/syntax"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file.weave",
		Short: "Parse a template and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "tree", "output format (tree|json|none)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return errors.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return errors.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Parse(afero.NewOsFs(), args[0], maxDiagnostics)
	if err != nil {
		return errors.Errorf("parse failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "tree":
		err = syntax.Dump(out, result.Result.Root)
	case "json":
		err = diagfmt.FormatSyntaxJSON(out, result.Result.Root, result.File)
	case "none":
	default:
		return errors.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if err := printDiagnostics(cmd, result.Bag.Items(), result.FileSet, ""); err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}
