package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/compiler"
	"weave/internal/diagfmt"
	"weave/internal/driver"
	"weave/internal/ir"
	"weave/internal/lower"
	"weave/internal/source"
)

func newIRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ir [flags] file.weave",
		Short: "Lower a template and print the intermediate representation",
		Args:  cobra.ExactArgs(1),
		RunE:  runIR,
	}
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().String("until", "", "stop lowering after the named pass")
	cmd.Flags().Bool("go", false, "print the generated Go source instead of the tree")
	return cmd
}

func runIR(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return errors.Errorf("failed to get format flag: %w", err)
	}
	until, err := cmd.Flags().GetString("until")
	if err != nil {
		return errors.Errorf("failed to get until flag: %w", err)
	}
	printGo, err := cmd.Flags().GetBool("go")
	if err != nil {
		return errors.Errorf("failed to get go flag: %w", err)
	}
	passes, err := passesUntil(until)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	cfg, root, err := loadConfig(cmd, fs, filepath.Dir(abs))
	if err != nil {
		return err
	}
	extra, err := cmd.Root().PersistentFlags().GetStringSlice("catalog")
	if err != nil {
		return errors.Errorf("failed to get catalog flag: %w", err)
	}
	catalogs := append([]string(nil), cfg.Binding.Catalogs...)
	for _, c := range extra {
		abs, err := filepath.Abs(c)
		if err != nil {
			return err
		}
		catalogs = append(catalogs, abs)
	}
	cat, err := driver.LoadCatalogs(fs, root, catalogs)
	if err != nil {
		return err
	}
	style, err := cfg.Style(fs, abs+cfg.Output.Suffix)
	if err != nil {
		return err
	}

	fileSet := source.NewFileSetFS(fs)
	id, err := fileSet.Load(args[0])
	if err != nil {
		return err
	}
	res, err := compiler.Compile(cmd.Context(), compiler.Input{
		File:    fileSet.Get(id),
		Catalog: cat,
		Config:  &cfg,
		Writer:  style,
		Passes:  passes,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case printGo:
		_, err = out.Write([]byte(res.Text))
	case format == "text":
		err = ir.Dump(out, res.IR)
	case format == "json":
		err = diagfmt.FormatIRJSON(out, res.IR)
	default:
		return errors.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if err := printDiagnostics(cmd, res.Diagnostics, fileSet, root); err != nil {
		return err
	}
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), res.Timings.String())
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}

// passesUntil returns the default pipeline cut after the named pass.
func passesUntil(name string) ([]lower.Pass, error) {
	all := lower.Passes()
	if name == "" {
		return all, nil
	}
	names := make([]string, 0, len(all))
	for i, p := range all {
		if p.Name == name {
			return all[:i+1], nil
		}
		names = append(names, p.Name)
	}
	return nil, errors.Errorf("unknown pass %q (expected one of %s)", name, strings.Join(names, ", "))
}
