package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/diagfmt"
	"weave/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.weave",
		Short: "Tokenize a template",
		Long:  `Tokenize breaks a template into markup tokens as the lexer sees them without the parser switching modes`,
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return errors.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return errors.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	// Выполняем токенизацию
	result, err := driver.Tokenize(afero.NewOsFs(), filePath, maxDiagnostics)
	if err != nil {
		return errors.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if err := printDiagnostics(cmd, result.Bag.Items(), result.FileSet, ""); err != nil {
		return err
	}

	// Выводим токены в выбранном формате
	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens)
	default:
		return errors.Errorf("unknown format: %s", format)
	}
}
