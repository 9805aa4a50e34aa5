// Command weave compiles templates into Go source.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"weave/internal/version"
)

// newRootCmd builds the command tree. Each call returns fresh commands, so
// flag state never leaks between invocations. The returned function stops
// profiling and tracing; call it once the command has finished, even on error.
func newRootCmd() (*cobra.Command, func()) {
	rootCmd := &cobra.Command{
		Use:           "weave",
		Short:         "Template compiler for Go",
		Long:          `Weave compiles markup templates with embedded Go into Go source files with source maps`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Добавляем команды
	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newIRCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newDirectivesCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("diagnostics-format", "pretty", "diagnostics format (pretty|json|sarif)")
	flags.String("path-mode", "auto", "how paths are shown in diagnostics (auto|absolute|relative|basename)")
	flags.String("config", "", "path to weave.toml (default: search upwards from the working directory)")
	flags.StringSlice("catalog", nil, "extra descriptor catalog files (yaml|json|toml)")
	flags.String("log-level", "warn", "log level (trace|debug|info|warn|error|disabled)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage (stream|ring|both|log)")
	flags.String("trace-format", "auto", "trace output format (auto|text|ndjson|chrome)")
	flags.Int("trace-ring-size", 4096, "trace ring buffer size")
	flags.Duration("trace-heartbeat", 0, "trace heartbeat interval (0 disables)")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	var cleanups []func()
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := setupLogger(cmd); err != nil {
			return err
		}
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopProfiling)
		stopTracing, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopTracing)
		return nil
	}
	finish := func() {
		// В обратном порядке
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		cleanups = nil
	}
	return rootCmd, finish
}

// main executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd, finish := newRootCmd()
	err := rootCmd.ExecuteContext(context.Background())
	finish()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
