package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// setupLogger installs a console logger on stderr into the command context.
// The --color flag also switches colored diagnostics and banners globally.
func setupLogger(cmd *cobra.Command) error {
	root := cmd.Root()
	levelStr, err := root.PersistentFlags().GetString("log-level")
	if err != nil {
		return errors.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return errors.Errorf("invalid log level %q: %w", levelStr, err)
	}
	useColor, err := colorEnabled(cmd, os.Stderr)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		NoColor:    !useColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

// colorEnabled resolves --color for output going to f.
func colorEnabled(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, errors.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, errors.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}

// reportError prints a command failure. Diagnostics were already printed, so
// errDiagnostics only sets the exit status.
func reportError(w io.Writer, err error) {
	if errors.Is(err, errDiagnostics) {
		return
	}
	fmt.Fprintf(w, "weave: %v\n", err)
}
