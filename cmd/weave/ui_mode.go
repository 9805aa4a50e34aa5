package main

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// uiMode is the value of --ui. It implements pflag.Value, so a bad value is
// rejected while flags are parsed.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = []uiMode{uiModeAuto, uiModeOn, uiModeOff}

func (m *uiMode) String() string { return string(*m) }
func (m *uiMode) Type() string   { return "mode" }

func (m *uiMode) Set(value string) error {
	v := uiMode(strings.ToLower(strings.TrimSpace(value)))
	if v == "" {
		v = uiModeAuto
	}
	if !slices.Contains(uiModes, v) {
		return errors.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	*m = v
	return nil
}

func addUIFlag(cmd *cobra.Command, def uiMode) {
	mode := def
	cmd.Flags().Var(&mode, "ui", "progress UI mode (auto|on|off)")
}

func uiModeFlag(cmd *cobra.Command) uiMode {
	if f := cmd.Flags().Lookup("ui"); f != nil {
		if mode, ok := f.Value.(*uiMode); ok {
			return *mode
		}
	}
	return uiModeOff
}

// enabled reports whether the progress UI should run; auto asks whether
// stdout is a terminal.
func (m uiMode) enabled() bool {
	if m == uiModeAuto {
		return isTerminal(os.Stdout)
	}
	return m == uiModeOn
}
