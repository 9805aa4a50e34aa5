package main

import (
	"github.com/spf13/cobra"

	"weave/internal/directive"
)

func newDirectivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directives",
		Short: "List the built-in directives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return directive.WriteTable(cmd.OutOrStdout(), directive.Builtins())
		},
	}
}
