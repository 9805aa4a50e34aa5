package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/prof"
)

// setupProfiling starts the profilers requested by the persistent flags and
// returns the function that stops them.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	cpuProfile, err := flags.GetString("cpu-profile")
	if err != nil {
		return nil, errors.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := flags.GetString("mem-profile")
	if err != nil {
		return nil, errors.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := flags.GetString("runtime-trace")
	if err != nil {
		return nil, errors.Errorf("failed to get runtime-trace flag: %w", err)
	}

	session, err := prof.Start(afero.NewOsFs(), prof.Options{
		CPU:          cpuProfile,
		Mem:          memProfile,
		RuntimeTrace: tracePath,
	})
	if err != nil {
		return nil, err
	}
	errOut := cmd.ErrOrStderr()
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(errOut, "weave: profiling: %v\n", err)
		}
	}, nil
}
