package main

import (
	"fmt"
	"io"
	"time"

	"weave/internal/buildpipeline"
	"weave/internal/observ"
)

// printStageTimings writes one line per stage that ran, then the compiler
// phase totals summed over all documents.
func printStageTimings(out io.Writer, timings *buildpipeline.Timings, phases observ.Report) error {
	if out == nil || timings == nil {
		return nil
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%-9s %.1f ms\n", stage, toMillis(timings.Duration(stage))); err != nil {
			return err
		}
	}
	if len(phases.Phases) == 0 {
		return nil
	}
	_, err := io.WriteString(out, phases.String())
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
