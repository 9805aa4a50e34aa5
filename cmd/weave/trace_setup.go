package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"weave/internal/trace"
)

// readTraceFlags turns the persistent --trace* flags into a tracer config.
func readTraceFlags(flags *pflag.FlagSet) (cfg trace.Config, err error) {
	get := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		v, err = flags.GetString(name)
		if err != nil {
			err = errors.Errorf("failed to get %s flag: %w", name, err)
		}
		return v
	}
	cfg.OutputPath = get("trace")
	levelStr := get("trace-level")
	modeStr := get("trace-mode")
	formatStr := get("trace-format")
	if err != nil {
		return cfg, err
	}
	if cfg.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return cfg, errors.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if cfg.Heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return cfg, errors.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if cfg.Level, err = trace.ParseLevel(levelStr); err != nil {
		return cfg, errors.Errorf("invalid trace level: %w", err)
	}
	// --trace without a level means phase tracing.
	if cfg.Level == trace.LevelOff && cfg.OutputPath != "" {
		cfg.Level = trace.LevelPhase
	}
	if cfg.Mode, err = trace.ParseMode(modeStr); err != nil {
		return cfg, errors.Errorf("invalid trace mode: %w", err)
	}
	// A file without an explicit mode streams into it.
	if cfg.OutputPath != "" && !flags.Changed("trace-mode") {
		cfg.Mode = trace.ModeStream
	}
	if cfg.Format, err = trace.ParseFormat(formatStr); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupTracing builds the tracer from the root flags and attaches it to the
// command context. The returned cleanup stops the heartbeat, then flushes
// and closes the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := readTraceFlags(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if cfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	cfg.Logger = *zerolog.Ctx(cmd.Context())

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, errors.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	heartbeat := trace.StartHeartbeat(tracer, cfg.Heartbeat)

	return func() {
		heartbeat.Stop()
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
