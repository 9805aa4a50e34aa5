package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"weave/internal/version"
)

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
}

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show weave build information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("hash", false, "include git commit hash")
	cmd.Flags().Bool("date", false, "include build timestamp")
	cmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return errors.Errorf("failed to get format flag: %w", err)
	}
	full, _ := cmd.Flags().GetBool("full")
	hash, _ := cmd.Flags().GetBool("hash")
	date, _ := cmd.Flags().GetBool("date")
	opts := versionOptions{
		format:   strings.ToLower(format),
		showHash: hash || full,
		showDate: date || full,
	}

	switch opts.format {
	case "pretty":
		return renderVersionPretty(cmd.OutOrStdout(), opts)
	case "json":
		return renderVersionJSON(cmd.OutOrStdout(), opts)
	default:
		return errors.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderVersionPretty(out io.Writer, opts versionOptions) error {
	if _, err := fmt.Fprintf(out, "weave %s\n", version.Colored()); err != nil {
		return err
	}
	if opts.showHash {
		if _, err := fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit)); err != nil {
			return err
		}
	}
	if opts.showDate {
		if _, err := fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate)); err != nil {
			return err
		}
	}
	return nil
}

func renderVersionJSON(out io.Writer, opts versionOptions) error {
	payload := versionPayload{
		Tool:    "weave",
		Version: strings.TrimSpace(version.Version),
	}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
