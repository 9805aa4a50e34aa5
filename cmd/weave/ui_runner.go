package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"weave/internal/buildpipeline"
	"weave/internal/ui"
)

// runBuildWithUI draws the progress of req on out while the build runs in
// the background. The build result wins over a UI error; a UI killed by
// ctx is not an error.
func runBuildWithUI(ctx context.Context, out io.Writer, title string, files []string, req *buildpipeline.Request) (*buildpipeline.Result, error) {
	if req == nil {
		return nil, errors.New("missing build request")
	}
	events := make(chan buildpipeline.Event, 256)
	bg := *req
	bg.Progress = buildpipeline.ChannelSink{Ch: events}

	var (
		g   errgroup.Group
		res *buildpipeline.Result
	)
	g.Go(func() error {
		defer close(events)
		var err error
		res, err = buildpipeline.Build(ctx, &bg)
		return err
	})

	program := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// Программа могла завершиться раньше сборки
	for range events {
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return res, errors.Errorf("progress ui: %w", uiErr)
	}
	return res, nil
}
