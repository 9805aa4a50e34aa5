package buildpipeline

import (
	"context"
	"time"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"weave/internal/catalog"
	"weave/internal/config"
	"weave/internal/driver"
	"weave/internal/syntax"
	"weave/internal/trace"
)

// Request configures one build.
type Request struct {
	Fs   afero.Fs
	Root string
	// Files are root-relative documents. Empty means discovery through
	// Config.Build.
	Files   []string
	Config  *config.Config
	Catalog *catalog.Catalog
	Cache   *driver.DiskCache
	Write   bool
	Jobs    int
	// Progress receives per-file events; nil disables progress reporting.
	Progress ProgressSink
}

// Result captures the driver result and stage timings.
type Result struct {
	Build   *driver.Result
	Files   []string
	Timings *Timings
}

// Build discovers the inputs, announces them as queued and runs the driver,
// translating its phase events into progress events.
func Build(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("missing build request")
	}
	fsys := req.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	cfg := req.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	result := &Result{Timings: &Timings{}}

	files := req.Files
	if len(files) == 0 {
		_, stage := trace.Start(ctx, trace.ScopeStage, string(StageDiscover))
		start := time.Now()
		found, err := driver.Discover(fsys, req.Root, cfg.Build)
		stage.End("")
		result.Timings.Set(StageDiscover, time.Since(start))
		if err != nil {
			emitStage(req.Progress, nil, StageDiscover, StatusError, err, 0)
			return result, err
		}
		files = found
	}
	files = DisplayFiles(files, "")
	result.Files = files
	emitQueued(req.Progress, files)

	observer := &phaseObserver{sink: req.Progress, timings: result.Timings}
	res, err := driver.Build(ctx, driver.Options{
		Fs:       fsys,
		Root:     req.Root,
		Files:    files,
		Config:   cfg,
		Catalog:  req.Catalog,
		Cache:    req.Cache,
		Shared:   syntax.NewCache(),
		Jobs:     req.Jobs,
		Write:    req.Write,
		Observer: observer.OnPhase,
	})
	result.Build = res
	if res == nil {
		emitStage(req.Progress, files, StageCompile, StatusError, err, 0)
		return result, err
	}

	final := StageCompile
	if req.Write {
		final = StageWrite
	}
	for i := range res.Documents {
		doc := &res.Documents[i]
		status := StatusDone
		switch {
		case doc.HasErrors():
			status = StatusError
		case doc.Cached:
			status = StatusCached
		}
		emit(req.Progress, Event{File: doc.Path, Stage: final, Status: status})
	}
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emitStage(req.Progress, nil, final, status, err, 0)
	return result, err
}

type phaseObserver struct {
	sink    ProgressSink
	timings *Timings
}

var phaseStages = map[string]Stage{
	driver.PhaseLoad:    StageLoad,
	driver.PhaseCache:   StageCache,
	driver.PhaseCompile: StageCompile,
	driver.PhaseWrite:   StageWrite,
}

// OnPhase updates the progress UI based on driver phase events.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage, ok := phaseStages[ev.Name]
	if !ok {
		return
	}
	if ev.Status == driver.PhaseStart {
		emit(p.sink, Event{File: ev.Path, Stage: stage, Status: StatusWorking})
		return
	}
	p.timings.Add(stage, ev.Elapsed)
	switch {
	case ev.Err != nil:
		emit(p.sink, Event{File: ev.Path, Stage: stage, Status: StatusError, Err: ev.Err, Elapsed: ev.Elapsed})
	case ev.Cached:
		emit(p.sink, Event{File: ev.Path, Stage: stage, Status: StatusCached, Elapsed: ev.Elapsed})
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
