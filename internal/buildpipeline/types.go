package buildpipeline

import (
	"sync"
	"time"
)

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageDiscover finds the templates to compile.
	StageDiscover Stage = "discover"
	// StageLoad reads a template into the file set.
	StageLoad Stage = "load"
	// StageCache looks a template up in the disk cache.
	StageCache Stage = "cache"
	// StageCompile runs the compiler on a template.
	StageCompile Stage = "compile"
	// StageWrite stores the generated file.
	StageWrite Stage = "write"
)

// Stages lists the stages in pipeline order.
var Stages = []Stage{StageDiscover, StageLoad, StageCache, StageCompile, StageWrite}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusCached indicates the result came from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations. It is safe for concurrent use.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure()
	t.stages[stage] = dur
}

// Add accumulates dur into stage. Per-file durations of parallel work add up
// to more than the wall time of the stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t *Timings) Has(stage Stage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t *Timings) Sum(stages ...Stage) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
