package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Phase names reported by Build. Per-document phases carry the document path.
const (
	PhaseLoad    = "load"
	PhaseCache   = "cache"
	PhaseCompile = "compile"
	PhaseWrite   = "write"
)

// PhaseEvent describes a phase boundary.
type PhaseEvent struct {
	Name    string
	Path    string
	Status  PhaseStatus
	Elapsed time.Duration
	// Cached is set on the end of PhaseCache when the entry was found.
	Cached bool
	Err    error
}

// PhaseObserver receives phase events emitted during Build. It may be called
// from several goroutines at once.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) begin(name, path string) time.Time {
	if o != nil {
		o(PhaseEvent{Name: name, Path: path, Status: PhaseStart})
	}
	return time.Now()
}

func (o PhaseObserver) end(name, path string, start time.Time, cached bool, err error) {
	if o != nil {
		o(PhaseEvent{Name: name, Path: path, Status: PhaseEnd, Elapsed: time.Since(start), Cached: cached, Err: err})
	}
}
