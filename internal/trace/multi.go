package trace

import "github.com/hashicorp/go-multierror"

// MultiTracer fans events out to several tracers, each applying its own level.
type MultiTracer struct {
	gate
	tracers []Tracer
}

// NewMultiTracer combines tracers under an overall level.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{gate: gate{level: level}, tracers: tracers}
}

// Emit hands every tracer its own copy of ev.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

// Flush flushes every tracer and reports all failures.
func (t *MultiTracer) Flush() error {
	var errs *multierror.Error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Close closes every tracer and reports all failures.
func (t *MultiTracer) Close() error {
	var errs *multierror.Error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
