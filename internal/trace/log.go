package trace

import (
	"github.com/rs/zerolog"
)

// LogTracer forwards events to a zerolog logger at debug level.
type LogTracer struct {
	gate
	log zerolog.Logger
}

// NewLogTracer creates a tracer that logs every event it accepts.
func NewLogTracer(log zerolog.Logger, level Level) *LogTracer {
	return &LogTracer{gate: gate{level: level}, log: log}
}

// Emit logs one event.
func (t *LogTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	e := t.log.Debug().
		Str("trace", ev.Kind.String()).
		Str("scope", ev.Scope.String()).
		Uint64("span", ev.SpanID)
	if ev.ParentID != 0 {
		e = e.Uint64("parent", ev.ParentID)
	}
	if ev.GID != 0 {
		e = e.Uint64("gid", ev.GID)
	}
	if ev.Detail != "" {
		e = e.Str("detail", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		d := zerolog.Dict()
		for k, v := range ev.Extra {
			d = d.Str(k, v)
		}
		e = e.Dict("extra", d)
	}
	e.Msg(ev.Name)
}

// Flush is a no-op; zerolog writes synchronously.
func (t *LogTracer) Flush() error { return nil }

// Close is a no-op.
func (t *LogTracer) Close() error { return nil }
