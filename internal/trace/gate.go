package trace

// gate is the level filter every tracer embeds.
type gate struct {
	level Level
}

// Level returns the configured tracing level.
func (g gate) Level() Level { return g.level }

// Enabled reports whether anything can pass the gate.
func (g gate) Enabled() bool { return g.level > LevelOff }

// admits reports whether ev passes the level. Heartbeats always pass.
func (g gate) admits(ev *Event) bool {
	return ev.Kind == KindHeartbeat || g.level.ShouldEmit(ev.Scope)
}

// nopTracer is the tracer used when tracing is off.
type nopTracer struct{ gate }

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }

// Nop drops every event.
var Nop Tracer = nopTracer{}
