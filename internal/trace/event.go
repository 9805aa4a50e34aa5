package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant event
	KindHeartbeat // periodic liveness signal
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller values are coarser.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // whole invocation
	ScopeStage                     // discover, load, compile, write
	ScopeDocument                  // one template through the pipeline
	ScopePass                      // parse, bind, one lowering pass, codegen
	ScopeNode                      // per-node work
)

var scopeNames = [...]string{
	ScopeDriver:   "driver",
	ScopeStage:    "stage",
	ScopeDocument: "document",
	ScopePass:     "pass",
	ScopeNode:     "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Names look like "parse", "lower/merge-literals"
// or "doc:pages/index.weave".
type Event struct {
	Time     time.Time
	Seq      uint64 // global, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	GID      uint64 // goroutine of the span
	Name     string
	Detail   string
	Extra    map[string]string
}
