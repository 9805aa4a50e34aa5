package trace

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

var seq, spanIDs atomic.Uint64

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seq.Add(1) }

func goroutineID() uint64 {
	if id := goid.Get(); id > 0 {
		return uint64(id)
	}
	return 0
}

// Span is an open interval on one tracer. A span the tracer filtered out is
// inert: its methods do nothing and ID is zero.
type Span struct {
	tracer  Tracer
	head    Event // the begin event; End derives the end event from it
	started time.Time
	extra   map[string]string
}

var inert = &Span{tracer: Nop}

// Begin opens a span under parent (zero for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		head: Event{
			Kind:     KindSpanBegin,
			Scope:    scope,
			SpanID:   spanIDs.Add(1),
			ParentID: parent,
			GID:      goroutineID(),
			Name:     name,
		},
	}
	ev := s.head
	ev.Time, ev.Seq = s.started, NextSeq()
	t.Emit(&ev)
	return s
}

// Start opens a span under the one carried by ctx and returns a context
// carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID)
	if s.ID() == 0 {
		return ctx, s
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.head.SpanID, GID: s.head.GID}), s
}

// Point emits an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: CurrentSpan(ctx).SpanID,
		GID:      goroutineID(),
		Name:     name,
		Detail:   detail,
	})
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if s.ID() == 0 {
		return 0
	}
	ev := s.head
	ev.Kind = KindSpanEnd
	ev.Time, ev.Seq = time.Now(), NextSeq()
	ev.Detail, ev.Extra = detail, s.extra
	s.tracer.Emit(&ev)
	return ev.Time.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s.ID() == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.head.SpanID
}
