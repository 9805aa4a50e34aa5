package trace

import (
	"bufio"
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory, for dumps after a
// failure or a hang.
type RingTracer struct {
	gate

	mu     sync.RWMutex
	events []Event
	// start is the index of the oldest event; n is the number stored.
	start int
	n     int
}

// NewRingTracer keeps up to capacity events; non-positive means 4096.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		gate:   gate{level: level},
		events: make([]Event, capacity),
	}
}

// Emit stores a copy of ev, evicting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	stored.Seq = NextSeq()
	capacity := len(t.events)
	if t.n < capacity {
		t.events[(t.start+t.n)%capacity] = stored
		t.n++
		return
	}
	t.events[t.start] = stored
	t.start = (t.start + 1) % capacity
}

// Len returns the number of stored events.
func (t *RingTracer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.n
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Event, t.n)
	capacity := len(t.events)
	for i := range out {
		out[i] = t.events[(t.start+i)%capacity]
	}
	return out
}

// Dump writes the snapshot to w in format. Chrome output is a complete
// document.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	if format == FormatChrome {
		_, _ = bw.WriteString("{\"traceEvents\":[\n")
	}
	for i, ev := range t.Snapshot() {
		if format == FormatChrome && i > 0 {
			_, _ = bw.WriteString(",\n")
		}
		_, _ = bw.Write(FormatEvent(&ev, format))
	}
	if format == FormatChrome {
		_, _ = bw.WriteString("\n]}\n")
	}
	// bufio хранит первую ошибку записи, Flush её вернёт
	return bw.Flush()
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }
