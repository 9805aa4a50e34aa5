package trace

import (
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a driver-scope event at a fixed interval. A trace whose
// heartbeats keep coming while no span ends points at a hung document.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	started  time.Time
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// StartHeartbeat starts beating every interval. It returns nil when the
// tracer is disabled or the interval is not positive; Stop accepts nil.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		started:  time.Now(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer close(h.stopped)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
				Extra:  map[string]string{"uptime": now.Sub(h.started).Round(time.Millisecond).String()},
			})
		case <-h.done:
			return
		}
	}
}

// Stop ends the heartbeat and waits for the last event to be emitted.
// Calling it again is a no-op.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	<-h.stopped
}
