package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes accepted events to a buffered writer as they arrive.
// The first write error sticks and is returned by Flush and Close.
type StreamTracer struct {
	gate
	format Format

	mu    sync.Mutex
	dst   io.Writer
	buf   *bufio.Writer
	count int
	err   error
}

// NewStreamTracer writes events to w in format.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{
		gate:   gate{level: level},
		format: format,
		dst:    w,
		buf:    bufio.NewWriter(w),
	}
	if format == FormatChrome {
		t.write([]byte("{\"traceEvents\":[\n"))
	}
	return t
}

// write appends p unless an earlier write failed. Caller holds mu or owns t.
func (t *StreamTracer) write(p []byte) {
	if t.err != nil {
		return
	}
	_, t.err = t.buf.Write(p)
}

// Emit formats ev and appends it to the stream.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatChrome && t.count > 0 {
		t.write([]byte(",\n"))
	}
	t.write(data)
	t.count++
}

// Flush pushes buffered events to the destination.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *StreamTracer) flushLocked() error {
	if t.err == nil {
		t.err = t.buf.Flush()
	}
	if t.err != nil {
		return t.err
	}
	if f, ok := t.dst.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close terminates the Chrome document, flushes and closes the destination
// when it is an io.Closer.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatChrome {
		t.write([]byte("\n]}\n"))
	}
	err := t.flushLocked()
	if c, ok := t.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
