package codegen

import (
	"fmt"

	"fortio.org/safecast"
)

// CodeWriter receives generated text.
type CodeWriter interface {
	// Write appends s, indenting it if the writer is at the start of a line.
	Write(s string)
	// WriteRaw appends s with no indentation at all.
	WriteRaw(s string)
	// Newline ends the current line.
	Newline()
	Indent()
	Dedent()
	// Mark writes any pending indentation and returns the current offset.
	Mark() uint32
	String() string
}

// WriterOptions configure the default writer.
type WriterOptions struct {
	// UseSpaces indents with IndentWidth spaces instead of one tab.
	UseSpaces   bool
	IndentWidth int
	// Newline is "\n" or "\r\n".
	Newline string
}

func (o WriterOptions) withDefaults() WriterOptions {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	if o.Newline == "" {
		o.Newline = "\n"
	}
	return o
}

// Writer is the default CodeWriter, an indentation-aware byte buffer.
type Writer struct {
	opt         WriterOptions
	buf         []byte
	indentLevel int
	atLineStart bool
}

// NewWriter creates a writer. A zero WriterOptions indents with one tab
// per level and ends lines with "\n".
func NewWriter(opt WriterOptions) *Writer {
	return &Writer{
		opt:         opt.withDefaults(),
		buf:         make([]byte, 0, 4096),
		atLineStart: true,
	}
}

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	if w.opt.UseSpaces {
		for range w.indentLevel * w.opt.IndentWidth {
			w.buf = append(w.buf, ' ')
		}
	} else {
		for range w.indentLevel {
			w.buf = append(w.buf, '\t')
		}
	}
	w.atLineStart = false
}

func (w *Writer) Write(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.atLineStart = s[len(s)-1] == '\n'
}

func (w *Writer) WriteRaw(s string) {
	if s == "" {
		return
	}
	w.buf = append(w.buf, s...)
	w.atLineStart = s[len(s)-1] == '\n'
}

func (w *Writer) Newline() {
	w.buf = append(w.buf, w.opt.Newline...)
	w.atLineStart = true
}

func (w *Writer) Indent() { w.indentLevel++ }

func (w *Writer) Dedent() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}

func (w *Writer) Mark() uint32 {
	w.writeIndent()
	n, err := safecast.Conv[uint32](len(w.buf))
	if err != nil {
		panic(fmt.Errorf("generated text too large: %w", err))
	}
	return n
}

func (w *Writer) String() string { return string(w.buf) }
