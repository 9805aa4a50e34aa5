package codegen

import (
	"weave/internal/diag"
	"weave/internal/source"
)

// DefaultRuntime is the import path of the package that generated pages
// render through.
const DefaultRuntime = "weave/rt"

// Receiver is the receiver name of generated methods.
const Receiver = "p"

// Options carries the inputs of one generation run.
type Options struct {
	File     *source.File
	Reporter diag.Reporter

	// Runtime is the import path bound to the rt alias.
	Runtime string
	// LinePragmas writes /*line*/ comments before verbatim code.
	LinePragmas bool
	Writer      WriterOptions
	// NewWriter replaces the default writer.
	NewWriter func(WriterOptions) CodeWriter
}

func (o *Options) runtime() string {
	if o.Runtime != "" {
		return o.Runtime
	}
	return DefaultRuntime
}

func (o *Options) writer() CodeWriter {
	if o.NewWriter != nil {
		return o.NewWriter(o.Writer)
	}
	return NewWriter(o.Writer)
}

func (o *Options) report(code diag.Code, sev diag.Severity, sp source.Span, args ...any) {
	if o.Reporter == nil {
		return
	}
	diag.Emit(o.Reporter, sev, code, sp, args...)
}

func (o *Options) path() string {
	if o.File == nil {
		return ""
	}
	return o.File.Path
}
