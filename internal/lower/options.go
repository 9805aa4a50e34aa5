package lower

import (
	"weave/internal/binder"
	"weave/internal/diag"
	"weave/internal/parser"
	"weave/internal/source"
)

// Defaults for the generated file.
const (
	DefaultPackage = "views"
	DefaultClass   = "Page"
	// ExecuteMethod renders the document body.
	ExecuteMethod = "Execute"
)

// Options carries the inputs of one lowering run.
type Options struct {
	File     *source.File
	Parse    *parser.Result
	Bindings *binder.Table
	Reporter diag.Reporter

	Package string
	Class   string

	// DesignTime enables the design-time pass.
	DesignTime bool
	// Instrumentation enables the instrumentation pass.
	Instrumentation bool

	// Rules add or replace directive classification rules by directive name.
	Rules map[string]DirectiveRule
}

func (o *Options) pkg() string {
	if o.Package != "" {
		return o.Package
	}
	return DefaultPackage
}

func (o *Options) class() string {
	if o.Class != "" {
		return o.Class
	}
	return DefaultClass
}

func (o *Options) report(code diag.Code, sev diag.Severity, sp source.Span, args ...any) {
	if o.Reporter == nil {
		return
	}
	diag.Emit(o.Reporter, sev, code, sp, args...)
}

// fileStart is the span used for diagnostics that have no better place.
func (o *Options) fileStart() source.Span {
	if o.File == nil {
		return source.Span{}
	}
	return source.At(o.File.ID, 0)
}
