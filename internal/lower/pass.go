package lower

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"weave/internal/diag"
	"weave/internal/ir"
	"weave/internal/trace"
)

// Pass is one IR-to-IR step. Fn must not modify its input; use ir.Rewrite.
type Pass struct {
	Name string
	// Enabled reports whether the pass runs for the given options; nil means always.
	Enabled func(*Options) bool
	Fn      func(*Options, *ir.Node) (*ir.Node, error)
}

// Passes returns the default pipeline in execution order.
func Passes() []Pass {
	return []Pass{
		{Name: "classify-directives", Fn: classifyDirectives},
		{Name: "design-time", Enabled: func(o *Options) bool { return o.DesignTime }, Fn: designTime},
		{Name: "instrumentation", Enabled: func(o *Options) bool { return o.Instrumentation }, Fn: instrument},
		{Name: "merge-literals", Fn: mergeLiterals},
		{Name: "organize-members", Fn: organizeMembers},
		{Name: "validate-provenance", Fn: validateProvenance},
	}
}

// Run folds doc through passes in order. A pass that returns an error or
// panics is reported as LowPassFailed and its input is kept.
func Run(ctx context.Context, doc *ir.Node, opts Options, passes []Pass) *ir.Node {
	logger := zerolog.Ctx(ctx)
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	for _, p := range passes {
		if p.Enabled != nil && !p.Enabled(&opts) {
			logger.Debug().Str("pass", p.Name).Msg("pass disabled")
			continue
		}
		span := trace.Begin(tracer, trace.ScopePass, "lower/"+p.Name, parent)
		out, err := apply(p, &opts, doc)
		if err != nil {
			opts.report(diag.LowPassFailed, diag.SevError, opts.fileStart(), p.Name, err)
			logger.Debug().Str("pass", p.Name).Err(err).Msg("pass failed")
			span.End("failed")
			continue
		}
		span.End("")
		doc = out
	}
	return doc
}

func apply(p Pass, opts *Options, doc *ir.Node) (out *ir.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.Errorf("panic: %v", r)
		}
	}()
	out, err = p.Fn(opts, doc)
	if err == nil && out == nil {
		err = errors.New("pass returned no tree")
	}
	return out, err
}

// Lower builds the initial IR and runs the default passes.
func Lower(ctx context.Context, opts Options) *ir.Node {
	return Run(ctx, Document(opts), opts, Passes())
}
