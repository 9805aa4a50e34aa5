// Package trace provides a tracing subsystem for the weave template compiler.
//
// The trace package records the driver stages, per-document pipelines and the
// individual passes (parse, bind, each lowering pass, codegen) to help
// diagnose slow builds and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	weave compile --trace=- --trace-level=detail pages/
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - nopTracer: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - LogTracer: events as zerolog debug records
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver, stage and document boundaries
//   - LevelDetail: compiler passes
//   - LevelDebug: everything
//
// # Context Propagation
//
// Tracers and the current span travel through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeDocument, "doc:"+path)
//	defer span.End("")
package trace
