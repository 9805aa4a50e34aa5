// Package diag defines the diagnostic model shared by every pipeline stage.
//
// A Diagnostic carries a Code, a Severity, a primary source.Span and the
// arguments of the code's message template. Stages never fail on recoverable
// input problems; they report through a Reporter and continue.
//
// Code ranges:
//
//   - LEX1xxx lexical (unterminated literals and comments, invalid escapes)
//   - SYN2xxx syntactic (unexpected tokens, unbalanced tags and delimiters)
//   - DIR3xxx directive usage and argument grammar
//   - BND4xxx tag and attribute binding
//   - LOW5xxx lowering pass invariants
//   - GEN6xxx code generation
//   - IO7xxx driver I/O (outside the core pipeline)
//
// Package diag does no formatting or IO; rendering lives in internal/diagfmt.
package diag
