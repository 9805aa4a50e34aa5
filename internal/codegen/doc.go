// Package codegen turns a lowered IR tree into Go source and the source map
// that ties it back to the template.
//
// Text goes through a CodeWriter so a caller can change indentation, line
// endings or the whole buffering strategy. Verbatim code is written raw, so
// the generated bytes of a mapped region always equal the template bytes.
package codegen
