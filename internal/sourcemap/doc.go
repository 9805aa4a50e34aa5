// Package sourcemap records which regions of generated code came from which
// spans of the template.
//
// A Builder collects entries while the generator writes; Build freezes them
// into a Map that answers lookups in both directions, checks itself against
// the template and exports the V3 JSON format.
package sourcemap
