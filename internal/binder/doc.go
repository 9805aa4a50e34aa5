// Package binder matches markup elements and attributes against the
// descriptor catalog.
//
// Binding only reads the syntax tree. Results live in a Table keyed by
// syntax.Key, so the same tree can be bound against different catalogs.
package binder
