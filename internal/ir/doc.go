// Package ir defines the lowered tree of emission primitives that sits
// between the bound syntax tree and generated Go code.
//
// Nodes are treated as immutable once a pass has returned them. Passes build
// new trees with Rewrite, which copies only the nodes on changed paths, so a
// pass that fails halfway leaves its input intact.
package ir
