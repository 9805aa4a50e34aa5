// Package syntax holds the full-fidelity syntax tree.
//
// The tree has two layers. Green nodes are immutable, position-free and
// content-addressed: a Cache interns them so identical fragments share one
// instance. Red nodes (Node, Token) wrap a green element with an absolute
// offset and a parent link; they are created lazily while walking down from
// the root and are never stored in the green layer.
package syntax
