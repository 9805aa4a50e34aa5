// Package lower turns a parsed and bound document into an IR tree and runs
// the ordered IR passes over it.
//
// Initial lowering keeps source order: markup becomes Literal writes,
// expressions become Expression writes, code becomes Statements, directives
// stay as Directive nodes and bound elements become Scope nodes. The passes
// then move directives into members, add instrumentation and tidy the tree.
package lower
