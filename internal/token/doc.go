// Package token defines lexical token kinds and trivia for weave templates.
// Invariants:
//   - Token.Text is a slice of the original source (no copies); Missing tokens have empty Text.
//   - Token.Span matches Text exactly; trivia spans precede (Leading) or follow (Trailing) it.
//   - Leading + Text + Trailing over the whole stream reproduces the document byte for byte.
//   - Markup whitespace is significant and is lexed as tokens, never as trivia.
package token
