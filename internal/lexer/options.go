package lexer

import (
	"weave/internal/diag"
	"weave/internal/source"
)

type Options struct {
	Reporter diag.Reporter // may be nil: errors are dropped but lexing continues
	Mode     Mode          // starting mode
}

type pendingDiag struct {
	at   uint32 // start of the token the diagnostic belongs to
	code diag.Code
	sev  diag.Severity
	span source.Span
	args []any
}

// errLex queues a diagnostic for the token starting at owner. It reaches the
// reporter only once that token is consumed, so tokens discarded by a mode
// switch or Restore never report twice. Tokens consumed before (and lexed
// again after a Restore) do not report either.
func (lx *Lexer) errLex(owner uint32, code diag.Code, sp source.Span, args ...any) {
	if lx.flushed && owner <= lx.flushedTo {
		return
	}
	lx.diags = append(lx.diags, pendingDiag{at: owner, code: code, sev: diag.SevError, span: sp, args: args})
}

func (lx *Lexer) flushDiags(upTo uint32, all bool) {
	if len(lx.diags) == 0 {
		return
	}
	keep := lx.diags[:0]
	for _, d := range lx.diags {
		if all || d.at <= upTo {
			diag.Emit(lx.opts.Reporter, d.sev, d.code, d.span, d.args...)
			continue
		}
		keep = append(keep, d)
	}
	lx.diags = keep
}

func (lx *Lexer) markFlushed(upTo uint32, all bool) {
	if all {
		upTo = ^uint32(0)
	}
	if !lx.flushed || upTo > lx.flushedTo {
		lx.flushedTo = upTo
	}
	lx.flushed = true
}

func (lx *Lexer) dropDiags(from uint32) {
	keep := lx.diags[:0]
	for _, d := range lx.diags {
		if d.at < from {
			keep = append(keep, d)
		}
	}
	lx.diags = keep
}
