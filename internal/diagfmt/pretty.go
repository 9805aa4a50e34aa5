package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"weave/internal/diag"
	"weave/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret, path, fix *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgRed, color.Bold),
		path:   color.New(color.Bold),
		fix:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret, p.path, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Ожидается, что items уже отсортированы (diag.SortDiagnostics).
// Для каждой диагностики печатает:
//
//	<path>:<line>:<col>: <sev>[<CODE>]: <Message>
//
// затем строки контекста с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	for i := range items {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := prettyOne(w, &items[i], fs, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) error {
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	sev := strings.ToLower(d.Severity.String())

	if _, err := fmt.Fprintf(w, "%s: %s: %s\n",
		pal.path.Sprintf("%s:%d:%d", displayPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col),
		pal.severity(d.Severity).Sprintf("%s[%s]", sev, d.Code.ID()),
		d.Message,
	); err != nil {
		return err
	}
	if f != nil {
		if err := snippet(w, f, d.Primary, opts, pal); err != nil {
			return err
		}
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			pos, _ := fs.Resolve(n.Span)
			if _, err := fmt.Fprintf(w, "  %s %s (%s:%d:%d)\n",
				pal.note.Sprint("= note:"), n.Msg,
				displayPath(nf, opts.PathMode, opts.BaseDir), pos.Line, pos.Col,
			); err != nil {
				return err
			}
		}
	}
	if opts.ShowFixes {
		for _, fx := range d.Fixes {
			if _, err := fmt.Fprintf(w, "  %s %s\n", pal.fix.Sprint("= fix:"), fx.Title); err != nil {
				return err
			}
			if !opts.ShowPreview {
				continue
			}
			for _, edit := range fx.Edits {
				pv, err := previewEdit(fs, edit)
				if err != nil {
					continue
				}
				for _, l := range pv.before {
					if _, err := fmt.Fprintf(w, "    %s %s\n", pal.err.Sprint("-"), l); err != nil {
						return err
					}
				}
				for _, l := range pv.after {
					if _, err := fmt.Fprintf(w, "    %s %s\n", pal.fix.Sprint("+"), l); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// snippet prints the context lines and the first line of sp underlined.
func snippet(w io.Writer, f *source.File, sp source.Span, opts PrettyOpts, pal palette) error {
	start, end := f.Position(sp.Start), f.Position(sp.End)
	first := start.Line
	if opts.Context > 0 {
		first = start.Line - min(start.Line-1, uint32(opts.Context))
	}
	gutter := len(strconv.FormatUint(uint64(start.Line), 10))
	pad := strings.Repeat(" ", gutter)

	if _, err := fmt.Fprintf(w, "%s %s\n", pad, pal.gutter.Sprint("|")); err != nil {
		return err
	}
	for line := first; line <= start.Line; line++ {
		text := clip(f.GetLine(line), opts.Width)
		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			pal.gutter.Sprintf("%*d", gutter, line), pal.gutter.Sprint("|"), text); err != nil {
			return err
		}
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col-1), len(line))
	stop := len(line)
	if end.Line == start.Line {
		stop = max(col, min(int(end.Col-1), len(line)))
	}
	marker := "^" + strings.Repeat("~", max(0, displayWidth(line[col:stop])-1))
	_, err := fmt.Fprintf(w, "%s %s %s%s\n", pad, pal.gutter.Sprint("|"), indentFor(line[:col]), pal.caret.Sprint(marker))
	return err
}

// indentFor returns blanks as wide as prefix, keeping tabs so the caret lines up.
func indentFor(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}
