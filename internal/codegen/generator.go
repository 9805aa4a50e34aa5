package codegen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"weave/internal/diag"
	"weave/internal/ir"
	"weave/internal/source"
	"weave/internal/sourcemap"
	"weave/internal/trace"
)

// Output is the result of one generation run.
type Output struct {
	Text       string
	Map        *sourcemap.Map
	Checksum   string
	DocumentID uuid.UUID
}

type generator struct {
	opts   *Options
	file   *source.File
	w      CodeWriter
	sm     sourcemap.Builder
	mapped map[*ir.Node]bool
	// reordered counts the enclosing nodes that a pass moved.
	reordered int
	// locals are the page fields visible by name inside render methods.
	locals []string
}

// Generate writes doc as a Go file. Problems inside the tree are reported as
// diagnostics and still produce output; only a tree without a namespace is
// an error.
func Generate(ctx context.Context, doc *ir.Node, opts Options) (*Output, error) {
	if doc == nil || doc.Kind != ir.KindDocument {
		return nil, errors.New("codegen: want a Document node")
	}
	ns := doc.Child(ir.KindNamespace)
	if ns == nil {
		return nil, errors.New("codegen: document has no namespace")
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "codegen", trace.CurrentSpan(ctx).SpanID)
	g := &generator{
		opts:   &opts,
		file:   opts.File,
		w:      opts.writer(),
		mapped: make(map[*ir.Node]bool),
	}
	if err := g.run(ns); err != nil {
		opts.report(diag.GenInternal, diag.SevError, g.fileStart(), err)
		span.End("failed")
	} else {
		span.End("")
	}
	g.checkUnmapped(doc)

	text := g.w.String()
	out := &Output{
		Text:       text,
		Map:        g.sm.Build(text, g.file),
		Checksum:   Checksum(g.file),
		DocumentID: DocumentID(g.file),
	}
	zerolog.Ctx(ctx).Debug().
		Str("path", opts.path()).
		Int("bytes", len(text)).
		Int("mappings", out.Map.Len()).
		Msg("generated")
	return out, nil
}

func (g *generator) run(ns *ir.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	g.header()
	g.namespace(ns)
	return nil
}

func (g *generator) fileStart() source.Span {
	if g.file == nil {
		return source.Span{}
	}
	return source.At(g.file.ID, 0)
}

// emit writes text raw and maps it to the provenance of n.
func (g *generator) emit(n *ir.Node, kind sourcemap.Kind, text string) {
	start := g.w.Mark()
	g.w.WriteRaw(text)
	if n.Source == nil || n.Source.Empty() {
		return
	}
	g.mapped[n] = true
	g.sm.Add(sourcemap.Entry{
		Generated: sourcemap.Range{Start: start, End: start + uint32(len(text))},
		Source:    *n.Source,
		Kind:      kind,
		Reordered: g.reordered > 0,
	})
}

// visit runs fn with n's reordering in effect.
func (g *generator) visit(n *ir.Node, fn func()) {
	if n.Flags&(ir.FlagReordered|ir.FlagDesignTime) != 0 {
		g.reordered++
		defer func() { g.reordered-- }()
	}
	fn()
}

// code writes the Token children of n back to back. With line pragmas on,
// a /*line*/ comment precedes the first token that has a source.
func (g *generator) code(n *ir.Node, kind sourcemap.Kind) {
	pragma := g.opts.LinePragmas && g.file != nil
	for _, t := range n.Children {
		if t.Kind != ir.KindToken {
			continue
		}
		if t.Source == nil {
			g.w.Write(t.Content)
			continue
		}
		if pragma {
			pos := g.file.Position(t.Source.Start)
			g.w.Write(fmt.Sprintf("/*line %s:%d:%d*/", g.file.Path, pos.Line, pos.Col))
			pragma = false
		}
		g.emit(t, kind, t.Content)
	}
}

func (g *generator) namespace(ns *ir.Node) {
	g.w.Write("package ")
	if ns.Source != nil {
		// The package clause always comes first, wherever it was declared.
		g.reordered++
		g.emit(ns, sourcemap.KindMember, ns.Name)
		g.reordered--
	} else {
		g.w.Write(ns.Name)
	}
	g.w.Newline()
	g.w.Newline()

	g.w.Write("import (")
	g.w.Newline()
	g.w.Indent()
	g.w.Write("rt " + strconv.Quote(g.opts.runtime()))
	g.w.Newline()
	for _, imp := range ns.ChildrenOf(ir.KindImport) {
		g.visit(imp, func() { g.emit(imp, sourcemap.KindImport, imp.Content) })
		g.w.Newline()
	}
	g.w.Dedent()
	g.w.Write(")")
	g.w.Newline()

	for _, c := range ns.ChildrenOf(ir.KindClass) {
		g.class(c)
	}
}

func (g *generator) class(c *ir.Node) {
	g.locals = g.locals[:0]
	g.w.Newline()
	g.w.Write("type " + c.Name + " struct {")
	g.w.Newline()
	g.w.Indent()
	for _, f := range c.ChildrenOf(ir.KindField) {
		g.visit(f, func() { g.field(f) })
	}
	g.w.Dedent()
	g.w.Write("}")
	g.w.Newline()

	checks := c.ChildrenOf(ir.KindInterfaceCheck)
	if len(checks) > 0 {
		g.w.Newline()
		for _, ic := range checks {
			g.visit(ic, func() {
				g.w.Write("var _ ")
				g.code(ic, sourcemap.KindMember)
				g.w.Write(" = (*" + c.Name + ")(nil)")
				g.w.Newline()
			})
		}
	}

	for _, m := range c.Children {
		switch m.Kind {
		case ir.KindField, ir.KindInterfaceCheck:
			continue
		}
		g.w.Newline()
		g.visit(m, func() { g.member(c, m) })
	}
}

// field writes a struct field. Children are the field name (absent for an
// embedded field) followed by the type.
func (g *generator) field(f *ir.Node) {
	toks := f.ChildrenOf(ir.KindToken)
	if len(toks) == 0 {
		return
	}
	if !f.Flags.Has(ir.FlagEmbedded) && len(toks) > 1 {
		g.locals = append(g.locals, toks[0].Content)
	}
	for i, t := range toks {
		if i > 0 {
			g.w.Write(" ")
		}
		g.emit(t, sourcemap.KindMember, t.Content)
	}
	g.w.Newline()
}

func (g *generator) member(c, m *ir.Node) {
	recv := "func (" + Receiver + " *" + c.Name + ") "
	switch m.Kind {
	case ir.KindConstMethod:
		g.w.Write(recv + m.Name + "() string { return ")
		g.code(m, sourcemap.KindMember)
		g.w.Write(" }")
		g.w.Newline()
	case ir.KindMemberCode:
		g.body(m.Children)
	case ir.KindMethod:
		g.w.Write(recv + m.Name + "(w rt.Writer) error {")
		g.renderBody(m.Children)
	case ir.KindSection:
		g.w.Write(recv + "Section_")
		g.emit(m, sourcemap.KindMember, m.Name)
		g.w.Write("(w rt.Writer) error {")
		g.renderBody(m.Children)
	case ir.KindDesignTimeHelper:
		g.w.Write(recv + "__designTime() {")
		g.w.Newline()
		g.w.Indent()
		for _, t := range m.ChildrenOf(ir.KindToken) {
			g.w.Write("var _ ")
			g.emit(t, sourcemap.KindMember, t.Content)
			g.w.Newline()
		}
		g.w.Dedent()
		g.w.Write("}")
		g.w.Newline()
	}
}

// renderBody finishes a render method: field locals, the body and the
// closing return.
func (g *generator) renderBody(kids []*ir.Node) {
	g.w.Newline()
	g.w.Indent()
	for _, name := range g.locals {
		g.w.Write(name + " := " + Receiver + "." + name)
		g.w.Newline()
		g.w.Write("_ = " + name)
		g.w.Newline()
	}
	g.body(kids)
	g.w.Write("return nil")
	g.w.Newline()
	g.w.Dedent()
	g.w.Write("}")
	g.w.Newline()
}

// body writes render-time nodes in order.
func (g *generator) body(kids []*ir.Node) {
	for _, n := range kids {
		g.visit(n, func() { g.write(n) })
	}
}

func (g *generator) write(n *ir.Node) {
	switch n.Kind {
	case ir.KindLiteral:
		g.w.Write("w.WriteLiteral(")
		g.emit(n, sourcemap.KindLiteral, strconv.Quote(n.Content))
		g.w.Write(")")
		g.w.Newline()
	case ir.KindExpression:
		g.w.Write("w.Write(")
		g.code(n, sourcemap.KindExpression)
		g.w.Write(")")
		g.w.Newline()
	case ir.KindStatement:
		g.statement(n)
	case ir.KindContextBegin:
		g.w.Write("w.BeginContext(" + n.Content + ")")
		g.w.Newline()
	case ir.KindContextEnd:
		g.w.Write("w.EndContext()")
		g.w.Newline()
	case ir.KindScope:
		g.scope(n)
	case ir.KindDirective:
		g.directive(n)
	}
}

// statement writes code verbatim on its own line. Braces at the edges of
// the code steer the indentation of what follows.
func (g *generator) statement(n *ir.Node) {
	trimmed := strings.TrimSpace(n.Code())
	if strings.HasPrefix(trimmed, "}") {
		g.w.Dedent()
	}
	g.code(n, sourcemap.KindStatement)
	g.w.Newline()
	if strings.HasSuffix(trimmed, "{") {
		g.w.Indent()
	}
}

// directive keeps a directive that no rule classified as a comment, then
// writes its body in place.
func (g *generator) directive(d *ir.Node) {
	g.w.Write("// @" + d.Name)
	var rest []*ir.Node
	for _, c := range d.Children {
		if c.Kind != ir.KindDirectiveToken {
			rest = append(rest, c)
			continue
		}
		g.w.Write(" ")
		g.emit(c, sourcemap.KindComment, c.Content)
	}
	g.w.Newline()
	g.body(rest)
}

// leaf reports node kinds that carry text of their own.
func leaf(k ir.Kind) bool {
	switch k {
	case ir.KindLiteral, ir.KindToken, ir.KindDirectiveToken, ir.KindImport,
		ir.KindNamespace, ir.KindSection:
		return true
	}
	return false
}

// checkUnmapped reports text-carrying nodes with provenance that produced no
// mapped output.
func (g *generator) checkUnmapped(doc *ir.Node) {
	for n := range ir.All(doc) {
		if !leaf(n.Kind) || n.Source == nil || n.Source.Empty() || g.mapped[n] {
			continue
		}
		g.opts.report(diag.GenUnmappedSpan, diag.SevWarning, *n.Source, n.Kind, *n.Source)
	}
}
