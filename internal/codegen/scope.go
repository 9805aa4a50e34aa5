package codegen

import (
	"strconv"

	"weave/internal/ir"
	"weave/internal/sourcemap"
)

// scope writes a tag helper scope as its own block:
//
//	{
//		__scope := rt.BeginScope(w, "tag", rt.TagStartAndEnd)
//		__th0 := &ui.Button{}
//		__scope.Add(__th0)
//		__th0.Label = "Save"
//		__scope.AddAttribute("class", "primary")
//		__scope.SetContent(func(w rt.Writer) error {
//			...
//			return nil
//		})
//		if err := __scope.Execute(); err != nil {
//			return err
//		}
//	}
func (g *generator) scope(sc *ir.Node) {
	mode := "rt.TagStartAndEnd"
	if sc.Content == "self-closing" {
		mode = "rt.TagSelfClosing"
	}
	g.w.Write("{")
	g.w.Newline()
	g.w.Indent()
	g.w.Write("__scope := rt.BeginScope(w, " + strconv.Quote(sc.Name) + ", " + mode + ")")
	g.w.Newline()

	for _, c := range sc.Children {
		g.visit(c, func() { g.scopeChild(c) })
	}

	g.w.Write("if err := __scope.Execute(); err != nil {")
	g.w.Newline()
	g.w.Indent()
	g.w.Write("return err")
	g.w.Newline()
	g.w.Dedent()
	g.w.Write("}")
	g.w.Newline()
	g.w.Dedent()
	g.w.Write("}")
	g.w.Newline()
}

func (g *generator) scopeChild(c *ir.Node) {
	switch c.Kind {
	case ir.KindCreate:
		g.w.Write(c.Name + " := &" + c.Type + "{}")
		g.w.Newline()
		g.w.Write("__scope.Add(" + c.Name + ")")
		g.w.Newline()
	case ir.KindProperty:
		g.w.Write(c.Name + "." + c.Attribute.Property + " = ")
		if c.Attribute.IsString() {
			g.stringValue(c.Children)
		} else if e := c.Child(ir.KindExpression); e != nil {
			g.code(e, sourcemap.KindExpression)
		}
		g.w.Newline()
	case ir.KindHTMLAttribute:
		g.w.Write("__scope.AddAttribute(" + strconv.Quote(c.Name))
		if len(c.Children) > 0 {
			g.w.Write(", ")
			g.stringValue(c.Children)
		}
		g.w.Write(")")
		g.w.Newline()
	case ir.KindBody:
		if len(c.Children) == 0 {
			return
		}
		g.w.Write("__scope.SetContent(func(w rt.Writer) error {")
		g.w.Newline()
		g.w.Indent()
		g.body(c.Children)
		g.w.Write("return nil")
		g.w.Newline()
		g.w.Dedent()
		g.w.Write("})")
		g.w.Newline()
	}
}

// stringValue writes literal and expression parts as one string value.
func (g *generator) stringValue(parts []*ir.Node) {
	switch {
	case len(parts) == 0:
		g.w.Write(`""`)
		return
	case len(parts) == 1 && parts[0].Kind == ir.KindLiteral:
		g.emit(parts[0], sourcemap.KindLiteral, strconv.Quote(parts[0].Content))
		return
	}
	g.w.Write("rt.Concat(")
	for i, p := range parts {
		if i > 0 {
			g.w.Write(", ")
		}
		switch p.Kind {
		case ir.KindLiteral:
			g.emit(p, sourcemap.KindLiteral, strconv.Quote(p.Content))
		case ir.KindExpression:
			g.code(p, sourcemap.KindExpression)
		}
	}
	g.w.Write(")")
}
