package parser

import (
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/syntax"
	"weave/internal/token"
)

type Options struct {
	// Registry supplies directive grammars. Nil means no directives.
	Registry *directive.Registry
	// Cache interns green nodes; share one to get structural sharing across documents.
	Cache         *syntax.Cache
	Reporter      diag.Reporter
	MaxErrors     uint
	CurrentErrors uint
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Root  *syntax.Node
	Green *syntax.GreenNode
	// Directives lists every directive occurrence in document order,
	// rejected ones included.
	Directives []directive.Use
}

// DirectiveAt returns the directive use whose '@' starts at off.
func (r *Result) DirectiveAt(off uint32) (*directive.Use, bool) {
	for i := range r.Directives {
		if r.Directives[i].Span.Start == off {
			return &r.Directives[i], true
		}
	}
	return nil, false
}

// Parser: состояние парсера на один документ
type Parser struct {
	lx      *lexer.Lexer
	b       *syntax.Builder
	file    *source.File
	opts    Options
	tracker *directive.Tracker
	uses    []directive.Use

	// open holds the names of open elements; "" is a barrier that end tags
	// inside code do not look past.
	open    []string
	nested  int
	lastEnd uint32 // end of the last consumed token
	tooMany bool
}

// ParseFile: входная точка для разбора одного документа.
func ParseFile(file *source.File, opts Options) Result {
	p := Parser{
		lx:      lexer.New(file, lexer.Options{Reporter: opts.Reporter, Mode: lexer.ModeMarkup}),
		b:       syntax.NewBuilder(opts.Cache),
		file:    file,
		opts:    opts,
		tracker: directive.NewTracker(),
	}
	p.parseDocument()
	green := p.b.Finish()
	return Result{
		Root:       syntax.NewRoot(green, file.ID),
		Green:      green,
		Directives: p.uses,
	}
}

// parseDocument: корень: содержимое разметки до EOF.
func (p *Parser) parseDocument() {
	p.b.StartNode(syntax.KindDocument)
	p.parseMarkupContent(&content{})
	for !p.at(token.EOF) {
		// content returns early only inside blocks and elements
		p.errorNode(p.lx.Peek())
		p.parseMarkupContent(&content{})
	}
	p.bump()
	p.b.FinishNode()
}
