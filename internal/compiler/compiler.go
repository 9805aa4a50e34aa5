// Package compiler runs the whole template pipeline for one document:
// parse, bind, lower and generate.
//
// Compile is a pure function of its input. It keeps no state between calls,
// so distinct documents can be compiled concurrently against one catalog.
package compiler

import (
	"context"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"weave/internal/binder"
	"weave/internal/catalog"
	"weave/internal/codegen"
	"weave/internal/config"
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/ir"
	"weave/internal/lower"
	"weave/internal/observ"
	"weave/internal/parser"
	"weave/internal/source"
	"weave/internal/sourcemap"
	"weave/internal/syntax"
	"weave/internal/trace"
)

// Input is everything one compilation needs.
type Input struct {
	File *source.File
	// Catalog is read-only for the duration of the call. Nil means no descriptors.
	Catalog *catalog.Catalog
	// Registry nil means directive.Builtins().
	Registry *directive.Registry
	// Config nil means config.Default().
	Config *config.Config

	Writer    codegen.WriterOptions
	NewWriter func(codegen.WriterOptions) codegen.CodeWriter

	// Cache is shared between documents to get structural sharing of shape nodes.
	Cache *syntax.Cache
	// Rules extend directive classification.
	Rules map[string]lower.DirectiveRule
	// Passes replaces the lowering pipeline; nil means lower.Passes().
	Passes []lower.Pass
}

// Result is the output of one compilation.
type Result struct {
	Text string
	// Diagnostics are sorted by position.
	Diagnostics []diag.Diagnostic
	Map         *sourcemap.Map

	Parse    parser.Result
	Bindings *binder.Table
	IR       *ir.Node

	Checksum   string
	DocumentID uuid.UUID
	Timings    observ.Report
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Compile runs the pipeline. Every recoverable problem ends up in
// Result.Diagnostics; the error return is reserved for a missing file and
// for contract violations inside code generation.
func Compile(ctx context.Context, in Input) (*Result, error) {
	if in.File == nil {
		return nil, errors.New("compiler: no source file")
	}
	cfg := in.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	cat := in.Catalog
	if cat == nil {
		cat = catalog.Empty()
	}
	reg := in.Registry
	if reg == nil {
		reg = directive.Builtins()
	}

	logger := zerolog.Ctx(ctx).With().Str("path", in.File.Path).Logger()
	ctx = logger.WithContext(ctx)
	ctx, span := trace.Start(ctx, trace.ScopeDocument, "doc:"+in.File.Path)
	defer span.End("")

	bag := diag.NewBag(0)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	timer := observ.NewTimer()
	res := &Result{}

	timer.Measure("parse", func() {
		res.Parse = parser.ParseFile(in.File, parser.Options{
			Registry:  reg,
			Cache:     in.Cache,
			Reporter:  rep,
			MaxErrors: cfg.MaxErrors,
		})
	})

	timer.Measure("bind", func() {
		res.Bindings = binder.Bind(res.Parse.Root, binder.Options{
			Catalog:       cat,
			Reporter:      rep,
			Prefix:        TagHelperPrefix(&res.Parse),
			CaseSensitive: cfg.Binding.CaseSensitive,
			Ambiguity:     cfg.Binding.Ambiguity,
		})
	})

	class := cfg.Class
	if class == "" {
		class = ClassName(in.File.Path)
	}
	lopts := lower.Options{
		File:            in.File,
		Parse:           &res.Parse,
		Bindings:        res.Bindings,
		Reporter:        rep,
		Package:         cfg.Package,
		Class:           class,
		DesignTime:      cfg.DesignTime,
		Instrumentation: cfg.Instrumentation,
		Rules:           in.Rules,
	}
	passes := in.Passes
	if passes == nil {
		passes = lower.Passes()
	}
	timer.Measure("lower", func() {
		res.IR = lower.Run(ctx, lower.Document(lopts), lopts, passes)
	})

	var (
		out *codegen.Output
		err error
	)
	timer.Measure("codegen", func() {
		out, err = codegen.Generate(ctx, res.IR, codegen.Options{
			File:        in.File,
			Reporter:    rep,
			Runtime:     cfg.Runtime,
			LinePragmas: cfg.LinePragmas,
			Writer:      in.Writer,
			NewWriter:   in.NewWriter,
		})
	})
	if err != nil {
		span.WithExtra("error", err.Error())
		return nil, errors.WithDetails(err, "path", in.File.Path)
	}

	res.Text = out.Text
	res.Map = out.Map
	res.Checksum = out.Checksum
	res.DocumentID = out.DocumentID
	res.Timings = timer.Report()

	bag.Sort()
	res.Diagnostics = bag.Items()

	span.WithExtra("diagnostics", strconv.Itoa(len(res.Diagnostics)))
	logger.Debug().
		Int("diagnostics", len(res.Diagnostics)).
		Int("mappings", res.Map.Len()).
		Object("timings", res.Timings).
		Msg("compiled")
	return res, nil
}

// TagHelperPrefix returns the prefix declared by an admitted @tagHelperPrefix,
// or "" when the document declares none.
func TagHelperPrefix(res *parser.Result) string {
	for i := range res.Directives {
		u := &res.Directives[i]
		if u.Rejected || u.Descriptor == nil || u.Descriptor.Name != directive.TagHelperPrefix {
			continue
		}
		arg, ok := u.Arg(0)
		if !ok {
			return ""
		}
		if s, err := strconv.Unquote(arg.Text); err == nil {
			return s
		}
		return arg.Text
	}
	return ""
}

// ClassName derives the page type name from a document path:
// "views/user-card.weave" becomes "UserCard".
func ClassName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	name := catalog.PropertyName(base)
	if !token.IsIdentifier(name) {
		return lower.DefaultClass
	}
	return name
}
