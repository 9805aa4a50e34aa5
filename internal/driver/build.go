package driver

import (
	"context"
	"path"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"weave/internal/catalog"
	"weave/internal/compiler"
	"weave/internal/config"
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/source"
	"weave/internal/trace"
)

// Build compiles every input document. Per-document problems end up as
// diagnostics on the documents; the returned error aggregates I/O failures
// (load, write, cache) and is returned together with the partial result.
// Cancelling ctx aborts the build and returns ctx's error without a result.
func Build(ctx context.Context, opts Options) (*Result, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	logger := zerolog.Ctx(ctx)

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	defer span.End("")

	cat := opts.Catalog
	if cat == nil {
		loaded, err := LoadCatalogs(fsys, opts.Root, cfg.Binding.Catalogs)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}
	reg := opts.Registry
	if reg == nil {
		reg = directive.Builtins()
	}

	files := opts.Files
	if len(files) == 0 {
		found, err := Discover(fsys, opts.Root, cfg.Build)
		if err != nil {
			return nil, err
		}
		files = found
	}

	configFP, err := cfg.Fingerprint()
	if err != nil {
		return nil, err
	}
	catalogFP := cat.Fingerprint()

	b := &builder{
		fs:        fsys,
		root:      opts.Root,
		opts:      &opts,
		cfg:       cfg,
		catalog:   cat,
		registry:  reg,
		configFP:  configFP,
		catalogFP: catalogFP,
		fileSet:   source.NewFileSetFS(projectFs(fsys, opts.Root)),
		docs:      make([]Document, len(files)),
		errs:      make([]error, len(files)),
	}

	loaded := b.load(ctx, files)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = cfg.Build.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	stageCtx, stage := trace.Start(ctx, trace.ScopeStage, "compile")
	g, gctx := errgroup.WithContext(stageCtx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i := range files {
		if !loaded[i] {
			continue
		}
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			b.errs[i] = b.document(gctx, i)
			return nil
		})
	}
	err = g.Wait()
	stage.End("")
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		FileSet:   b.fileSet,
		Documents: b.docs,
		Timings:   sumTimings(b.docs),
	}
	span.WithExtra("documents", strconv.Itoa(len(files)))
	logger.Debug().
		Int("documents", len(files)).
		Int("cached", res.CachedCount()).
		Object("timings", res.Timings).
		Msg("build finished")

	var errs *multierror.Error
	for _, e := range b.errs {
		if e != nil {
			errs = multierror.Append(errs, e)
		}
	}
	return res, errs.ErrorOrNil()
}

// projectFs makes document paths relative to root so that file names in
// diagnostics and line pragmas do not depend on where the build runs.
func projectFs(fsys afero.Fs, root string) afero.Fs {
	if root == "" || root == "." {
		return fsys
	}
	return afero.NewBasePathFs(fsys, root)
}

type builder struct {
	fs        afero.Fs
	root      string
	opts      *Options
	cfg       *config.Config
	catalog   *catalog.Catalog
	registry  *directive.Registry
	configFP  string
	catalogFP catalog.Digest
	fileSet   *source.FileSet

	// Индексы уникальны для каждой горутины, мьютекс не нужен.
	docs []Document
	errs []error
}

// load reads every document sequentially so FileIDs follow input order.
// A file that cannot be read gets an empty placeholder and a load diagnostic.
func (b *builder) load(ctx context.Context, files []string) []bool {
	_, stage := trace.Start(ctx, trace.ScopeStage, "load")
	defer stage.End("")

	loaded := make([]bool, len(files))
	for i, rel := range files {
		rel = filepath.ToSlash(rel)
		start := b.opts.Observer.begin(PhaseLoad, rel)
		id, err := b.fileSet.Load(rel)
		b.opts.Observer.end(PhaseLoad, rel, start, false, err)
		b.docs[i].Path = rel
		if err != nil {
			id = b.fileSet.AddVirtual(rel, nil)
			b.docs[i].FileID = id
			b.docs[i].Diagnostics = []diag.Diagnostic{
				diag.NewError(diag.IOLoadFileError, source.Span{File: id}, err),
			}
			b.errs[i] = errors.WithDetails(err, "path", rel)
			continue
		}
		b.docs[i].FileID = id
		loaded[i] = true
	}
	return loaded
}

func (b *builder) document(ctx context.Context, i int) error {
	doc := &b.docs[i]
	file := b.fileSet.Get(doc.FileID)
	logger := zerolog.Ctx(ctx).With().Str("path", doc.Path).Logger()

	var cacheErr error
	key := CacheKey(file, b.catalogFP, b.configFP)
	if b.opts.Cache != nil {
		start := b.opts.Observer.begin(PhaseCache, doc.Path)
		cached, ok, err := b.opts.Cache.Get(key)
		b.opts.Observer.end(PhaseCache, doc.Path, start, ok, err)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("cache read failed")
		case ok && cached.Path == doc.Path && cached.Hash == file.Hash:
			doc.Text = cached.Text
			doc.SourceMap = cached.SourceMap
			doc.Checksum = cached.Checksum
			doc.Diagnostics = fromCachedDiagnostics(cached.Diagnostics, doc.FileID)
			doc.Cached = true
			logger.Debug().Msg("cache hit")
		}
	}

	if !doc.Cached {
		if err := b.compile(ctx, doc, file); err != nil {
			return err
		}
		if b.opts.Cache != nil {
			err := b.opts.Cache.Put(key, &CachedDocument{
				Path:        doc.Path,
				Hash:        file.Hash,
				Text:        doc.Text,
				SourceMap:   doc.SourceMap,
				Checksum:    doc.Checksum,
				Diagnostics: toCachedDiagnostics(doc.Diagnostics),
			})
			if err != nil {
				logger.Warn().Err(err).Msg("cache write failed")
				cacheErr = errors.WithDetails(errors.Errorf("cache %s: %w", doc.Path, err), "path", doc.Path)
			}
		}
	}

	if b.opts.Write && !doc.HasErrors() {
		if err := b.write(doc); err != nil {
			return multierror.Append(cacheErr, err).ErrorOrNil()
		}
	}
	return cacheErr
}

func (b *builder) compile(ctx context.Context, doc *Document, file *source.File) error {
	start := b.opts.Observer.begin(PhaseCompile, doc.Path)
	output := OutputPath(doc.Path, b.cfg.Output)
	style, err := b.cfg.Style(b.fs, filepath.Join(b.root, filepath.FromSlash(output)))
	if err != nil {
		b.opts.Observer.end(PhaseCompile, doc.Path, start, false, err)
		return errors.WithDetails(errors.Errorf("style for %s: %w", doc.Path, err), "path", doc.Path)
	}

	res, err := compiler.Compile(ctx, compiler.Input{
		File:     file,
		Catalog:  b.catalog,
		Registry: b.registry,
		Config:   b.cfg,
		Writer:   style,
		Cache:    b.opts.Shared,
	})
	if err == nil && b.cfg.Output.SourceMaps {
		doc.SourceMap, err = res.Map.MarshalV3(path.Base(output), false)
	}
	b.opts.Observer.end(PhaseCompile, doc.Path, start, false, err)
	if err != nil {
		return err
	}
	doc.Text = res.Text
	doc.Checksum = res.Checksum
	doc.Diagnostics = res.Diagnostics
	doc.Timings = res.Timings
	return nil
}

func (b *builder) write(doc *Document) (err error) {
	start := b.opts.Observer.begin(PhaseWrite, doc.Path)
	defer func() { b.opts.Observer.end(PhaseWrite, doc.Path, start, false, err) }()

	output := OutputPath(doc.Path, b.cfg.Output)
	if err := writeFile(b.fs, b.root, output, []byte(doc.Text)); err != nil {
		doc.Diagnostics = append(doc.Diagnostics,
			diag.NewError(diag.IOWriteFileError, source.Span{File: doc.FileID}, err))
		return err
	}
	if doc.SourceMap != nil {
		if err := writeFile(b.fs, b.root, MapPath(output), doc.SourceMap); err != nil {
			doc.Diagnostics = append(doc.Diagnostics,
				diag.NewError(diag.IOWriteFileError, source.Span{File: doc.FileID}, err))
			return err
		}
	}
	doc.Output = output
	return nil
}
