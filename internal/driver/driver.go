// Package driver compiles many templates at once. It discovers inputs,
// loads catalogs, compiles documents in parallel, serves unchanged documents
// from a disk cache and writes generated files next to their templates or
// into a configured output directory.
//
// The driver lives outside the compiler core: every document still goes
// through compiler.Compile on its own, and nothing the driver keeps feeds
// back into code generation.
package driver

import (
	"github.com/spf13/afero"

	"weave/internal/catalog"
	"weave/internal/config"
	"weave/internal/diag"
	"weave/internal/directive"
	"weave/internal/observ"
	"weave/internal/source"
	"weave/internal/syntax"
)

// Options configures Build.
type Options struct {
	// Fs is the file system for inputs, outputs and the cache. Nil means the OS.
	Fs afero.Fs
	// Root is the project directory. Files, catalogs and output paths are
	// relative to it.
	Root string
	// Files lists the documents to compile. Empty means Discover(Config.Build).
	Files []string

	Config   *config.Config
	Catalog  *catalog.Catalog
	Registry *directive.Registry
	// Cache nil disables the disk cache.
	Cache *DiskCache
	// Shared interns syntax shapes across all documents of the build.
	Shared *syntax.Cache

	// Jobs overrides Config.Build.Jobs when positive.
	Jobs int
	// Write stores generated files. Without it Build only checks.
	Write bool

	Observer PhaseObserver
}

// Document is the outcome for one input.
type Document struct {
	Path   string
	FileID source.FileID
	// Text is the generated Go source. It is empty when the file could not be loaded.
	Text string
	// SourceMap is the V3 map for Text, set when Output.SourceMaps is on.
	SourceMap   []byte
	Diagnostics []diag.Diagnostic
	Checksum    string
	Cached      bool
	// Output is the written path relative to Root.
	Output  string
	Timings observ.Report
}

// HasErrors reports whether the document has an error diagnostic.
func (d *Document) HasErrors() bool {
	for i := range d.Diagnostics {
		if d.Diagnostics[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Result is the outcome of Build. Documents keep the order of the inputs.
type Result struct {
	FileSet   *source.FileSet
	Documents []Document
	Timings   observ.Report
}

// Diagnostics returns the diagnostics of every document in input order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := range r.Documents {
		out = append(out, r.Documents[i].Diagnostics...)
	}
	return out
}

// HasErrors reports whether any document has an error diagnostic.
func (r *Result) HasErrors() bool {
	for i := range r.Documents {
		if r.Documents[i].HasErrors() {
			return true
		}
	}
	return false
}

// CachedCount returns how many documents were served from the disk cache.
func (r *Result) CachedCount() int {
	n := 0
	for i := range r.Documents {
		if r.Documents[i].Cached {
			n++
		}
	}
	return n
}
