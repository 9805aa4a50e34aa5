package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"

	"weave/internal/catalog"
	"weave/internal/diag"
	"weave/internal/source"
	"weave/internal/version"
)

// Current schema version - increment when CachedDocument format changes
const diskCacheSchemaVersion uint16 = 1

// Key identifies one compiled document on disk.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// CacheKey hashes everything that decides the generated output: the
// document path and content, the catalog, the configuration and the
// compiler version.
func CacheKey(file *source.File, catalogFP catalog.Digest, configFP string) Key {
	h := sha256.New()
	_, _ = h.Write([]byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	_, _ = h.Write([]byte(version.Version))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(file.Path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(file.Hash[:])
	_, _ = h.Write(catalogFP[:])
	_, _ = h.Write([]byte(configFP))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// DiskCache хранит скомпилированные документы по Key.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

// CachedDocument is what the cache stores for one document. Spans are kept
// as offsets and rebound to the current FileID on read.
type CachedDocument struct {
	Schema uint16

	Path      string
	Hash      [32]byte
	Text      string
	SourceMap []byte
	Checksum  string

	Diagnostics []CachedDiagnostic
}

type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote
	Fixes    []CachedFix
}

type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

type CachedFix struct {
	Title string
	Edits []CachedEdit
}

type CachedEdit struct {
	Start   uint32
	End     uint32
	NewText string
}

// OpenDiskCache creates dir if needed and returns a cache rooted there.
func OpenDiskCache(fsys afero.Fs, dir string) (*DiskCache, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("open cache: %w", err)
	}
	return &DiskCache{fs: fsys, dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Key) string {
	hexKey := key.String()
	// Подкаталог по первым двум символам, чтобы не держать всё в одной папке.
	return filepath.Join(c.dir, "docs", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a document to the disk cache.
func (c *DiskCache) Put(key Key, doc *CachedDocument) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := c.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := afero.TempFile(c.fs, filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	doc.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(doc); err != nil {
		_ = f.Close()
		_ = c.fs.Remove(tmp)
		return errors.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := c.fs.Rename(tmp, p); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return nil
}

// Get reads a document. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *DiskCache) Get(key Key) (*CachedDocument, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := c.fs.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var doc CachedDocument
	if err := msgpack.NewDecoder(f).Decode(&doc); err != nil {
		return nil, false, errors.Errorf("decode cache entry: %w", err)
	}
	if doc.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &doc, true, nil
}

// DropAll removes every cached document.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fs.RemoveAll(filepath.Join(c.dir, "docs"))
}

func toCachedDiagnostics(items []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(items))
	for i := range items {
		d := &items[i]
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fx := range d.Fixes {
			cf := CachedFix{Title: fx.Title}
			for _, e := range fx.Edits {
				cf.Edits = append(cf.Edits, CachedEdit{Start: e.Span.Start, End: e.Span.End, NewText: e.NewText})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		out = append(out, cd)
	}
	return out
}

// fromCachedDiagnostics rebuilds diagnostics for file. Args are not stored;
// Message already carries the rendered text.
func fromCachedDiagnostics(items []CachedDiagnostic, file source.FileID) []diag.Diagnostic {
	span := func(start, end uint32) source.Span { return source.Span{File: file, Start: start, End: end} }
	out := make([]diag.Diagnostic, 0, len(items))
	for i := range items {
		cd := &items[i]
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  span(cd.Start, cd.End),
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.Start, n.End), Msg: n.Msg})
		}
		for _, fx := range cd.Fixes {
			f := diag.Fix{Title: fx.Title}
			for _, e := range fx.Edits {
				f.Edits = append(f.Edits, diag.FixEdit{Span: span(e.Start, e.End), NewText: e.NewText})
			}
			d.Fixes = append(d.Fixes, f)
		}
		out = append(out, d)
	}
	return out
}
