package sourcemap

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"fortio.org/safecast"
	"github.com/tidwall/btree"

	"weave/internal/source"
)

// Builder collects entries in generation order.
type Builder struct {
	entries []Entry
}

// Add records one entry. Entries with an empty source span or an empty
// generated range carry no mapping and are dropped.
func (b *Builder) Add(e Entry) {
	if e.Source.Empty() || e.Generated.Empty() {
		return
	}
	b.entries = append(b.entries, e)
}

// Len returns the number of recorded entries.
func (b *Builder) Len() int { return len(b.entries) }

// Build freezes the entries against the generated text and the template
// they map into.
func (b *Builder) Build(text string, file *source.File) *Map {
	m := &Map{
		text:    text,
		file:    file,
		entries: slices.Clone(b.entries),
		lines:   lineIndex(text),
	}
	slices.SortStableFunc(m.entries, func(x, y Entry) int {
		return cmp.Compare(x.Generated.Start, y.Generated.Start)
	})
	for i, e := range m.entries {
		idx := mustU32(i)
		// Keys are the last byte of each region so Seek lands on the first
		// region that ends at or after an offset.
		m.byGen.Set(e.Generated.End-1, idx)
		m.bySrc.Set(uint64(e.Source.Start)<<32|uint64(idx), idx)
		m.maxSrcLen = max(m.maxSrcLen, e.Source.Len())
	}
	return m
}

// Map is an immutable source map for one generated file.
type Map struct {
	text    string
	file    *source.File
	entries []Entry
	// lines holds the offsets of '\n' bytes in text.
	lines []uint32

	byGen     btree.Map[uint32, uint32]
	bySrc     btree.Map[uint64, uint32]
	maxSrcLen uint32
}

// Entries returns the entries ordered by generated offset.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return slices.Clone(m.entries)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// File returns the template the map points into.
func (m *Map) File() *source.File { return m.file }

// Text returns the generated text.
func (m *Map) Text() string { return m.text }

// Lookup returns the entry whose generated region contains off.
func (m *Map) Lookup(off uint32) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	it := m.byGen.Iter()
	if !it.Seek(off) {
		return Entry{}, false
	}
	e := m.entries[it.Value()]
	if !e.Generated.Contains(off) {
		return Entry{}, false
	}
	return e, true
}

// SourceOffset maps a generated offset to a template offset. Verbatim
// regions map byte for byte, literals map to the start of their span.
func (m *Map) SourceOffset(off uint32) (uint32, bool) {
	e, ok := m.Lookup(off)
	if !ok {
		return 0, false
	}
	if e.Kind.Verbatim() && e.Generated.Len() == e.Source.Len() {
		return e.Source.Start + (off - e.Generated.Start), true
	}
	return e.Source.Start, true
}

// LookupSource returns every entry whose source span contains off, in
// generated order.
func (m *Map) LookupSource(off uint32) []Entry {
	if m == nil || len(m.entries) == 0 {
		return nil
	}
	key := uint64(off)<<32 | 0xffffffff
	it := m.bySrc.Iter()
	var more bool
	if !it.Seek(key) {
		more = it.Last()
	} else if it.Key() > key {
		more = it.Prev()
	} else {
		more = true
	}
	var hits []uint32
	for ; more; more = it.Prev() {
		e := m.entries[it.Value()]
		if e.Source.Start+m.maxSrcLen <= off {
			break
		}
		if e.Source.Contains(off) {
			hits = append(hits, it.Value())
		}
	}
	slices.Sort(hits)
	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = m.entries[h]
	}
	return out
}

// GeneratedOffset maps a template offset to the first generated offset
// that came from it.
func (m *Map) GeneratedOffset(off uint32) (uint32, bool) {
	hits := m.LookupSource(off)
	if len(hits) == 0 {
		return 0, false
	}
	e := hits[0]
	if e.Kind.Verbatim() && e.Generated.Len() == e.Source.Len() {
		return e.Generated.Start + (off - e.Source.Start), true
	}
	return e.Generated.Start, true
}

// Position converts a generated offset into a 1-based line and column.
func (m *Map) Position(off uint32) source.LineCol {
	off = min(off, mustU32(len(m.text)))
	line := sort.Search(len(m.lines), func(i int) bool { return m.lines[i] >= off })
	var start uint32
	if line > 0 {
		start = m.lines[line-1] + 1
	}
	return source.LineCol{Line: mustU32(line + 1), Col: off - start + 1}
}

func lineIndex(text string) []uint32 {
	var out []uint32
	for i := range len(text) {
		if text[i] == '\n' {
			out = append(out, mustU32(i))
		}
	}
	return out
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source map offset overflow: %w", err))
	}
	return v
}
