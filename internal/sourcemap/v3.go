package sourcemap

import (
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// V3 is the JSON document of the version 3 source map format. Columns are
// byte offsets, which is what Go tooling reports.
type V3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// V3 converts the map. generated names the generated file; withContent
// embeds the template text.
func (m *Map) V3(generated string, withContent bool) *V3 {
	out := &V3{Version: 3, File: generated, Sources: []string{}, Names: []string{}}
	if m.file != nil {
		out.Sources = append(out.Sources, m.file.Path)
		if withContent {
			out.SourcesContent = []string{string(m.file.Content)}
		}
	}
	out.Mappings = m.mappings()
	return out
}

// MarshalV3 renders the V3 document as JSON.
func (m *Map) MarshalV3(generated string, withContent bool) ([]byte, error) {
	b, err := json.Marshal(m.V3(generated, withContent))
	if err != nil {
		return nil, errors.Errorf("encode source map: %w", err)
	}
	return b, nil
}

// mappings encodes one segment at the start of every entry and a bare
// segment where the entry ends, so text between entries stays unmapped.
func (m *Map) mappings() string {
	if m.file == nil || len(m.entries) == 0 {
		return ""
	}
	var b strings.Builder
	var line uint32 = 1
	var lastCol, lastSrcLine, lastSrcCol int
	first := true
	segment := func(pos uint32, fields ...int) {
		p := m.Position(pos)
		for line < p.Line {
			b.WriteByte(';')
			line++
			lastCol, first = 0, true
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		col := int(p.Col) - 1
		writeVLQ(&b, col-lastCol)
		lastCol = col
		if len(fields) == 2 {
			writeVLQ(&b, 0)
			writeVLQ(&b, fields[0]-lastSrcLine)
			writeVLQ(&b, fields[1]-lastSrcCol)
			lastSrcLine, lastSrcCol = fields[0], fields[1]
		}
	}
	for i, e := range m.entries {
		src := m.file.Position(e.Source.Start)
		segment(e.Generated.Start, int(src.Line)-1, int(src.Col)-1)
		if i+1 < len(m.entries) && m.entries[i+1].Generated.Start == e.Generated.End {
			continue
		}
		segment(e.Generated.End)
	}
	return b.String()
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// writeVLQ appends v as a base64 VLQ: sign in the lowest bit, five bits
// per digit, continuation in bit six.
func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}
