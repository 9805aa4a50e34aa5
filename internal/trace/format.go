package trace

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Format selects how stream and dump output encodes events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
	FormatChrome               // chrome://tracing JSON array
)

var formatNames = [...]string{
	FormatAuto:   "auto",
	FormatText:   "text",
	FormatNDJSON: "ndjson",
	FormatChrome: "chrome",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// ParseFormat accepts a format name; the empty string means auto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}
	return FormatAuto, errors.Errorf("invalid trace format: %q (expected: %s)", s, strings.Join(formatNames[:], "|"))
}

// FormatEvent encodes one event. Text and NDJSON end with a newline, a
// Chrome element does not; the stream adds separators.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return append(marshal(newRecord(ev)), '\n')
	case FormatChrome:
		return marshal(newChromeRecord(ev))
	default:
		return appendText(nil, ev)
	}
}

type record struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func newRecord(ev *Event) record {
	return record{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	}
}

type chromeRecord struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Phase string            `json:"ph"`
	TS    int64             `json:"ts"`
	PID   int               `json:"pid"`
	TID   uint64            `json:"tid"`
	Args  map[string]string `json:"args,omitempty"`
}

var chromePhases = [...]string{
	KindSpanBegin: "B",
	KindSpanEnd:   "E",
	KindPoint:     "i",
	KindHeartbeat: "i",
}

func newChromeRecord(ev *Event) chromeRecord {
	phase := "i"
	if int(ev.Kind) < len(chromePhases) && chromePhases[ev.Kind] != "" {
		phase = chromePhases[ev.Kind]
	}
	args := ev.Extra
	if ev.Detail != "" {
		args = maps.Clone(args)
		if args == nil {
			args = make(map[string]string, 1)
		}
		args["detail"] = ev.Detail
	}
	return chromeRecord{
		Name:  ev.Name,
		Cat:   ev.Scope.String(),
		Phase: phase,
		TS:    ev.Time.UnixMicro(),
		PID:   1,
		TID:   ev.GID,
		Args:  args,
	}
}

func marshal(v any) []byte {
	data, _ := json.Marshal(v) //nolint:errchkjson // strings and integers only
	return data
}

var textMarks = [...]string{
	KindSpanBegin: "→ ",
	KindSpanEnd:   "← ",
	KindPoint:     "• ",
	KindHeartbeat: "♡ ",
}

// appendText renders "[clock] <indent><mark>name (detail) {k=v, ...}".
func appendText(dst []byte, ev *Event) []byte {
	dst = append(dst, '[')
	dst = ev.Time.AppendFormat(dst, "15:04:05.000000")
	dst = append(dst, "] "...)
	for s := ScopeDriver; s < ev.Scope; s++ {
		dst = append(dst, "  "...)
	}
	if int(ev.Kind) < len(textMarks) {
		dst = append(dst, textMarks[ev.Kind]...)
	}
	dst = append(dst, ev.Name...)
	if ev.Detail != "" {
		dst = append(dst, " ("...)
		dst = append(dst, ev.Detail...)
		dst = append(dst, ')')
	}
	if len(ev.Extra) > 0 {
		dst = append(dst, " {"...)
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, k...)
			dst = append(dst, '=')
			dst = append(dst, ev.Extra[k]...)
		}
		dst = append(dst, '}')
	}
	return append(dst, '\n')
}
