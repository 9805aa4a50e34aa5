package sourcemap

import (
	"strconv"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// Validate checks the map against its generated text and template:
//
//   - every source span is non-empty and inside the template;
//   - every generated range is inside the text and no two overlap;
//   - verbatim regions repeat the source text exactly and literal regions
//     unquote to it;
//   - entries not marked as reordered follow source order.
//
// All problems are returned together.
func (m *Map) Validate() error {
	if m == nil {
		return nil
	}
	var errs *multierror.Error
	textLen := mustU32(len(m.text))
	var prevEnd uint32
	var lastSrc *Entry
	for i := range m.entries {
		e := &m.entries[i]
		if e.Generated.End > textLen {
			errs = multierror.Append(errs, errors.Errorf("%s: generated range outside of %d bytes", e, textLen))
			continue
		}
		if e.Generated.Start < prevEnd {
			errs = multierror.Append(errs, errors.Errorf("%s: overlaps the previous entry", e))
		}
		prevEnd = max(prevEnd, e.Generated.End)

		if m.file != nil {
			if e.Source.Empty() || !e.Source.Within(m.file.Span()) {
				errs = multierror.Append(errs, errors.Errorf("%s: source span outside of %s", e, m.file.Path))
				continue
			}
			if err := m.checkText(e); err != nil {
				errs = multierror.Append(errs, err)
			}
		}

		if e.Reordered {
			continue
		}
		if lastSrc != nil && e.Source.Start < lastSrc.Source.Start {
			errs = multierror.Append(errs, errors.Errorf("%s: out of source order after %s", e, lastSrc))
		}
		lastSrc = e
	}
	return errs.ErrorOrNil()
}

func (m *Map) checkText(e *Entry) error {
	gen := m.text[e.Generated.Start:e.Generated.End]
	src := m.file.Slice(e.Source)
	switch {
	case e.Kind.Verbatim():
		if gen != src {
			return errors.Errorf("%s: generated %q, source %q", e, gen, src)
		}
	case e.Kind == KindLiteral:
		s, err := strconv.Unquote(gen)
		if err != nil {
			return errors.Errorf("%s: %w", e, err)
		}
		if s != src {
			return errors.Errorf("%s: literal %q, source %q", e, s, src)
		}
	}
	return nil
}
