package lower

import (
	"weave/internal/ir"
	"weave/internal/source"
)

// sink collects the IR produced for one container. Contiguous markup text is
// gathered into a pending run and written as a single Literal.
type sink struct {
	file  *source.File
	nodes []*ir.Node
	run   source.Span
	open  bool
}

func newSink(file *source.File) *sink { return &sink{file: file} }

// text adds sp to the pending run, starting a new run when sp does not
// continue it. A leading byte order mark is never written.
func (s *sink) text(sp source.Span) {
	if skip := s.file.BOMLen(); sp.Start < skip {
		sp.Start = min(skip, sp.End)
	}
	if sp.Empty() {
		return
	}
	if s.open && s.run.End == sp.Start {
		s.run.End = sp.End
		return
	}
	s.flush()
	s.run, s.open = sp, true
}

func (s *sink) flush() {
	if !s.open {
		return
	}
	s.nodes = append(s.nodes, ir.Literal(s.file.Slice(s.run), s.run))
	s.open = false
}

func (s *sink) add(n *ir.Node) {
	s.flush()
	if n != nil {
		s.nodes = append(s.nodes, n)
	}
}

func (s *sink) addAll(ns []*ir.Node) {
	for _, n := range ns {
		s.add(n)
	}
}

// take flushes and returns the collected nodes.
func (s *sink) take() []*ir.Node {
	s.flush()
	out := s.nodes
	s.nodes = nil
	return out
}
