package syntax

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"strings"

	"fortio.org/safecast"

	"weave/internal/pool"
	"weave/internal/token"
)

// Green is a position-free tree element: *GreenNode or *GreenToken.
type Green interface {
	// Width is the length in bytes including trivia. It never changes.
	Width() uint32
	// Hash is a content hash shared by structurally equal elements.
	Hash() uint64
	writeText(b *strings.Builder)
	green()
}

// GreenTrivia is trivia without a position.
type GreenTrivia struct {
	Kind token.TriviaKind
	Text string
}

// GreenToken is a token without a position.
type GreenToken struct {
	kind     token.Kind
	text     string
	leading  []GreenTrivia
	trailing []GreenTrivia
	flags    token.Flags
	width    uint32
	hash     uint64
}

// GreenNode is an interior node without a position.
type GreenNode struct {
	kind     Kind
	children []Green
	width    uint32
	hash     uint64
}

var hashSeed = maphash.MakeSeed()

func widthOf(s string) uint32 {
	w, err := safecast.Conv[uint32](len(s))
	if err != nil {
		panic(fmt.Errorf("green width overflow: %w", err))
	}
	return w
}

// NewGreenToken builds an uninterned green token. Prefer Cache.Token.
func NewGreenToken(kind token.Kind, text string, leading, trailing []GreenTrivia, flags token.Flags) *GreenToken {
	t := &GreenToken{kind: kind, text: text, leading: leading, trailing: trailing, flags: flags}
	var h maphash.Hash
	h.SetSeed(hashSeed)
	h.WriteByte(byte(kind))
	h.WriteByte(byte(flags))
	writeTriviaHash(&h, leading)
	h.WriteByte(0xff)
	h.WriteString(text)
	h.WriteByte(0xff)
	writeTriviaHash(&h, trailing)
	t.hash = h.Sum64()

	t.width = widthOf(text)
	for _, tr := range leading {
		t.width += widthOf(tr.Text)
	}
	for _, tr := range trailing {
		t.width += widthOf(tr.Text)
	}
	return t
}

func writeTriviaHash(h *maphash.Hash, ts []GreenTrivia) {
	for _, tr := range ts {
		h.WriteByte(byte(tr.Kind))
		h.WriteString(tr.Text)
		h.WriteByte(0xfe)
	}
}

// NewGreenNode builds an uninterned green node. Prefer Cache.Node.
func NewGreenNode(kind Kind, children []Green) *GreenNode {
	n := &GreenNode{kind: kind, children: children}
	var h maphash.Hash
	h.SetSeed(hashSeed)
	h.WriteByte(byte(kind))
	var buf [8]byte
	for _, c := range children {
		n.width += c.Width()
		binary.LittleEndian.PutUint64(buf[:], c.Hash())
		h.Write(buf[:])
	}
	n.hash = h.Sum64()
	return n
}

func (t *GreenToken) green()                  {}
func (t *GreenToken) Width() uint32           { return t.width }
func (t *GreenToken) Hash() uint64            { return t.hash }
func (t *GreenToken) Kind() token.Kind        { return t.kind }
func (t *GreenToken) Text() string            { return t.text }
func (t *GreenToken) Leading() []GreenTrivia  { return t.leading }
func (t *GreenToken) Trailing() []GreenTrivia { return t.trailing }
func (t *GreenToken) Flags() token.Flags      { return t.flags }
func (t *GreenToken) IsMissing() bool         { return t.flags&token.FlagMissing != 0 }

// LeadingWidth is the byte length of the leading trivia.
func (t *GreenToken) LeadingWidth() uint32 {
	var w uint32
	for _, tr := range t.leading {
		w += widthOf(tr.Text)
	}
	return w
}

func (t *GreenToken) writeText(b *strings.Builder) {
	for _, tr := range t.leading {
		b.WriteString(tr.Text)
	}
	b.WriteString(t.text)
	for _, tr := range t.trailing {
		b.WriteString(tr.Text)
	}
}

func (n *GreenNode) green()            {}
func (n *GreenNode) Width() uint32     { return n.width }
func (n *GreenNode) Hash() uint64      { return n.hash }
func (n *GreenNode) Kind() Kind        { return n.kind }
func (n *GreenNode) Children() []Green { return n.children }

func (n *GreenNode) writeText(b *strings.Builder) {
	for _, c := range n.children {
		c.writeText(b)
	}
}

// Text reconstructs the exact source text covered by g.
func Text(g Green) string {
	b, release := pool.Builders.Acquire()
	defer release()
	g.writeText(b)
	return b.String()
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Green) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Hash() != b.Hash() || a.Width() != b.Width() {
		return false
	}
	switch x := a.(type) {
	case *GreenToken:
		y, ok := b.(*GreenToken)
		return ok && tokensEqual(x, y)
	case *GreenNode:
		y, ok := b.(*GreenNode)
		if !ok || x.kind != y.kind || len(x.children) != len(y.children) {
			return false
		}
		for i := range x.children {
			if !Equal(x.children[i], y.children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func tokensEqual(x, y *GreenToken) bool {
	return x.kind == y.kind && x.flags == y.flags && x.text == y.text &&
		triviaEqual(x.leading, y.leading) && triviaEqual(x.trailing, y.trailing)
}

func triviaEqual(a, b []GreenTrivia) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
