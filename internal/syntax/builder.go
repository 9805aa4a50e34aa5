package syntax

import (
	"fmt"

	"weave/internal/pool"
	"weave/internal/token"
)

var childSlices = pool.NewSlices[Green](64, 4096)

type frame struct {
	kind  Kind
	first int
}

// Builder assembles a green tree from start/token/finish events.
type Builder struct {
	cache    *Cache
	stack    []frame
	children *pool.Slice[Green]
	release  func()
}

// Checkpoint marks a position among the pending children; StartNodeAt can
// later wrap everything added after it into a node.
type Checkpoint int

// NewBuilder creates a builder that interns through cache (which may be nil).
func NewBuilder(cache *Cache) *Builder {
	children, release := childSlices.Acquire()
	return &Builder{cache: cache, children: children, release: release}
}

// StartNode opens a node of the given kind.
func (b *Builder) StartNode(kind Kind) {
	b.stack = append(b.stack, frame{kind: kind, first: len(b.children.Items)})
}

// Checkpoint returns the current child position.
func (b *Builder) Checkpoint() Checkpoint {
	return Checkpoint(len(b.children.Items))
}

// StartNodeAt opens a node whose first child is the one added at cp.
func (b *Builder) StartNodeAt(cp Checkpoint, kind Kind) {
	if int(cp) > len(b.children.Items) {
		panic(fmt.Sprintf("syntax: checkpoint %d beyond %d children", cp, len(b.children.Items)))
	}
	if n := len(b.stack); n > 0 && int(cp) < b.stack[n-1].first {
		panic("syntax: checkpoint precedes the open node")
	}
	b.stack = append(b.stack, frame{kind: kind, first: int(cp)})
}

// Token adds a token to the open node.
func (b *Builder) Token(tok token.Token) {
	b.children.Items = append(b.children.Items, b.cache.Token(tok))
}

// FinishNode closes the innermost open node.
func (b *Builder) FinishNode() {
	n := len(b.stack)
	if n == 0 {
		panic("syntax: FinishNode without StartNode")
	}
	top := b.stack[n-1]
	b.stack = b.stack[:n-1]
	kids := make([]Green, len(b.children.Items)-top.first)
	copy(kids, b.children.Items[top.first:])
	clear(b.children.Items[top.first:])
	b.children.Items = b.children.Items[:top.first]
	b.children.Items = append(b.children.Items, b.cache.Node(top.kind, kids))
}

// Depth is the number of open nodes.
func (b *Builder) Depth() int { return len(b.stack) }

// Finish returns the single finished root and releases scratch memory.
func (b *Builder) Finish() *GreenNode {
	defer b.release()
	if len(b.stack) != 0 {
		panic(fmt.Sprintf("syntax: Finish with %d open nodes", len(b.stack)))
	}
	if len(b.children.Items) != 1 {
		panic(fmt.Sprintf("syntax: Finish with %d roots", len(b.children.Items)))
	}
	root, ok := b.children.Items[0].(*GreenNode)
	if !ok {
		panic("syntax: root is a token")
	}
	return root
}
