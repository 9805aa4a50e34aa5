package syntax

import (
	"sync"

	"weave/internal/token"
)

// maxCachedChildren bounds the nodes the cache interns. Large nodes rarely
// repeat, and their small children are interned anyway.
const maxCachedChildren = 3

// Cache interns green tokens and small green nodes. A Cache may be shared by
// parsers running in parallel; identical fragments of different documents
// then resolve to the same instance.
type Cache struct {
	mu     sync.Mutex
	tokens map[uint64][]*GreenToken
	nodes  map[uint64][]*GreenNode
	stats  CacheStats
}

// CacheStats counts interning hits and misses.
type CacheStats struct {
	TokenHits, TokenMisses uint64
	NodeHits, NodeMisses   uint64
}

func NewCache() *Cache {
	return &Cache{
		tokens: make(map[uint64][]*GreenToken),
		nodes:  make(map[uint64][]*GreenNode),
	}
}

// Token returns the interned green token for tok.
func (c *Cache) Token(tok token.Token) *GreenToken {
	g := NewGreenToken(tok.Kind, tok.Text, greenTrivia(tok.Leading), greenTrivia(tok.Trailing), tok.Flags)
	if c == nil {
		return g
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cand := range c.tokens[g.hash] {
		if tokensEqual(cand, g) {
			c.stats.TokenHits++
			return cand
		}
	}
	c.stats.TokenMisses++
	c.tokens[g.hash] = append(c.tokens[g.hash], g)
	return g
}

// Node returns a green node with the given children, interned when small.
// children is retained; callers must not reuse it.
func (c *Cache) Node(kind Kind, children []Green) *GreenNode {
	g := NewGreenNode(kind, children)
	if c == nil || len(children) > maxCachedChildren {
		return g
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cand := range c.nodes[g.hash] {
		if shallowEqual(cand, g) {
			c.stats.NodeHits++
			return cand
		}
	}
	c.stats.NodeMisses++
	c.nodes[g.hash] = append(c.nodes[g.hash], g)
	return g
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len is the number of interned elements.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.tokens {
		n += len(b)
	}
	for _, b := range c.nodes {
		n += len(b)
	}
	return n
}

// shallowEqual compares children by identity; interned children make that exact.
func shallowEqual(a, b *GreenNode) bool {
	if a.kind != b.kind || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if a.children[i] != b.children[i] && !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

func greenTrivia(ts []token.Trivia) []GreenTrivia {
	if len(ts) == 0 {
		return nil
	}
	out := make([]GreenTrivia, len(ts))
	for i, t := range ts {
		out[i] = GreenTrivia{Kind: t.Kind, Text: t.Text}
	}
	return out
}
