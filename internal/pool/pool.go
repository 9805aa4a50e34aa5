// Package pool provides typed, scoped object pools for scratch buffers.
//
// Pooling only saves allocations. A released object is reset before it can be
// handed out again, so no state crosses from one user to the next.
package pool

import (
	"strings"
	"sync"
)

// Pool hands out *T values and takes them back after reset.
type Pool[T any] struct {
	p     sync.Pool
	reset func(*T)
}

// New creates a pool. newFn allocates a fresh value, reset clears one before reuse.
func New[T any](newFn func() *T, reset func(*T)) *Pool[T] {
	return &Pool[T]{
		p:     sync.Pool{New: func() any { return newFn() }},
		reset: reset,
	}
}

// Get takes a value from the pool.
func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

// Put resets v and returns it to the pool. Put(nil) is a no-op.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.p.Put(v)
}

// Acquire returns a value together with its release function.
// The release function is idempotent, so it is safe to both defer it and call it early.
func (p *Pool[T]) Acquire() (*T, func()) {
	v := p.Get()
	var once sync.Once
	return v, func() { once.Do(func() { p.Put(v) }) }
}

// With runs fn with a pooled value and releases it on every exit path,
// including panics.
func With[T any, R any](p *Pool[T], fn func(*T) (R, error)) (R, error) {
	v, release := p.Acquire()
	defer release()
	return fn(v)
}

// Builders pools strings.Builder values.
var Builders = New(
	func() *strings.Builder { return new(strings.Builder) },
	func(b *strings.Builder) { b.Reset() },
)

// Slice is a pooled slice header.
type Slice[E any] struct {
	Items []E
}

// NewSlices creates a pool of slices with the given initial capacity.
// Slices that grew beyond maxCap are dropped instead of being retained.
func NewSlices[E any](initCap, maxCap int) *Pool[Slice[E]] {
	return New(
		func() *Slice[E] { return &Slice[E]{Items: make([]E, 0, initCap)} },
		func(s *Slice[E]) {
			if cap(s.Items) > maxCap {
				s.Items = make([]E, 0, initCap)
				return
			}
			clear(s.Items)
			s.Items = s.Items[:0]
		},
	)
}
