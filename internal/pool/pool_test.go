package pool

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireResetsOnRelease(t *testing.T) {
	resets := 0
	p := New(func() *strings.Builder { return new(strings.Builder) }, func(b *strings.Builder) {
		resets++
		b.Reset()
	})

	b, release := p.Acquire()
	b.WriteString("scratch")
	release()
	release()
	assert.Equal(t, 1, resets)

	again := p.Get()
	assert.Equal(t, 0, again.Len())
	p.Put(again)
	p.Put(nil)
}

func TestWithReleasesOnError(t *testing.T) {
	released := 0
	p := New(func() *[]int { s := make([]int, 0, 4); return &s }, func(s *[]int) {
		released++
		*s = (*s)[:0]
	})
	boom := errors.New("boom")

	_, err := With(p, func(s *[]int) (int, error) {
		*s = append(*s, 1, 2)
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, released)

	n, err := With(p, func(s *[]int) (int, error) {
		*s = append(*s, 3)
		return len(*s), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, released)
}

func TestWithReleasesOnPanic(t *testing.T) {
	released := false
	p := New(func() *int { return new(int) }, func(*int) { released = true })
	func() {
		defer func() { _ = recover() }()
		_, _ = With(p, func(*int) (struct{}, error) { panic("boom") })
	}()
	assert.True(t, released)
}

func TestSlicesDropOversized(t *testing.T) {
	p := NewSlices[int](2, 8)
	s := p.Get()
	for i := 0; i < 32; i++ {
		s.Items = append(s.Items, i)
	}
	p.Put(s)
	assert.Empty(t, s.Items)
	assert.LessOrEqual(t, cap(s.Items), 8)
}
