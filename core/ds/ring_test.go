package ds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_fifo(t *testing.T) {
	r := NewRing[int](4)

	for i := 1; i <= 4; i++ {
		require.True(t, r.Push(i))
	}
	require.Equal(t, 4, r.Len())

	for i := 1; i <= 4; i++ {
		v, ok := r.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	_, ok := r.Pop()
	require.False(t, ok)
}

func TestRing_full(t *testing.T) {
	r := NewRing[string](2)
	require.True(t, r.Push("a"))
	require.True(t, r.Push("b"))
	require.False(t, r.Push("c"), "push beyond capacity must fail")

	v, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.True(t, r.Push("c"), "capacity freed by pop")
}

func TestRing_wraparound(t *testing.T) {
	r := NewRing[int](3)

	// Cycle through the backing slice a few times to exercise index wrapping.
	next := 0
	for i := 0; i < 10; i++ {
		require.True(t, r.Push(i))
		v, ok := r.Pop()
		require.True(t, ok)
		require.Equal(t, next, v)
		next++
	}
	require.Equal(t, 0, r.Len())
}

func TestRing_peek(t *testing.T) {
	r := NewRing[int](2)
	_, ok := r.Peek()
	require.False(t, ok)

	r.Push(7)
	v, ok := r.Peek()
	require.True(t, ok)
	require.Equal(t, 7, v)
	require.Equal(t, 1, r.Len(), "peek must not consume")
}

func TestRing_invalidCapacity(t *testing.T) {
	require.Panics(t, func() { NewRing[int](0) })
}
