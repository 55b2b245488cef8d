package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuture_completeOnce(t *testing.T) {
	woken := 0
	f := newFuture(func() { woken++ })

	require.False(t, f.Resolved())

	f.Complete(42, nil)
	require.True(t, f.Resolved())
	require.Equal(t, 1, woken)

	// second completion is a no-op
	f.Complete(99, errors.New("late"))
	v, err := f.Value()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, woken)
}

func TestFuture_done(t *testing.T) {
	f := newFuture(nil)

	select {
	case <-f.Done():
		t.Fatal("done closed before completion")
	default:
	}

	f.Complete(nil, errors.New("boom"))
	<-f.Done()

	_, err := f.Value()
	require.ErrorContains(t, err, "boom")
}
