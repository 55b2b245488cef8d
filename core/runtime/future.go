package runtime

import "sync"

// Future is a write-once result slot shared between the producer of a value
// (a reply, a mutex grant, a finished transfer) and the task awaiting it.
//
// Complete may be called from any context, including interrupt handlers and
// timer callbacks; it never blocks. Awaiting is done with [Task.Await] from
// inside a deferred completion, or with Done from ordinary goroutines in
// tests and host-side code.
type Future struct {
	mu       sync.Mutex
	resolved bool
	value    any
	err      error
	done     chan struct{}
	wake     func()
}

func newFuture(wake func()) *Future {
	return &Future{done: make(chan struct{}), wake: wake}
}

// Complete resolves the future. Subsequent calls are no-ops.
func (f *Future) Complete(value any, err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.value = value
	f.err = err
	close(f.done)
	wake := f.wake
	f.mu.Unlock()

	if wake != nil {
		wake()
	}
}

// Resolved reports whether the future has been completed, without blocking.
func (f *Future) Resolved() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Value returns the result. It is only meaningful once Resolved reports true.
func (f *Future) Value() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Done returns a channel closed on resolution. It exists for code running
// outside the supervisor loop; actors use [Task.Await] instead.
func (f *Future) Done() <-chan struct{} { return f.done }
