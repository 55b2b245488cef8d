package runtime

import (
	"errors"
	"sync"

	"github.com/lunarpulse/drogue-device/core/ds"
)

// ErrTooManyWaiters resolves a lock future when the mutex's fixed wait queue
// is exhausted.
var ErrTooManyWaiters = errors.New("runtime: mutex wait queue full")

// Mutex wraps a shared peripheral resource as an actor-like entity that
// serializes exclusive access. Lock requests resolve in strict arrival
// order; requests from interrupt context share the same queue as requests
// from actors. At most one guard exists at any instant.
//
// Mount it like any actor:
//
//	i2c := runtime.Mount(sup, "i2c", runtime.NewMutex[hal.I2C](bus))
//
// and take the lock from a deferred completion:
//
//	guard, err := runtime.AwaitGuard(t, i2c)
//	defer guard.Release()
type Mutex[R any] struct {
	resource R

	mu      sync.Mutex
	locked  bool
	waiters *ds.Ring[*Future]
	sup     *Supervisor
}

// NewMutex wraps resource. The mutex is unusable until mounted.
func NewMutex[R any](resource R) *Mutex[R] {
	return &Mutex[R]{resource: resource}
}

// OnMount wires the mutex into the supervisor and sizes its wait queue from
// the arena capacity.
func (m *Mutex[R]) OnMount(self Address[*Mutex[R]], _ *EventBus) Completion {
	m.sup = self.slot.sup
	m.waiters = ds.NewRing[*Future](m.sup.maxActors * 2)
	return Immediate()
}

// Lock enqueues an exclusive-access request and returns a future that
// resolves to a *Guard[R] once this caller reaches the head of the queue.
// Lock itself never suspends, so it is safe in interrupt context; the await
// belongs to ordinary actor dispatch.
func (m *Mutex[R]) Lock() *Future {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.sup.NewFuture()
	if !m.locked && m.waiters.Len() == 0 {
		m.locked = true
		f.Complete(&Guard[R]{m: m}, nil)
		return f
	}
	if !m.waiters.Push(f) {
		f.Complete(nil, ErrTooManyWaiters)
	}
	return f
}

func (m *Mutex[R]) unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Hand the lock to the next waiter directly; it never goes through an
	// unlocked state while the queue is non-empty.
	if f, ok := m.waiters.Pop(); ok {
		f.Complete(&Guard[R]{m: m}, nil)
		return
	}
	m.locked = false
}

// Lock requests the guard through the mutex's address.
func Lock[R any](addr Address[*Mutex[R]]) *Future {
	return addr.actor.Lock()
}

// AwaitGuard locks through addr and suspends the task until the guard is
// granted.
func AwaitGuard[R any](t *Task, addr Address[*Mutex[R]]) (*Guard[R], error) {
	return AwaitAs[*Guard[R]](t, Lock(addr))
}

// Guard is exclusive access to the wrapped resource. Its scope bounds the
// hold: Release unblocks the next queued waiter. Release is idempotent.
type Guard[R any] struct {
	m        *Mutex[R]
	released sync.Once
}

// Resource returns the guarded resource.
func (g *Guard[R]) Resource() R { return g.m.resource }

// Release gives up the lock, granting it to the head of the wait queue.
func (g *Guard[R]) Release() {
	g.released.Do(g.m.unlock)
}
