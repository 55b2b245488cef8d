package runtime

import (
	"github.com/lunarpulse/drogue-device/internal/reflector"
)

// Address is a copyable handle to a mounted actor. Many components may hold
// copies; all remain valid for the lifetime of the device because actors are
// never unmounted. The zero Address is unusable.
type Address[A any] struct {
	actor A
	slot  *slot
}

// Name returns the actor's registered name.
func (a Address[A]) Name() string { return a.slot.name }

// Supervisor returns the supervisor the actor is mounted on. Drivers use it
// to create futures resolved from interrupt or timer context.
func (a Address[A]) Supervisor() *Supervisor { return a.slot.sup }

// Notify enqueues a fire-and-forget event into the actor's inbox and returns
// immediately. Safe to call from interrupt context. The only failure mode is
// a full inbox.
func Notify[E any, A Handler[E]](addr Address[A], event E) error {
	return addr.slot.enqueue(envelope{
		msgType:  reflector.EventName(event),
		dispatch: func() Completion { return addr.actor.OnNotification(event) },
	})
}

// Request enqueues an event and returns a future resolved with the handler's
// result once the actor has processed every message queued ahead of it.
// Await the future with [Task.Await]. Enqueue failures resolve the future
// immediately with the error.
func Request[E any, A Handler[E]](addr Address[A], event E) *Future {
	f := addr.slot.sup.NewFuture()
	err := addr.slot.enqueue(envelope{
		msgType:  reflector.EventName(event),
		dispatch: func() Completion { return addr.actor.OnNotification(event) },
		reply:    f,
	})
	if err != nil {
		f.Complete(nil, err)
	}
	return f
}
