package runtime

import (
	"errors"
	"sync"

	"github.com/lunarpulse/drogue-device/core/ds"
)

// ErrInboxFull is returned by Notify (and resolves a Request's future) when
// the target actor's fixed-capacity inbox cannot accept another message.
var ErrInboxFull = errors.New("runtime: inbox full")

// envelope is a type-erased pending message. The dispatch closure captures
// the concrete handler and event, so dispatch stays statically typed at the
// send site.
type envelope struct {
	msgType  string
	dispatch func() Completion
	reply    *Future // nil for notify
}

// inbox is a per-actor FIFO with a fixed-capacity ring. The mutex is the
// narrow critical section that makes enqueue safe from interrupt context
// while the supervisor loop drains from the other side.
type inbox struct {
	mu   sync.Mutex
	ring *ds.Ring[envelope]
}

func newInbox(capacity int) *inbox {
	return &inbox{ring: ds.NewRing[envelope](capacity)}
}

func (b *inbox) push(e envelope) (depth int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ring.Push(e) {
		return b.ring.Len(), ErrInboxFull
	}
	return b.ring.Len(), nil
}

func (b *inbox) pop() (envelope, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Pop()
}

func (b *inbox) depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Len()
}
