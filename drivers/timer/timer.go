// Package timer provides delay-as-a-service for actors that have no timing
// hardware of their own. A Delay request resolves after the requested
// duration has elapsed.
//
// One timer actor serves one delay at a time; queued requests run back to
// back. Mount one timer per independent timeline.
package timer

import (
	"time"

	"github.com/lunarpulse/drogue-device/core/runtime"
)

// Delay asks the timer to resolve after a duration.
type Delay struct {
	After time.Duration
}

type Timer struct{}

func New() *Timer { return &Timer{} }

func (t *Timer) OnMount(runtime.Address[*Timer], *runtime.EventBus) runtime.Completion {
	return runtime.Immediate()
}

func (t *Timer) OnNotification(d Delay) runtime.Completion {
	return runtime.Defer(func(task *runtime.Task) (any, error) {
		f := task.NewFuture()
		time.AfterFunc(d.After, func() { f.Complete(nil, nil) })
		return task.Await(f)
	})
}
