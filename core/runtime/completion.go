package runtime

import "fmt"

// Completion is the value a notification handler returns. It is either
// immediate (the result is already known) or deferred (it wraps a resumable
// body the supervisor polls to completion on later ticks).
//
// A Completion is consumed exactly once by the dispatch machinery.
type Completion struct {
	task  *Task
	value any
	err   error
}

// Immediate returns an already-resolved completion with no result value.
func Immediate() Completion { return Completion{} }

// ImmediateResult returns an already-resolved completion carrying a result.
func ImmediateResult(value any, err error) Completion {
	return Completion{value: value, err: err}
}

// Defer returns a completion wrapping body. The body starts parked; the
// supervisor grants it one step per tick and it must suspend only through
// [Task.Await]. The body's return value resolves the reply future when the
// completion originated from a request.
func Defer(body func(t *Task) (any, error)) Completion {
	t := &Task{
		resume: make(chan struct{}),
		parked: make(chan struct{}),
	}
	go t.run(body)
	return Completion{task: t}
}

// IsImmediate reports whether the completion resolved at creation time.
func (c Completion) IsImmediate() bool { return c.task == nil }

// Task is the resumable half of a deferred completion. Exactly one Task body
// executes at any instant: the supervisor blocks while granting a step, so
// body code needs no locking to touch its actor's state.
type Task struct {
	resume chan struct{}
	parked chan struct{}

	sup   *Supervisor
	done  bool
	value any
	err   error
}

func (t *Task) run(body func(*Task) (any, error)) {
	<-t.resume
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("deferred completion panicked: %v", r)
		}
		t.done = true
		t.parked <- struct{}{}
	}()
	t.value, t.err = body(t)
}

// step grants the body one step and blocks until it parks or finishes.
// Reports whether the body finished. Must not be called again once true.
func (t *Task) step() bool {
	t.resume <- struct{}{}
	<-t.parked
	return t.done
}

// Await suspends the task until f resolves, yielding to the supervisor once
// per tick, then returns the future's result.
func (t *Task) Await(f *Future) (any, error) {
	for !f.Resolved() {
		t.parked <- struct{}{}
		<-t.resume
	}
	return f.Value()
}

// NewFuture creates a future whose resolution wakes the supervisor this task
// runs under. Use it for results produced outside the actor tree, e.g. timer
// callbacks.
func (t *Task) NewFuture() *Future { return t.sup.NewFuture() }

// Background runs f on the supervisor's bounded background executor and
// returns a future resolved with its result. This is the escape hatch for
// blocking peripheral transfers: the body awaits the future while the
// supervisor keeps ticking other actors.
func (t *Task) Background(f func() (any, error)) *Future {
	fut := t.sup.NewFuture()
	t.sup.sched.schedule(func() { fut.Complete(f()) })
	return fut
}

// AwaitAs awaits f and asserts the result to T. A nil result yields the zero
// value of T.
func AwaitAs[T any](t *Task, f *Future) (T, error) {
	v, err := t.Await(f)
	if v == nil {
		var zero T
		return zero, err
	}
	return v.(T), err
}
