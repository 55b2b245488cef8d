package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/lunarpulse/drogue-device/core/metrics"
)

// Supervisor owns the cooperative run loop: it drains every mounted actor's
// inbox, advances in-flight deferred completions one step per tick, and
// dispatches hardware interrupts to the actors bound to them.
//
// Actor and interrupt registration happen during the device mount sequence,
// before the loop starts; registering afterwards is not supported.
type Supervisor struct {
	log     *slog.Logger
	metrics RuntimeMetrics
	onPanic OnPanic
	sched   *scheduler
	bus     *EventBus

	maxActors int
	inboxSize int

	regMu      sync.RWMutex
	slots      []*slot
	interrupts map[int][]InterruptHandler

	wake chan struct{}
}

// slot is one entry in the actor arena: the inbox plus at most one in-flight
// deferred completion. Exactly one logical owner touches actor state at any
// instant: the supervisor's dispatch path or the executing completion body.
type slot struct {
	name string
	sup  *Supervisor

	inbox     *inbox
	lifecycle func(Lifecycle) Completion // nil when the actor opts out

	inflight      *Task
	inflightReply *Future
	inflightType  string
	inflightTimer metrics.Timer
}

func newSupervisor(opt Options) *Supervisor {
	s := &Supervisor{
		log:        opt.Logger,
		metrics:    opt.Metrics,
		onPanic:    opt.OnPanic,
		maxActors:  opt.MaxActors,
		inboxSize:  opt.InboxSize,
		slots:      make([]*slot, 0, opt.MaxActors),
		interrupts: make(map[int][]InterruptHandler),
		wake:       make(chan struct{}, 1),
	}
	s.sched = newScheduler(opt.BackgroundTasks, opt.Logger, opt.Metrics)
	return s
}

// Mount registers a into the supervisor's actor arena and invokes its
// OnMount. A deferred mount completion becomes the actor's initial in-flight
// work, advanced once the supervisor loop runs. The returned address is the
// only way other code may reach the actor.
//
// An empty name gets a generated one. Mounting beyond the configured
// MaxActors capacity panics: the arena is sized at build configuration time.
func Mount[A Actor[A]](s *Supervisor, name string, a A) Address[A] {
	if name == "" {
		name = "actor-" + gonanoid.Must(6)
	}
	sl := s.register(name)
	addr := Address[A]{actor: a, slot: sl}

	if h, ok := any(a).(LifecycleHandler); ok {
		sl.lifecycle = h.OnLifecycle
	}

	c := a.OnMount(addr, s.bus)
	if !c.IsImmediate() {
		s.adopt(sl, c, nil, "mount", s.metrics.MessageDuration("mount"))
	}

	s.log.Debug("actor mounted", slog.String("actor", name))
	return addr
}

// BindInterrupt associates a hardware interrupt number with a handler. The
// handler's OnInterrupt runs synchronously in interrupt context whenever
// the device receives that interrupt.
func (s *Supervisor) BindInterrupt(irqn int, h InterruptHandler) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	s.interrupts[irqn] = append(s.interrupts[irqn], h)
	s.log.Debug("interrupt bound", slog.Int("irqn", irqn))
}

// OnInterrupt dispatches an interrupt to every bound handler, synchronously,
// on the caller's context. It is safe to invoke while the loop is in any
// state.
func (s *Supervisor) OnInterrupt(irqn int) {
	s.regMu.RLock()
	handlers := s.interrupts[irqn]
	s.regMu.RUnlock()

	for _, h := range handlers {
		h.OnInterrupt(irqn)
	}
	s.metrics.InterruptDispatched(irqn)
}

// NewFuture creates a future whose resolution wakes the supervisor loop.
func (s *Supervisor) NewFuture() *Future { return newFuture(s.signal) }

// ---- internals ----

func (s *Supervisor) register(name string) *slot {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	if len(s.slots) >= s.maxActors {
		panic(fmt.Sprintf("runtime: actor capacity exhausted (MaxActors=%d)", s.maxActors))
	}
	sl := &slot{name: name, sup: s, inbox: newInbox(s.inboxSize)}
	s.slots = append(s.slots, sl)
	return sl
}

func (sl *slot) enqueue(e envelope) error {
	depth, err := sl.inbox.push(e)
	sl.sup.metrics.InboxDepth(sl.name, depth)
	if err != nil {
		return err
	}
	sl.sup.signal()
	return nil
}

// signal wakes the loop; it never blocks, so it is interrupt-safe.
func (s *Supervisor) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run is the loop. It returns only when ctx is cancelled; with a background
// context it runs forever, which is the production mode: power loss is the
// terminal state.
func (s *Supervisor) run(ctx context.Context) error {
	s.log.Debug("supervisor loop running")
	for {
		if s.tick() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

// tick runs one scheduling pass. For every actor: advance the in-flight
// completion one step if there is one, then dispatch the next inbox message
// if the slot is free. Reports whether the pass dispatched a message or
// resolved a completion; merely stepping a still-parked body is not
// progress.
func (s *Supervisor) tick() bool {
	progress := false
	inflight := 0
	for _, sl := range s.slots {
		if sl.inflight != nil {
			if sl.inflight.step() {
				s.finish(sl)
				progress = true
			}
		}
		if sl.inflight == nil {
			if env, ok := sl.inbox.pop(); ok {
				s.dispatch(sl, env)
				progress = true
			}
		}
		if sl.inflight != nil {
			inflight++
		}
	}
	s.metrics.DeferredInflight(inflight)
	return progress
}

func (s *Supervisor) dispatch(sl *slot, env envelope) {
	timer := s.metrics.MessageDuration(env.msgType)

	c, err := s.safeDispatch(env)
	if err != nil {
		timer.ObserveDuration()
		s.metrics.MessagePanic(env.msgType)
		s.metrics.MessageProcessed(env.msgType, false)
		if env.reply != nil {
			env.reply.Complete(nil, err)
		}
		return
	}

	if c.IsImmediate() {
		timer.ObserveDuration()
		s.metrics.MessageProcessed(env.msgType, c.err == nil)
		if env.reply != nil {
			env.reply.Complete(c.value, c.err)
		}
		return
	}

	s.adopt(sl, c, env.reply, env.msgType, timer)
}

// safeDispatch calls the handler with crash containment. There is no restart
// policy: a panicking handler is logged, its reply carries the error, and
// the actor keeps receiving messages.
func (s *Supervisor) safeDispatch(env envelope) (c Completion, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(r, debug.Stack(), env.msgType)
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return env.dispatch(), nil
}

func (s *Supervisor) adopt(sl *slot, c Completion, reply *Future, msgType string, timer metrics.Timer) {
	c.task.sup = s
	sl.inflight = c.task
	sl.inflightReply = reply
	sl.inflightType = msgType
	sl.inflightTimer = timer
}

func (s *Supervisor) finish(sl *slot) {
	t := sl.inflight
	sl.inflight = nil

	if sl.inflightTimer != nil {
		sl.inflightTimer.ObserveDuration()
	}
	s.metrics.MessageProcessed(sl.inflightType, t.err == nil)
	if sl.inflightReply != nil {
		sl.inflightReply.Complete(t.value, t.err)
	}

	sl.inflightReply = nil
	sl.inflightType = ""
	sl.inflightTimer = nil
}

// broadcast delivers one lifecycle phase to every actor that handles it and
// drives the whole system until each phase completion has resolved. The
// total order between phases is a system invariant: Initialize resolves
// everywhere before Start is delivered anywhere.
func (s *Supervisor) broadcast(phase Lifecycle) {
	s.log.Debug("lifecycle phase", slog.String("phase", phase.String()))

	var tasks []*Task
	for _, sl := range s.slots {
		c, err := s.safeLifecycle(sl, phase)
		if err != nil || c.IsImmediate() {
			continue
		}
		c.task.sup = s
		tasks = append(tasks, c.task)
	}

	for len(tasks) > 0 {
		progress := false
		remaining := tasks[:0]
		for _, t := range tasks {
			if t.step() {
				progress = true
			} else {
				remaining = append(remaining, t)
			}
		}
		tasks = remaining

		// Phase completions may be waiting on other actors' replies or on
		// mutex grants, so the rest of the system keeps running too.
		if s.tick() {
			progress = true
		}
		if !progress && len(tasks) > 0 {
			<-s.wake
		}
	}
}

func (s *Supervisor) safeLifecycle(sl *slot, phase Lifecycle) (c Completion, err error) {
	if sl.lifecycle == nil {
		return Immediate(), nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(r, debug.Stack(), "lifecycle/"+phase.String())
			err = fmt.Errorf("lifecycle handler panicked: %v", r)
		}
	}()
	return sl.lifecycle(phase), nil
}
