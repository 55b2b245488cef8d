package runtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testDevice mounts whatever tree the test hands it and records events.
type testDevice struct {
	mount  func(bus *EventBus, sup *Supervisor)
	events chan any
}

func (d *testDevice) Mount(bus *EventBus, sup *Supervisor) { d.mount(bus, sup) }

func (d *testDevice) OnEvent(event any) {
	if d.events != nil {
		d.events <- event
	}
}

func mountTestDevice(t *testing.T, opt Options, mount func(bus *EventBus, sup *Supervisor)) (*DeviceContext, chan any) {
	t.Helper()

	dev := &testDevice{mount: mount, events: make(chan any, 64)}
	dc := NewDeviceContext(dev, opt)

	go func() { _ = dc.Mount(t.Context()) }()

	select {
	case <-dc.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("device did not finish mounting")
	}
	return dc, dev.events
}

// tagged is a message carrying a sequence number.
type tagged struct{ Seq int }

// recorder reports every handled message on a channel.
type recorder struct {
	handled chan int
}

func (r *recorder) OnMount(self Address[*recorder], bus *EventBus) Completion {
	return Immediate()
}

func (r *recorder) OnNotification(e tagged) Completion {
	r.handled <- e.Seq
	return Immediate()
}

func TestSupervisor_notifyFIFO(t *testing.T) {
	rec := &recorder{handled: make(chan int, 128)}
	var addr Address[*recorder]

	_, _ = mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "recorder", rec)
	})

	const n = 100
	for i := 0; i < n; i++ {
		require.NoError(t, Notify(addr, tagged{Seq: i}))
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-rec.handled:
			require.Equal(t, i, got, "messages must be handled in send order")
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

type ping struct{ Seq int }
type pong struct{ Seq int }

// responder answers pings, immediately or deferred.
type responder struct {
	deferred bool
	gate     *Future // when set, deferred replies await it
}

func (r *responder) OnMount(self Address[*responder], bus *EventBus) Completion {
	return Immediate()
}

func (r *responder) OnNotification(p ping) Completion {
	if !r.deferred {
		return ImmediateResult(pong{Seq: p.Seq + 1}, nil)
	}
	return Defer(func(task *Task) (any, error) {
		if r.gate != nil {
			if _, err := task.Await(r.gate); err != nil {
				return nil, err
			}
		}
		return pong{Seq: p.Seq + 1}, nil
	})
}

func TestSupervisor_requestImmediate(t *testing.T) {
	var addr Address[*responder]
	_, _ = mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "responder", &responder{})
	})

	f := Request(addr, ping{Seq: 1})
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reply never arrived")
	}

	v, err := f.Value()
	require.NoError(t, err)
	require.Equal(t, pong{Seq: 2}, v)
}

func TestSupervisor_requestDeferred(t *testing.T) {
	res := &responder{deferred: true}
	var addr Address[*responder]
	dc, _ := mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "responder", res)
	})

	res.gate = dc.sup.NewFuture()

	f := Request(addr, ping{Seq: 10})

	// The deferred completion cannot resolve until the gate does.
	select {
	case <-f.Done():
		t.Fatal("deferred reply resolved without being advanced past its await")
	case <-time.After(50 * time.Millisecond):
	}

	res.gate.Complete(nil, nil)
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("reply never arrived")
	}

	v, err := f.Value()
	require.NoError(t, err)
	require.Equal(t, pong{Seq: 11}, v)
}

func TestSupervisor_concurrentRequestsServedInArrivalOrder(t *testing.T) {
	var addr Address[*responder]
	_, _ = mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "responder", &responder{})
	})

	const n = 20
	futures := make([]*Future, n)
	for i := 0; i < n; i++ {
		futures[i] = Request(addr, ping{Seq: i})
	}

	for i, f := range futures {
		select {
		case <-f.Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("reply %d never arrived", i)
		}
		v, err := f.Value()
		require.NoError(t, err)
		require.Equal(t, pong{Seq: i + 1}, v, "each sender gets its own reply")
	}
}

// panicky blows up on every notification.
type panicky struct{}

func (p *panicky) OnMount(self Address[*panicky], bus *EventBus) Completion { return Immediate() }

func (p *panicky) OnNotification(e tagged) Completion {
	if e.Seq < 0 {
		panic(fmt.Sprintf("bad seq %d", e.Seq))
	}
	return ImmediateResult(e.Seq, nil)
}

func TestSupervisor_panicContainment(t *testing.T) {
	var addr Address[*panicky]
	_, _ = mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "panicky", &panicky{})
	})

	f := Request(addr, tagged{Seq: -1})
	<-f.Done()
	_, err := f.Value()
	require.ErrorContains(t, err, "handler panicked")

	// The actor keeps processing after a contained crash.
	f = Request(addr, tagged{Seq: 5})
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("actor stopped processing after panic")
	}
	v, err := f.Value()
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

// stuck adopts one never-resolving completion, wedging its inbox.
type stuck struct{}

func (s *stuck) OnMount(self Address[*stuck], bus *EventBus) Completion { return Immediate() }

func (s *stuck) OnNotification(e tagged) Completion {
	return Defer(func(task *Task) (any, error) {
		return task.Await(task.NewFuture())
	})
}

func TestSupervisor_inboxFull(t *testing.T) {
	var addr Address[*stuck]
	_, _ = mountTestDevice(t, Options{InboxSize: 2}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "stuck", &stuck{})
	})

	// First message gets dispatched and wedges the slot; give the loop a
	// moment to adopt it.
	require.NoError(t, Notify(addr, tagged{Seq: 0}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, Notify(addr, tagged{Seq: 1}))
	require.NoError(t, Notify(addr, tagged{Seq: 2}))
	require.ErrorIs(t, Notify(addr, tagged{Seq: 3}), ErrInboxFull)

	f := Request(addr, tagged{Seq: 4})
	<-f.Done()
	_, err := f.Value()
	require.ErrorIs(t, err, ErrInboxFull)
}

// irqDriven notifies itself from interrupt context.
type irqDriven struct {
	self Address[*irqDriven]
	irqs chan int
}

func (a *irqDriven) OnMount(self Address[*irqDriven], bus *EventBus) Completion {
	a.self = self
	return Immediate()
}

func (a *irqDriven) OnInterrupt(irqn int) {
	// Interrupt context: enqueue only, never suspend.
	_ = Notify(a.self, tagged{Seq: irqn})
}

func (a *irqDriven) OnNotification(e tagged) Completion {
	a.irqs <- e.Seq
	return Immediate()
}

func TestSupervisor_interruptDispatch(t *testing.T) {
	act := &irqDriven{irqs: make(chan int, 8)}
	dc, _ := mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		Mount(sup, "irq-driven", act)
		sup.BindInterrupt(17, act)
	})

	dc.OnInterrupt(17)

	select {
	case got := <-act.irqs:
		require.Equal(t, 17, got)
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt notification never handled")
	}

	// Unbound interrupt numbers dispatch to nobody.
	dc.OnInterrupt(99)
}

func TestSupervisor_capacityExhausted(t *testing.T) {
	dev := &testDevice{mount: func(bus *EventBus, sup *Supervisor) {
		Mount(sup, "one", &recorder{handled: make(chan int, 1)})
		Mount(sup, "two", &recorder{handled: make(chan int, 1)})
	}}
	dc := NewDeviceContext(dev, Options{MaxActors: 1})

	require.Panics(t, func() { _ = dc.Mount(t.Context()) })
}
