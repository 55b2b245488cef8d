package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// phaseRecorder appends every observed lifecycle phase to a shared journal.
// Lifecycle handlers and deferred bodies are serialized by the supervisor,
// so the append needs no locking.
type phaseRecorder struct {
	name    string
	journal *[]string
	slow    bool
}

func (p *phaseRecorder) OnMount(self Address[*phaseRecorder], bus *EventBus) Completion {
	return Immediate()
}

func (p *phaseRecorder) OnLifecycle(l Lifecycle) Completion {
	if p.slow && l == Initialize {
		return Defer(func(task *Task) (any, error) {
			// Finish initializing only after an external delay, to prove
			// Start waits for the slowest Initialize in the system.
			f := task.NewFuture()
			time.AfterFunc(30*time.Millisecond, func() { f.Complete(nil, nil) })
			if _, err := task.Await(f); err != nil {
				return nil, err
			}
			*p.journal = append(*p.journal, p.name+"/"+l.String())
			return nil, nil
		})
	}
	*p.journal = append(*p.journal, p.name+"/"+l.String())
	return Immediate()
}

func TestDeviceContext_lifecycleOrdering(t *testing.T) {
	var journal []string

	_, _ = mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		Mount(sup, "a", &phaseRecorder{name: "a", journal: &journal, slow: true})
		Mount(sup, "b", &phaseRecorder{name: "b", journal: &journal})
	})

	// Running() closed => both phases fully resolved.
	require.Len(t, journal, 4)

	startSeen := false
	for _, entry := range journal {
		if entry == "a/start" || entry == "b/start" {
			startSeen = true
			continue
		}
		require.False(t, startSeen,
			"initialize %q observed after a start phase: %v", entry, journal)
	}
}

func TestDeviceContext_mountIsSingleUse(t *testing.T) {
	dc, _ := mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {})

	require.ErrorIs(t, dc.Mount(context.Background()), ErrAlreadyMounted)
}

func TestDeviceContext_mountReturnsOnCancel(t *testing.T) {
	dev := &testDevice{mount: func(bus *EventBus, sup *Supervisor) {}}
	dc := NewDeviceContext(dev, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- dc.Mount(ctx) }()

	<-dc.Running()
	cancel()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("mount did not return after cancellation")
	}
}

// publisher raises an event on the bus when poked.
type publisher struct {
	bus *EventBus
}

func (p *publisher) OnMount(self Address[*publisher], bus *EventBus) Completion {
	p.bus = bus
	return Immediate()
}

func (p *publisher) OnNotification(e tagged) Completion {
	p.bus.Publish(e)
	return Immediate()
}

func TestEventBus_noCoalescing(t *testing.T) {
	var addr Address[*publisher]
	_, events := mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		addr = Mount(sup, "publisher", &publisher{})
	})

	// The same event published twice must reach OnEvent twice.
	require.NoError(t, Notify(addr, tagged{Seq: 8}))
	require.NoError(t, Notify(addr, tagged{Seq: 8}))

	for i := 0; i < 2; i++ {
		select {
		case ev := <-events:
			require.Equal(t, tagged{Seq: 8}, ev)
		case <-time.After(5 * time.Second):
			t.Fatalf("event %d never delivered", i)
		}
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected extra event: %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeviceContext_onEventBypassesActorTree(t *testing.T) {
	dc, events := mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {})

	dc.OnEvent("raised-outside")
	select {
	case ev := <-events:
		require.Equal(t, "raised-outside", ev)
	case <-time.After(time.Second):
		t.Fatal("device event never delivered")
	}
}

// dependent needs a responder address it cannot know at construction time.
type dependent struct {
	responder Address[*responder]
	bound     bool
}

func (d *dependent) OnMount(self Address[*dependent], bus *EventBus) Completion {
	return Immediate()
}

func (d *dependent) OnBind(dep Address[*responder]) {
	d.responder = dep
	d.bound = true
}

func (d *dependent) OnNotification(e tagged) Completion {
	return Defer(func(task *Task) (any, error) {
		return task.Await(Request(d.responder, ping{Seq: e.Seq}))
	})
}

func TestBind_wiresDependencyAfterMount(t *testing.T) {
	dep := &dependent{}
	var depAddr Address[*dependent]

	_, _ = mountTestDevice(t, Options{}, func(bus *EventBus, sup *Supervisor) {
		depAddr = Mount(sup, "dependent", dep)
		respAddr := Mount(sup, "responder", &responder{})
		Bind(depAddr, respAddr)
	})

	require.True(t, dep.bound)

	f := Request(depAddr, tagged{Seq: 3})
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("relayed request never resolved")
	}
	v, err := f.Value()
	require.NoError(t, err)
	require.Equal(t, pong{Seq: 4}, v)
}
