package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrAlreadyMounted is returned by DeviceContext.Mount on any call after the
// first. Mounting is strictly single-use.
var ErrAlreadyMounted = errors.New("runtime: device already mounted")

// Device is the root of an actor tree. Mount must propagate to every child
// actor via [Mount] (and [Bind], [Supervisor.BindInterrupt]) so they are
// registered before the supervisor loop starts. OnEvent consumes events
// published on the device's event bus.
type Device interface {
	Mount(bus *EventBus, sup *Supervisor)
	OnEvent(event any)
}

// OnPanic is called when a notification handler panics. The default logs
// and moves on; there is no supervisory restart.
type OnPanic func(recovered any, stack []byte, msgType string)

// Options configures a DeviceContext. Zero values get defaults.
type Options struct {
	// ID names the device in log output. Generated when empty.
	ID string
	// Logger receives runtime diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics instruments the supervisor loop. Defaults to no-op.
	Metrics RuntimeMetrics
	// OnPanic handles contained handler crashes.
	OnPanic OnPanic
	// MaxActors fixes the actor arena capacity.
	MaxActors int
	// InboxSize fixes every actor's inbox capacity.
	InboxSize int
	// BackgroundTasks caps concurrently running blocking transfers.
	BackgroundTasks int
}

// DeviceContext wires a user Device, its event bus and the supervisor into
// one root object. After Mount, all access to the device and the actor tree
// goes through addresses, mutexes and the notification protocol; nothing
// else may touch their state from a second execution context.
type DeviceContext struct {
	id      string
	log     *slog.Logger
	device  Device
	sup     *Supervisor
	bus     *EventBus
	mounted atomic.Bool
	running chan struct{}
}

// NewDeviceContext creates the root context for device. The supervisor and
// event bus are constructed here; nothing runs until Mount.
func NewDeviceContext(device Device, opt Options) *DeviceContext {
	if opt.ID == "" {
		opt.ID = "device-" + gonanoid.Must(6)
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	opt.Logger = opt.Logger.With(slog.String("device", opt.ID))
	if opt.Metrics == nil {
		opt.Metrics = NopRuntimeMetrics()
	}
	if opt.MaxActors <= 0 {
		opt.MaxActors = 16
	}
	if opt.InboxSize <= 0 {
		opt.InboxSize = 32
	}
	if opt.BackgroundTasks <= 0 {
		opt.BackgroundTasks = 8
	}
	if opt.OnPanic == nil {
		log := opt.Logger
		opt.OnPanic = func(recovered any, stack []byte, msgType string) {
			log.Error("handler panicked",
				slog.Any("recovered", recovered),
				slog.String("msg_type", msgType),
				slog.String("stack", string(stack)))
		}
	}

	dc := &DeviceContext{
		id:      opt.ID,
		log:     opt.Logger,
		device:  device,
		running: make(chan struct{}),
	}
	dc.sup = newSupervisor(opt)
	dc.bus = &EventBus{sink: device.OnEvent}
	dc.sup.bus = dc.bus
	return dc
}

// Mount performs the one-time mount sequence, then runs the supervisor loop
// on the calling goroutine. The sequence: the device mounts its actor tree,
// Initialize is broadcast and fully resolved, Start is broadcast and fully
// resolved, then the loop runs until ctx is cancelled. With a background
// context Mount never returns.
func (dc *DeviceContext) Mount(ctx context.Context) error {
	if !dc.mounted.CompareAndSwap(false, true) {
		return ErrAlreadyMounted
	}

	dc.device.Mount(dc.bus, dc.sup)
	dc.sup.broadcast(Initialize)
	dc.sup.broadcast(Start)

	dc.log.Info("device mounted")
	close(dc.running)
	return dc.sup.run(ctx)
}

// Running is closed once the mount sequence has finished and the supervisor
// loop is about to run. Useful for host-side code and tests.
func (dc *DeviceContext) Running() <-chan struct{} { return dc.running }

// OnInterrupt forwards a hardware interrupt to the supervisor's dispatch
// table. Safe to call from any goroutine, at any time after mount.
func (dc *DeviceContext) OnInterrupt(irqn int) { dc.sup.OnInterrupt(irqn) }

// OnEvent delivers an event raised outside the actor tree directly to the
// device's event handler.
func (dc *DeviceContext) OnEvent(event any) { dc.device.OnEvent(event) }
