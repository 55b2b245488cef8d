// Package runtime is a cooperative actor runtime for device firmware.
//
// Independent software units ("actors") exchange typed messages, share
// peripherals through FIFO mutexes, and react to lifecycle and interrupt
// events. There is no preemptive scheduling among actors: a single
// supervisor loop drains every actor's inbox and advances in-flight
// deferred completions one step at a time. Only the interrupt path runs
// concurrently with that loop, and it is restricted to non-suspending
// operations (enqueue a message, resolve a future).
//
// # Actors
//
// An actor is any type implementing [Actor] plus zero or more [Handler]
// instantiations, one per event type it accepts:
//
//	type DataReady struct{}
//
//	type Sensor struct{ ... }
//
//	func (s *Sensor) OnMount(self runtime.Address[*Sensor], bus *runtime.EventBus) runtime.Completion {
//	    s.self, s.bus = self, bus
//	    return runtime.Immediate()
//	}
//
//	func (s *Sensor) OnNotification(e DataReady) runtime.Completion {
//	    return runtime.Defer(func(t *runtime.Task) (any, error) {
//	        // suspend/resume work here
//	        return nil, nil
//	    })
//	}
//
// Actors are mounted once, during [Device.Mount], and live until power-off:
//
//	addr := runtime.Mount(sup, "sensor", sensor)
//
// Actors with setup or teardown work across lifecycle phases additionally
// implement [LifecycleHandler]; the supervisor resolves each phase across
// the whole system before delivering the next one.
//
// # Messaging
//
// [Notify] enqueues fire-and-forget; [Request] additionally returns a
// [Future] resolved with the handler's result. Both are generic over the
// event type, so sending an event the target actor has no handler for does
// not compile. Messages to one actor are handled in FIFO order, one at a
// time. A handler must not await a request to its own actor; that request
// can only be served after the current completion resolves.
//
// # Completions
//
// A handler returns a [Completion]: either [Immediate] (the work is done)
// or [Defer] (a resumable body the supervisor polls on later ticks). A
// deferred body suspends only at explicit [Task.Await] points and never
// runs concurrently with the supervisor loop or another body.
//
// # Shared peripherals
//
// Any resource reachable from more than one actor or from interrupt context
// must be wrapped in a [Mutex]. Lock requests resolve in arrival order and
// never block the call site; interrupt handlers may enqueue a lock request
// but must leave the await to ordinary actor dispatch.
package runtime
