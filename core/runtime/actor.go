package runtime

// Actor is the capability every mountable unit implements. OnMount is called
// once, during the device mount sequence, with the actor's own address and
// the device event bus. The returned completion is the actor's initial work:
// Immediate for plain setup, Defer for actors whose whole life is one
// resumable loop (servers). It is scheduled into the actor's completion slot
// and advanced by the supervisor after the lifecycle phases resolve.
//
// The type parameter is the implementing type itself (A Actor[A]), which
// keeps the self-address fully typed.
type Actor[A any] interface {
	OnMount(self Address[A], bus *EventBus) Completion
}

// Handler is the notification capability, one instantiation per event type
// an actor accepts. Dispatch is resolved at compile time: [Notify] and
// [Request] only accept actors that implement Handler for the event being
// sent. Not implementing Handler for an event type is the static opt-out.
type Handler[E any] interface {
	OnNotification(event E) Completion
}

// LifecycleHandler is implemented by actors that participate in lifecycle
// phases. The supervisor broadcasts each phase to every implementer and
// waits for all returned completions to resolve before the next phase is
// delivered anywhere. Actors without phase work simply do not implement it.
type LifecycleHandler interface {
	OnLifecycle(phase Lifecycle) Completion
}

// Binder is implemented by actors that need the address of a dependency they
// could not know at construction time. [Bind] invokes it once per dependency
// after both parties are mounted, breaking construction-order cycles.
type Binder[D any] interface {
	OnBind(dep Address[D])
}

// Bind hands the address of a mounted dependency to a mounted actor.
// Call it from [Device.Mount], after both Mount calls.
func Bind[D any, A Binder[D]](target Address[A], dep Address[D]) {
	target.actor.OnBind(dep)
}

// InterruptHandler is implemented by actors that bind to hardware interrupt
// numbers. OnInterrupt runs synchronously in interrupt context, possibly
// concurrently with the supervisor loop: it may enqueue messages and resolve
// futures but must never suspend or touch actor state directly.
type InterruptHandler interface {
	OnInterrupt(irqn int)
}
