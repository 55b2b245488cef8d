package runtime

// EventBus is the publish path from any actor to the root device's event
// handler. It has exactly one subscriber, fixed at construction: the Device
// owning the tree. Publish is a direct synchronous call with no buffering
// and no coalescing; publishing the same event twice invokes OnEvent twice,
// on the publisher's own execution context. The Device fans events out
// explicitly to whichever actors care, typically with [Notify].
type EventBus struct {
	sink func(event any)
}

// Publish forwards event to the device's OnEvent.
func (b *EventBus) Publish(event any) { b.sink(event) }
