package runtime

import "github.com/lunarpulse/drogue-device/core/metrics"

// RuntimeMetrics is the instrumentation surface of the supervisor loop.
// All methods are safe for concurrent use.
type RuntimeMetrics interface {
	// Message handling
	MessageDuration(msgType string) metrics.Timer
	MessageProcessed(msgType string, success bool)
	MessagePanic(msgType string)

	// Per-actor inbox depth after an enqueue
	InboxDepth(actor string, depth int)

	// Deferred completions currently in flight across all actors
	DeferredInflight(count int)

	// Background executor occupancy
	BackgroundInflight(count int)

	// Interrupt dispatches by interrupt number
	InterruptDispatched(irqn int)
}

// nopRuntimeMetrics is a no-op implementation of RuntimeMetrics.
type nopRuntimeMetrics struct{}

func (nopRuntimeMetrics) MessageDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopRuntimeMetrics) MessageProcessed(string, bool)        {}
func (nopRuntimeMetrics) MessagePanic(string)                  {}

func (nopRuntimeMetrics) InboxDepth(string, int) {}

func (nopRuntimeMetrics) DeferredInflight(int)   {}
func (nopRuntimeMetrics) BackgroundInflight(int) {}

func (nopRuntimeMetrics) InterruptDispatched(int) {}

// NopRuntimeMetrics returns a no-op RuntimeMetrics implementation.
func NopRuntimeMetrics() RuntimeMetrics { return nopRuntimeMetrics{} }
