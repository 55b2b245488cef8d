package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuntimeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRuntimeMetrics(reg)

	require.NotNil(t, m)

	// Test message handling
	timer := m.MessageDuration("DataReady")
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	m.MessageProcessed("DataReady", true)
	m.MessageProcessed("DataReady", false)
	m.MessagePanic("DataReady")

	// Test inbox and inflight gauges
	m.InboxDepth("sensor", 3)
	m.DeferredInflight(2)
	m.BackgroundInflight(1)

	// Test interrupts
	m.InterruptDispatched(17)
	m.InterruptDispatched(17)

	// Verify metrics were registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["device_runtime_message_duration_seconds"])
	assert.True(t, names["device_runtime_messages_total"])
	assert.True(t, names["device_runtime_panics_total"])
	assert.True(t, names["device_runtime_inbox_depth"])
	assert.True(t, names["device_runtime_interrupts_total"])
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
