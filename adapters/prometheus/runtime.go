package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lunarpulse/drogue-device/core/metrics"
	"github.com/lunarpulse/drogue-device/core/runtime"
)

// runtimeMetrics implements runtime.RuntimeMetrics using Prometheus.
type runtimeMetrics struct {
	messageDuration    *prometheus.HistogramVec
	messagesTotal      *prometheus.CounterVec
	panicTotal         *prometheus.CounterVec
	inboxDepth         *prometheus.GaugeVec
	deferredInflight   prometheus.Gauge
	backgroundInflight prometheus.Gauge
	interruptsTotal    *prometheus.CounterVec
}

// NewRuntimeMetrics creates a Prometheus implementation of RuntimeMetrics
// and registers its collectors with reg.
func NewRuntimeMetrics(reg prometheus.Registerer) runtime.RuntimeMetrics {
	m := &runtimeMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "device_runtime_message_duration_seconds",
			Help:    "Notification handling time, dispatch to completion resolution",
			Buckets: defaultBuckets,
		}, []string{"message_type"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_runtime_messages_total",
			Help: "Total number of notifications processed",
		}, []string{"message_type", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_runtime_panics_total",
			Help: "Total number of contained handler panics",
		}, []string{"message_type"}),

		inboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "device_runtime_inbox_depth",
			Help: "Per-actor inbox queue depth",
		}, []string{"actor"}),

		deferredInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "device_runtime_deferred_inflight",
			Help: "Deferred completions currently being advanced",
		}),

		backgroundInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "device_runtime_background_inflight",
			Help: "Blocking transfers running on the background executor",
		}),

		interruptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_runtime_interrupts_total",
			Help: "Interrupt dispatches by interrupt number",
		}, []string{"irqn"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.inboxDepth,
		m.deferredInflight,
		m.backgroundInflight,
		m.interruptsTotal,
	)

	return m
}

func (m *runtimeMetrics) MessageDuration(msgType string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(msgType))
}

func (m *runtimeMetrics) MessageProcessed(msgType string, success bool) {
	m.messagesTotal.WithLabelValues(msgType, boolToStr(success)).Inc()
}

func (m *runtimeMetrics) MessagePanic(msgType string) {
	m.panicTotal.WithLabelValues(msgType).Inc()
}

func (m *runtimeMetrics) InboxDepth(actor string, depth int) {
	m.inboxDepth.WithLabelValues(actor).Set(float64(depth))
}

func (m *runtimeMetrics) DeferredInflight(count int) {
	m.deferredInflight.Set(float64(count))
}

func (m *runtimeMetrics) BackgroundInflight(count int) {
	m.backgroundInflight.Set(float64(count))
}

func (m *runtimeMetrics) InterruptDispatched(irqn int) {
	m.interruptsTotal.WithLabelValues(strconv.Itoa(irqn)).Inc()
}

var _ runtime.RuntimeMetrics = (*runtimeMetrics)(nil)
