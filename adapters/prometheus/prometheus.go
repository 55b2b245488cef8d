// Package prometheus binds the runtime's metrics interfaces to
// prometheus/client_golang. Constrained targets run with the no-op
// implementations instead; host builds and simulators register these.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lunarpulse/drogue-device/core/metrics"
)

// timer wraps a Prometheus observer to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for latency metrics (in seconds). Message
// handling on the supervisor loop is expected to sit in the sub-millisecond
// range; the tail covers deferred completions awaiting slow transfers.
var defaultBuckets = []float64{
	.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5,
}

func boolToStr(b bool) string { return strconv.FormatBool(b) }
