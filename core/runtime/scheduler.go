package runtime

import (
	"log/slog"
)

// scheduler runs blocking work (peripheral transfers, host I/O) off the
// supervisor loop, bounded by a semaphore. It stands in for the DMA and
// interrupt-driven transfer machinery a real target would have.
type scheduler struct {
	log     *slog.Logger
	sem     chan struct{}
	metrics RuntimeMetrics
}

func newScheduler(max int, log *slog.Logger, metrics RuntimeMetrics) *scheduler {
	return &scheduler{
		log:     log,
		sem:     make(chan struct{}, max),
		metrics: metrics,
	}
}

func (s *scheduler) schedule(f func()) {
	go func() {
		s.sem <- struct{}{}
		s.metrics.BackgroundInflight(len(s.sem))
		defer func() {
			<-s.sem
			s.metrics.BackgroundInflight(len(s.sem))
		}()

		defer func() {
			if r := recover(); r != nil {
				// containment: a crashed transfer must not take the loop down
				s.log.Error("background task panicked", slog.Any("recovered", r))
			}
		}()

		f()
	}()
}
