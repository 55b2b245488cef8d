// Soak drives the runtime hard from many goroutines: P producers push N
// notifications each into a single counter actor, retrying on inbox
// backpressure, and the tool reports sustained throughput at the end.
//
// Producers stand in for interrupt sources: they only ever enqueue.
//
//	P=8 N=100000 go run ./cmd/soak
//
// Prometheus metrics available at: http://localhost:2121/metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/lunarpulse/drogue-device/adapters/prometheus"
	"github.com/lunarpulse/drogue-device/core/runtime"
)

var (
	producers = getEnvInt("P", 8)
	perWorker = getEnvInt("N", 100_000)
	inboxSize = getEnvInt("INBOX", 1024)
	promPort  = getEnvInt("PROM_PORT", 2121)
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// Add accumulates into the counter; the reply carries the running total.
type Add struct {
	N int
}

type counter struct {
	total int
}

func (c *counter) OnMount(runtime.Address[*counter], *runtime.EventBus) runtime.Completion {
	return runtime.Immediate()
}

func (c *counter) OnNotification(a Add) runtime.Completion {
	c.total += a.N
	return runtime.ImmediateResult(c.total, nil)
}

type soakDevice struct {
	counter runtime.Address[*counter]
}

func (d *soakDevice) Mount(bus *runtime.EventBus, sup *runtime.Supervisor) {
	d.counter = runtime.Mount(sup, "counter", &counter{})
}

func (d *soakDevice) OnEvent(any) {}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil && err != context.Canceled {
		log.Error("soak failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	metrics := promadapter.NewRuntimeMetrics(prometheus.DefaultRegisterer)

	promMux := http.NewServeMux()
	promMux.Handle("/metrics", promhttp.Handler())
	promServer := &http.Server{Addr: fmt.Sprintf(":%d", promPort), Handler: promMux}
	go func() {
		if err := promServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("prometheus server error", slog.Any("error", err))
		}
	}()
	defer promServer.Shutdown(context.Background())

	dev := &soakDevice{}
	dc := runtime.NewDeviceContext(dev, runtime.Options{
		ID:        "soak",
		Logger:    log,
		Metrics:   metrics,
		InboxSize: inboxSize,
	})

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- dc.Mount(runCtx) }()
	<-dc.Running()

	total := producers * perWorker
	log.Info("soak starting",
		slog.Int("producers", producers),
		slog.Int("per_worker", perWorker),
		slog.Int("total", total),
	)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < producers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				// Backpressure: yield until the inbox drains.
				for {
					err := runtime.Notify(dev.counter, Add{N: 1})
					if err == nil {
						break
					}
					if !errors.Is(err, runtime.ErrInboxFull) {
						log.Error("notify failed", slog.Any("error", err))
						return
					}
					time.Sleep(10 * time.Microsecond)
				}
			}
		}()
	}
	wg.Wait()

	// The reply to this request resolves only after everything queued ahead
	// of it has been handled.
	f := runtime.Request(dev.counter, Add{N: 0})
	<-f.Done()
	elapsed := time.Since(start)

	v, err := f.Value()
	if err != nil {
		return err
	}
	if v.(int) != total {
		return fmt.Errorf("lost messages: got %d, want %d", v, total)
	}

	log.Info("soak finished",
		slog.Int("messages", total),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)),
		slog.String("throughput", fmt.Sprintf("%.0f msg/s", float64(total)/elapsed.Seconds())),
	)

	stop()
	<-done
	return nil
}
