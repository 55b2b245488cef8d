// Package echo is a UART echo service: it greets with a banner, then writes
// every received byte back and counts it through a statistics actor. The
// server's whole life is one resumable mount completion; it never returns to
// the dispatch loop.
package echo

import (
	"log/slog"

	"github.com/lunarpulse/drogue-device/core/runtime"
	"github.com/lunarpulse/drogue-device/ports/hal"
)

// DefaultBanner greets new connections.
const DefaultBanner = "Welcome to the Drogue Echo Service\r\n"

type Options struct {
	// Banner written before the echo loop starts. Empty means DefaultBanner.
	Banner string
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server echoes bytes on a UART. Bind it to a mounted [Statistics] actor.
type Server struct {
	log    *slog.Logger
	uart   hal.UART
	banner string

	stats runtime.Address[*Statistics]
}

func NewServer(uart hal.UART, opt Options) *Server {
	if opt.Banner == "" {
		opt.Banner = DefaultBanner
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Server{
		log:    opt.Logger.With(slog.String("driver", "echo")),
		uart:   uart,
		banner: opt.Banner,
	}
}

func (s *Server) OnBind(dep runtime.Address[*Statistics]) { s.stats = dep }

// OnMount returns the server loop as the actor's initial work. It starts
// running once the lifecycle phases resolve.
func (s *Server) OnMount(runtime.Address[*Server], *runtime.EventBus) runtime.Completion {
	return runtime.Defer(s.serve)
}

func (s *Server) serve(task *runtime.Task) (any, error) {
	if err := s.transfer(task, func() error {
		_, err := s.uart.Write([]byte(s.banner))
		return err
	}); err != nil {
		s.log.Error("banner write failed", slog.Any("error", err))
		return nil, err
	}
	s.log.Info("echo service ready")

	buf := make([]byte, 1)
	for {
		if err := s.transfer(task, func() error {
			_, err := s.uart.Read(buf)
			return err
		}); err != nil {
			// The peer hanging up is the normal way the loop ends.
			s.log.Info("uart closed", slog.Any("error", err))
			return nil, nil
		}

		if err := s.transfer(task, func() error {
			_, err := s.uart.Write(buf)
			return err
		}); err != nil {
			s.log.Error("echo write failed", slog.Any("error", err))
			return nil, err
		}

		if _, err := task.Await(runtime.Request(s.stats, IncrementCharacterCount)); err != nil {
			return nil, err
		}
	}
}

// transfer runs one blocking UART operation on the background executor and
// suspends until it finishes.
func (s *Server) transfer(task *runtime.Task, op func() error) error {
	_, err := task.Await(task.Background(func() (any, error) {
		return nil, op()
	}))
	return err
}
