package echo

import (
	"github.com/lunarpulse/drogue-device/core/runtime"
)

// Command is the closed message set the statistics actor accepts.
type Command int

const (
	// IncrementCharacterCount bumps the echoed-character counter. The reply
	// carries the new count.
	IncrementCharacterCount Command = iota
	// ReadCharacterCount replies with the current count without changing it.
	ReadCharacterCount
)

// Statistics tracks service counters. Counter state is owned by the actor
// and only ever touched under dispatch, so it needs no locking.
type Statistics struct {
	characterCount int
}

func NewStatistics() *Statistics { return &Statistics{} }

func (s *Statistics) OnMount(runtime.Address[*Statistics], *runtime.EventBus) runtime.Completion {
	return runtime.Immediate()
}

func (s *Statistics) OnNotification(cmd Command) runtime.Completion {
	switch cmd {
	case IncrementCharacterCount:
		s.characterCount++
	case ReadCharacterCount:
	}
	return runtime.ImmediateResult(s.characterCount, nil)
}
