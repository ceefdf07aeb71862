//go:build !windows

package interrupt

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalSource maps job-control signals onto session interruptions:
// SIGTSTP begins an interruption (another client claimed the session) and
// SIGCONT ends it with resumption advised.
type SignalSource struct {
	notes   chan Note
	signals chan os.Signal
	done    chan struct{}

	closeOnce sync.Once
}

// NewSignalSource subscribes to SIGTSTP/SIGCONT and starts translating them
// into interruption notes.
func NewSignalSource() *SignalSource {
	s := &SignalSource{
		notes:   make(chan Note, 4),
		signals: make(chan os.Signal, 4),
		done:    make(chan struct{}),
	}

	signal.Notify(s.signals, syscall.SIGTSTP, syscall.SIGCONT)
	go s.translate()

	return s
}

func (s *SignalSource) translate() {
	defer close(s.notes)

	for {
		select {
		case <-s.done:
			return
		case sig := <-s.signals:
			var note Note
			switch sig {
			case syscall.SIGTSTP:
				note = BeganNote()
			case syscall.SIGCONT:
				note = EndedNote(true)
			default:
				continue
			}
			slog.Debug("Interruption signal received", "signal", sig.String())

			select {
			case s.notes <- note:
			case <-s.done:
				return
			}
		}
	}
}

// Notes returns the delivery channel
func (s *SignalSource) Notes() <-chan Note {
	return s.notes
}

// Close unregisters the signal handler and stops delivery
func (s *SignalSource) Close() error {
	s.closeOnce.Do(func() {
		signal.Stop(s.signals)
		close(s.done)
	})
	return nil
}
