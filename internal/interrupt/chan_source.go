package interrupt

import "sync"

// ChanSource is an in-process notification source. The TUI uses it to
// inject interruptions and to fan in other sources; tests script it.
type ChanSource struct {
	mu     sync.RWMutex
	notes  chan Note
	closed bool
}

// NewChanSource creates a source whose notes are delivered with Deliver
func NewChanSource() *ChanSource {
	return &ChanSource{notes: make(chan Note, 4)}
}

// Deliver publishes a raw notification. It blocks until the note is
// accepted; delivering on a closed source is a silent no-op.
func (s *ChanSource) Deliver(note Note) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.notes <- note
}

// Notes returns the delivery channel
func (s *ChanSource) Notes() <-chan Note {
	return s.notes
}

// Close stops delivery and closes the notes channel. Idempotent.
func (s *ChanSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.notes)
	}
	return nil
}
