package interrupt

import (
	"fmt"
)

// Kind identifies the phase of a session interruption
type Kind string

const (
	KindBegan Kind = "began"
	KindEnded Kind = "ended"
)

// Payload keys used by notification sources
const (
	PayloadKeyType         = "type"
	PayloadKeyShouldResume = "should_resume"
)

// Note is a raw notification as delivered by a Source. The payload carries
// loosely typed fields; Parse validates them.
type Note struct {
	Payload map[string]any
}

// Event is a validated interruption event
type Event struct {
	Kind Kind
	// ShouldResume is only meaningful when Kind is KindEnded: it signals
	// that resuming the recording is advisable.
	ShouldResume bool
}

// Source delivers session interruption notifications. The controller
// subscribes during setup and must Close the source on teardown.
type Source interface {
	// Notes returns the delivery channel. The channel is closed when the
	// source is closed.
	Notes() <-chan Note

	// Close releases the subscription. Idempotent.
	Close() error
}

// Parse validates a raw notification payload. It returns an error when the
// type field is missing, not a string, or not a known interruption kind.
func Parse(note Note) (Event, error) {
	raw, ok := note.Payload[PayloadKeyType]
	if !ok {
		return Event{}, fmt.Errorf("interruption payload missing %q field", PayloadKeyType)
	}

	kind, ok := raw.(string)
	if !ok {
		return Event{}, fmt.Errorf("interruption payload %q field is %T, expected string", PayloadKeyType, raw)
	}

	switch Kind(kind) {
	case KindBegan:
		return Event{Kind: KindBegan}, nil
	case KindEnded:
		event := Event{Kind: KindEnded}
		// should_resume is optional; absent means resumption is not advised
		if raw, ok := note.Payload[PayloadKeyShouldResume]; ok {
			resume, ok := raw.(bool)
			if !ok {
				return Event{}, fmt.Errorf("interruption payload %q field is %T, expected bool", PayloadKeyShouldResume, raw)
			}
			event.ShouldResume = resume
		}
		return event, nil
	default:
		return Event{}, fmt.Errorf("unknown interruption type: %q", kind)
	}
}

// BeganNote builds a well-formed interruption-begin notification
func BeganNote() Note {
	return Note{Payload: map[string]any{
		PayloadKeyType: string(KindBegan),
	}}
}

// EndedNote builds a well-formed interruption-end notification
func EndedNote(shouldResume bool) Note {
	return Note{Payload: map[string]any{
		PayloadKeyType:         string(KindEnded),
		PayloadKeyShouldResume: shouldResume,
	}}
}
