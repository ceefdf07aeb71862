package audio

import "errors"

// Error taxonomy for capture failures. Callers match with errors.Is; the
// controller turns these into journal entries rather than propagating them.
var (
	// ErrSessionConfiguration: the audio backend context could not be
	// configured or activated
	ErrSessionConfiguration = errors.New("audio session configuration failed")

	// ErrResourcePreparation: the capture resource could not be bound to
	// its output destination
	ErrResourcePreparation = errors.New("capture resource preparation failed")
)

// DeviceInfo identifies a capture device
type DeviceInfo struct {
	ID   string `json:"id"` // opaque backend-specific identifier
	Name string `json:"name"`
}

// Recorder is the capture service contract: an exclusive handle on the
// microphone bound to one output destination. Prepare must succeed before
// Start/Pause/Stop command the device; a recorder whose Prepare failed must
// not be used.
type Recorder interface {
	// Prepare configures the backend session and binds the capture
	// resource to the configured destination and encoding.
	Prepare() error

	// Start begins or resumes capturing. Starting after Stop begins a
	// fresh take over the same destination.
	Start() error

	// Pause suspends capturing without finalizing the output
	Pause() error

	// Stop suspends capturing and finalizes the output file
	Stop() error

	// Cleanup releases the device and backend context
	Cleanup() error

	// OutputFile returns the destination path, empty before Prepare
	OutputFile() string
}
