package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/audiolibrelab/pocketrec/internal/audio"
	"github.com/audiolibrelab/pocketrec/internal/interrupt"
	"github.com/audiolibrelab/pocketrec/internal/journal"
)

// State represents the current recording lifecycle state
type State string

const (
	StateIdle                 State = "IDLE"
	StateRecording            State = "RECORDING"
	StatePausedByUser         State = "PAUSED_BY_USER"
	StatePausedByInterruption State = "PAUSED_BY_INTERRUPTION"
	StateStopped              State = "STOPPED"
)

// Journal lines emitted on lifecycle transitions. Tests and the shell
// assert on these exact strings.
const (
	LineStarted         = "Recording started"
	LinePaused          = "Recording paused"
	LineStopped         = "Recording stopped"
	LineResumed         = "Recording resumed"
	LineInterruptBegan  = "Interruption began"
	LineInterruptEnded  = "Interruption ended"
	LineMalformedEvent  = "Failed to get interruption type"
)

// Controller owns the recording lifecycle: it serializes user commands and
// asynchronous interruption events behind one mutex, issues commands to the
// capture service, and appends every transition to its journal.
//
// Capture failures never propagate to the caller. A controller whose setup
// failed keeps accepting commands; they become journal-only transitions.
type Controller struct {
	mutex    sync.Mutex
	state    State
	recorder audio.Recorder
	source   interrupt.Source
	journal  *journal.Journal

	// pausedByInterruption is redundant with state but kept to separate
	// interruption intent from a user pause
	pausedByInterruption bool

	setupDone   bool
	watcherDone chan struct{}
	closeOnce   sync.Once
}

// New creates a controller in the Idle state. The recorder and source are
// not touched until Setup; either may be nil.
func New(recorder audio.Recorder, source interrupt.Source) *Controller {
	return &Controller{
		state:    StateIdle,
		recorder: recorder,
		source:   source,
		journal:  journal.New(),
	}
}

// Setup configures the audio session, prepares the capture resource and
// subscribes to the interruption source. Failures are swallowed into
// journal entries: the controller stays Idle with no capture resource bound
// and later commands degrade to journal-only transitions.
func (c *Controller) Setup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.setupDone {
		return
	}
	c.setupDone = true

	if c.recorder != nil {
		if err := c.recorder.Prepare(); err != nil {
			switch {
			case errors.Is(err, audio.ErrSessionConfiguration):
				c.journal.Append("Failed to configure audio session")
			default:
				c.journal.Append("Failed to prepare capture resource")
			}
			slog.Error("Capture setup failed", "error", err)
			c.recorder = nil
		}
	}

	if c.source != nil {
		c.watcherDone = make(chan struct{})
		go c.watchInterruptions(c.source.Notes())
	}
}

// watchInterruptions forwards notes from the interruption source until its
// channel closes.
func (c *Controller) watchInterruptions(notes <-chan interrupt.Note) {
	defer close(c.watcherDone)
	for note := range notes {
		c.HandleInterruption(note)
	}
}

// Start begins or resumes recording. Valid from any state; idempotent when
// already recording.
func (c *Controller) Start() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startLocked()
}

func (c *Controller) startLocked() {
	if c.recorder != nil {
		if err := c.recorder.Start(); err != nil {
			c.journal.Append("Failed to start capture resource")
			slog.Error("Capture start failed", "error", err)
		}
	}

	c.state = StateRecording
	c.pausedByInterruption = false
	c.journal.Append(LineStarted)
}

// Pause suspends recording on the user's behalf. The state only changes
// when leaving Recording or PausedByInterruption; a journal entry is
// appended on every call, including when already paused or stopped.
func (c *Controller) Pause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.recorder != nil {
		if err := c.recorder.Pause(); err != nil {
			c.journal.Append("Failed to pause capture resource")
			slog.Error("Capture pause failed", "error", err)
		}
	}

	if c.state == StateRecording || c.state == StatePausedByInterruption {
		c.state = StatePausedByUser
	}
	c.pausedByInterruption = false
	c.journal.Append(LinePaused)
}

// Stop ends the recording. Valid from any state; the output file is
// finalized when a capture resource is bound.
func (c *Controller) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.recorder != nil {
		if err := c.recorder.Stop(); err != nil {
			c.journal.Append("Failed to stop capture resource")
			slog.Error("Capture stop failed", "error", err)
		}
	}

	c.state = StateStopped
	c.pausedByInterruption = false
	c.journal.Append(LineStopped)
}

// Resume restarts recording after an interruption. It is a complete no-op,
// including journal silence, unless the controller is paused by an
// interruption.
func (c *Controller) Resume() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.resumeLocked()
}

func (c *Controller) resumeLocked() {
	if !c.pausedByInterruption {
		return
	}
	c.startLocked()
	c.journal.Append(LineResumed)
}

// HandleInterruption processes a raw interruption notification. It runs on
// the source's goroutine and serializes against user commands.
func (c *Controller) HandleInterruption(note interrupt.Note) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	event, err := interrupt.Parse(note)
	if err != nil {
		c.journal.Append(LineMalformedEvent)
		slog.Warn("Malformed interruption payload", "error", err)
		return
	}

	switch event.Kind {
	case interrupt.KindBegan:
		// Only an active recording can be paused by an interruption
		if c.state == StateRecording {
			c.pausedByInterruption = true
			if c.recorder != nil {
				if err := c.recorder.Pause(); err != nil {
					c.journal.Append("Failed to pause capture resource")
					slog.Error("Capture pause failed", "error", err)
				}
			}
			c.state = StatePausedByInterruption
		}
		c.journal.Append(LineInterruptBegan)

	case interrupt.KindEnded:
		if event.ShouldResume {
			c.resumeLocked()
		}
		c.journal.Append(LineInterruptEnded)
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// PausedByInterruption reports whether the current pause was forced by an
// interruption rather than the user.
func (c *Controller) PausedByInterruption() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.pausedByInterruption
}

// Journal returns the controller's event journal. The presentation layer
// subscribes to it; it must not append.
func (c *Controller) Journal() *journal.Journal {
	return c.journal
}

// OutputFile returns the capture destination, empty when no resource is bound
func (c *Controller) OutputFile() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.recorder == nil {
		return ""
	}
	return c.recorder.OutputFile()
}

// Close releases the interruption subscription, the capture resource and
// the journal. Safe to call on every exit path; idempotent.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mutex.Lock()
		source := c.source
		watcherDone := c.watcherDone
		recorder := c.recorder
		c.mutex.Unlock()

		if source != nil {
			source.Close()
			if watcherDone != nil {
				<-watcherDone
			}
		}
		if recorder != nil {
			if err := recorder.Cleanup(); err != nil {
				slog.Error("Capture cleanup failed", "error", err)
			}
		}
		c.journal.Close()
	})
}
