package session

import (
	"testing"
	"time"

	"github.com/audiolibrelab/pocketrec/internal/audio"
	"github.com/audiolibrelab/pocketrec/internal/interrupt"
	"github.com/audiolibrelab/pocketrec/internal/journal"
)

func newTestController(t *testing.T) (*Controller, *audio.FakeRecorder) {
	t.Helper()
	fake := audio.NewFakeRecorder()
	c := New(fake, nil)
	c.Setup()
	t.Cleanup(c.Close)
	return c, fake
}

func journalTexts(entries []journal.Entry) []string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return texts
}

func assertJournal(t *testing.T, c *Controller, expected ...string) {
	t.Helper()
	got := journalTexts(c.Journal().Entries())
	if len(got) != len(expected) {
		t.Fatalf("Expected journal %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Journal entry %d: expected %q, got %q (full journal: %v)", i, expected[i], got[i], got)
		}
	}
}

// Command replay against the transition table
func TestTransitionTableReplay(t *testing.T) {
	type step struct {
		command  string
		expected State
	}

	cases := []struct {
		name  string
		steps []step
	}{
		{"start from idle", []step{
			{"start", StateRecording},
		}},
		{"user pause", []step{
			{"start", StateRecording},
			{"pause", StatePausedByUser},
		}},
		{"interruption begin while recording", []step{
			{"start", StateRecording},
			{"interrupt-begin", StatePausedByInterruption},
		}},
		{"interruption round trip", []step{
			{"start", StateRecording},
			{"interrupt-begin", StatePausedByInterruption},
			{"interrupt-end-resume", StateRecording},
		}},
		{"stop from recording", []step{
			{"start", StateRecording},
			{"stop", StateStopped},
		}},
		{"stop from user pause", []step{
			{"start", StateRecording},
			{"pause", StatePausedByUser},
			{"stop", StateStopped},
		}},
		{"stop from interruption pause", []step{
			{"start", StateRecording},
			{"interrupt-begin", StatePausedByInterruption},
			{"stop", StateStopped},
		}},
		{"start from any state", []step{
			{"start", StateRecording},
			{"stop", StateStopped},
			{"start", StateRecording},
			{"pause", StatePausedByUser},
			{"start", StateRecording},
		}},
		{"start idempotent when recording", []step{
			{"start", StateRecording},
			{"start", StateRecording},
		}},
		{"interruption end without resume advice", []step{
			{"start", StateRecording},
			{"interrupt-begin", StatePausedByInterruption},
			{"interrupt-end", StatePausedByInterruption},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestController(t)

			for i, s := range tc.steps {
				switch s.command {
				case "start":
					c.Start()
				case "pause":
					c.Pause()
				case "stop":
					c.Stop()
				case "resume":
					c.Resume()
				case "interrupt-begin":
					c.HandleInterruption(interrupt.BeganNote())
				case "interrupt-end":
					c.HandleInterruption(interrupt.EndedNote(false))
				case "interrupt-end-resume":
					c.HandleInterruption(interrupt.EndedNote(true))
				default:
					t.Fatalf("Unknown command %q", s.command)
				}

				if got := c.State(); got != s.expected {
					t.Fatalf("Step %d (%s): expected state %s, got %s", i, s.command, s.expected, got)
				}
			}
		})
	}
}

// Scenario 1: setup, start
func TestScenarioStart(t *testing.T) {
	c, fake := newTestController(t)

	c.Start()

	if c.State() != StateRecording {
		t.Errorf("Expected %s, got %s", StateRecording, c.State())
	}
	assertJournal(t, c, LineStarted)

	commands := fake.Commands()
	if len(commands) != 2 || commands[0] != "prepare" || commands[1] != "start" {
		t.Errorf("Expected [prepare start], got %v", commands)
	}
}

// Scenario 2: a user pause is not resumed by Resume
func TestScenarioUserPauseNotResumed(t *testing.T) {
	c, _ := newTestController(t)

	c.Start()
	c.Pause()
	c.Resume()

	if c.State() != StatePausedByUser {
		t.Errorf("Expected %s after resume of a user pause, got %s", StatePausedByUser, c.State())
	}
	assertJournal(t, c, LineStarted, LinePaused)
}

// Scenario 3: interruption round trip with resume advised
func TestScenarioInterruptionRoundTrip(t *testing.T) {
	c, _ := newTestController(t)

	c.Start()
	c.HandleInterruption(interrupt.BeganNote())
	c.HandleInterruption(interrupt.EndedNote(true))

	if c.State() != StateRecording {
		t.Errorf("Expected %s after advised resume, got %s", StateRecording, c.State())
	}
	assertJournal(t, c,
		LineStarted,
		LineInterruptBegan,
		LineStarted, // internal resume path re-issues start
		LineResumed,
		LineInterruptEnded,
	)
}

// Scenario 4: stop from Idle without a capture resource
func TestScenarioStopWithoutStart(t *testing.T) {
	c := New(nil, nil)
	c.Setup()
	defer c.Close()

	c.Stop()

	if c.State() != StateStopped {
		t.Errorf("Expected %s, got %s", StateStopped, c.State())
	}
	assertJournal(t, c, LineStopped)
}

func TestResumeIsNoOpUnlessInterrupted(t *testing.T) {
	c, _ := newTestController(t)

	// From Idle
	c.Resume()
	if c.State() != StateIdle || c.Journal().Len() != 0 {
		t.Error("Resume from Idle must be a silent no-op")
	}

	// From Recording
	c.Start()
	before := c.Journal().Len()
	c.Resume()
	if c.Journal().Len() != before {
		t.Error("Resume while recording must not append entries")
	}

	// From Stopped
	c.Stop()
	before = c.Journal().Len()
	c.Resume()
	if c.State() != StateStopped || c.Journal().Len() != before {
		t.Error("Resume from Stopped must be a silent no-op")
	}
}

func TestResumeAfterInterruption(t *testing.T) {
	c, _ := newTestController(t)

	c.Start()
	c.HandleInterruption(interrupt.BeganNote())

	if !c.PausedByInterruption() {
		t.Fatal("Expected pausedByInterruption after interruption begin")
	}

	c.Resume()

	if c.State() != StateRecording {
		t.Errorf("Expected %s, got %s", StateRecording, c.State())
	}
	if c.PausedByInterruption() {
		t.Error("Resume must clear the interruption flag")
	}
	assertJournal(t, c, LineStarted, LineInterruptBegan, LineStarted, LineResumed)
}

func TestInterruptionWhileIdle(t *testing.T) {
	c, _ := newTestController(t)

	c.HandleInterruption(interrupt.BeganNote())

	if c.State() != StateIdle {
		t.Errorf("Interruption begin while Idle must not change state, got %s", c.State())
	}
	if c.PausedByInterruption() {
		t.Error("Interruption flag must not be set outside Recording")
	}
	assertJournal(t, c, LineInterruptBegan)

	// A following advised end must not start a recording that never ran
	c.HandleInterruption(interrupt.EndedNote(true))
	if c.State() != StateIdle {
		t.Errorf("Expected %s, got %s", StateIdle, c.State())
	}
	assertJournal(t, c, LineInterruptBegan, LineInterruptEnded)
}

func TestInterruptionWhileStopped(t *testing.T) {
	c, _ := newTestController(t)

	c.Start()
	c.Stop()
	c.HandleInterruption(interrupt.BeganNote())

	if c.State() != StateStopped {
		t.Errorf("Interruption begin while Stopped must not change state, got %s", c.State())
	}
}

// Documented policy: Pause always journals, even when already paused
func TestPauseWhenAlreadyPaused(t *testing.T) {
	c, _ := newTestController(t)

	c.Start()
	c.Pause()
	c.Pause()

	if c.State() != StatePausedByUser {
		t.Errorf("Expected %s, got %s", StatePausedByUser, c.State())
	}
	assertJournal(t, c, LineStarted, LinePaused, LinePaused)
}

// A user pause overrides an interruption pause: no auto-resume afterwards
func TestUserPauseOverridesInterruptionPause(t *testing.T) {
	c, _ := newTestController(t)

	c.Start()
	c.HandleInterruption(interrupt.BeganNote())
	c.Pause()

	if c.State() != StatePausedByUser {
		t.Errorf("Expected %s, got %s", StatePausedByUser, c.State())
	}
	if c.PausedByInterruption() {
		t.Error("User pause must clear the interruption flag")
	}

	c.HandleInterruption(interrupt.EndedNote(true))
	if c.State() != StatePausedByUser {
		t.Errorf("Interruption end must not resume over a user pause, got %s", c.State())
	}
}

func TestMalformedInterruptionPayload(t *testing.T) {
	c, _ := newTestController(t)
	c.Start()

	notes := []interrupt.Note{
		{},
		{Payload: map[string]any{"type": 7}},
		{Payload: map[string]any{"type": "melted"}},
	}
	for _, note := range notes {
		c.HandleInterruption(note)
	}

	if c.State() != StateRecording {
		t.Errorf("Malformed payloads must not change state, got %s", c.State())
	}
	assertJournal(t, c, LineStarted, LineMalformedEvent, LineMalformedEvent, LineMalformedEvent)
}

func TestEveryCommandAppendsAnEntry(t *testing.T) {
	c, _ := newTestController(t)

	commands := []func(){
		c.Start,
		c.Pause,
		c.Start,
		c.Stop,
		func() { c.HandleInterruption(interrupt.BeganNote()) },
		func() { c.HandleInterruption(interrupt.EndedNote(false)) },
	}
	for i, command := range commands {
		before := c.Journal().Len()
		command()
		if c.Journal().Len() <= before {
			t.Errorf("Command %d appended no journal entry", i)
		}
	}
}

// Setup failure degrades the controller to journal-only transitions
func TestSetupFailureDegradesGracefully(t *testing.T) {
	fake := audio.NewFakeRecorder()
	fake.PrepareErr = audio.ErrResourcePreparation

	c := New(fake, nil)
	c.Setup()
	defer c.Close()

	if c.State() != StateIdle {
		t.Errorf("Expected %s after failed setup, got %s", StateIdle, c.State())
	}
	assertJournal(t, c, "Failed to prepare capture resource")
	if c.OutputFile() != "" {
		t.Error("Expected no output file after failed setup")
	}

	// Commands still transition and journal, but touch no resource
	c.Start()
	c.Pause()
	c.Stop()

	if c.State() != StateStopped {
		t.Errorf("Expected %s, got %s", StateStopped, c.State())
	}
	commands := fake.Commands()
	if len(commands) != 1 || commands[0] != "prepare" {
		t.Errorf("Unbound recorder must receive no commands, got %v", commands)
	}
}

func TestSessionConfigurationFailureJournalLine(t *testing.T) {
	fake := audio.NewFakeRecorder()
	fake.PrepareErr = audio.ErrSessionConfiguration

	c := New(fake, nil)
	c.Setup()
	defer c.Close()

	assertJournal(t, c, "Failed to configure audio session")
}

// Start failures are logged but the state machine still advances
func TestStartFailureStillTransitions(t *testing.T) {
	fake := audio.NewFakeRecorder()
	fake.StartErr = audio.ErrResourcePreparation

	c := New(fake, nil)
	c.Setup()
	defer c.Close()

	c.Start()

	if c.State() != StateRecording {
		t.Errorf("Expected %s despite start failure, got %s", StateRecording, c.State())
	}
	assertJournal(t, c, "Failed to start capture resource", LineStarted)
}

// Interruptions delivered through a source serialize against user commands
func TestInterruptionSourceIntegration(t *testing.T) {
	fake := audio.NewFakeRecorder()
	source := interrupt.NewChanSource()

	c := New(fake, source)
	c.Setup()
	defer c.Close()

	sub, cancel := c.Journal().Subscribe()
	defer cancel()

	waitFor := func(text string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case entry := <-sub:
				if entry.Text == text {
					return
				}
			case <-deadline:
				t.Fatalf("Timed out waiting for journal entry %q", text)
			}
		}
	}

	c.Start()
	source.Deliver(interrupt.BeganNote())
	waitFor(LineInterruptBegan)

	if c.State() != StatePausedByInterruption {
		t.Errorf("Expected %s, got %s", StatePausedByInterruption, c.State())
	}

	source.Deliver(interrupt.EndedNote(true))
	waitFor(LineInterruptEnded)

	if c.State() != StateRecording {
		t.Errorf("Expected %s after advised resume, got %s", StateRecording, c.State())
	}
}

func TestCloseIsIdempotentAndReleasesSource(t *testing.T) {
	fake := audio.NewFakeRecorder()
	source := interrupt.NewChanSource()

	c := New(fake, source)
	c.Setup()

	c.Close()
	c.Close()

	commands := fake.Commands()
	if commands[len(commands)-1] != "cleanup" {
		t.Errorf("Expected cleanup as last command, got %v", commands)
	}
	if _, ok := <-source.Notes(); ok {
		t.Error("Expected the interruption source to be closed")
	}
}
