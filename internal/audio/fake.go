package audio

import "sync"

// FakeRecorder is a scripted Recorder for tests. It records the command
// sequence it receives and fails on demand.
type FakeRecorder struct {
	PrepareErr error
	StartErr   error
	PauseErr   error
	StopErr    error

	mutex    sync.Mutex
	commands []string
	prepared bool
	output   string
}

// NewFakeRecorder creates a fake recorder bound to a fake output path
func NewFakeRecorder() *FakeRecorder {
	return &FakeRecorder{output: "/dev/null/testRecording.flac"}
}

func (f *FakeRecorder) record(cmd string) {
	f.mutex.Lock()
	f.commands = append(f.commands, cmd)
	f.mutex.Unlock()
}

// Commands returns the sequence of commands issued so far
func (f *FakeRecorder) Commands() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func (f *FakeRecorder) Prepare() error {
	f.record("prepare")
	if f.PrepareErr != nil {
		return f.PrepareErr
	}
	f.mutex.Lock()
	f.prepared = true
	f.mutex.Unlock()
	return nil
}

func (f *FakeRecorder) Start() error {
	f.record("start")
	return f.StartErr
}

func (f *FakeRecorder) Pause() error {
	f.record("pause")
	return f.PauseErr
}

func (f *FakeRecorder) Stop() error {
	f.record("stop")
	return f.StopErr
}

func (f *FakeRecorder) Cleanup() error {
	f.record("cleanup")
	return nil
}

func (f *FakeRecorder) OutputFile() string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.prepared {
		return ""
	}
	return f.output
}
