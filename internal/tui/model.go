package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/audiolibrelab/pocketrec/internal/interrupt"
	"github.com/audiolibrelab/pocketrec/internal/journal"
	"github.com/audiolibrelab/pocketrec/internal/session"
)

// EntryMsg delivers one journal entry to the model
type EntryMsg struct {
	Entry journal.Entry
}

// JournalClosedMsg is sent when the journal subscription ends
type JournalClosedMsg struct{}

// Model is the root bubbletea model: a state badge, the scrolling journal
// and the three recording controls.
type Model struct {
	controller *session.Controller

	// injector simulates an interruption source when the i key is
	// pressed; nil disables the binding
	injector    *interrupt.ChanSource
	interrupted bool

	entries []journal.Entry
	sub     <-chan journal.Entry
	cancel  func()

	width  int
	height int
	scroll int
	follow bool
}

// New creates a shell model attached to a controller. The backlog is
// replayed into the view and new entries arrive through the subscription;
// the handoff is atomic so entries appended during construction are not
// lost between the two.
func New(controller *session.Controller, injector *interrupt.ChanSource) Model {
	entries, sub, cancel := controller.Journal().SubscribeWithBacklog()

	return Model{
		controller: controller,
		injector:   injector,
		entries:    entries,
		sub:        sub,
		cancel:     cancel,
		follow:     true,
	}
}

// Run drives the shell until the user quits
func Run(controller *session.Controller, injector *interrupt.ChanSource) error {
	p := tea.NewProgram(New(controller, injector), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func waitForEntry(sub <-chan journal.Entry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-sub
		if !ok {
			return JournalClosedMsg{}
		}
		return EntryMsg{Entry: entry}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEntry(m.sub)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case EntryMsg:
		m.entries = append(m.entries, msg.Entry)
		return m, waitForEntry(m.sub)

	case JournalClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		m.cancel()
		return m, tea.Quit

	case KeyStart:
		m.controller.Start()
	case KeyPause:
		m.controller.Pause()
	case KeyStop:
		m.controller.Stop()

	case KeyInterrupt:
		if m.injector != nil {
			if m.interrupted {
				m.injector.Deliver(interrupt.EndedNote(true))
			} else {
				m.injector.Deliver(interrupt.BeganNote())
			}
			m.interrupted = !m.interrupted
		}

	case KeyUp, KeyK:
		m.follow = false
		if m.scroll > 0 {
			m.scroll--
		}
	case KeyDown, KeyJ:
		if m.scroll < m.maxScroll() {
			m.scroll++
		}
		if m.scroll == m.maxScroll() {
			m.follow = true
		}
	case KeyFollow:
		m.follow = true
	}

	return m, nil
}

// logHeight returns the number of journal lines that fit the viewport
func (m Model) logHeight() int {
	// title + state line + blank + footer
	h := m.height - 4
	if h < 1 {
		h = 10
	}
	return h
}

func (m Model) maxScroll() int {
	max := len(m.entries) - m.logHeight()
	if max < 0 {
		return 0
	}
	return max
}

func stateBadge(state session.State) string {
	switch state {
	case session.StateRecording:
		return recordingBadgeStyle.Render("● RECORDING")
	case session.StatePausedByUser:
		return pausedBadgeStyle.Render("‖ PAUSED")
	case session.StatePausedByInterruption:
		return pausedBadgeStyle.Render("‖ PAUSED (interrupted)")
	case session.StateStopped:
		return stoppedBadgeStyle.Render("■ STOPPED")
	default:
		return idleBadgeStyle.Render("○ IDLE")
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pocketrec"))
	b.WriteString("  ")
	b.WriteString(stateBadge(m.controller.State()))
	if output := m.controller.OutputFile(); output != "" {
		b.WriteString("  ")
		b.WriteString(footerStyle.Render(output))
	}
	b.WriteString("\n\n")

	top := m.scroll
	if m.follow {
		top = m.maxScroll()
	}
	bottom := top + m.logHeight()
	if bottom > len(m.entries) {
		bottom = len(m.entries)
	}

	for _, entry := range m.entries[top:bottom] {
		b.WriteString(timestampStyle.Render(entry.Time.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(entryStyle.Render(entry.Text))
		b.WriteString("\n")
	}
	for i := bottom - top; i < m.logHeight(); i++ {
		b.WriteString("\n")
	}

	help := []string{
		fmt.Sprintf("%s record", footerKeyStyle.Render(KeyStart)),
		fmt.Sprintf("%s pause", footerKeyStyle.Render(KeyPause)),
		fmt.Sprintf("%s stop", footerKeyStyle.Render(KeyStop)),
	}
	if m.injector != nil {
		help = append(help, fmt.Sprintf("%s interrupt", footerKeyStyle.Render(KeyInterrupt)))
	}
	help = append(help, fmt.Sprintf("%s quit", footerKeyStyle.Render(KeyQuit)))
	b.WriteString(footerStyle.Render(strings.Join(help, "  ·  ")))

	return b.String()
}
