package journal

import (
	"sync"
	"time"
)

// Entry is a single timestamped journal line
type Entry struct {
	Time time.Time
	Text string
}

// subscriberBuffer is the per-subscriber channel depth. Appends never block:
// a subscriber that falls further behind than this misses entries on its
// channel but can always replay the full record through Entries.
const subscriberBuffer = 256

// Journal is an append-only, ordered sequence of entries with broadcast
// delivery to subscribers. Entries are never reordered or truncated for the
// lifetime of the journal.
type Journal struct {
	mutex       sync.RWMutex
	entries     []Entry
	subscribers map[int]chan Entry
	nextSubID   int
	closed      bool
}

// New creates an empty journal
func New() *Journal {
	return &Journal{
		subscribers: make(map[int]chan Entry),
	}
}

// Append records a new entry and publishes it to all subscribers
func (j *Journal) Append(text string) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.closed {
		return
	}

	entry := Entry{Time: time.Now(), Text: text}
	j.entries = append(j.entries, entry)

	for _, ch := range j.subscribers {
		select {
		case ch <- entry:
		default:
			// Slow subscriber: drop delivery, keep the record intact
		}
	}
}

// Entries returns a copy of all entries in insertion order
func (j *Journal) Entries() []Entry {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of entries appended so far
func (j *Journal) Len() int {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return len(j.entries)
}

// Subscribe registers a new subscriber and returns its delivery channel plus
// a cancel function. The channel is closed on cancel or when the journal is
// closed. Entries appended before Subscribe are not re-delivered; use
// SubscribeWithBacklog to capture the backlog and subscribe atomically.
func (j *Journal) Subscribe() (<-chan Entry, func()) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.subscribeLocked()
}

// SubscribeWithBacklog registers a subscriber and snapshots the existing
// entries under one lock acquisition, so every entry lands in exactly one
// place: the returned backlog or the channel. Readers that render the
// backlog and then drain the channel see the complete record.
func (j *Journal) SubscribeWithBacklog() ([]Entry, <-chan Entry, func()) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	backlog := make([]Entry, len(j.entries))
	copy(backlog, j.entries)
	ch, cancel := j.subscribeLocked()
	return backlog, ch, cancel
}

func (j *Journal) subscribeLocked() (<-chan Entry, func()) {
	ch := make(chan Entry, subscriberBuffer)
	if j.closed {
		close(ch)
		return ch, func() {}
	}

	id := j.nextSubID
	j.nextSubID++
	j.subscribers[id] = ch

	cancel := func() {
		j.mutex.Lock()
		defer j.mutex.Unlock()
		if sub, ok := j.subscribers[id]; ok {
			delete(j.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Close stops publication and closes all subscriber channels. The recorded
// entries remain readable through Entries. Close is idempotent.
func (j *Journal) Close() {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.closed {
		return
	}
	j.closed = true

	for id, ch := range j.subscribers {
		delete(j.subscribers, id)
		close(ch)
	}
}
