package convo

import (
	"sync"
	"time"
)

// Timeline is the append-only conversation log. Messages live in an arena
// slice; a parallel order list of ids preserves insertion order and an index
// map enforces id uniqueness. Messages are never mutated or removed
// individually, the only bulk operation is Clear.
type Timeline struct {
	mu       sync.RWMutex
	arena    []Message
	order    []string
	index    map[string]int
	onAppend func(Message)
}

// NewTimeline returns an empty timeline. onAppend, when non-nil, is invoked
// after every successful append so the presentation layer can re-render and
// scroll to the latest turn. It is called outside the timeline lock.
func NewTimeline(onAppend func(Message)) *Timeline {
	return &Timeline{
		index:    make(map[string]int),
		onAppend: onAppend,
	}
}

// Append creates a message with a fresh unique id and inserts it. The arena,
// order list and index are updated under one lock so a reader can never
// observe an ordered id without its message.
func (t *Timeline) Append(text string, sender Sender, model string) string {
	now := time.Now().UTC()

	t.mu.Lock()
	id := NewMessageID(now)
	for {
		if _, exists := t.index[id]; !exists {
			break
		}
		id = NewMessageID(now)
	}
	msg := Message{
		ID:        id,
		Text:      text,
		Sender:    sender,
		CreatedAt: now,
		Model:     model,
	}
	t.index[id] = len(t.arena)
	t.arena = append(t.arena, msg)
	t.order = append(t.order, id)
	t.mu.Unlock()

	if t.onAppend != nil {
		t.onAppend(msg)
	}
	return id
}

// Get resolves a message by id.
func (t *Timeline) Get(id string) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.index[id]
	if !ok {
		return Message{}, false
	}
	return t.arena[pos], true
}

// Messages returns the full transcript in insertion order.
func (t *Timeline) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.order))
	for i, id := range t.order {
		out[i] = t.arena[t.index[id]]
	}
	return out
}

// Order returns the id sequence in insertion order.
func (t *Timeline) Order() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// Len reports the number of appended messages.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Clear empties the log.
func (t *Timeline) Clear() {
	t.mu.Lock()
	t.arena = nil
	t.order = nil
	t.index = make(map[string]int)
	t.mu.Unlock()
}
