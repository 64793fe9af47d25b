package realtime

import (
	"sync"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event describes one change to a named collection.
type Event struct {
	Collection string `json:"collection"`
	Action     Action `json:"action"`
	Id         string `json:"id"`
	Payload    any    `json:"payload,omitempty"`
}

type subscriber struct {
	collections map[string]bool
	ch          chan Event
}

// Hub fans mutation events out to subscribers. Services publish after a
// successful write; HTTP clients receive events over SSE. Delivery is
// best-effort: a subscriber whose buffer is full misses the event rather
// than blocking the writer.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]bool)}
}

// Subscribe registers interest in the given collections (all collections if
// none given). The returned cancel func must be called when done; the event
// channel is closed by it.
func (h *Hub) Subscribe(collections ...string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, 16)}
	if len(collections) > 0 {
		sub.collections = make(map[string]bool, len(collections))
		for _, c := range collections {
			sub.collections[c] = true
		}
	}

	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if h.subs[sub] {
			delete(h.subs, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.collections != nil && !sub.collections[ev.Collection] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
