package agents

import (
	"github.com/ternarybob/concord/internal/models"
)

// messageHistory is a fixed-capacity ring over the most recent messages an
// agent has handled. Append is O(1); once full, the oldest entry is dropped.
type messageHistory struct {
	entries []*models.AgentMessage
	head    int
	size    int
}

func newMessageHistory(capacity int) *messageHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &messageHistory{
		entries: make([]*models.AgentMessage, capacity),
	}
}

// Append adds a message, evicting the oldest entry when at capacity.
func (h *messageHistory) Append(msg *models.AgentMessage) {
	idx := (h.head + h.size) % len(h.entries)
	h.entries[idx] = msg
	if h.size < len(h.entries) {
		h.size++
	} else {
		h.head = (h.head + 1) % len(h.entries)
	}
}

// Len returns the number of retained messages.
func (h *messageHistory) Len() int {
	return h.size
}

// Recent returns up to limit messages, oldest first. A non-positive limit
// returns the full retained history.
func (h *messageHistory) Recent(limit int) []*models.AgentMessage {
	if limit <= 0 || limit > h.size {
		limit = h.size
	}
	out := make([]*models.AgentMessage, 0, limit)
	start := h.size - limit
	for i := start; i < h.size; i++ {
		out = append(out, h.entries[(h.head+i)%len(h.entries)])
	}
	return out
}
