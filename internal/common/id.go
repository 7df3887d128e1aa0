package common

import (
	"github.com/google/uuid"
)

// NewConversationID generates a unique debate conversation ID.
// Format: debate_<uuid>
func NewConversationID() string {
	return "debate_" + uuid.New().String()
}

// NewMessageID generates a unique message ID.
// Format: msg_<uuid>
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}

// AgentInstanceID derives the cache key for a pooled agent. The pool keeps
// one live instance per kind, so the id is deterministic in the kind.
func AgentInstanceID(agentType string) string {
	return agentType + "_instance"
}
