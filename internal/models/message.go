package models

import (
	"errors"
	"time"
)

// ErrNoMessage is returned when a receive times out with an empty queue
var ErrNoMessage = errors.New("no messages in queue")

// BroadcastReceiver is the wildcard receiver id. A message addressed to it
// fans out to every subscriber of its type, excluding the sender.
const BroadcastReceiver = "*"

// Message type tags used by the debate coordinator.
const (
	MessageTypeGenerateResponse = "generate_response"
	MessageTypeDebateEvent      = "debate_event"
)

// AgentMessage is the transport unit for both the message bus and the
// agent request envelope. Immutable once constructed.
type AgentMessage struct {
	ID             string                 `json:"id"`
	SenderID       string                 `json:"sender_id"`
	ReceiverID     string                 `json:"receiver_id"` // BroadcastReceiver for broadcast
	Type           string                 `json:"type"`
	Content        map[string]interface{} `json:"content"`
	Timestamp      time.Time              `json:"timestamp"`
	ConversationID string                 `json:"conversation_id"`
}

// AgentResponse is produced exactly once per handled message, even on
// failure: a failed handle yields confidence 0 and the error text in
// Metadata rather than an error to the caller.
type AgentResponse struct {
	AgentID        string                 `json:"agent_id"`
	ResponseText   string                 `json:"response_text"`
	Confidence     float64                `json:"confidence"` // [0,1]
	Metadata       map[string]interface{} `json:"metadata"`
	ProcessingTime time.Duration          `json:"processing_time"`
}

// IsError reports whether the response records a handler failure.
func (r *AgentResponse) IsError() bool {
	if r.Metadata == nil {
		return false
	}
	_, ok := r.Metadata["error"]
	return ok
}
