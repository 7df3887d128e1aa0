package interfaces

import (
	"context"

	"github.com/ternarybob/concord/internal/models"
)

// Agent is a pooled cultural worker. The pool serializes acquisition, and
// the coordinator targets each agent with at most one in-flight request per
// phase, so implementations are accessed by one logical caller at a time.
type Agent interface {
	// ID returns the instance id (derived from the agent type)
	ID() string

	// Type returns the agent's kind
	Type() models.AgentType

	// Status returns the current lifecycle status
	Status() models.AgentStatus

	// Initialize brings the agent to Active. Returns an error on failure,
	// leaving the agent in Error status.
	Initialize(ctx context.Context) error

	// ProcessMessage handles one request envelope and always returns a
	// response: handler faults produce a confidence-0 response with the
	// error recorded in metadata, not an error return.
	ProcessMessage(ctx context.Context, msg *models.AgentMessage) *models.AgentResponse

	// ParseResponse extracts the structured answer for the given stage
	ParseResponse(raw string, stage string) *models.ParsedResponse

	// IsIdle reports whether the agent has been inactive longer than the
	// threshold (seconds of wall clock since last activity).
	IsIdle(idleTimeoutSeconds float64) bool

	// Info returns a point-in-time snapshot for listings
	Info() models.AgentInfo

	// Cleanup releases the agent's resources. Safe to call more than once.
	Cleanup() error
}

// AgentFactory constructs an uninitialized agent instance for a kind.
// Registered with the pool; invoked under the pool's single-flight load lock.
type AgentFactory func(agentID string, agentType models.AgentType) (Agent, error)
