package interfaces

import (
	"context"

	"github.com/ternarybob/concord/internal/models"
)

// AgentPool is a bounded cache of live agents keyed by kind, with strict
// LRU eviction and a global single-flight admission lock around the
// expensive initialization step.
type AgentPool interface {
	// Register associates a kind with a construction recipe. Must be called
	// before any Acquire for that kind; re-registration overwrites.
	Register(agentType models.AgentType, factory AgentFactory)

	// Acquire returns a live agent for the kind. Cache hits promote the
	// entry to most-recently-used. Misses may evict the LRU entry, then
	// construct and initialize under the single-flight lock. Initialization
	// failure leaves the pool as if Acquire was never attempted.
	Acquire(ctx context.Context, agentType models.AgentType) (Agent, error)

	// Reclaim evicts agents idle past the configured threshold
	Reclaim() int

	// ReleaseAll tears down every cached agent and clears the cache.
	// Idempotent per agent.
	ReleaseAll()

	// HealthCheck evicts agents observed in Error status. Returns false
	// only on an internal pool fault.
	HealthCheck() bool

	// Stats returns the pool's counters
	Stats() models.PoolStats

	// AgentList snapshots the cached agents in LRU order
	AgentList() []models.AgentInfo
}
