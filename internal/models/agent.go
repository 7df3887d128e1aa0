package models

// AgentType identifies a cultural persona or reserved coordination role.
// The set is fixed at startup; the pool keys one live instance per type.
type AgentType string

const (
	AgentTypeChristian   AgentType = "cultural_christian"
	AgentTypeIslamic     AgentType = "cultural_islamic"
	AgentTypeBuddhist    AgentType = "cultural_buddhist"
	AgentTypeHindu       AgentType = "cultural_hindu"
	AgentTypeTraditional AgentType = "cultural_traditional"

	// Reserved coordination roles
	AgentTypeConflictDetector AgentType = "conflict_detector"
	AgentTypeMediator         AgentType = "mediator"
	AgentTypeDecisionMaker    AgentType = "decision_maker"
)

// IsValid checks if the AgentType is a known, valid type
func (t AgentType) IsValid() bool {
	switch t {
	case AgentTypeChristian, AgentTypeIslamic, AgentTypeBuddhist,
		AgentTypeHindu, AgentTypeTraditional,
		AgentTypeConflictDetector, AgentTypeMediator, AgentTypeDecisionMaker:
		return true
	}
	return false
}

// String returns the string representation of the AgentType
func (t AgentType) String() string {
	return string(t)
}

// CulturalAgentTypes returns the cultural persona types in their canonical
// debate participation order.
func CulturalAgentTypes() []AgentType {
	return []AgentType{
		AgentTypeChristian,
		AgentTypeIslamic,
		AgentTypeBuddhist,
		AgentTypeHindu,
		AgentTypeTraditional,
	}
}

// AgentStatus tracks the lifecycle of a pooled agent instance.
// Valid transitions: Inactive -> Loading -> Active <-> Processing,
// Unloading -> Inactive on teardown, Error reachable from any state.
type AgentStatus string

const (
	AgentStatusInactive   AgentStatus = "inactive"
	AgentStatusLoading    AgentStatus = "loading"
	AgentStatusActive     AgentStatus = "active"
	AgentStatusProcessing AgentStatus = "processing"
	AgentStatusError      AgentStatus = "error"
	AgentStatusUnloading  AgentStatus = "unloading"
)

// String returns the string representation of the AgentStatus
func (s AgentStatus) String() string {
	return string(s)
}

// AgentInfo is a point-in-time snapshot of a pooled agent, used by the
// pool's listing API and the status endpoint.
type AgentInfo struct {
	AgentID      string      `json:"agent_id"`
	AgentType    AgentType   `json:"agent_type"`
	Status       AgentStatus `json:"status"`
	LastActivity int64       `json:"last_activity"` // unix seconds

	PerformanceStats
}

// PerformanceStats holds per-agent request counters.
type PerformanceStats struct {
	TotalRequests         int64   `json:"total_requests"`
	TotalProcessingTime   float64 `json:"total_processing_time"`   // seconds
	AverageProcessingTime float64 `json:"average_processing_time"` // seconds
}
