package models

import (
	"time"
)

// Answer is the normalized verdict token extracted from an agent response.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerNeither Answer = "neither"
)

// CanonicalAnswers returns the answer tokens in their canonical order.
// Majority-vote ties break toward the first tied token in this order.
func CanonicalAnswers() []Answer {
	return []Answer{AnswerYes, AnswerNo, AnswerNeither}
}

// DebatePhase tags the coordinator's protocol stage. Transitions only move
// forward; a failure inside a phase marks the debate failed.
type DebatePhase string

const (
	PhaseInitialDecision DebatePhase = "initial_decision"
	PhaseFeedback        DebatePhase = "feedback"
	PhaseFinalDecision   DebatePhase = "final_decision"
	PhaseCompleted       DebatePhase = "completed"
	PhaseFailed          DebatePhase = "failed"
)

// Scenario is the caller-supplied input for one debate.
type Scenario struct {
	Country     string `json:"country" toml:"country"`
	Story       string `json:"story" toml:"story"`
	RuleOfThumb string `json:"rule_of_thumb" toml:"rule_of_thumb"`
}

// ParsedResponse is the structured reading of an agent's raw reply.
// Explanation is only populated for detailed (phase 1) parses.
type ParsedResponse struct {
	Answer      Answer  `json:"answer"`
	Explanation string  `json:"explanation,omitempty"`
	RawResponse string  `json:"raw_response"`
	Confidence  float64 `json:"confidence"`
}

// PhaseResponse is one agent's contribution to a phase, as recorded in the
// conversation context and the final result.
type PhaseResponse struct {
	RawResponse    string          `json:"raw_response"`
	Parsed         *ParsedResponse `json:"parsed_response,omitempty"`
	Confidence     float64         `json:"confidence"`
	ProcessingTime time.Duration   `json:"processing_time"`
}

// Verdict is the deterministic aggregate over final per-kind answers.
type Verdict struct {
	Answer     Answer            `json:"answer"`
	Votes      map[Answer]int    `json:"votes"`
	Confidence float64           `json:"confidence"` // mean confidence of counted votes
	ByAgent    map[string]Answer `json:"by_agent"`
}

// DebateResult is the externally observable output of one debate run.
// Partial per-agent results remain attached when the debate aborts.
type DebateResult struct {
	ConversationID    string                    `json:"conversation_id" badgerhold:"key"`
	Scenario          Scenario                  `json:"scenario"`
	Phase             DebatePhase               `json:"phase"`
	InitialResponses  map[string]*PhaseResponse `json:"initial_responses"`
	FeedbackResponses map[string]*PhaseResponse `json:"feedback_responses"`
	FinalResponses    map[string]*PhaseResponse `json:"final_responses"`
	Verdict           *Verdict                  `json:"verdict,omitempty"`
	PhaseDurations    map[string]time.Duration  `json:"phase_durations"`
	StartedAt         time.Time                 `json:"started_at"`
	CompletedAt       time.Time                 `json:"completed_at"`
	Duration          time.Duration             `json:"duration"`
}
