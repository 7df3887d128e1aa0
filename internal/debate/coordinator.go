// Package debate runs the three-phase deliberation protocol over the
// cultural agents: independent initial decisions, cross-cultural feedback,
// and final decisions reduced to a majority verdict.
package debate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/agents"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
)

// ErrPhaseAborted is returned when a phase ends with zero successful
// participants. The partial result, carrying a neither verdict, is still
// returned alongside the error.
var ErrPhaseAborted = errors.New("debate phase aborted")

// coordinatorID is the sender id stamped on coordinator-originated messages.
const coordinatorID = "debate_coordinator"

// Coordinator drives debates. Safe for concurrent Run calls; the pool
// bounds how many agents are actually live at once.
type Coordinator struct {
	pool         interfaces.AgentPool
	bus          interfaces.MessageBus
	logger       arbor.ILogger
	participants []models.AgentType

	mu     sync.Mutex
	active int
}

// NewCoordinator creates a coordinator over the canonical cultural
// participant set.
func NewCoordinator(pool interfaces.AgentPool, bus interfaces.MessageBus, logger arbor.ILogger) *Coordinator {
	return &Coordinator{
		pool:         pool,
		bus:          bus,
		logger:       logger,
		participants: models.CulturalAgentTypes(),
	}
}

// ActiveConversations reports the number of debates currently running.
func (c *Coordinator) ActiveConversations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Run executes one full debate over the scenario and returns its result.
// Participants whose generation fails in a phase drop out of later phases;
// the debate aborts with ErrPhaseAborted only when a phase loses everyone.
func (c *Coordinator) Run(ctx context.Context, scenario models.Scenario) (*models.DebateResult, error) {
	conversationID := common.NewConversationID()
	started := time.Now()

	c.mu.Lock()
	c.active++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
	}()

	c.logger.Info().
		Str("conversation_id", conversationID).
		Str("country", scenario.Country).
		Msg("Debate started")

	result := &models.DebateResult{
		ConversationID:    conversationID,
		Scenario:          scenario,
		Phase:             models.PhaseInitialDecision,
		InitialResponses:  make(map[string]*models.PhaseResponse),
		FeedbackResponses: make(map[string]*models.PhaseResponse),
		FinalResponses:    make(map[string]*models.PhaseResponse),
		PhaseDurations:    make(map[string]time.Duration),
		StartedAt:         started,
	}

	c.publishEvent(conversationID, models.PhaseInitialDecision, "phase_started")

	// Phase 1: every participant judges the scenario independently.
	phaseStart := time.Now()
	result.InitialResponses = c.runPhase(ctx, conversationID, c.participants, agents.StageInitialDecision,
		func(models.AgentType) map[string]interface{} {
			return c.baseContext(scenario, agents.StageInitialDecision)
		})
	result.PhaseDurations[string(models.PhaseInitialDecision)] = time.Since(phaseStart)

	survivors := c.surviving(result.InitialResponses)
	if len(survivors) == 0 {
		return c.abort(result, started, models.PhaseInitialDecision)
	}

	// Phase 2: each survivor critiques a counterpart's initial view. The
	// pairing is positional, so the exchange is asymmetric but reproducible.
	result.Phase = models.PhaseFeedback
	c.publishEvent(conversationID, models.PhaseFeedback, "phase_started")

	pairs := counterparts(survivors)
	phaseStart = time.Now()
	result.FeedbackResponses = c.runPhase(ctx, conversationID, survivors, agents.StageFeedback,
		func(t models.AgentType) map[string]interface{} {
			reqContext := c.baseContext(scenario, agents.StageFeedback)
			reqContext["your_response"] = rawResponse(result.InitialResponses, t)
			reqContext["other_response"] = rawResponse(result.InitialResponses, pairs[t])
			return reqContext
		})
	result.PhaseDurations[string(models.PhaseFeedback)] = time.Since(phaseStart)

	survivors = c.surviving(result.FeedbackResponses)
	if len(survivors) == 0 {
		return c.abort(result, started, models.PhaseFeedback)
	}

	// Phase 3: survivors weigh the full exchange and commit to a verdict.
	result.Phase = models.PhaseFinalDecision
	c.publishEvent(conversationID, models.PhaseFinalDecision, "phase_started")

	phaseStart = time.Now()
	result.FinalResponses = c.runPhase(ctx, conversationID, survivors, agents.StageFinalDecision,
		func(t models.AgentType) map[string]interface{} {
			reqContext := c.baseContext(scenario, agents.StageFinalDecision)
			reqContext["your_response"] = rawResponse(result.InitialResponses, t)
			reqContext["other_response"] = rawResponse(result.InitialResponses, pairs[t])
			reqContext["your_feedback"] = rawResponse(result.FeedbackResponses, t)
			reqContext["other_feedback"] = rawResponse(result.FeedbackResponses, pairs[t])
			return reqContext
		})
	result.PhaseDurations[string(models.PhaseFinalDecision)] = time.Since(phaseStart)

	if len(c.surviving(result.FinalResponses)) == 0 {
		return c.abort(result, started, models.PhaseFinalDecision)
	}

	result.Verdict = aggregate(result.FinalResponses)
	result.Phase = models.PhaseCompleted
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(started)

	c.publishEvent(conversationID, models.PhaseCompleted, string(result.Verdict.Answer))

	c.logger.Info().
		Str("conversation_id", conversationID).
		Str("verdict", string(result.Verdict.Answer)).
		Str("duration", result.Duration.String()).
		Msg("Debate completed")
	return result, nil
}

// runPhase fans one stage out to the given participants and collects the
// successful responses keyed by agent id. Failed participants are logged
// and omitted.
func (c *Coordinator) runPhase(ctx context.Context, conversationID string, participants []models.AgentType, stage string, contextFor func(models.AgentType) map[string]interface{}) map[string]*models.PhaseResponse {
	responses := make(map[string]*models.PhaseResponse, len(participants))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, agentType := range participants {
		agentType := agentType
		wg.Add(1)
		common.SafeGo(c.logger, "debate-"+stage+"-"+agentType.String(), func() {
			defer wg.Done()

			phaseResp, err := c.ask(ctx, conversationID, agentType, stage, contextFor(agentType))
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("conversation_id", conversationID).
					Str("agent_type", agentType.String()).
					Str("stage", stage).
					Msg("Participant dropped from debate")
				return
			}

			mu.Lock()
			responses[common.AgentInstanceID(agentType.String())] = phaseResp
			mu.Unlock()
		})
	}
	wg.Wait()

	return responses
}

// ask acquires the participant's agent and runs one generation request.
func (c *Coordinator) ask(ctx context.Context, conversationID string, agentType models.AgentType, stage string, reqContext map[string]interface{}) (*models.PhaseResponse, error) {
	agent, err := c.pool.Acquire(ctx, agentType)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire agent: %w", err)
	}

	msg := &models.AgentMessage{
		ID:         common.NewMessageID(),
		SenderID:   coordinatorID,
		ReceiverID: agent.ID(),
		Type:       models.MessageTypeGenerateResponse,
		Content: map[string]interface{}{
			"prompt":  "",
			"context": reqContext,
		},
		Timestamp:      time.Now(),
		ConversationID: conversationID,
	}

	resp := agent.ProcessMessage(ctx, msg)
	if resp.IsError() {
		return nil, fmt.Errorf("agent %s: %v", agent.ID(), resp.Metadata["error"])
	}

	return &models.PhaseResponse{
		RawResponse:    resp.ResponseText,
		Parsed:         agent.ParseResponse(resp.ResponseText, stage),
		Confidence:     resp.Confidence,
		ProcessingTime: resp.ProcessingTime,
	}, nil
}

// baseContext builds the scenario fields shared by every stage request.
func (c *Coordinator) baseContext(scenario models.Scenario, stage string) map[string]interface{} {
	return map[string]interface{}{
		"stage":         stage,
		"country":       scenario.Country,
		"story":         scenario.Story,
		"rule_of_thumb": scenario.RuleOfThumb,
	}
}

// surviving filters the participant order down to those with a recorded
// response in the phase.
func (c *Coordinator) surviving(responses map[string]*models.PhaseResponse) []models.AgentType {
	var out []models.AgentType
	for _, t := range c.participants {
		if _, ok := responses[common.AgentInstanceID(t.String())]; ok {
			out = append(out, t)
		}
	}
	return out
}

// abort finalizes a debate that lost every participant in a phase. The
// partial result keeps everything gathered so far plus an explicit
// zero-confidence neither verdict.
func (c *Coordinator) abort(result *models.DebateResult, started time.Time, phase models.DebatePhase) (*models.DebateResult, error) {
	result.Phase = models.PhaseFailed
	result.Verdict = &models.Verdict{
		Answer:  models.AnswerNeither,
		Votes:   make(map[models.Answer]int),
		ByAgent: make(map[string]models.Answer),
	}
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(started)

	c.publishEvent(result.ConversationID, models.PhaseFailed, string(phase))

	c.logger.Error().
		Str("conversation_id", result.ConversationID).
		Str("phase", string(phase)).
		Msg("Debate aborted, no participants completed the phase")
	return result, fmt.Errorf("%w: no participants completed phase %s", ErrPhaseAborted, phase)
}

// publishEvent broadcasts a debate lifecycle event to subscribers. Event
// delivery is best effort; a stopped bus or full queue never affects the
// debate itself.
func (c *Coordinator) publishEvent(conversationID string, phase models.DebatePhase, detail string) {
	msg := &models.AgentMessage{
		ID:         common.NewMessageID(),
		SenderID:   coordinatorID,
		ReceiverID: models.BroadcastReceiver,
		Type:       models.MessageTypeDebateEvent,
		Content: map[string]interface{}{
			"conversation_id": conversationID,
			"phase":           string(phase),
			"detail":          detail,
		},
		Timestamp:      time.Now(),
		ConversationID: conversationID,
	}

	if _, err := c.bus.Send(msg); err != nil {
		c.logger.Debug().
			Err(err).
			Str("conversation_id", conversationID).
			Msg("Debate event not published")
	}
}

// counterparts maps each survivor to the first other survivor in
// participation order. A lone survivor has no counterpart, which leaves
// the counterpart fields empty downstream.
func counterparts(survivors []models.AgentType) map[models.AgentType]models.AgentType {
	pairs := make(map[models.AgentType]models.AgentType, len(survivors))
	if len(survivors) < 2 {
		return pairs
	}
	for i, t := range survivors {
		if i == 0 {
			pairs[t] = survivors[1]
		} else {
			pairs[t] = survivors[0]
		}
	}
	return pairs
}

// rawResponse looks up a participant's raw reply, tolerating absence.
func rawResponse(responses map[string]*models.PhaseResponse, t models.AgentType) string {
	if resp, ok := responses[common.AgentInstanceID(t.String())]; ok {
		return resp.RawResponse
	}
	return ""
}
