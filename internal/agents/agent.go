package agents

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
)

// Stage names carried in the request context map.
const (
	StageInitialDecision = "initial_decision"
	StageFeedback        = "feedback"
	StageFinalDecision   = "final_decision"
)

// CulturalAgent is the shared worker implementation for every cultural kind.
// Behavior is common; the persona record parameterizes prompt construction.
// The pool serializes acquisition, so ProcessMessage sees one caller at a
// time; Status is also read by the pool's health check, hence the mutex.
type CulturalAgent struct {
	id        string
	agentType models.AgentType
	persona   *models.Persona
	generator interfaces.Generator
	logger    arbor.ILogger

	generateTimeout time.Duration

	mu              sync.Mutex
	status          models.AgentStatus
	history         *messageHistory
	totalRequests   int64
	totalProcessing time.Duration
	lastActivity    time.Time
}

// Options configures the worker skeleton shared by all kinds.
type Options struct {
	MaxHistoryLength int
	GenerateTimeout  time.Duration
}

// New creates an uninitialized cultural agent for the given kind.
func New(id string, agentType models.AgentType, persona *models.Persona, generator interfaces.Generator, opts Options, logger arbor.ILogger) *CulturalAgent {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 90 * time.Second
	}
	return &CulturalAgent{
		id:              id,
		agentType:       agentType,
		persona:         persona,
		generator:       generator,
		logger:          logger,
		generateTimeout: opts.GenerateTimeout,
		status:          models.AgentStatusInactive,
		history:         newMessageHistory(opts.MaxHistoryLength),
		lastActivity:    time.Now(),
	}
}

// ID returns the instance id
func (a *CulturalAgent) ID() string {
	return a.id
}

// Type returns the agent's kind
func (a *CulturalAgent) Type() models.AgentType {
	return a.agentType
}

// Status returns the current lifecycle status
func (a *CulturalAgent) Status() models.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *CulturalAgent) setStatus(status models.AgentStatus) {
	a.mu.Lock()
	a.status = status
	a.mu.Unlock()
}

// Initialize loads the agent's generator. On failure the agent is left in
// Error status and is discardable; the pool does not retry.
func (a *CulturalAgent) Initialize(ctx context.Context) error {
	a.setStatus(models.AgentStatusLoading)

	a.logger.Info().
		Str("agent_id", a.id).
		Str("agent_type", a.agentType.String()).
		Msg("Initializing agent")

	if err := a.generator.Initialize(ctx); err != nil {
		a.setStatus(models.AgentStatusError)
		a.logger.Error().
			Err(err).
			Str("agent_id", a.id).
			Msg("Agent initialization failed")
		return fmt.Errorf("agent %s initialization failed: %w", a.id, err)
	}

	a.setStatus(models.AgentStatusActive)
	a.logger.Info().
		Str("agent_id", a.id).
		Msg("Agent initialized")
	return nil
}

// ProcessMessage handles one request envelope. It always returns a response:
// generation failures produce a confidence-0 response carrying the error in
// metadata, leaving siblings in the same coordinator phase unaffected.
func (a *CulturalAgent) ProcessMessage(ctx context.Context, msg *models.AgentMessage) *models.AgentResponse {
	start := time.Now()

	a.mu.Lock()
	a.status = models.AgentStatusProcessing
	a.history.Append(msg)
	a.lastActivity = start
	a.mu.Unlock()

	responseText, err := a.handle(ctx, msg)
	processingTime := time.Since(start)

	if err != nil {
		a.setStatus(models.AgentStatusError)
		a.logger.Error().
			Err(err).
			Str("agent_id", a.id).
			Str("message_type", msg.Type).
			Msg("Message processing failed")

		return &models.AgentResponse{
			AgentID:      a.id,
			ResponseText: fmt.Sprintf("message processing failed: %v", err),
			Confidence:   0,
			Metadata: map[string]interface{}{
				"error":     err.Error(),
				"timestamp": time.Now().Unix(),
			},
			ProcessingTime: processingTime,
		}
	}

	a.mu.Lock()
	a.totalRequests++
	a.totalProcessing += processingTime
	a.status = models.AgentStatusActive
	a.mu.Unlock()

	return &models.AgentResponse{
		AgentID:      a.id,
		ResponseText: responseText,
		Confidence:   calculateConfidence(responseText),
		Metadata: map[string]interface{}{
			"message_type":    msg.Type,
			"processing_time": processingTime.Seconds(),
			"timestamp":       time.Now().Unix(),
		},
		ProcessingTime: processingTime,
	}
}

// handle routes the message by type and runs generation under the
// configured timeout.
func (a *CulturalAgent) handle(ctx context.Context, msg *models.AgentMessage) (string, error) {
	switch msg.Type {
	case models.MessageTypeGenerateResponse:
		prompt := stringValue(msg.Content, "prompt")
		reqContext := mapValue(msg.Content, "context")
		fullPrompt := a.buildPrompt(prompt, reqContext)

		genCtx, cancel := context.WithTimeout(ctx, a.generateTimeout)
		defer cancel()

		return a.generator.Generate(genCtx, fullPrompt, reqContext)

	default:
		return fmt.Sprintf("unsupported message type: %s", msg.Type), nil
	}
}

// IsIdle reports whether the agent has been inactive longer than the
// threshold in seconds.
func (a *CulturalAgent) IsIdle(idleTimeoutSeconds float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Since(a.lastActivity).Seconds() > idleTimeoutSeconds
}

// Info returns a point-in-time snapshot for listings
func (a *CulturalAgent) Info() models.AgentInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	avg := 0.0
	if a.totalRequests > 0 {
		avg = a.totalProcessing.Seconds() / float64(a.totalRequests)
	}

	return models.AgentInfo{
		AgentID:      a.id,
		AgentType:    a.agentType,
		Status:       a.status,
		LastActivity: a.lastActivity.Unix(),
		PerformanceStats: models.PerformanceStats{
			TotalRequests:         a.totalRequests,
			TotalProcessingTime:   a.totalProcessing.Seconds(),
			AverageProcessingTime: avg,
		},
	}
}

// Cleanup releases the generator. Safe to call more than once.
func (a *CulturalAgent) Cleanup() error {
	a.mu.Lock()
	if a.status == models.AgentStatusInactive {
		a.mu.Unlock()
		return nil
	}
	a.status = models.AgentStatusUnloading
	a.mu.Unlock()

	a.logger.Info().
		Str("agent_id", a.id).
		Msg("Cleaning up agent")

	if err := a.generator.Cleanup(); err != nil {
		a.setStatus(models.AgentStatusError)
		return fmt.Errorf("agent %s cleanup failed: %w", a.id, err)
	}

	a.setStatus(models.AgentStatusInactive)
	return nil
}

// History returns up to limit handled messages, oldest first.
func (a *CulturalAgent) History(limit int) []*models.AgentMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Recent(limit)
}

// Persona returns the agent's cultural profile.
func (a *CulturalAgent) Persona() *models.Persona {
	return a.persona
}

// calculateConfidence scores a response by length: trivially short replies
// score 0.1, everything else scales up to a 0.9 ceiling.
func calculateConfidence(response string) float64 {
	trimmed := strings.TrimSpace(response)
	if len(trimmed) < 10 {
		return 0.1
	}
	return math.Min(0.9, float64(len(trimmed))/100.0)
}

func stringValue(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapValue(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// Ensure CulturalAgent implements the Agent interface
var _ interfaces.Agent = (*CulturalAgent)(nil)
