package debate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/agents"
	"github.com/ternarybob/concord/internal/bus"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
	"github.com/ternarybob/concord/internal/pool"
)

// scriptedGenerator answers each stage with a fixed reply, keyed off the
// stage markers in the rendered prompt.
type scriptedGenerator struct {
	initial  string
	feedback string
	final    string

	failInitial bool
	failFinal   bool

	mu      sync.Mutex
	prompts []string
}

func (g *scriptedGenerator) Initialize(context.Context) error { return nil }

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, _ map[string]interface{}) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	switch {
	case strings.Contains(prompt, "Final answer:"):
		if g.failFinal {
			return "", errors.New("generation failed")
		}
		return g.final, nil
	case strings.Contains(prompt, "Feedback:"):
		return g.feedback, nil
	default:
		if g.failInitial {
			return "", errors.New("generation failed")
		}
		return g.initial, nil
	}
}

func (g *scriptedGenerator) Mode() interfaces.GeneratorMode { return interfaces.GeneratorModeOffline }
func (g *scriptedGenerator) Cleanup() error                 { return nil }

func (g *scriptedGenerator) feedbackPrompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, p := range g.prompts {
		if strings.Contains(p, "Feedback:") && !strings.Contains(p, "Final answer:") {
			out = append(out, p)
		}
	}
	return out
}

type debateFixture struct {
	pool        *pool.Pool
	bus         *bus.Bus
	coordinator *Coordinator
	generators  map[models.AgentType]*scriptedGenerator
}

// newFixture wires a real pool and bus around scripted generators. Scripts
// maps each kind to its generator; kinds without a script answer a bland
// yes everywhere.
func newFixture(t *testing.T, scripts map[models.AgentType]*scriptedGenerator) *debateFixture {
	t.Helper()
	logger := arbor.NewLogger()

	personas := agents.BuiltinPersonas()
	generators := make(map[models.AgentType]*scriptedGenerator)

	agentPool := pool.New(pool.Config{
		MaxActive:       len(models.CulturalAgentTypes()),
		IdleTimeout:     time.Minute,
		MemoryThreshold: 1.0,
		MemoryBudgetMB:  1 << 20,
		LoadTimeout:     5 * time.Second,
	}, logger)

	for _, agentType := range models.CulturalAgentTypes() {
		agentType := agentType
		gen, ok := scripts[agentType]
		if !ok {
			gen = &scriptedGenerator{
				initial:  "Yes, this is acceptable. The community would receive it well.",
				feedback: "I agree with the other participant's assessment of the situation.",
				final:    "Yes",
			}
		}
		generators[agentType] = gen

		agentPool.Register(agentType, func(agentID string, _ models.AgentType) (interfaces.Agent, error) {
			return agents.New(agentID, agentType, personas[agentType], gen, agents.Options{}, logger), nil
		})
	}

	messageBus := bus.New(bus.Config{}, logger)
	require.NoError(t, messageBus.Start())
	t.Cleanup(func() {
		agentPool.ReleaseAll()
		messageBus.Stop()
	})

	return &debateFixture{
		pool:        agentPool,
		bus:         messageBus,
		coordinator: NewCoordinator(agentPool, messageBus, logger),
		generators:  generators,
	}
}

func testScenario() models.Scenario {
	return models.Scenario{
		Country:     "Egypt",
		Story:       "A dinner guest finished eating and left immediately without staying to talk.",
		RuleOfThumb: "It is rude to leave right after a meal.",
	}
}

func TestDebateCompletesAllPhases(t *testing.T) {
	scripts := map[models.AgentType]*scriptedGenerator{
		models.AgentTypeChristian:   {initial: "Yes, leaving early is fine when the guest is busy.", feedback: "The other view is reasonable.", final: "Yes"},
		models.AgentTypeIslamic:     {initial: "No, hospitality requires staying to honor the host.", feedback: "The other view misses the duty owed to hosts.", final: "No"},
		models.AgentTypeBuddhist:    {initial: "Neither, intention matters more than the act.", feedback: "Both views have merit.", final: "Neither"},
		models.AgentTypeHindu:       {initial: "No, elders would see this as disrespect.", feedback: "The other view undervalues family judgment.", final: "No"},
		models.AgentTypeTraditional: {initial: "No, custom requires remaining with the household.", feedback: "Custom is clear here.", final: "No"},
	}
	f := newFixture(t, scripts)

	result, err := f.coordinator.Run(context.Background(), testScenario())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, models.PhaseCompleted, result.Phase)
	assert.Len(t, result.InitialResponses, 5)
	assert.Len(t, result.FeedbackResponses, 5)
	assert.Len(t, result.FinalResponses, 5)

	require.NotNil(t, result.Verdict)
	assert.Equal(t, models.AnswerNo, result.Verdict.Answer)
	assert.Equal(t, 3, result.Verdict.Votes[models.AnswerNo])
	assert.Equal(t, 1, result.Verdict.Votes[models.AnswerYes])
	assert.Equal(t, 1, result.Verdict.Votes[models.AnswerNeither])
	assert.Len(t, result.Verdict.ByAgent, 5)

	assert.False(t, result.StartedAt.IsZero())
	assert.False(t, result.CompletedAt.IsZero())
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	for _, phase := range []models.DebatePhase{models.PhaseInitialDecision, models.PhaseFeedback, models.PhaseFinalDecision} {
		assert.Contains(t, result.PhaseDurations, string(phase))
	}
}

func TestFeedbackPairingIsPositional(t *testing.T) {
	christianInitial := "Yes, individual schedules deserve respect here."
	islamicInitial := "No, the host's hospitality must be honored first."

	scripts := map[models.AgentType]*scriptedGenerator{
		models.AgentTypeChristian: {initial: christianInitial, feedback: "Noted.", final: "Yes"},
		models.AgentTypeIslamic:   {initial: islamicInitial, feedback: "Noted.", final: "No"},
	}
	f := newFixture(t, scripts)

	_, err := f.coordinator.Run(context.Background(), testScenario())
	require.NoError(t, err)

	// The first participant critiques the second; everyone else critiques
	// the first.
	christianFeedback := f.generators[models.AgentTypeChristian].feedbackPrompts()
	require.Len(t, christianFeedback, 1)
	assert.Contains(t, christianFeedback[0], islamicInitial)

	for _, other := range []models.AgentType{models.AgentTypeIslamic, models.AgentTypeBuddhist, models.AgentTypeHindu, models.AgentTypeTraditional} {
		prompts := f.generators[other].feedbackPrompts()
		require.Len(t, prompts, 1, "kind %s", other)
		assert.Contains(t, prompts[0], christianInitial, "kind %s", other)
	}
}

func TestParticipantDropoutSkipsLaterPhases(t *testing.T) {
	scripts := map[models.AgentType]*scriptedGenerator{
		models.AgentTypeHindu: {failInitial: true, feedback: "Noted.", final: "Yes"},
	}
	f := newFixture(t, scripts)

	result, err := f.coordinator.Run(context.Background(), testScenario())
	require.NoError(t, err)

	hinduKey := common.AgentInstanceID(models.AgentTypeHindu.String())
	assert.Len(t, result.InitialResponses, 4)
	assert.NotContains(t, result.InitialResponses, hinduKey)
	assert.NotContains(t, result.FeedbackResponses, hinduKey)
	assert.NotContains(t, result.FinalResponses, hinduKey)

	assert.Equal(t, models.PhaseCompleted, result.Phase)
	assert.Len(t, result.Verdict.ByAgent, 4)
}

func TestDebateAbortsWhenFinalPhaseLosesEveryone(t *testing.T) {
	scripts := make(map[models.AgentType]*scriptedGenerator)
	for _, agentType := range models.CulturalAgentTypes() {
		scripts[agentType] = &scriptedGenerator{
			initial:   "Yes, acceptable in this case.",
			feedback:  "Noted.",
			failFinal: true,
		}
	}
	f := newFixture(t, scripts)

	result, err := f.coordinator.Run(context.Background(), testScenario())
	require.ErrorIs(t, err, ErrPhaseAborted)
	require.NotNil(t, result)

	// The partial result keeps earlier phases and carries an explicit
	// neither verdict.
	assert.Equal(t, models.PhaseFailed, result.Phase)
	assert.Len(t, result.InitialResponses, 5)
	assert.Len(t, result.FeedbackResponses, 5)
	assert.Empty(t, result.FinalResponses)

	require.NotNil(t, result.Verdict)
	assert.Equal(t, models.AnswerNeither, result.Verdict.Answer)
	assert.Equal(t, 0.0, result.Verdict.Confidence)
}

func TestDebateEventsPublished(t *testing.T) {
	f := newFixture(t, nil)

	f.bus.Subscribe("watcher", []string{models.MessageTypeDebateEvent})

	result, err := f.coordinator.Run(context.Background(), testScenario())
	require.NoError(t, err)

	var phases []string
	for {
		msg, err := f.bus.Receive(context.Background(), "watcher", 50*time.Millisecond)
		require.NoError(t, err)
		if msg == nil {
			break
		}
		assert.Equal(t, result.ConversationID, msg.ConversationID)
		phases = append(phases, msg.Content["phase"].(string))
	}

	assert.Contains(t, phases, string(models.PhaseInitialDecision))
	assert.Contains(t, phases, string(models.PhaseCompleted))
}

func TestAggregateMajority(t *testing.T) {
	responses := map[string]*models.PhaseResponse{
		"a": {Parsed: &models.ParsedResponse{Answer: models.AnswerYes, Confidence: 0.8}},
		"b": {Parsed: &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.6}},
		"c": {Parsed: &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.4}},
	}

	verdict := aggregate(responses)
	assert.Equal(t, models.AnswerNo, verdict.Answer)
	assert.Equal(t, 2, verdict.Votes[models.AnswerNo])
	assert.InDelta(t, 0.6, verdict.Confidence, 0.001)
}

func TestAggregateTieBreaksCanonically(t *testing.T) {
	// Three-way tie resolves to yes, the first canonical token.
	threeWay := map[string]*models.PhaseResponse{
		"a": {Parsed: &models.ParsedResponse{Answer: models.AnswerYes, Confidence: 0.5}},
		"b": {Parsed: &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.5}},
		"c": {Parsed: &models.ParsedResponse{Answer: models.AnswerNeither, Confidence: 0.5}},
	}
	assert.Equal(t, models.AnswerYes, aggregate(threeWay).Answer)

	// A no/neither tie resolves to no.
	pair := map[string]*models.PhaseResponse{
		"a": {Parsed: &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.5}},
		"b": {Parsed: &models.ParsedResponse{Answer: models.AnswerNeither, Confidence: 0.5}},
	}
	assert.Equal(t, models.AnswerNo, aggregate(pair).Answer)
}

func TestAggregateEmptyResponses(t *testing.T) {
	verdict := aggregate(map[string]*models.PhaseResponse{})
	assert.Equal(t, models.AnswerNeither, verdict.Answer)
	assert.Equal(t, 0.0, verdict.Confidence)
	assert.Empty(t, verdict.ByAgent)
}
