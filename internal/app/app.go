// Package app wires the debate engine together: agent pool, message bus,
// coordinator, persistence and reporting, with ordered startup and shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/agents"
	"github.com/ternarybob/concord/internal/bus"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/debate"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
	"github.com/ternarybob/concord/internal/pool"
	"github.com/ternarybob/concord/internal/services/llm"
	"github.com/ternarybob/concord/internal/services/report"
	badgerstorage "github.com/ternarybob/concord/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Pool        interfaces.AgentPool
	Bus         interfaces.MessageBus
	Coordinator *debate.Coordinator
	Storage     interfaces.DebateStorage
	Reports     *report.Service

	maintenance *pool.Maintenance
	running     bool
}

// New creates the application with all components wired but not started.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	personas, err := agents.LoadPersonas(cfg.Agents.PersonasDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}

	agentPool := pool.New(pool.FromCommonConfig(&cfg.Pool), logger)
	registerCulturalAgents(agentPool, cfg, personas, logger)

	maintenance, err := pool.NewMaintenance(agentPool, cfg.Pool.MaintenanceCron, logger)
	if err != nil {
		return nil, err
	}

	messageBus := bus.New(bus.FromCommonConfig(&cfg.Bus), logger)

	db, err := badgerstorage.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Pool:        agentPool,
		Bus:         messageBus,
		Coordinator: debate.NewCoordinator(agentPool, messageBus, logger),
		Storage:     badgerstorage.NewDebateStorage(db, logger),
		Reports:     report.NewService(logger),
		maintenance: maintenance,
	}, nil
}

// registerCulturalAgents installs a factory per cultural kind. Each factory
// builds a fresh generator so a failed initialization never leaves shared
// state behind.
func registerCulturalAgents(agentPool interfaces.AgentPool, cfg *common.Config, personas map[models.AgentType]*models.Persona, logger arbor.ILogger) {
	opts := agents.Options{
		MaxHistoryLength: cfg.Agents.MaxHistoryLength,
		GenerateTimeout:  common.MustDuration(cfg.Agents.GenerateTimeout, 90*time.Second),
	}

	for _, agentType := range models.CulturalAgentTypes() {
		agentType := agentType
		persona := personas[agentType]

		agentPool.Register(agentType, func(agentID string, t models.AgentType) (interfaces.Agent, error) {
			generator, err := llm.NewGenerator(&cfg.LLM, logger)
			if err != nil {
				return nil, err
			}
			return agents.New(agentID, agentType, persona, generator, opts, logger), nil
		})
	}
}

// Start brings up the bus and the pool maintenance schedule.
func (a *App) Start() error {
	if err := a.Bus.Start(); err != nil {
		return fmt.Errorf("failed to start message bus: %w", err)
	}
	a.maintenance.Start()
	a.running = true

	a.Logger.Info().Msg("Application started")
	return nil
}

// Stop shuts components down in reverse dependency order: maintenance
// first so no sweep races teardown, then agents, bus, and storage.
func (a *App) Stop() {
	a.running = false

	a.maintenance.Stop()
	a.Pool.ReleaseAll()

	if err := a.Bus.Stop(); err != nil {
		a.Logger.Warn().Err(err).Msg("Message bus stop failed")
	}
	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close failed")
	}

	a.Logger.Info().Msg("Application stopped")
}

// RunDebate executes one debate and persists its result. Aborted debates
// are persisted too; the ErrPhaseAborted error is passed through to the
// caller alongside the partial result.
func (a *App) RunDebate(ctx context.Context, scenario models.Scenario) (*models.DebateResult, error) {
	result, err := a.Coordinator.Run(ctx, scenario)
	if err != nil && !errors.Is(err, debate.ErrPhaseAborted) {
		return nil, err
	}

	if result != nil {
		if saveErr := a.Storage.SaveResult(result); saveErr != nil {
			a.Logger.Error().
				Err(saveErr).
				Str("conversation_id", result.ConversationID).
				Msg("Failed to persist debate result")
		}
	}
	return result, err
}

// SystemStats aggregates component stats for the status endpoint.
func (a *App) SystemStats() models.SystemStats {
	return models.SystemStats{
		Running:             a.running,
		ActiveConversations: a.Coordinator.ActiveConversations(),
		Pool:                a.Pool.Stats(),
		Bus:                 a.Bus.Stats(),
	}
}

// HealthCheck reports component health.
func (a *App) HealthCheck() bool {
	poolOK := a.Pool.HealthCheck()
	busOK := a.Bus.HealthCheck()
	return poolOK && busOK
}
