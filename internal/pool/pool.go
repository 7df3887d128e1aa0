// Package pool provides the bounded agent cache. Agents are expensive to
// initialize and memory-heavy, so the pool admits at most MaxActive live
// instances, evicts by strict LRU, and serializes initialization through a
// single-flight admission lock.
package pool

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
)

var (
	// ErrNotRegistered is returned when Acquire targets an unknown kind
	ErrNotRegistered = errors.New("agent type not registered")

	// ErrInitFailed is returned when construction or initialization fails;
	// the failed instance is discarded, never cached.
	ErrInitFailed = errors.New("agent initialization failed")
)

// Config bounds the pool and its reclamation behavior.
type Config struct {
	MaxActive       int
	IdleTimeout     time.Duration
	MemoryThreshold float64 // heap fraction above which idle agents are reclaimed pre-admission
	MemoryBudgetMB  int     // denominator for the heap fraction
	LoadTimeout     time.Duration
}

// FromCommonConfig maps the application pool settings onto pool bounds.
func FromCommonConfig(cfg *common.PoolConfig) Config {
	return Config{
		MaxActive:       cfg.MaxActiveAgents,
		IdleTimeout:     common.MustDuration(cfg.IdleTimeout, 5*time.Minute),
		MemoryThreshold: cfg.MemoryThreshold,
		MemoryBudgetMB:  cfg.MemoryBudgetMB,
		LoadTimeout:     common.MustDuration(cfg.LoadTimeout, 2*time.Minute),
	}
}

type entry struct {
	key   string
	agent interfaces.Agent
}

// Pool is the bounded LRU cache of live agents.
//
// Two locks with distinct roles: mu guards cache bookkeeping (insert, evict,
// promote) and is held only briefly; loadMu is the single-flight admission
// lock held across one agent's full construction and initialization, so at
// most one heavy load is in flight system-wide while lookups for other kinds
// proceed.
type Pool struct {
	config Config
	logger arbor.ILogger

	mu        chanMutex
	order     *list.List               // front = least recently used
	entries   map[string]*list.Element // cache key -> element holding *entry
	factories map[models.AgentType]interfaces.AgentFactory

	totalRequests int64
	cacheHits     int64
	loadOps       int64
	unloadOps     int64

	loadMu chanMutex
}

// chanMutex is a channel-backed mutex so lock acquisition can honor
// context cancellation at the pool's suspension points.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	m := make(chanMutex, 1)
	m <- struct{}{}
	return m
}

func (m chanMutex) Lock() { <-m }

func (m chanMutex) LockCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m chanMutex) Unlock() { m <- struct{}{} }

// New creates an agent pool with the given bounds.
func New(config Config, logger arbor.ILogger) *Pool {
	if config.MaxActive <= 0 {
		config.MaxActive = 3
	}
	if config.MemoryBudgetMB <= 0 {
		config.MemoryBudgetMB = 4096
	}
	return &Pool{
		config:    config,
		logger:    logger,
		mu:        newChanMutex(),
		loadMu:    newChanMutex(),
		order:     list.New(),
		entries:   make(map[string]*list.Element),
		factories: make(map[models.AgentType]interfaces.AgentFactory),
	}
}

// Register associates a kind with its construction recipe.
// Re-registration overwrites.
func (p *Pool) Register(agentType models.AgentType, factory interfaces.AgentFactory) {
	p.mu.Lock()
	p.factories[agentType] = factory
	p.mu.Unlock()

	p.logger.Info().
		Str("agent_type", agentType.String()).
		Msg("Agent type registered")
}

// Acquire returns a live agent for the kind. Cache hits promote to
// most-recently-used and return immediately. Misses evict the LRU entry when
// at capacity, reclaim idle agents under memory pressure, then construct and
// initialize under the single-flight lock. A failed initialization leaves
// the pool as if Acquire was never attempted.
func (p *Pool) Acquire(ctx context.Context, agentType models.AgentType) (interfaces.Agent, error) {
	key := common.AgentInstanceID(agentType.String())

	if err := p.mu.LockCtx(ctx); err != nil {
		return nil, err
	}
	p.totalRequests++

	if el, ok := p.entries[key]; ok {
		p.order.MoveToBack(el)
		p.cacheHits++
		agent := el.Value.(*entry).agent
		p.mu.Unlock()

		p.logger.Debug().
			Str("agent_id", key).
			Msg("Agent served from cache")
		return agent, nil
	}

	factory, registered := p.factories[agentType]
	p.mu.Unlock()

	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, agentType)
	}

	// Single-flight admission: one heavy load at a time, system-wide.
	if err := p.loadMu.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer p.loadMu.Unlock()

	// A concurrent acquire may have admitted this kind while we waited.
	p.mu.Lock()
	if el, ok := p.entries[key]; ok {
		p.order.MoveToBack(el)
		p.cacheHits++
		agent := el.Value.(*entry).agent
		p.mu.Unlock()
		return agent, nil
	}

	var victim *entry
	if p.order.Len() >= p.config.MaxActive {
		victim = p.removeLRULocked()
	}
	p.mu.Unlock()

	if victim != nil {
		p.logger.Info().
			Str("agent_id", victim.key).
			Msg("Evicting LRU agent")
		p.teardown(victim)
	}

	if p.memoryFraction() > p.config.MemoryThreshold {
		p.logger.Info().
			Float64("memory_fraction", p.memoryFraction()).
			Msg("Memory pressure before admission, reclaiming idle agents")
		p.Reclaim()
	}

	return p.load(ctx, key, agentType, factory)
}

// load constructs and initializes a new agent. Caller holds loadMu.
func (p *Pool) load(ctx context.Context, key string, agentType models.AgentType, factory interfaces.AgentFactory) (interfaces.Agent, error) {
	p.logger.Info().
		Str("agent_id", key).
		Str("agent_type", agentType.String()).
		Msg("Loading agent")

	agent, err := factory(key, agentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInitFailed, agentType, err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, p.config.LoadTimeout)
	defer cancel()

	if err := agent.Initialize(loadCtx); err != nil {
		// Discard the half-built instance; the cache never saw it.
		if cleanupErr := agent.Cleanup(); cleanupErr != nil {
			p.logger.Warn().
				Err(cleanupErr).
				Str("agent_id", key).
				Msg("Cleanup after failed initialization also failed")
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInitFailed, agentType, err)
	}

	p.mu.Lock()
	p.entries[key] = p.order.PushBack(&entry{key: key, agent: agent})
	p.loadOps++
	p.mu.Unlock()

	p.logger.Info().
		Str("agent_id", key).
		Msg("Agent loaded")
	return agent, nil
}

// removeLRULocked unlinks the least-recently-used entry. Caller holds mu.
func (p *Pool) removeLRULocked() *entry {
	front := p.order.Front()
	if front == nil {
		return nil
	}
	e := front.Value.(*entry)
	p.order.Remove(front)
	delete(p.entries, e.key)
	return e
}

// teardown releases one evicted agent's resources.
func (p *Pool) teardown(e *entry) {
	p.logger.Info().
		Str("agent_id", e.key).
		Msg("Unloading agent")

	if err := e.agent.Cleanup(); err != nil {
		p.logger.Error().
			Err(err).
			Str("agent_id", e.key).
			Msg("Agent cleanup failed")
	}

	p.mu.Lock()
	p.unloadOps++
	p.mu.Unlock()
}

// Reclaim evicts every cached agent idle past the configured threshold.
// Returns the number of agents reclaimed.
func (p *Pool) Reclaim() int {
	idleSeconds := p.config.IdleTimeout.Seconds()

	p.mu.Lock()
	var victims []*entry
	for el := p.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if e.agent.IsIdle(idleSeconds) {
			p.order.Remove(el)
			delete(p.entries, e.key)
			victims = append(victims, e)
		}
		el = next
	}
	p.mu.Unlock()

	for _, e := range victims {
		p.teardown(e)
	}

	if len(victims) > 0 {
		p.logger.Info().
			Int("reclaimed", len(victims)).
			Msg("Idle agents reclaimed")
	}
	return len(victims)
}

// ReleaseAll tears down every cached agent and clears the cache. Used at
// shutdown; per-agent teardown is idempotent, so overlap with a concurrent
// eviction is safe.
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	var victims []*entry
	for el := p.order.Front(); el != nil; el = el.Next() {
		victims = append(victims, el.Value.(*entry))
	}
	p.order.Init()
	p.entries = make(map[string]*list.Element)
	p.mu.Unlock()

	for _, e := range victims {
		p.teardown(e)
	}

	p.logger.Info().
		Int("released", len(victims)).
		Msg("All agents released")
}

// HealthCheck evicts agents observed in Error status and reclaims idle
// agents under heavy memory pressure. Returns false only on an internal
// pool fault, not for worker-level errors.
func (p *Pool) HealthCheck() bool {
	p.mu.Lock()
	var faulted []*entry
	for el := p.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if e.agent.Status() == models.AgentStatusError {
			p.order.Remove(el)
			delete(p.entries, e.key)
			faulted = append(faulted, e)
		}
		el = next
	}
	p.mu.Unlock()

	for _, e := range faulted {
		p.logger.Warn().
			Str("agent_id", e.key).
			Msg("Evicting agent in error status")
		p.teardown(e)
	}

	if frac := p.memoryFraction(); frac > 0.9 {
		p.logger.Warn().
			Float64("memory_fraction", frac).
			Msg("Memory usage critical, reclaiming idle agents")
		p.Reclaim()
	}

	return true
}

// Stats returns the pool's counters.
func (p *Pool) Stats() models.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	loading := 0
	for el := p.order.Front(); el != nil; el = el.Next() {
		if el.Value.(*entry).agent.Status() == models.AgentStatusLoading {
			loading++
		}
	}

	hitRate := 0.0
	if p.totalRequests > 0 {
		hitRate = float64(p.cacheHits) / float64(p.totalRequests)
	}

	return models.PoolStats{
		RegisteredCount:  len(p.factories),
		ActiveCount:      p.order.Len(),
		LoadingCount:     loading,
		MemoryFraction:   p.memoryFraction(),
		CacheHitRate:     hitRate,
		TotalRequests:    p.totalRequests,
		LoadOperations:   p.loadOps,
		UnloadOperations: p.unloadOps,
	}
}

// AgentList snapshots the cached agents in LRU order (least recent first).
func (p *Pool) AgentList() []models.AgentInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	infos := make([]models.AgentInfo, 0, p.order.Len())
	for el := p.order.Front(); el != nil; el = el.Next() {
		infos = append(infos, el.Value.(*entry).agent.Info())
	}
	return infos
}

// memoryFraction reports current heap allocation against the configured
// budget, the process-local analogue of the accelerator memory fraction
// the pool was designed around.
func (p *Pool) memoryFraction() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	budget := float64(p.config.MemoryBudgetMB) * 1024 * 1024
	frac := float64(ms.HeapAlloc) / budget
	if frac > 1 {
		frac = 1
	}
	return frac
}

// Ensure Pool implements the AgentPool interface
var _ interfaces.AgentPool = (*Pool)(nil)
