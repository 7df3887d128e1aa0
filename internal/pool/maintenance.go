package pool

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Maintenance runs the pool's periodic health-check and reclamation sweep
// on a cron schedule. It is owned by the caller: started explicitly and
// stopped (awaiting the in-flight sweep) at shutdown.
type Maintenance struct {
	pool   *Pool
	cron   *cron.Cron
	logger arbor.ILogger
}

// NewMaintenance schedules the sweep. Spec accepts standard cron syntax
// plus the @every form, e.g. "@every 1m".
func NewMaintenance(pool *Pool, spec string, logger arbor.ILogger) (*Maintenance, error) {
	m := &Maintenance{
		pool:   pool,
		cron:   cron.New(),
		logger: logger,
	}

	if _, err := m.cron.AddFunc(spec, m.sweep); err != nil {
		return nil, fmt.Errorf("invalid pool maintenance schedule %q: %w", spec, err)
	}
	return m, nil
}

// Start begins the maintenance schedule.
func (m *Maintenance) Start() {
	m.cron.Start()
	m.logger.Info().Msg("Pool maintenance started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info().Msg("Pool maintenance stopped")
}

func (m *Maintenance) sweep() {
	m.pool.HealthCheck()
	m.pool.Reclaim()

	stats := m.pool.Stats()
	m.logger.Info().
		Int("active", stats.ActiveCount).
		Float64("memory_fraction", stats.MemoryFraction).
		Float64("cache_hit_rate", stats.CacheHitRate).
		Msg("Pool maintenance sweep")
}
