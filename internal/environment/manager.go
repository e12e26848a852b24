package environment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dudecon/SpaceWheat-sub011/internal/content"
)

// SnapshotSink receives the per-tick observable record of every
// environment. Implementations must be safe for concurrent use.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// Manager owns the environment fleet and the tick loop that drives it.
type Manager struct {
	log      zerolog.Logger
	tickRate time.Duration
	tickDT   float64
	sink     SnapshotSink

	mu   sync.RWMutex
	envs map[string]*Environment
}

// NewManager builds an empty fleet. sink may be nil when snapshots are
// not persisted.
func NewManager(log zerolog.Logger, tickRate time.Duration, tickDT float64, sink SnapshotSink) *Manager {
	return &Manager{
		log:      log.With().Str("component", "env_manager").Logger(),
		tickRate: tickRate,
		tickDT:   tickDT,
		sink:     sink,
		envs:     make(map[string]*Environment),
	}
}

// Add creates an environment from cfg and registers it with the fleet.
func (m *Manager) Add(cfg Config, registry *content.Registry) (*Environment, error) {
	env, err := New(cfg, registry)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.envs[env.ID()] = env
	m.mu.Unlock()
	return env, nil
}

// Get looks an environment up by UUID.
func (m *Manager) Get(id string) (*Environment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	env, ok := m.envs[id]
	return env, ok
}

// List returns every environment, in no particular order.
func (m *Manager) List() []*Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Environment, 0, len(m.envs))
	for _, env := range m.envs {
		out = append(out, env)
	}
	return out
}

// Run drives the fleet until ctx is cancelled, ticking every environment
// once per tick interval and forwarding snapshots to the sink.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.tickRate)
	defer ticker.Stop()

	m.log.Info().Dur("tick_rate", m.tickRate).Float64("tick_dt", m.tickDT).
		Msg("tick loop started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("tick loop stopped")
			return
		case <-ticker.C:
			m.tickAll(ctx)
		}
	}
}

func (m *Manager) tickAll(ctx context.Context) {
	for _, env := range m.List() {
		snap := env.Tick(m.tickDT)
		if m.sink == nil {
			continue
		}
		if err := m.sink.SaveSnapshot(ctx, snap); err != nil {
			m.log.Warn().Err(err).Str("env", env.Name()).Msg("snapshot persist failed")
		}
	}
}
