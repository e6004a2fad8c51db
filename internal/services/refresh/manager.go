// Package refresh holds per-stream refresh settings and drives simulated stream refreshes.
package refresh

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// dependents streams forced off when their upstream stream is disabled.
var dependents = map[domain.StreamID][]domain.StreamID{
	domain.StreamPrice: {domain.StreamChange, domain.StreamVolume},
}

// ChangeRecorder journals successful mutations.
type ChangeRecorder interface {
	Record(kind domain.ChangeType, targetID string, payload any) (domain.ChangeEventRecord, error)
}

// Manager owns the refresh configs in seed order.
type Manager struct {
	mu       sync.RWMutex
	configs  []domain.RefreshConfig
	recorder ChangeRecorder
	l        *zap.Logger
}

// NewManager creates a manager seeded with the configs. recorder may be nil.
func NewManager(l *zap.Logger, seed []domain.RefreshConfig, recorder ChangeRecorder) *Manager {
	return &Manager{
		configs:  domain.CloneRefreshConfigs(seed),
		recorder: recorder,
		l:        l,
	}
}

// List returns all configs in display order.
func (m *Manager) List(_ context.Context) ([]domain.RefreshConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.CloneRefreshConfigs(m.configs), nil
}

// Update applies the patch to one config, then disables dependents when the
// patch turns the upstream stream off. Enabling never re-enables dependents.
// The interval must be one of the target's allowed intervals.
func (m *Manager) Update(_ context.Context, id domain.StreamID, patch domain.RefreshConfigPatch) ([]domain.RefreshConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, errors.Wrapf(domain.ErrNotFound, "refresh config %q", id)
	}

	target := m.configs[idx].Clone()
	if patch.Interval != nil && !target.AllowsInterval(*patch.Interval) {
		return nil, domain.Validationf("interval %q is not allowed for %s", *patch.Interval, id)
	}

	if patch.Enabled != nil {
		target.Enabled = *patch.Enabled
	}
	if patch.Interval != nil {
		target.Interval = *patch.Interval
	}
	m.configs[idx] = target

	if patch.Enabled != nil && !*patch.Enabled {
		for _, dep := range dependents[id] {
			if i := m.indexOf(dep); i >= 0 {
				m.configs[i].Enabled = false
			}
		}
	}

	out := domain.CloneRefreshConfigs(m.configs)

	if m.recorder != nil {
		if _, err := m.recorder.Record(domain.ChangeRefreshConfigsEdit, string(id), out); err != nil {
			m.l.Warn("failed to journal refresh config change", zap.String("id", string(id)), zap.Error(err))
		}
	}
	m.l.Info("refresh config updated",
		zap.String("id", string(id)),
		zap.Bool("enabled", target.Enabled),
		zap.String("interval", target.Interval))

	return out, nil
}

// Due returns enabled streams whose interval elapsed since their last update.
func (m *Manager) Due(now time.Time) []domain.StreamID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []domain.StreamID
	for _, c := range m.configs {
		if !c.Enabled {
			continue
		}
		interval, err := c.IntervalDuration()
		if err != nil || interval <= 0 {
			m.l.Warn("invalid refresh interval", zap.String("id", string(c.ID)), zap.String("interval", c.Interval))
			continue
		}
		if !now.Before(c.LastUpdated.Add(interval)) {
			due = append(due, c.ID)
		}
	}

	return due
}

// Touch stamps lastUpdated of one stream.
func (m *Manager) Touch(id domain.StreamID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return errors.Wrapf(domain.ErrNotFound, "refresh config %q", id)
	}
	m.configs[idx].LastUpdated = at

	return nil
}

func (m *Manager) indexOf(id domain.StreamID) int {
	return slices.IndexFunc(m.configs, func(c domain.RefreshConfig) bool { return c.ID == id })
}
