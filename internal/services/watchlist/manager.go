// Package watchlist manages user watchlists and their per-asset notes.
package watchlist

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/storage/watchlists"
)

const idPrefix = "watchlist-"

// ChangeRecorder journals successful mutations.
type ChangeRecorder interface {
	Record(kind domain.ChangeType, targetID string, payload any) (domain.ChangeEventRecord, error)
}

// Manager CRUD over watchlists. Mutations are serialized so read-modify-write
// sequences against the store never interleave.
type Manager struct {
	mu       sync.Mutex
	store    watchlists.Store
	recorder ChangeRecorder
	l        *zap.Logger
}

// NewManager creates a manager over the store. recorder may be nil.
func NewManager(l *zap.Logger, store watchlists.Store, recorder ChangeRecorder) *Manager {
	return &Manager{store: store, recorder: recorder, l: l}
}

// Seed inserts the given watchlists when the store is empty.
func (m *Manager) Seed(ctx context.Context, seed []domain.Watchlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.store.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list watchlists")
	}
	if len(existing) > 0 {
		return nil
	}

	for _, w := range seed {
		if err := m.store.Insert(ctx, w.Clone()); err != nil {
			return errors.Wrapf(err, "seed watchlist %s", w.ID)
		}
	}

	m.l.Info("watchlists seeded", zap.Int("count", len(seed)))

	return nil
}

// List returns all watchlists in creation order.
func (m *Manager) List(ctx context.Context) ([]domain.Watchlist, error) {
	return m.store.List(ctx)
}

// Get returns one watchlist.
func (m *Manager) Get(ctx context.Context, id string) (domain.Watchlist, error) {
	return m.store.Get(ctx, id)
}

// Create adds an empty watchlist with a fresh id.
func (m *Manager) Create(ctx context.Context, name string) (domain.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist name is blank")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w := domain.NewWatchlist(idPrefix+uuid.NewString(), name)
	if err := m.store.Insert(ctx, w); err != nil {
		return domain.Watchlist{}, errors.Wrap(err, "insert watchlist")
	}

	m.record(domain.ChangeWatchlistCreated, w.ID, w)
	m.l.Info("watchlist created", zap.String("id", w.ID), zap.String("name", w.Name))

	return w, nil
}

// Rename changes the display name.
func (m *Manager) Rename(ctx context.Context, id, name string) (domain.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist name is blank")
	}

	return m.mutate(ctx, id, domain.ChangeWatchlistRenamed, func(w *domain.Watchlist) {
		w.Name = name
	})
}

// Delete removes the watchlist. Unknown ids fail with domain.ErrNotFound.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.record(domain.ChangeWatchlistDeleted, id, map[string]string{"id": id})
	m.l.Info("watchlist deleted", zap.String("id", id))

	return nil
}

// SetCoinIDs replaces the member set. Duplicate ids collapse, first occurrence wins.
func (m *Manager) SetCoinIDs(ctx context.Context, id string, coinIDs []string) (domain.Watchlist, error) {
	return m.mutate(ctx, id, domain.ChangeWatchlistCoins, func(w *domain.Watchlist) {
		w.CoinIDs = domain.UnionIDs(nil, coinIDs)
	})
}

// MergeCoinIDs unions ids into the member set, keeping existing order and appending new ids.
func (m *Manager) MergeCoinIDs(ctx context.Context, id string, coinIDs []string) (domain.Watchlist, error) {
	return m.mutate(ctx, id, domain.ChangeWatchlistCoins, func(w *domain.Watchlist) {
		w.CoinIDs = domain.UnionIDs(w.CoinIDs, coinIDs)
	})
}

// UpdateCoinIDs applies ids according to mode.
func (m *Manager) UpdateCoinIDs(ctx context.Context, id string, coinIDs []string, mode domain.CoinIDsMode) (domain.Watchlist, error) {
	switch mode {
	case domain.CoinIDsReplace, "":
		return m.SetCoinIDs(ctx, id, coinIDs)
	case domain.CoinIDsMerge:
		return m.MergeCoinIDs(ctx, id, coinIDs)
	default:
		return domain.Watchlist{}, domain.Validationf("unknown coin ids mode %q", mode)
	}
}

// SetNote upserts the note for one asset. Empty text is stored as an empty string.
func (m *Manager) SetNote(ctx context.Context, id, coinID, text string) (domain.Watchlist, error) {
	if strings.TrimSpace(coinID) == "" {
		return domain.Watchlist{}, domain.Validationf("coin id is blank")
	}

	return m.mutate(ctx, id, domain.ChangeWatchlistNote, func(w *domain.Watchlist) {
		w.NotesByCoinID[coinID] = text
	})
}

func (m *Manager) mutate(ctx context.Context, id string, kind domain.ChangeType, apply func(w *domain.Watchlist)) (domain.Watchlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.store.Get(ctx, id)
	if err != nil {
		return domain.Watchlist{}, err
	}

	w = w.Clone()
	apply(&w)

	if err := m.store.Update(ctx, w); err != nil {
		return domain.Watchlist{}, err
	}

	m.record(kind, w.ID, w)
	m.l.Debug("watchlist updated", zap.String("id", w.ID), zap.String("change", string(kind)))

	return w.Clone(), nil
}

// record failures do not undo the mutation, the journal is a change feed only.
func (m *Manager) record(kind domain.ChangeType, id string, payload any) {
	if m.recorder == nil {
		return
	}
	if _, err := m.recorder.Record(kind, id, payload); err != nil {
		m.l.Warn("failed to journal watchlist change", zap.String("id", id), zap.Error(err))
	}
}
