package watchlists

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// MemoryStore process-local watchlist store.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]domain.Watchlist
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]domain.Watchlist)}
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Watchlist, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}

	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.byID[id]
	if !ok {
		return domain.Watchlist{}, errors.Wrapf(domain.ErrNotFound, "watchlist %s", id)
	}

	return w.Clone(), nil
}

func (s *MemoryStore) Insert(_ context.Context, w domain.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[w.ID]; ok {
		return errors.Errorf("watchlist %s already exists", w.ID)
	}

	s.byID[w.ID] = w.Clone()
	s.order = append(s.order, w.ID)

	return nil
}

func (s *MemoryStore) Update(_ context.Context, w domain.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[w.ID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "watchlist %s", w.ID)
	}
	s.byID[w.ID] = w.Clone()

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "watchlist %s", id)
	}

	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })

	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
