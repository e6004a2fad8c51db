package assets

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// categoryReassignShare fraction of generated assets whose narratives change per categories refresh.
const categoryReassignShare = 0.1

// Simulator produces simulated refreshes of a catalog, one data stream at a time.
// Every refresh publishes a full replacement snapshot.
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	catalog *Catalog
	l       *zap.Logger
}

// NewSimulator creates a simulator drifting the catalog with a seeded source.
func NewSimulator(l *zap.Logger, catalog *Catalog, seed uint64) *Simulator {
	return &Simulator{
		rng:     rand.New(rand.NewPCG(seed+1, seed^0xa5a5a5a5)),
		catalog: catalog,
		l:       l,
	}
}

// Refresh applies one simulated update of the stream's fields to every asset.
func (s *Simulator) Refresh(ctx context.Context, stream domain.StreamID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !stream.IsValid() {
		return errors.Wrapf(domain.ErrNotFound, "stream %q", stream)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Update(func(assets []domain.Asset) []domain.Asset {
		for i := range assets {
			s.drift(&assets[i], stream)
		}
		return assets
	})

	s.l.Debug("simulated stream refresh", zap.String("stream", stream.String()), zap.Int("assets", s.catalog.Len()))

	return nil
}

func (s *Simulator) drift(a *domain.Asset, stream domain.StreamID) {
	switch stream {
	case domain.StreamPrice:
		a.Price = nonNegative(a.Price * (1 + (s.rng.Float64()*2-1)*0.01))
	case domain.StreamChange:
		rerollChanges(s.rng, a)
	case domain.StreamVolume:
		a.Volume24h = nonNegative(a.Volume24h * (1 + (s.rng.Float64()*2-1)*0.05))
	case domain.StreamMarketCap:
		a.MarketCap = nonNegative(a.MarketCap * (1 + (s.rng.Float64()*2-1)*0.02))
	case domain.StreamCategories:
		if a.Rank > len(knownAssets) && s.rng.Float64() < categoryReassignShare {
			a.Categories = randomCategories(s.rng)
		}
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
