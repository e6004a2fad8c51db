package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/services/assets"
	"github.com/vadiminshakov/coinboard/internal/services/refresh"
	"github.com/vadiminshakov/coinboard/internal/services/watchlist"
)

// Backend serves the dashboard collaborator calls in-process from one explicitly
// owned state store: the asset catalog, the watchlist manager and the refresh configs.
type Backend struct {
	catalog    *assets.Catalog
	watchlists *watchlist.Manager
	refresh    *refresh.Manager
	l          *zap.Logger
}

// NewBackend wires the three managers into one backend.
func NewBackend(l *zap.Logger, catalog *assets.Catalog, watchlists *watchlist.Manager, refresh *refresh.Manager) *Backend {
	return &Backend{
		catalog:    catalog,
		watchlists: watchlists,
		refresh:    refresh,
		l:          l,
	}
}

func (b *Backend) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return b.catalog.ListAssets(ctx)
}

func (b *Backend) FindAssetsByQuery(ctx context.Context, text string) ([]string, error) {
	return b.catalog.FindByQuery(ctx, text)
}

func (b *Backend) ListWatchlists(ctx context.Context) ([]domain.Watchlist, error) {
	return b.watchlists.List(ctx)
}

func (b *Backend) CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error) {
	return b.watchlists.Create(ctx, name)
}

func (b *Backend) RenameWatchlist(ctx context.Context, id, name string) (domain.Watchlist, error) {
	return b.watchlists.Rename(ctx, id, name)
}

func (b *Backend) DeleteWatchlist(ctx context.Context, id string) error {
	return b.watchlists.Delete(ctx, id)
}

func (b *Backend) UpdateWatchlistCoinIDs(ctx context.Context, id string, ids []string, mode domain.CoinIDsMode) (domain.Watchlist, error) {
	return b.watchlists.UpdateCoinIDs(ctx, id, ids, mode)
}

func (b *Backend) SetWatchlistNote(ctx context.Context, id, coinID, text string) (domain.Watchlist, error) {
	return b.watchlists.SetNote(ctx, id, coinID, text)
}

func (b *Backend) ListRefreshConfigs(ctx context.Context) ([]domain.RefreshConfig, error) {
	return b.refresh.List(ctx)
}

func (b *Backend) UpdateRefreshConfig(ctx context.Context, id domain.StreamID, patch domain.RefreshConfigPatch) ([]domain.RefreshConfig, error) {
	return b.refresh.Update(ctx, id, patch)
}

// BackendOptions construction parameters of NewSeededBackend.
type BackendOptions struct {
	CatalogSize int
	Seed        uint64
	Now         time.Time
}

// SeededState everything NewSeededBackend constructed, for callers that also run the scheduler.
type SeededState struct {
	Backend   *Backend
	Catalog   *assets.Catalog
	Simulator *assets.Simulator
	Refresh   *refresh.Manager
	Watchlist *watchlist.Manager
}

// NewSeededBackend builds a backend over a generated catalog, the default refresh configs
// and the given watchlist manager, seeding the initial watchlists into an empty store.
func NewSeededBackend(ctx context.Context, l *zap.Logger, opts BackendOptions,
	watchlists *watchlist.Manager, recorder refresh.ChangeRecorder) (*SeededState, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	catalog := assets.NewCatalog(l.With(zap.String("component", "assets")), assets.Generate(opts.CatalogSize, opts.Seed))
	sim := assets.NewSimulator(l.With(zap.String("component", "simulator")), catalog, opts.Seed)
	configs := refresh.NewManager(l.With(zap.String("component", "refresh")), domain.DefaultRefreshConfigs(opts.Now), recorder)

	if err := watchlists.Seed(ctx, assets.SeedWatchlists()); err != nil {
		return nil, err
	}

	return &SeededState{
		Backend:   NewBackend(l, catalog, watchlists, configs),
		Catalog:   catalog,
		Simulator: sim,
		Refresh:   configs,
		Watchlist: watchlists,
	}, nil
}
