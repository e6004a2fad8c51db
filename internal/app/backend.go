// Package app holds the dashboard application controller: loading, view selection
// and serialized dispatch of user actions to the backend.
package app

import (
	"context"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// Backend collaborator calls the controller depends on. Implemented in-process by
// services.Backend and over HTTP by clients.BackendClient.
type Backend interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	FindAssetsByQuery(ctx context.Context, text string) ([]string, error)
	ListWatchlists(ctx context.Context) ([]domain.Watchlist, error)
	CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error)
	RenameWatchlist(ctx context.Context, id, name string) (domain.Watchlist, error)
	DeleteWatchlist(ctx context.Context, id string) error
	UpdateWatchlistCoinIDs(ctx context.Context, id string, ids []string, mode domain.CoinIDsMode) (domain.Watchlist, error)
	SetWatchlistNote(ctx context.Context, id, coinID, text string) (domain.Watchlist, error)
	ListRefreshConfigs(ctx context.Context) ([]domain.RefreshConfig, error)
	UpdateRefreshConfig(ctx context.Context, id domain.StreamID, patch domain.RefreshConfigPatch) ([]domain.RefreshConfig, error)
}
