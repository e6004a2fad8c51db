// Package watchlists stores user watchlists.
package watchlists

import (
	"context"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// Store keeps watchlists in insertion order.
// Get, Update and Delete return domain.ErrNotFound for unknown ids.
type Store interface {
	List(ctx context.Context) ([]domain.Watchlist, error)
	Get(ctx context.Context, id string) (domain.Watchlist, error)
	Insert(ctx context.Context, w domain.Watchlist) error
	Update(ctx context.Context, w domain.Watchlist) error
	Delete(ctx context.Context, id string) error
	Close() error
}
