package watchlists

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("COINBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COINBOARD_TEST_REDIS_ADDR not set")
	}

	prefix := "coinboard-test:" + uuid.NewString() + ":"
	store, err := NewRedisStore(context.Background(), addr, "", 0, prefix)
	require.NoError(t, err)
	defer store.Close()

	runStoreSuite(t, store)
}

func runStoreSuite(t *testing.T, store Store) {
	ctx := context.Background()

	empty, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := domain.NewWatchlist("watchlist-a", "Alpha")
	b := domain.NewWatchlist("watchlist-b", "Beta")
	b.CoinIDs = []string{"coin-1"}
	b.NotesByCoinID["coin-1"] = "hold"

	require.NoError(t, store.Insert(ctx, a))
	require.NoError(t, store.Insert(ctx, b))
	assert.Error(t, store.Insert(ctx, a), "duplicate id")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "watchlist-a", list[0].ID)
	assert.Equal(t, "watchlist-b", list[1].ID)
	assert.Equal(t, "hold", list[1].Note("coin-1"))

	got, err := store.Get(ctx, "watchlist-b")
	require.NoError(t, err)
	assert.Equal(t, b, got)

	got.Name = "Beta 2"
	got.NotesByCoinID["coin-1"] = ""
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, "watchlist-b")
	require.NoError(t, err)
	assert.Equal(t, "Beta 2", updated.Name)
	note, ok := updated.NotesByCoinID["coin-1"]
	assert.True(t, ok, "empty notes are kept as empty strings")
	assert.Equal(t, "", note)

	require.NoError(t, store.Delete(ctx, "watchlist-a"))
	assert.ErrorIs(t, store.Delete(ctx, "watchlist-a"), domain.ErrNotFound)

	_, err = store.Get(ctx, "watchlist-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, domain.NewWatchlist("missing", "x")), domain.ErrNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "watchlist-b", list[0].ID)

	// returned values are copies
	list[0].CoinIDs[0] = "mutated"
	again, err := store.Get(ctx, "watchlist-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"coin-1"}, again.CoinIDs)
}
