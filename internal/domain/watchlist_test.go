package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionIDs(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		added    []string
		expected []string
	}{
		{
			name:     "merge import collapses duplicates",
			existing: []string{"c1", "c2"},
			added:    []string{"c2", "c3"},
			expected: []string{"c1", "c2", "c3"},
		},
		{
			name:     "empty existing",
			existing: nil,
			added:    []string{"c3", "c3", "c1"},
			expected: []string{"c3", "c1"},
		},
		{
			name:     "nothing added",
			existing: []string{"c1"},
			added:    nil,
			expected: []string{"c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnionIDs(tt.existing, tt.added))
		})
	}
}

func TestWatchlist_Clone(t *testing.T) {
	w := Watchlist{ID: "w1", Name: "Top", CoinIDs: []string{"c1"}, NotesByCoinID: map[string]string{"c1": "buy"}}

	c := w.Clone()
	c.CoinIDs[0] = "changed"
	c.NotesByCoinID["c1"] = "changed"

	assert.Equal(t, "c1", w.CoinIDs[0])
	assert.Equal(t, "buy", w.Note("c1"))

	empty := Watchlist{ID: "w2"}.Clone()
	require.NotNil(t, empty.CoinIDs)
	require.NotNil(t, empty.NotesByCoinID)
}

func TestView_WatchlistID(t *testing.T) {
	id, ok := View("watchlist-1").WatchlistID()
	assert.True(t, ok)
	assert.Equal(t, "watchlist-1", id)

	_, ok = ViewDashboard.WatchlistID()
	assert.False(t, ok)
	_, ok = ViewSettings.WatchlistID()
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "wrapped not found", err: errors.Wrap(ErrNotFound, "watchlist w1"), expected: KindNotFound},
		{name: "validation", err: Validationf("name is blank"), expected: KindValidation},
		{name: "no matches", err: ErrNoMatches, expected: KindNoMatches},
		{name: "in flight", err: ErrActionInFlight, expected: KindBusy},
		{name: "refreshing", err: ErrBusyRefreshing, expected: KindBusy},
		{name: "anything else", err: errors.New("boom"), expected: KindServiceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}

	assert.Nil(t, KindServiceFailure.Sentinel())
	assert.Equal(t, ErrNotFound, KindNotFound.Sentinel())
}

func TestSortKey_NumericValue(t *testing.T) {
	a := Asset{Rank: 2, Price: 10, Change24h: -1.5, MarketCap: 99}

	v, ok := SortChange24h.NumericValue(a)
	assert.True(t, ok)
	assert.Equal(t, -1.5, v)

	v, ok = SortRank.NumericValue(a)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	assert.False(t, SortName.IsNumeric())
	assert.False(t, SortCategories.IsNumeric())
	assert.True(t, SortMarketCap.IsNumeric())
}

func TestMovementFilter_Keep(t *testing.T) {
	up := Asset{Change24h: 1}
	down := Asset{Change24h: -1}
	flat := Asset{Change24h: 0}

	assert.True(t, MovementGainers.Keep(up))
	assert.False(t, MovementGainers.Keep(flat))
	assert.True(t, MovementLosers.Keep(down))
	assert.False(t, MovementLosers.Keep(flat))
	assert.True(t, MovementAll.Keep(flat))
}
