package domain

import (
	"maps"
	"slices"
)

// Watchlist user-curated named set of asset references with per-asset notes.
// CoinIDs may reference assets missing from the current catalog.
type Watchlist struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	CoinIDs       []string          `json:"coinIds"`
	NotesByCoinID map[string]string `json:"notesByCoinId"`
}

// NewWatchlist creates an empty watchlist.
func NewWatchlist(id, name string) Watchlist {
	return Watchlist{
		ID:            id,
		Name:          name,
		CoinIDs:       []string{},
		NotesByCoinID: map[string]string{},
	}
}

// Contains reports whether the coin id is a member.
func (w Watchlist) Contains(coinID string) bool {
	return slices.Contains(w.CoinIDs, coinID)
}

// Note returns the note for the coin. Missing and empty notes both yield "".
func (w Watchlist) Note(coinID string) string {
	return w.NotesByCoinID[coinID]
}

// Clone returns a deep copy.
func (w Watchlist) Clone() Watchlist {
	w.CoinIDs = slices.Clone(w.CoinIDs)
	if w.CoinIDs == nil {
		w.CoinIDs = []string{}
	}

	w.NotesByCoinID = maps.Clone(w.NotesByCoinID)
	if w.NotesByCoinID == nil {
		w.NotesByCoinID = map[string]string{}
	}

	return w
}

// CloneWatchlists deep-copies a collection.
func CloneWatchlists(lists []Watchlist) []Watchlist {
	out := make([]Watchlist, len(lists))
	for i, w := range lists {
		out[i] = w.Clone()
	}

	return out
}

// UnionIDs appends ids not yet present, keeping insertion order and collapsing duplicates
// on both sides.
func UnionIDs(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))

	for _, list := range [][]string{existing, added} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	return out
}

// CoinIDsMode selects how coin ids are applied to a watchlist.
type CoinIDsMode string

const (
	// CoinIDsReplace replaces the whole set.
	CoinIDsReplace CoinIDsMode = "replace"
	// CoinIDsMerge unions the new ids into the existing set.
	CoinIDsMerge CoinIDsMode = "merge"
)

// IsValid checks if the CoinIDsMode value is valid.
func (m CoinIDsMode) IsValid() bool {
	return m == CoinIDsReplace || m == CoinIDsMerge
}
