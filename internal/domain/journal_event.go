package domain

import (
	"encoding/json"
	"time"
)

// ChangeType kind of mutation recorded in the change journal.
type ChangeType string

const (
	ChangeWatchlistCreated   ChangeType = "watchlist_created"
	ChangeWatchlistRenamed   ChangeType = "watchlist_renamed"
	ChangeWatchlistDeleted   ChangeType = "watchlist_deleted"
	ChangeWatchlistCoins     ChangeType = "watchlist_coins_updated"
	ChangeWatchlistNote      ChangeType = "watchlist_note_set"
	ChangeRefreshConfigsEdit ChangeType = "refresh_configs_updated"
)

// ChangeEvent one successful mutation. Payload holds the authoritative post-mutation value.
type ChangeEvent struct {
	ID       string          `json:"id"`
	Type     ChangeType      `json:"type"`
	TargetID string          `json:"targetId"`
	At       time.Time       `json:"at"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ChangeEventRecord bundles an event with its journal index.
type ChangeEventRecord struct {
	Index uint64
	Event ChangeEvent
}
