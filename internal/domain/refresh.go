package domain

import (
	"slices"
	"time"
)

// StreamID identifies a refreshable data stream.
type StreamID string

const (
	StreamPrice      StreamID = "price"
	StreamChange     StreamID = "change"
	StreamVolume     StreamID = "volume"
	StreamMarketCap  StreamID = "marketCap"
	StreamCategories StreamID = "categories"
)

// Streams lists all stream ids in display order.
var Streams = []StreamID{StreamPrice, StreamChange, StreamVolume, StreamMarketCap, StreamCategories}

// String returns the string representation.
func (s StreamID) String() string {
	return string(s)
}

// IsValid checks if the StreamID value is known.
func (s StreamID) IsValid() bool {
	return slices.Contains(Streams, s)
}

// RefreshConfig refresh settings of one data stream.
type RefreshConfig struct {
	ID               StreamID  `json:"id"`
	Name             string    `json:"name"`
	Source           string    `json:"source"`
	Enabled          bool      `json:"enabled"`
	Interval         string    `json:"interval"`
	Recommended      string    `json:"recommended"`
	AllowedIntervals []string  `json:"allowedIntervals"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Clone returns a deep copy.
func (c RefreshConfig) Clone() RefreshConfig {
	c.AllowedIntervals = slices.Clone(c.AllowedIntervals)
	return c
}

// AllowsInterval reports whether interval is one of the allowed presets.
func (c RefreshConfig) AllowsInterval(interval string) bool {
	return slices.Contains(c.AllowedIntervals, interval)
}

// IntervalDuration parses the configured interval ("10s", "5m", "12h").
func (c RefreshConfig) IntervalDuration() (time.Duration, error) {
	return time.ParseDuration(c.Interval)
}

// CloneRefreshConfigs deep-copies a list.
func CloneRefreshConfigs(configs []RefreshConfig) []RefreshConfig {
	out := make([]RefreshConfig, len(configs))
	for i, c := range configs {
		out[i] = c.Clone()
	}

	return out
}

// RefreshConfigPatch partial update, nil fields are left untouched.
type RefreshConfigPatch struct {
	Enabled  *bool   `json:"enabled,omitempty"`
	Interval *string `json:"interval,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p RefreshConfigPatch) IsEmpty() bool {
	return p.Enabled == nil && p.Interval == nil
}

// DefaultRefreshConfigs returns the seeded stream settings relative to now.
func DefaultRefreshConfigs(now time.Time) []RefreshConfig {
	return []RefreshConfig{
		{
			ID: StreamPrice, Name: "Price Data", Source: "Binance", Enabled: true,
			Interval: "10s", Recommended: "10s", AllowedIntervals: []string{"5s", "10s", "30s"},
			LastUpdated: now,
		},
		{
			ID: StreamChange, Name: "Percentage Change Data", Source: "Binance", Enabled: true,
			Interval: "60s", Recommended: "60s", AllowedIntervals: []string{"30s", "60s", "120s"},
			LastUpdated: now,
		},
		{
			ID: StreamVolume, Name: "Volume Data", Source: "Binance", Enabled: true,
			Interval: "60s", Recommended: "60s", AllowedIntervals: []string{"30s", "60s", "120s"},
			LastUpdated: now,
		},
		{
			ID: StreamMarketCap, Name: "Market Cap Data", Source: "CoinGecko", Enabled: true,
			Interval: "5m", Recommended: "5m", AllowedIntervals: []string{"1m", "3m", "5m", "10m"},
			LastUpdated: now.Add(-5 * time.Minute),
		},
		{
			ID: StreamCategories, Name: "Coin Category / Narrative Data", Source: "CoinGecko", Enabled: true,
			Interval: "12h", Recommended: "12h", AllowedIntervals: []string{"1h", "6h", "12h", "24h"},
			LastUpdated: now.Add(-time.Hour),
		},
	}
}

// StreamTick emitted when a stream finished a simulated refresh.
type StreamTick struct {
	Stream StreamID  `json:"stream"`
	At     time.Time `json:"at"`
}
