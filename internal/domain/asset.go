// Package domain defines core data structures used throughout the dashboard.
package domain

import "slices"

// Asset tracked tradable instrument. A fetch always returns a full replacement snapshot,
// records are never mutated by consumers.
type Asset struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Symbol     string   `json:"symbol"`
	Rank       int      `json:"rank"`
	Price      float64  `json:"price"`
	Change1h   float64  `json:"change1h"`
	Change12h  float64  `json:"change12h"`
	Change24h  float64  `json:"change24h"`
	Change7d   float64  `json:"change7d"`
	Volume24h  float64  `json:"volume24h"`
	MarketCap  float64  `json:"marketCap"`
	Categories []string `json:"categories"`
}

// HasCategory reports whether the asset carries the narrative tag.
func (a Asset) HasCategory(category string) bool {
	return slices.Contains(a.Categories, category)
}

// Clone returns a deep copy so the categories slice is not shared.
func (a Asset) Clone() Asset {
	a.Categories = slices.Clone(a.Categories)
	return a
}

// CloneAssets deep-copies a snapshot.
func CloneAssets(assets []Asset) []Asset {
	if assets == nil {
		return nil
	}

	out := make([]Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
	}

	return out
}
