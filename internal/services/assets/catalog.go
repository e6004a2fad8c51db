// Package assets holds the catalog of tradable assets and answers queries over it.
package assets

import (
	"context"
	"slices"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// Catalog in-memory asset repository. Snapshots are always kept in rank order,
// so the first N entries are the top N by market cap.
type Catalog struct {
	mu     sync.RWMutex
	assets []domain.Asset
	l      *zap.Logger
}

// NewCatalog creates a catalog seeded with the given assets.
func NewCatalog(l *zap.Logger, assets []domain.Asset) *Catalog {
	c := &Catalog{l: l}
	c.Replace(assets)
	return c
}

// ListAssets returns a copy of the current snapshot in rank order.
func (c *Catalog) ListAssets(_ context.Context) ([]domain.Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.CloneAssets(c.assets), nil
}

// Len returns the number of assets in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.assets)
}

// Replace swaps the whole snapshot. Input is copied and stably ordered by rank.
func (c *Catalog) Replace(assets []domain.Asset) {
	snapshot := domain.CloneAssets(assets)
	slices.SortStableFunc(snapshot, func(a, b domain.Asset) int {
		return a.Rank - b.Rank
	})

	c.mu.Lock()
	c.assets = snapshot
	c.mu.Unlock()
}

// Update replaces the snapshot with the result of fn applied to a private copy.
func (c *Catalog) Update(fn func([]domain.Asset) []domain.Asset) {
	c.mu.RLock()
	current := domain.CloneAssets(c.assets)
	c.mu.RUnlock()

	c.Replace(fn(current))
}

// FindByQuery resolves free text to asset ids. The text is split on whitespace and commas;
// each lowercased token must equal an asset symbol or full name exactly (case-insensitive).
// Ids are deduplicated, keeping the order in which tokens first matched. Token order is
// intended: an import appends coins in the order the user typed them, not by rank.
// A blank query is rejected; an empty result means nothing matched.
func (c *Catalog) FindByQuery(_ context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.Validationf("query is blank")
	}

	tokens := Tokenize(text)

	c.mu.RLock()
	defer c.mu.RUnlock()

	found := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		idx := slices.IndexFunc(c.assets, func(a domain.Asset) bool {
			return strings.ToLower(a.Symbol) == token || strings.ToLower(a.Name) == token
		})
		if idx < 0 {
			continue
		}

		id := c.assets[idx].ID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		found = append(found, id)
	}

	if c.l != nil {
		c.l.Debug("query resolved", zap.Int("tokens", len(tokens)), zap.Int("matches", len(found)))
	}

	return found, nil
}

// Tokenize splits text on whitespace and commas and lowercases every token.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.ToLower(strings.TrimSpace(f)); t != "" {
			tokens = append(tokens, t)
		}
	}

	return tokens
}
