// Package analysis derives table views and category trend aggregates from asset snapshots.
// All functions are pure and never modify their inputs.
package analysis

import (
	"slices"
	"strings"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// TopSliceSize number of assets shown on the dashboard.
const TopSliceSize = 200

// TableState user-controlled table settings.
type TableState struct {
	Search  string                `json:"search"`
	Filter  domain.MovementFilter `json:"filter"`
	SortKey domain.SortKey        `json:"sortKey"`
	SortDir domain.SortDirection  `json:"sortDir"`
}

// DefaultTableState biggest 24h movers first.
func DefaultTableState() TableState {
	return TableState{
		Filter:  domain.MovementAll,
		SortKey: domain.SortChange24h,
		SortDir: domain.SortDesc,
	}
}

// ToggleSort flips the direction when key is already active, otherwise selects key descending.
func (s TableState) ToggleSort(key domain.SortKey) TableState {
	if s.SortKey == key {
		s.SortDir = s.SortDir.Flip()
		return s
	}

	s.SortKey = key
	s.SortDir = domain.SortDesc

	return s
}

// TableQuery inputs of the table pipeline. Watchlist and Category are optional.
type TableQuery struct {
	Watchlist *domain.Watchlist
	Category  string
	Table     TableState
}

// BuildTable runs scope selection, category, text and movement filters, then sorts.
func BuildTable(assets []domain.Asset, q TableQuery) []domain.Asset {
	rows := SelectScope(assets, q.Watchlist)
	rows = FilterByCategory(rows, q.Category)
	rows = FilterBySearch(rows, q.Table.Search)
	rows = FilterByMovement(rows, q.Table.Filter)

	return SortAssets(rows, q.Table.SortKey, q.Table.SortDir)
}

// SelectScope restricts to watchlist members in repository order, or takes the top slice.
// Member ids missing from assets are ignored.
func SelectScope(assets []domain.Asset, w *domain.Watchlist) []domain.Asset {
	if w == nil {
		return TopSlice(assets, TopSliceSize)
	}

	members := make(map[string]struct{}, len(w.CoinIDs))
	for _, id := range w.CoinIDs {
		members[id] = struct{}{}
	}

	out := make([]domain.Asset, 0, len(w.CoinIDs))
	for _, a := range assets {
		if _, ok := members[a.ID]; ok {
			out = append(out, a)
		}
	}

	return out
}

// TopSlice returns the first n assets in the given order, without re-sorting.
func TopSlice(assets []domain.Asset, n int) []domain.Asset {
	if n > len(assets) {
		n = len(assets)
	}
	if n < 0 {
		n = 0
	}

	return slices.Clone(assets[:n])
}

// FilterByCategory keeps assets tagged with category. Empty category keeps everything.
func FilterByCategory(assets []domain.Asset, category string) []domain.Asset {
	if category == "" {
		return assets
	}

	return filter(assets, func(a domain.Asset) bool { return a.HasCategory(category) })
}

// FilterBySearch keeps assets whose name or symbol contains text, case-insensitively.
func FilterBySearch(assets []domain.Asset, text string) []domain.Asset {
	if text == "" {
		return assets
	}

	needle := strings.ToLower(text)
	return filter(assets, func(a domain.Asset) bool {
		return strings.Contains(strings.ToLower(a.Name), needle) ||
			strings.Contains(strings.ToLower(a.Symbol), needle)
	})
}

// FilterByMovement applies the gainers/losers filter.
func FilterByMovement(assets []domain.Asset, f domain.MovementFilter) []domain.Asset {
	if f == "" || f == domain.MovementAll {
		return assets
	}

	return filter(assets, f.Keep)
}

// SortAssets stable-sorts a copy by a numeric field. Non-numeric keys keep the input order.
func SortAssets(assets []domain.Asset, key domain.SortKey, dir domain.SortDirection) []domain.Asset {
	out := slices.Clone(assets)
	if !key.IsNumeric() {
		return out
	}

	slices.SortStableFunc(out, func(a, b domain.Asset) int {
		av, _ := key.NumericValue(a)
		bv, _ := key.NumericValue(b)
		if dir == domain.SortAsc {
			return compare(av, bv)
		}
		return compare(bv, av)
	})

	return out
}

func compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func filter(assets []domain.Asset, keep func(domain.Asset) bool) []domain.Asset {
	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		if keep(a) {
			out = append(out, a)
		}
	}

	return out
}
