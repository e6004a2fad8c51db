package analysis

import (
	"math"
	"slices"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/pkg/format"
)

// CategoryTrends aggregates every narrative over the full asset set and orders
// the result by descending trend score. Ties keep narrative order.
func CategoryTrends(assets []domain.Asset) []domain.CategoryTrend {
	trends := make([]domain.CategoryTrend, 0, len(domain.Narratives))

	for _, category := range domain.Narratives {
		tagged := FilterByCategory(assets, category)

		score := 0.0
		if len(tagged) > 0 {
			sum := 0.0
			for _, a := range tagged {
				sum += math.Abs(a.Change24h)
			}
			score = sum / float64(len(tagged))
		}

		top := SortAssets(tagged, domain.SortChange24h, domain.SortDesc)
		top = TopSlice(top, domain.TopCoinsPerCategory)

		trends = append(trends, domain.CategoryTrend{
			Category:   category,
			TrendScore: score,
			CoinCount:  len(tagged),
			TopCoins:   domain.CloneAssets(top),
		})
	}

	slices.SortStableFunc(trends, func(a, b domain.CategoryTrend) int {
		return compare(b.TrendScore, a.TrendScore)
	})

	return trends
}

// HeatTile presentation of one category trend.
type HeatTile struct {
	Category   string           `json:"category"`
	TrendScore float64          `json:"trendScore"`
	CoinCount  int              `json:"coinCount"`
	Level      domain.HeatLevel `json:"level"`
	Label      string           `json:"label"`
	TopSymbols []string         `json:"topSymbols"`
	// Overflow number of tagged assets beyond the top coins.
	Overflow int      `json:"overflow"`
	Selected bool     `json:"selected"`
	Momentum *float64 `json:"momentum,omitempty"`
}

// MomentumFunc reports the trend momentum of a category, if known.
type MomentumFunc func(category string) (float64, bool)

// BuildHeatmap converts trends into tiles. momentum may be nil.
func BuildHeatmap(trends []domain.CategoryTrend, mode domain.HeatmapMode, selected string, momentum MomentumFunc) []HeatTile {
	tiles := make([]HeatTile, 0, len(trends))

	for _, t := range trends {
		tile := HeatTile{
			Category:   t.Category,
			TrendScore: t.TrendScore,
			CoinCount:  t.CoinCount,
			Level:      domain.HeatLevelFor(t.TrendScore),
			Label:      TileLabel(t, mode),
			TopSymbols: make([]string, 0, len(t.TopCoins)),
			Selected:   selected != "" && selected == t.Category,
		}
		for _, c := range t.TopCoins {
			tile.TopSymbols = append(tile.TopSymbols, c.Symbol)
		}
		if t.CoinCount > domain.TopCoinsPerCategory {
			tile.Overflow = t.CoinCount - domain.TopCoinsPerCategory
		}
		if momentum != nil {
			if m, ok := momentum(t.Category); ok {
				tile.Momentum = &m
			}
		}

		tiles = append(tiles, tile)
	}

	return tiles
}

// TileLabel "N assets" in count mode, "+X.X%" otherwise.
func TileLabel(t domain.CategoryTrend, mode domain.HeatmapMode) string {
	if mode == domain.HeatmapCount {
		return format.Count(t.CoinCount) + " assets"
	}
	return format.TrendScore(t.TrendScore)
}

// ToggleCategory selects clicked, or clears the selection when clicked is already selected.
func ToggleCategory(selected, clicked string) string {
	if selected == clicked {
		return ""
	}
	return clicked
}
