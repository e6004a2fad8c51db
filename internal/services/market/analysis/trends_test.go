package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

func trendByCategory(trends []domain.CategoryTrend) map[string]domain.CategoryTrend {
	out := make(map[string]domain.CategoryTrend, len(trends))
	for _, t := range trends {
		out[t.Category] = t
	}
	return out
}

func TestCategoryTrends_Scenario(t *testing.T) {
	assets := []domain.Asset{
		{ID: "1", Symbol: "ONE", Change24h: 10, Categories: []string{"Meme"}},
		{ID: "2", Symbol: "TWO", Change24h: -4, Categories: []string{"Meme", "AI"}},
		{ID: "3", Symbol: "THREE", Change24h: 2, Categories: []string{"AI"}},
	}

	trends := CategoryTrends(assets)
	require.Len(t, trends, len(domain.Narratives))

	got := trendByCategory(trends)
	assert.InDelta(t, 7.0, got["Meme"].TrendScore, 1e-9)
	assert.InDelta(t, 3.0, got["AI"].TrendScore, 1e-9)
	assert.Equal(t, 2, got["Meme"].CoinCount)
	assert.Equal(t, "Meme", trends[0].Category)
	assert.Equal(t, "AI", trends[1].Category)

	assert.Equal(t, []string{"1", "2"}, ids(got["Meme"].TopCoins))
	assert.Equal(t, []string{"3", "2"}, ids(got["AI"].TopCoins))

	assert.Equal(t, domain.HeatHigh, domain.HeatLevelFor(got["Meme"].TrendScore))
	assert.Equal(t, domain.HeatLow, domain.HeatLevelFor(got["AI"].TrendScore))
}

func TestCategoryTrends_EmptyCategory(t *testing.T) {
	trends := CategoryTrends([]domain.Asset{{ID: "x", Change24h: 3, Categories: []string{"DeFi"}}})
	got := trendByCategory(trends)

	for _, category := range domain.Narratives {
		if category == "DeFi" {
			continue
		}
		assert.Equal(t, 0.0, got[category].TrendScore, category)
		assert.Empty(t, got[category].TopCoins, category)
		assert.Equal(t, 0, got[category].CoinCount, category)
	}

	// ties at zero keep narrative order behind the non-zero tag
	assert.Equal(t, "DeFi", trends[0].Category)
	assert.Equal(t, "Meme", trends[1].Category)
	assert.Empty(t, CategoryTrends(nil)[0].TopCoins)
}

func TestCategoryTrends_TopThree(t *testing.T) {
	assets := []domain.Asset{
		{ID: "a", Change24h: 1, Categories: []string{"Gaming"}},
		{ID: "b", Change24h: 9, Categories: []string{"Gaming"}},
		{ID: "c", Change24h: -8, Categories: []string{"Gaming"}},
		{ID: "d", Change24h: 4, Categories: []string{"Gaming"}},
		{ID: "e", Change24h: 4, Categories: []string{"Gaming"}},
	}

	gaming := trendByCategory(CategoryTrends(assets))["Gaming"]
	assert.Equal(t, []string{"b", "d", "e"}, ids(gaming.TopCoins))
	assert.InDelta(t, 26.0/5, gaming.TrendScore, 1e-9)
}

func TestBuildHeatmap(t *testing.T) {
	trends := []domain.CategoryTrend{
		{Category: "Meme", TrendScore: 8.01, CoinCount: 5, TopCoins: []domain.Asset{{Symbol: "PEPE"}, {Symbol: "DOGE"}, {Symbol: "WIF"}}},
		{Category: "AI", TrendScore: 3, CoinCount: 1, TopCoins: []domain.Asset{{Symbol: "FET"}}},
	}

	tiles := BuildHeatmap(trends, domain.HeatmapTrend, "AI", func(category string) (float64, bool) {
		return 1.5, category == "Meme"
	})
	require.Len(t, tiles, 2)

	assert.Equal(t, "+8.0%", tiles[0].Label)
	assert.Equal(t, domain.HeatHighest, tiles[0].Level)
	assert.Equal(t, 2, tiles[0].Overflow)
	assert.Equal(t, []string{"PEPE", "DOGE", "WIF"}, tiles[0].TopSymbols)
	assert.False(t, tiles[0].Selected)
	require.NotNil(t, tiles[0].Momentum)
	assert.Equal(t, 1.5, *tiles[0].Momentum)

	assert.Equal(t, domain.HeatLow, tiles[1].Level)
	assert.Equal(t, 0, tiles[1].Overflow)
	assert.True(t, tiles[1].Selected)
	assert.Nil(t, tiles[1].Momentum)

	counted := BuildHeatmap(trends, domain.HeatmapCount, "", nil)
	assert.Equal(t, "5 assets", counted[0].Label)
	assert.Equal(t, "1 assets", counted[1].Label)
}

func TestToggleCategory(t *testing.T) {
	assert.Equal(t, "Meme", ToggleCategory("", "Meme"))
	assert.Equal(t, "", ToggleCategory("Meme", "Meme"))
	assert.Equal(t, "AI", ToggleCategory("Meme", "AI"))
}

func TestTrendHistory(t *testing.T) {
	h := NewTrendHistory(6)

	for _, score := range []float64{2, 2, 2, 2} {
		h.Record([]domain.CategoryTrend{{Category: "Meme", TrendScore: score}})
	}
	_, ok := h.Momentum("Meme")
	assert.False(t, ok)

	h.Record([]domain.CategoryTrend{{Category: "Meme", TrendScore: 2}})
	m, ok := h.Momentum("Meme")
	require.True(t, ok)
	assert.InDelta(t, 0.0, m, 1e-9)

	for i := 0; i < 10; i++ {
		h.Record([]domain.CategoryTrend{{Category: "Meme", TrendScore: 9}})
	}
	assert.Equal(t, 6, h.Samples("Meme"))

	_, ok = h.Momentum("AI")
	assert.False(t, ok)
}
