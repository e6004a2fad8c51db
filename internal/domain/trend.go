package domain

// Narratives fixed set of narrative tags, in display order.
var Narratives = []string{
	"Meme", "AI", "DeFi", "L2", "Gaming", "RWA", "Infra", "Exchange", "Privacy", "L1", "Oracle", "SocialFi",
}

// TopCoinsPerCategory number of leading assets kept per category.
const TopCoinsPerCategory = 3

// CategoryTrend derived aggregate of one narrative tag. Never stored.
type CategoryTrend struct {
	Category   string  `json:"category"`
	TrendScore float64 `json:"trendScore"`
	CoinCount  int     `json:"coinCount"`
	TopCoins   []Asset `json:"topCoins"`
}

// HeatLevel presentation tier of a trend score.
type HeatLevel string

const (
	HeatLow     HeatLevel = "low"
	HeatMedium  HeatLevel = "medium"
	HeatHigh    HeatLevel = "high"
	HeatHighest HeatLevel = "highest"
)

// HeatLevelFor buckets a trend score: > 8 highest, > 5 high, > 3 medium, else low.
func HeatLevelFor(score float64) HeatLevel {
	switch {
	case score > 8:
		return HeatHighest
	case score > 5:
		return HeatHigh
	case score > 3:
		return HeatMedium
	default:
		return HeatLow
	}
}

// HeatmapMode selects the tile label of the heatmap.
type HeatmapMode string

const (
	HeatmapTrend HeatmapMode = "trend"
	HeatmapCount HeatmapMode = "count"
)

// IsValid checks if the HeatmapMode value is valid.
func (m HeatmapMode) IsValid() bool {
	return m == HeatmapTrend || m == HeatmapCount
}
