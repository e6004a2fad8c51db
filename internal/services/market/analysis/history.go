package analysis

import (
	"sync"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/services/market/indicators"
)

// DefaultHistorySize samples kept per category.
const DefaultHistorySize = 32

// TrendHistory bounded per-category record of trend scores across snapshots.
type TrendHistory struct {
	mu     sync.Mutex
	size   int
	period int
	scores map[string][]float64
}

// NewTrendHistory creates a history keeping up to size samples per category.
func NewTrendHistory(size int) *TrendHistory {
	if size < indicators.DefaultMomentumPeriod {
		size = DefaultHistorySize
	}

	return &TrendHistory{
		size:   size,
		period: indicators.DefaultMomentumPeriod,
		scores: make(map[string][]float64),
	}
}

// Record appends one sample per trend, evicting the oldest beyond size.
func (h *TrendHistory) Record(trends []domain.CategoryTrend) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range trends {
		series := append(h.scores[t.Category], t.TrendScore)
		if len(series) > h.size {
			series = series[len(series)-h.size:]
		}
		h.scores[t.Category] = series
	}
}

// Momentum latest score minus its EMA; unknown until enough samples are recorded.
func (h *TrendHistory) Momentum(category string) (float64, bool) {
	h.mu.Lock()
	series := append([]float64(nil), h.scores[category]...)
	h.mu.Unlock()

	return indicators.Momentum(series, h.period)
}

// Samples number of scores recorded for the category.
func (h *TrendHistory) Samples(category string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.scores[category])
}
