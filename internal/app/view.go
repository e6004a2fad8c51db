package app

import (
	"fmt"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/services/market/analysis"
	"github.com/vadiminshakov/coinboard/pkg/format"
)

const (
	dashboardTitle    = "Top 200 Movers"
	settingsTitle     = "Application Settings"
	watchlistTitle    = "Watchlist"
	dashboardSubtitle = "Real-time trending assets across all categories"
	settingsSubtitle  = "Manage data synchronization and application preferences"
)

// Row one table line with display-formatted values.
type Row struct {
	Asset     domain.Asset `json:"asset"`
	Note      string       `json:"note,omitempty"`
	Price     string       `json:"price"`
	Change1h  string       `json:"change1h"`
	Change24h string       `json:"change24h"`
	Change7d  string       `json:"change7d"`
	Volume24h string       `json:"volume24h"`
	MarketCap string       `json:"marketCap"`
	// Editable notes can be edited, true inside a watchlist.
	Editable bool `json:"editable"`
}

// Snapshot immutable copy of everything needed to render the current page.
type Snapshot struct {
	View             domain.View            `json:"view"`
	Title            string                 `json:"title"`
	Subtitle         string                 `json:"subtitle"`
	Loading          bool                   `json:"loading"`
	Refreshing       bool                   `json:"refreshing"`
	ActionLoading    bool                   `json:"actionLoading"`
	CanRefresh       bool                   `json:"canRefresh"`
	Notice           string                 `json:"notice,omitempty"`
	SelectedCategory string                 `json:"selectedCategory,omitempty"`
	HeatmapMode      domain.HeatmapMode     `json:"heatmapMode"`
	Table            analysis.TableState    `json:"table"`
	Rows             []Row                  `json:"rows"`
	Heatmap          []analysis.HeatTile    `json:"heatmap,omitempty"`
	Watchlists       []domain.Watchlist     `json:"watchlists"`
	ActiveWatchlist  *domain.Watchlist      `json:"activeWatchlist,omitempty"`
	EmptyWatchlist   bool                   `json:"emptyWatchlist"`
	RefreshConfigs   []domain.RefreshConfig `json:"refreshConfigs,omitempty"`
}

// Snapshot derives the current page from controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	st := c.st
	st.assets = domain.CloneAssets(c.st.assets)
	st.watchlists = domain.CloneWatchlists(c.st.watchlists)
	st.configs = domain.CloneRefreshConfigs(c.st.configs)
	c.mu.RUnlock()

	s := Snapshot{
		View:             st.view,
		Loading:          st.loading,
		Refreshing:       st.refreshing,
		ActionLoading:    st.actionLoading,
		CanRefresh:       !st.view.IsSettings() && !st.refreshing && !st.actionLoading,
		Notice:           st.notice,
		SelectedCategory: st.category,
		HeatmapMode:      st.heatmapMode,
		Table:            st.table,
		Rows:             []Row{},
		Watchlists:       st.watchlists,
	}

	if id, ok := st.view.WatchlistID(); ok {
		if idx := st.watchlistIndex(id); idx >= 0 {
			w := st.watchlists[idx]
			s.ActiveWatchlist = &w
		}
	}

	s.Title, s.Subtitle = pageHeader(st.view, s.ActiveWatchlist)

	if st.view.IsSettings() {
		s.RefreshConfigs = st.configs
		return s
	}

	rows := analysis.BuildTable(st.assets, analysis.TableQuery{
		Watchlist: s.ActiveWatchlist,
		Category:  st.category,
		Table:     st.table,
	})
	for _, a := range rows {
		s.Rows = append(s.Rows, makeRow(a, s.ActiveWatchlist))
	}

	if st.view.IsDashboard() {
		s.Heatmap = analysis.BuildHeatmap(analysis.CategoryTrends(st.assets), st.heatmapMode, st.category, c.history.Momentum)
	}

	s.EmptyWatchlist = s.ActiveWatchlist != nil && len(s.ActiveWatchlist.CoinIDs) == 0 && !st.loading

	return s
}

func pageHeader(view domain.View, active *domain.Watchlist) (title, subtitle string) {
	switch {
	case view.IsSettings():
		return settingsTitle, settingsSubtitle
	case view.IsDashboard():
		return dashboardTitle, dashboardSubtitle
	}

	title, count := watchlistTitle, 0
	if active != nil {
		if active.Name != "" {
			title = active.Name
		}
		count = len(active.CoinIDs)
	}

	return title, fmt.Sprintf("%d assets tracked", count)
}

func makeRow(a domain.Asset, w *domain.Watchlist) Row {
	r := Row{
		Asset:     a,
		Price:     format.Currency(a.Price),
		Change1h:  format.Percent(a.Change1h),
		Change24h: format.Percent(a.Change24h),
		Change7d:  format.Percent(a.Change7d),
		Volume24h: format.LargeNumber(a.Volume24h),
		MarketCap: format.LargeNumber(a.MarketCap),
	}
	if w != nil {
		r.Note = w.Note(a.ID)
		r.Editable = true
	}

	return r
}
