package app

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/services/market/analysis"
)

// activity currently holding the in-flight slot.
type activity int32

const (
	idle activity = iota
	mutating
	refreshing
)

// NoMatchesNotice message shown when an import query resolves to nothing.
const NoMatchesNotice = "No coins found for those names/tickers."

type state struct {
	view          domain.View
	assets        []domain.Asset
	watchlists    []domain.Watchlist
	configs       []domain.RefreshConfig
	loaded        bool
	loading       bool
	refreshing    bool
	actionLoading bool
	category      string
	heatmapMode   domain.HeatmapMode
	table         analysis.TableState
	notice        string
}

// Controller owns the dashboard session state. Mutating actions and data refreshes
// share one in-flight slot, so they never overlap. Results returned by the backend
// are adopted as-is; a failed action leaves the previous state in place.
type Controller struct {
	backend  Backend
	l        *zap.Logger
	history  *analysis.TrendHistory
	inFlight atomic.Int32

	mu sync.RWMutex
	st state
}

// NewController creates a controller showing the dashboard.
func NewController(backend Backend, logger *zap.Logger) *Controller {
	return &Controller{
		backend: backend,
		l:       logger,
		history: analysis.NewTrendHistory(analysis.DefaultHistorySize),
		st: state{
			view:        domain.ViewDashboard,
			heatmapMode: domain.HeatmapTrend,
			table:       analysis.DefaultTableState(),
		},
	}
}

// Load performs the initial blocking load of assets, watchlists and refresh configs.
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx, "load", func(st *state, on bool) { st.loading = on })
}

// Refresh re-fetches data while the previous snapshot stays visible.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx, "refresh", func(st *state, on bool) { st.refreshing = on })
}

func (c *Controller) fetch(ctx context.Context, action string, flag func(st *state, on bool)) error {
	if err := c.acquire(refreshing); err != nil {
		return err
	}
	defer c.release()

	c.update(func(st *state) { flag(st, true) })
	defer c.update(func(st *state) { flag(st, false) })

	var (
		assets     []domain.Asset
		watchlists []domain.Watchlist
		configs    []domain.RefreshConfig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assets, err = c.backend.ListAssets(gctx)
		return errors.Wrap(err, "list assets")
	})
	g.Go(func() error {
		var err error
		watchlists, err = c.backend.ListWatchlists(gctx)
		return errors.Wrap(err, "list watchlists")
	})
	g.Go(func() error {
		var err error
		configs, err = c.backend.ListRefreshConfigs(gctx)
		return errors.Wrap(err, "list refresh configs")
	})

	if err := g.Wait(); err != nil {
		return c.fail(ctx, action, "", err)
	}

	c.history.Record(analysis.CategoryTrends(assets))
	c.update(func(st *state) {
		st.assets = assets
		st.watchlists = watchlists
		st.configs = configs
		st.loaded = true
		st.notice = ""
		st.resetStaleView()
	})
	c.l.Debug("dashboard data fetched",
		zap.String("action", action),
		zap.Int("assets", len(assets)),
		zap.Int("watchlists", len(watchlists)))

	return nil
}

// Navigate switches the active view. Watchlist views must reference a loaded watchlist.
func (c *Controller) Navigate(view domain.View) error {
	if view == "" {
		return domain.Validationf("view is blank")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := view.WatchlistID(); ok && c.st.watchlistIndex(id) < 0 {
		return errors.Wrapf(domain.ErrNotFound, "watchlist %s", id)
	}
	c.st.view = view

	return nil
}

// SelectCategory toggles the category filter: clicking the selected category clears it.
// An empty category clears the filter too.
func (c *Controller) SelectCategory(category string) error {
	if category != "" && !slices.Contains(domain.Narratives, category) {
		return domain.Validationf("unknown category %q", category)
	}

	c.update(func(st *state) {
		st.category = analysis.ToggleCategory(st.category, category)
	})

	return nil
}

// SetHeatmapMode switches the tile label between trend score and asset count.
func (c *Controller) SetHeatmapMode(mode domain.HeatmapMode) error {
	if !mode.IsValid() {
		return domain.Validationf("unknown heatmap mode %q", mode)
	}

	c.update(func(st *state) { st.heatmapMode = mode })

	return nil
}

// TableUpdate partial change of the table controls. SortKey toggles like a header click.
type TableUpdate struct {
	Search  *string                `json:"search,omitempty"`
	Filter  *domain.MovementFilter `json:"filter,omitempty"`
	SortKey *domain.SortKey        `json:"sortKey,omitempty"`
}

// UpdateTable applies search, movement filter and sort toggles.
func (c *Controller) UpdateTable(u TableUpdate) error {
	if u.Filter != nil && !u.Filter.IsValid() {
		return domain.Validationf("unknown filter %q", *u.Filter)
	}
	if u.SortKey != nil && *u.SortKey == "" {
		return domain.Validationf("sort key is blank")
	}

	c.update(func(st *state) {
		if u.Search != nil {
			st.table.Search = *u.Search
		}
		if u.Filter != nil {
			st.table.Filter = *u.Filter
		}
		if u.SortKey != nil {
			st.table = st.table.ToggleSort(*u.SortKey)
		}
	})

	return nil
}

// CreateWatchlist creates a watchlist and navigates to it.
func (c *Controller) CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist name is blank")
	}

	var created domain.Watchlist
	err := c.mutate(ctx, "create watchlist", "", func(ctx context.Context) error {
		w, err := c.backend.CreateWatchlist(ctx, name)
		if err != nil {
			return err
		}
		created = w
		c.update(func(st *state) {
			st.upsertWatchlist(w)
			st.view = domain.View(w.ID)
		})
		return nil
	})

	return created, err
}

// RenameWatchlist renames a watchlist.
func (c *Controller) RenameWatchlist(ctx context.Context, id, name string) (domain.Watchlist, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist id is blank")
	}
	if strings.TrimSpace(name) == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist name is blank")
	}

	return c.mutateWatchlist(ctx, "rename watchlist", id, func(ctx context.Context) (domain.Watchlist, error) {
		return c.backend.RenameWatchlist(ctx, id, name)
	})
}

// DeleteWatchlist deletes a watchlist; a view showing it falls back to the dashboard.
func (c *Controller) DeleteWatchlist(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Validationf("watchlist id is blank")
	}

	return c.mutate(ctx, "delete watchlist", id, func(ctx context.Context) error {
		if err := c.backend.DeleteWatchlist(ctx, id); err != nil {
			return err
		}
		c.update(func(st *state) {
			st.watchlists = slices.DeleteFunc(st.watchlists, func(w domain.Watchlist) bool { return w.ID == id })
			if st.view == domain.View(id) {
				st.view = domain.ViewDashboard
			}
		})
		return nil
	})
}

// ImportCoins resolves free text to asset ids and merges them into the watchlist.
// Zero matches fail with domain.ErrNoMatches and leave the watchlist unchanged.
func (c *Controller) ImportCoins(ctx context.Context, id, query string) (domain.Watchlist, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist id is blank")
	}
	if strings.TrimSpace(query) == "" {
		return domain.Watchlist{}, domain.Validationf("import query is blank")
	}

	return c.mutateWatchlist(ctx, "import coins", id, func(ctx context.Context) (domain.Watchlist, error) {
		found, err := c.backend.FindAssetsByQuery(ctx, query)
		if err != nil {
			return domain.Watchlist{}, err
		}
		if len(found) == 0 {
			return domain.Watchlist{}, errors.Wrapf(domain.ErrNoMatches, "query %q", query)
		}
		return c.backend.UpdateWatchlistCoinIDs(ctx, id, found, domain.CoinIDsMerge)
	})
}

// SetNote stores the note for one asset of a watchlist. Empty text clears it.
func (c *Controller) SetNote(ctx context.Context, id, coinID, text string) (domain.Watchlist, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(coinID) == "" {
		return domain.Watchlist{}, domain.Validationf("watchlist id and coin id are required")
	}

	return c.mutateWatchlist(ctx, "set note", id, func(ctx context.Context) (domain.Watchlist, error) {
		return c.backend.SetWatchlistNote(ctx, id, coinID, text)
	})
}

// UpdateRefreshConfig toggles a stream or changes its interval and adopts the returned list.
// Interval changes are rejected for disabled streams unless the same patch enables them.
func (c *Controller) UpdateRefreshConfig(ctx context.Context, id domain.StreamID, patch domain.RefreshConfigPatch) ([]domain.RefreshConfig, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, domain.Validationf("refresh config id is blank")
	}
	if patch.IsEmpty() {
		return nil, domain.Validationf("refresh config patch is empty")
	}
	if patch.Interval != nil && (patch.Enabled == nil || !*patch.Enabled) {
		c.mu.RLock()
		idx := slices.IndexFunc(c.st.configs, func(cfg domain.RefreshConfig) bool { return cfg.ID == id })
		disabled := idx >= 0 && !c.st.configs[idx].Enabled
		c.mu.RUnlock()
		if disabled || (patch.Enabled != nil && !*patch.Enabled) {
			return nil, domain.Validationf("interval of disabled stream %s cannot change", id)
		}
	}

	configs, err := c.backend.UpdateRefreshConfig(ctx, id, patch)
	if err != nil {
		return nil, c.fail(ctx, "update refresh config", string(id), err)
	}

	c.update(func(st *state) {
		st.configs = configs
		st.notice = ""
	})

	return domain.CloneRefreshConfigs(configs), nil
}

func (c *Controller) mutateWatchlist(ctx context.Context, action, id string,
	call func(ctx context.Context) (domain.Watchlist, error)) (domain.Watchlist, error) {
	var updated domain.Watchlist
	err := c.mutate(ctx, action, id, func(ctx context.Context) error {
		w, err := call(ctx)
		if err != nil {
			return err
		}
		updated = w
		c.update(func(st *state) { st.upsertWatchlist(w) })
		return nil
	})

	return updated, err
}

// mutate runs fn while holding the in-flight slot.
func (c *Controller) mutate(ctx context.Context, action, id string, fn func(ctx context.Context) error) error {
	if err := c.acquire(mutating); err != nil {
		c.l.Debug("action rejected", zap.String("action", action), zap.Error(err))
		return err
	}
	defer c.release()

	c.update(func(st *state) { st.actionLoading = true })
	defer c.update(func(st *state) { st.actionLoading = false })

	if err := fn(ctx); err != nil {
		return c.fail(ctx, action, id, err)
	}

	c.update(func(st *state) { st.notice = "" })

	return nil
}

func (c *Controller) acquire(a activity) error {
	if c.inFlight.CompareAndSwap(int32(idle), int32(a)) {
		return nil
	}
	if activity(c.inFlight.Load()) == refreshing {
		return domain.ErrBusyRefreshing
	}
	return domain.ErrActionInFlight
}

func (c *Controller) release() {
	c.inFlight.Store(int32(idle))
}

// fail classifies err at the action boundary. NotFound re-syncs the watchlists.
func (c *Controller) fail(ctx context.Context, action, id string, err error) error {
	kind := domain.Classify(err)
	fields := []zap.Field{zap.String("action", action), zap.String("id", id), zap.Error(err)}

	switch kind {
	case domain.KindNotFound:
		c.l.Info("action target not found, re-syncing watchlists", fields...)
		c.resync(ctx)
		c.update(func(st *state) { st.notice = "The item no longer exists." })
	case domain.KindNoMatches:
		c.l.Info("import matched nothing", fields...)
		c.update(func(st *state) { st.notice = NoMatchesNotice })
	case domain.KindValidation, domain.KindBusy:
		c.l.Debug("action rejected", fields...)
		c.update(func(st *state) { st.notice = err.Error() })
	default:
		c.l.Error("action failed", fields...)
		c.update(func(st *state) { st.notice = action + " failed" })
	}

	return err
}

func (c *Controller) resync(ctx context.Context) {
	watchlists, err := c.backend.ListWatchlists(ctx)
	if err != nil {
		c.l.Error("failed to re-sync watchlists", zap.Error(err))
		return
	}

	c.update(func(st *state) {
		st.watchlists = watchlists
		st.resetStaleView()
	})
}

func (c *Controller) update(fn func(st *state)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.st)
}

func (st *state) watchlistIndex(id string) int {
	return slices.IndexFunc(st.watchlists, func(w domain.Watchlist) bool { return w.ID == id })
}

func (st *state) upsertWatchlist(w domain.Watchlist) {
	if idx := st.watchlistIndex(w.ID); idx >= 0 {
		st.watchlists = slices.Clone(st.watchlists)
		st.watchlists[idx] = w
		return
	}
	st.watchlists = append(slices.Clone(st.watchlists), w)
}

// resetStaleView falls back to the dashboard when the active watchlist is gone.
func (st *state) resetStaleView() {
	if id, ok := st.view.WatchlistID(); ok && st.watchlistIndex(id) < 0 {
		st.view = domain.ViewDashboard
	}
}
