package web

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/app"
	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/events"
	"github.com/vadiminshakov/coinboard/internal/services"
	"github.com/vadiminshakov/coinboard/internal/services/watchlist"
	"github.com/vadiminshakov/coinboard/internal/storage/journal"
	"github.com/vadiminshakov/coinboard/internal/storage/watchlists"
)

type testEnv struct {
	srv     *httptest.Server
	changes *events.Broadcaster[domain.ChangeEventRecord]
	ticks   *events.Broadcaster[domain.StreamTick]
	ctrl    *app.Controller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	l := zap.NewNop()

	wal, err := journal.NewWALStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = wal.Close() })

	changes := events.NewBroadcaster[domain.ChangeEventRecord](16)
	ticks := events.NewBroadcaster[domain.StreamTick](16)
	recorder := journal.NewRecorder(l, wal, changes)

	state, err := services.NewSeededBackend(context.Background(), l,
		services.BackendOptions{CatalogSize: 40, Seed: 3, Now: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		watchlist.NewManager(l, watchlists.NewMemoryStore(), recorder), recorder)
	require.NoError(t, err)

	ctrl := app.NewController(state.Backend, l)
	require.NoError(t, ctrl.Load(context.Background()))

	s := NewServer(":0", Deps{
		Backend:    state.Backend,
		Controller: ctrl,
		Journal:    recorder,
		Changes:    changes,
		Ticks:      ticks,
	}, l)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, changes: changes, ticks: ticks, ctrl: ctrl}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_AssetsAndSearch(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]domain.Asset](t, resp)
	assert.Len(t, list, 40)

	resp = env.do(t, http.MethodGet, "/api/assets/search?q=ETH,+sol+eth", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"coin-2", "coin-4"}, decode[[]string](t, resp))

	resp = env.do(t, http.MethodGet, "/api/assets/search?q=zzzz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{}, decode[[]string](t, resp))

	resp = env.do(t, http.MethodGet, "/api/assets/search?q=+", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.KindValidation, decode[ErrorBody](t, resp).Code)
}

func TestServer_WatchlistLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/watchlists", map[string]string{"name": "  Alts "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Watchlist](t, resp)
	assert.Equal(t, "Alts", created.Name)

	resp = env.do(t, http.MethodPut, "/api/watchlists/"+created.ID+"/coins",
		map[string]any{"ids": []string{"coin-3", "coin-1"}, "mode": "replace"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/api/watchlists/"+created.ID+"/coins",
		map[string]any{"ids": []string{"coin-1", "coin-5"}, "mode": "merge"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"coin-3", "coin-1", "coin-5"}, decode[domain.Watchlist](t, resp).CoinIDs)

	resp = env.do(t, http.MethodPut, "/api/watchlists/"+created.ID+"/notes/coin-5", map[string]string{"text": "watch"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "watch", decode[domain.Watchlist](t, resp).Note("coin-5"))

	resp = env.do(t, http.MethodPatch, "/api/watchlists/"+created.ID, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", decode[domain.Watchlist](t, resp).Name)

	resp = env.do(t, http.MethodDelete, "/api/watchlists/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/watchlists/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.KindNotFound, decode[ErrorBody](t, resp).Code)
}

func TestServer_ErrorStatuses(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"blank name", http.MethodPost, "/api/watchlists", map[string]string{"name": " "}, http.StatusBadRequest},
		{"rename unknown", http.MethodPatch, "/api/watchlists/nope", map[string]string{"name": "x"}, http.StatusNotFound},
		{"bad mode", http.MethodPut, "/api/watchlists/watchlist-1/coins", map[string]any{"ids": []string{}, "mode": "append"}, http.StatusBadRequest},
		{"unknown stream", http.MethodPatch, "/api/refresh-configs/nope", map[string]bool{"enabled": false}, http.StatusNotFound},
		{"bad interval", http.MethodPatch, "/api/refresh-configs/price", map[string]string{"interval": "7s"}, http.StatusBadRequest},
		{"import no matches", http.MethodPost, "/api/dashboard/watchlists/watchlist-1/import", map[string]string{"query": "zzzz"}, http.StatusUnprocessableEntity},
		{"navigate unknown", http.MethodPost, "/api/dashboard/navigate", map[string]string{"view": "watchlist-404"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServer_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.srv.Client().Post(env.srv.URL+"/api/watchlists", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RefreshConfigCascade(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPatch, "/api/refresh-configs/price", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range decode[[]domain.RefreshConfig](t, resp) {
		switch c.ID {
		case domain.StreamPrice, domain.StreamChange, domain.StreamVolume:
			assert.False(t, c.Enabled, c.ID)
		default:
			assert.True(t, c.Enabled, c.ID)
		}
	}
}

func TestServer_DashboardSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[app.Snapshot](t, resp)
	assert.Equal(t, domain.ViewDashboard, snap.View)
	assert.Equal(t, "Top 200 Movers", snap.Title)
	assert.Len(t, snap.Rows, 40)
	assert.NotEmpty(t, snap.Heatmap)

	resp = env.do(t, http.MethodPost, "/api/dashboard/watchlists", map[string]string{"name": "Session"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	require.NotNil(t, snap.ActiveWatchlist)
	assert.Equal(t, "Session", snap.Title)
	assert.True(t, snap.EmptyWatchlist)
	id := snap.ActiveWatchlist.ID

	resp = env.do(t, http.MethodPost, "/api/dashboard/watchlists/"+id+"/import", map[string]string{"query": "btc eth"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	assert.Equal(t, []string{"coin-1", "coin-2"}, snap.ActiveWatchlist.CoinIDs)
	assert.Equal(t, "2 assets tracked", snap.Subtitle)

	resp = env.do(t, http.MethodPost, "/api/dashboard/watchlists/"+id+"/notes/coin-2", map[string]string{"text": "eth note"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	for _, row := range snap.Rows {
		assert.True(t, row.Editable)
		if row.Asset.ID == "coin-2" {
			assert.Equal(t, "eth note", row.Note)
		}
	}

	resp = env.do(t, http.MethodDelete, "/api/dashboard/watchlists/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ViewDashboard, decode[app.Snapshot](t, resp).View)

	resp = env.do(t, http.MethodPost, "/api/dashboard/navigate", map[string]string{"view": "settings"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	assert.Len(t, snap.RefreshConfigs, len(domain.Streams))
	assert.False(t, snap.CanRefresh)

	resp = env.do(t, http.MethodPost, "/api/dashboard/refresh-configs/price", map[string]any{"interval": "5s"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "5s", decode[app.Snapshot](t, resp).RefreshConfigs[0].Interval)
}

func TestServer_DashboardTableAndCategory(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/dashboard/table", map[string]string{"sortKey": "price"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[app.Snapshot](t, resp)
	assert.Equal(t, domain.SortPrice, snap.Table.SortKey)
	for i := 1; i < len(snap.Rows); i++ {
		assert.GreaterOrEqual(t, snap.Rows[i-1].Asset.Price, snap.Rows[i].Asset.Price)
	}

	resp = env.do(t, http.MethodPost, "/api/dashboard/heatmap-mode", map[string]string{"mode": "count"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.HeatmapCount, decode[app.Snapshot](t, resp).HeatmapMode)

	resp = env.do(t, http.MethodPost, "/api/dashboard/category", map[string]string{"category": "not-a-category"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/dashboard/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[app.Snapshot](t, resp).Refreshing)
}

func TestServer_DashboardDisabled(t *testing.T) {
	s := NewServer(":0", Deps{}, zap.NewNop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/refresh/stream", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Gzip(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/assets", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	gz, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)

	var list []domain.Asset
	require.NoError(t, json.NewDecoder(gz).Decode(&list))
	assert.Len(t, list, 40)
}

type sseEvent struct {
	id    string
	event string
	data  string
}

func readEvent(t *testing.T, sc *bufio.Scanner) sseEvent {
	t.Helper()

	var ev sseEvent
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if ev.event != "" {
				return ev
			}
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			ev.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, sc.Err())
	t.Fatal("stream closed")

	return ev
}

func openStream(t *testing.T, env *testEnv, path, lastEventID string) *bufio.Scanner {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.srv.URL+path, nil)
	require.NoError(t, err)
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return bufio.NewScanner(resp.Body)
}

func TestServer_ChangeStream(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/watchlists", map[string]string{"name": "One"})
	env.do(t, http.MethodPost, "/api/watchlists", map[string]string{"name": "Two"})

	sc := openStream(t, env, "/api/events/stream", "")
	first := readEvent(t, sc)
	assert.Equal(t, "change", first.event)
	assert.Equal(t, "1", first.id)
	assert.Contains(t, first.data, `"type":"watchlist_created"`)
	assert.Equal(t, "2", readEvent(t, sc).id)

	env.do(t, http.MethodPatch, "/api/refresh-configs/marketCap", map[string]string{"interval": "1m"})
	live := readEvent(t, sc)
	assert.Equal(t, "3", live.id)
	assert.Contains(t, live.data, `"type":"refresh_configs_updated"`)
}

func TestServer_ChangeStreamResume(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/watchlists", map[string]string{"name": "One"})
	env.do(t, http.MethodPost, "/api/watchlists", map[string]string{"name": "Two"})

	sc := openStream(t, env, "/api/events/stream", "1")
	ev := readEvent(t, sc)
	assert.Equal(t, "2", ev.id)
	assert.Contains(t, ev.data, `"Two"`)
}

func TestServer_ChangeStreamNoData(t *testing.T) {
	env := newTestEnv(t)

	sc := openStream(t, env, "/api/events/stream", "")
	assert.Equal(t, "no_data", readEvent(t, sc).event)
}

func TestServer_RefreshStream(t *testing.T) {
	env := newTestEnv(t)

	sc := openStream(t, env, "/api/refresh/stream", "")
	require.Eventually(t, func() bool { return env.ticks.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	env.ticks.Publish(domain.StreamTick{Stream: domain.StreamPrice, At: at})

	ev := readEvent(t, sc)
	assert.Equal(t, "tick", ev.event)

	var tick domain.StreamTick
	require.NoError(t, json.Unmarshal([]byte(ev.data), &tick))
	assert.Equal(t, domain.StreamPrice, tick.Stream)
	assert.True(t, at.Equal(tick.At))
}

func TestParseLastEventID(t *testing.T) {
	tests := []struct {
		header, query string
		want          uint64
	}{
		{"", "", 0},
		{"12", "", 12},
		{"", "7", 7},
		{"3", "9", 3},
		{"abc", "", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLastEventID(tt.header, tt.query))
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(domain.KindNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.KindValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(domain.KindNoMatches))
	assert.Equal(t, http.StatusConflict, StatusFor(domain.KindBusy))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(domain.KindServiceFailure))
}
