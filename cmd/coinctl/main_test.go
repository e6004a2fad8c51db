package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/services"
	"github.com/vadiminshakov/coinboard/internal/services/watchlist"
	"github.com/vadiminshakov/coinboard/internal/storage/watchlists"
	"github.com/vadiminshakov/coinboard/internal/web"
)

func startServer(t *testing.T) string {
	t.Helper()
	l := zap.NewNop()

	state, err := services.NewSeededBackend(context.Background(), l,
		services.BackendOptions{CatalogSize: 30, Seed: 2, Now: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		watchlist.NewManager(l, watchlists.NewMemoryStore(), nil), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(web.NewServer(":0", web.Deps{Backend: state.Backend}, l).Handler())
	t.Cleanup(srv.Close)

	return srv.URL
}

func TestRun_Commands(t *testing.T) {
	url := startServer(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"dashboard", []string{"dashboard"}, false},
		{"dashboard sorted", []string{"dashboard", "--sort", "price", "--filter", "gainers", "--heatmap", "count"}, false},
		{"bad filter", []string{"dashboard", "--filter", "sideways"}, true},
		{"watchlists", []string{"watchlists"}, false},
		{"show seeded", []string{"show", "watchlist-1"}, false},
		{"show missing", []string{"show", "watchlist-404"}, true},
		{"create", []string{"create", "My", "List"}, false},
		{"import", []string{"import", "watchlist-1", "eth sol"}, false},
		{"import nothing", []string{"import", "watchlist-1", "qqqq"}, true},
		{"note", []string{"note", "watchlist-1", "coin-2", "hold"}, false},
		{"settings", []string{"settings"}, false},
		{"disable price", []string{"stream", "price", "--enabled=false"}, false},
		{"interval on disabled", []string{"stream", "change", "--interval", "30s"}, true},
		{"unknown command", []string{"launch"}, true},
		{"missing args", []string{"rename", "watchlist-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(append([]string{"--server", url}, tt.args...))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
