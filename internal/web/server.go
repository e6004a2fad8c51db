// Package web exposes the dashboard over HTTP/JSON with SSE change streams.
package web

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/coinboard/internal/app"
	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/internal/events"
)

type changeReader interface {
	EventsAfter(index uint64) ([]domain.ChangeEventRecord, error)
}

// Deps collaborators served by the API. Journal, Changes and Ticks are optional;
// their streams answer 503 when missing.
type Deps struct {
	Backend    app.Backend
	Controller *app.Controller
	Journal    changeReader
	Changes    *events.Broadcaster[domain.ChangeEventRecord]
	Ticks      *events.Broadcaster[domain.StreamTick]
}

// Server exposes the collaborator API, the dashboard session and SSE streams.
type Server struct {
	Addr string
	deps Deps
	l    *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, deps Deps, l *zap.Logger) *Server {
	return &Server{Addr: addr, deps: deps, l: l}
}

// Handler returns the routed API with gzip compression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("GET /api/assets/search", s.handleSearchAssets)
	mux.HandleFunc("GET /api/watchlists", s.handleListWatchlists)
	mux.HandleFunc("POST /api/watchlists", s.handleCreateWatchlist)
	mux.HandleFunc("PATCH /api/watchlists/{id}", s.handleRenameWatchlist)
	mux.HandleFunc("DELETE /api/watchlists/{id}", s.handleDeleteWatchlist)
	mux.HandleFunc("PUT /api/watchlists/{id}/coins", s.handleUpdateCoinIDs)
	mux.HandleFunc("PUT /api/watchlists/{id}/notes/{coinId}", s.handleSetNote)
	mux.HandleFunc("GET /api/refresh-configs", s.handleListRefreshConfigs)
	mux.HandleFunc("PATCH /api/refresh-configs/{id}", s.handleUpdateRefreshConfig)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/dashboard/navigate", s.handleNavigate)
	mux.HandleFunc("POST /api/dashboard/category", s.handleCategory)
	mux.HandleFunc("POST /api/dashboard/heatmap-mode", s.handleHeatmapMode)
	mux.HandleFunc("POST /api/dashboard/table", s.handleTable)
	mux.HandleFunc("POST /api/dashboard/refresh", s.handleDashboardRefresh)
	mux.HandleFunc("POST /api/dashboard/watchlists", s.handleDashboardCreate)
	mux.HandleFunc("POST /api/dashboard/watchlists/{id}/rename", s.handleDashboardRename)
	mux.HandleFunc("DELETE /api/dashboard/watchlists/{id}", s.handleDashboardDelete)
	mux.HandleFunc("POST /api/dashboard/watchlists/{id}/import", s.handleDashboardImport)
	mux.HandleFunc("POST /api/dashboard/watchlists/{id}/notes/{coinId}", s.handleDashboardNote)
	mux.HandleFunc("POST /api/dashboard/refresh-configs/{id}", s.handleDashboardRefreshConfig)

	mux.HandleFunc("GET /api/events/stream", s.handleChangeStream)
	mux.HandleFunc("GET /api/refresh/stream", s.handleRefreshStream)

	return gzipHandler(mux)
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.l.Info("HTTP API listening", zap.String("addr", s.Addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via ACME.
// It also starts an HTTP server on port 80 to handle ACME HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Warn("http (acme) server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Warn("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("http (acme) server error", zap.Error(err))
		}
	}()

	s.l.Info("HTTPS API listening", zap.String("addr", s.Addr), zap.Strings("domains", domains))

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
