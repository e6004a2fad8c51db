package web

import (
	"context"
	"net/http"

	"github.com/vadiminshakov/coinboard/internal/app"
	"github.com/vadiminshakov/coinboard/internal/domain"
)

type navigateRequest struct {
	View domain.View `json:"view"`
}

type categoryRequest struct {
	Category string `json:"category"`
}

type heatmapModeRequest struct {
	Mode domain.HeatmapMode `json:"mode"`
}

type importRequest struct {
	Query string `json:"query"`
}

// session runs a controller action and answers with the resulting snapshot.
// Failed actions answer with the error; the notice is visible on the next GET.
func (s *Server) session(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, c *app.Controller) error) {
	c := s.deps.Controller
	if c == nil {
		http.Error(w, "dashboard session disabled", http.StatusServiceUnavailable)
		return
	}

	if err := action(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.session(w, r, func(context.Context, *app.Controller) error { return nil })
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	s.session(w, r, func(_ context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		return c.Navigate(req.View)
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	s.session(w, r, func(_ context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		return c.SelectCategory(req.Category)
	})
}

func (s *Server) handleHeatmapMode(w http.ResponseWriter, r *http.Request) {
	var req heatmapModeRequest
	s.session(w, r, func(_ context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		return c.SetHeatmapMode(req.Mode)
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	var req app.TableUpdate
	s.session(w, r, func(_ context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		return c.UpdateTable(req)
	})
}

func (s *Server) handleDashboardRefresh(w http.ResponseWriter, r *http.Request) {
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		return c.Refresh(ctx)
	})
}

func (s *Server) handleDashboardCreate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		_, err := c.CreateWatchlist(ctx, req.Name)
		return err
	})
}

func (s *Server) handleDashboardRename(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		_, err := c.RenameWatchlist(ctx, r.PathValue("id"), req.Name)
		return err
	})
}

func (s *Server) handleDashboardDelete(w http.ResponseWriter, r *http.Request) {
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		return c.DeleteWatchlist(ctx, r.PathValue("id"))
	})
}

func (s *Server) handleDashboardImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		_, err := c.ImportCoins(ctx, r.PathValue("id"), req.Query)
		return err
	})
}

func (s *Server) handleDashboardNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		_, err := c.SetNote(ctx, r.PathValue("id"), r.PathValue("coinId"), req.Text)
		return err
	})
}

func (s *Server) handleDashboardRefreshConfig(w http.ResponseWriter, r *http.Request) {
	var patch domain.RefreshConfigPatch
	s.session(w, r, func(ctx context.Context, c *app.Controller) error {
		if err := decodeBody(r, &patch); err != nil {
			return err
		}
		_, err := c.UpdateRefreshConfig(ctx, domain.StreamID(r.PathValue("id")), patch)
		return err
	})
}
