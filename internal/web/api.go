package web

import (
	"net/http"
	"strings"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

type nameRequest struct {
	Name string `json:"name"`
}

type coinIDsRequest struct {
	IDs  []string           `json:"ids"`
	Mode domain.CoinIDsMode `json:"mode"`
}

type noteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Backend.ListAssets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSearchAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.writeError(w, r, domain.Validationf("query is blank"))
		return
	}

	ids, err := s.deps.Backend.FindAssetsByQuery(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleListWatchlists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.deps.Backend.ListWatchlists(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.deps.Backend.CreateWatchlist(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleRenameWatchlist(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	renamed, err := s.deps.Backend.RenameWatchlist(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

func (s *Server) handleDeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Backend.DeleteWatchlist(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCoinIDs(w http.ResponseWriter, r *http.Request) {
	var req coinIDsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.deps.Backend.UpdateWatchlistCoinIDs(r.Context(), r.PathValue("id"), req.IDs, req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.deps.Backend.SetWatchlistNote(r.Context(), r.PathValue("id"), r.PathValue("coinId"), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListRefreshConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.deps.Backend.ListRefreshConfigs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleUpdateRefreshConfig(w http.ResponseWriter, r *http.Request) {
	var patch domain.RefreshConfigPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	configs, err := s.deps.Backend.UpdateRefreshConfig(r.Context(), domain.StreamID(r.PathValue("id")), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}
