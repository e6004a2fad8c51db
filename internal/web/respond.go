package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

const maxBodyBytes = 1 << 20

// ErrorBody JSON shape of every error response.
type ErrorBody struct {
	Error string           `json:"error"`
	Code  domain.ErrorKind `json:"code"`
}

// StatusFor maps an error kind onto its HTTP status code.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNoMatches:
		return http.StatusUnprocessableEntity
	case domain.KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Classify(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		s.l.Sugar().Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, ErrorBody{Error: err.Error(), Code: kind})
}

// decodeBody reads a JSON request body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.Validationf("malformed request body: %v", err)
	}

	return nil
}
