package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/lifedesk/internal/common"
)

// maxBodyBytes bounds request bodies; every payload here is a small form.
const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Message: message})
}

// writeError maps a service error to its status code. Anything unexpected
// is logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrTokenExpired):
		respondError(w, http.StatusUnauthorized, "access token expired")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		respondError(w, http.StatusUnauthorized, "refresh token expired")
	case errors.Is(err, common.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, common.ErrorUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorConflict):
		respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, common.ErrorUnavailable):
		respondError(w, http.StatusServiceUnavailable, "feature unavailable")
	default:
		s.log.Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		msg := "internal server error"
		if s.debug {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		respondError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrorValidation)
		}
		return fmt.Errorf("%w: invalid request body", common.ErrorValidation)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single object", common.ErrorValidation)
	}
	return nil
}
