package rest

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.log.Warn(r.Context(), "health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, envelope{
			Success: false,
			Message: "database unreachable",
			Data:    healthResponse{Status: "degraded", Database: "down"},
		})
		return
	}
	respondData(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
