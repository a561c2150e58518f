package api

import (
	"net/http"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
)

// handleGetStats returns the user's reading statistics.
// GET /api/v1/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	stats, err := s.statsService.Compute(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to compute stats", "user_id", userID, "error", err)
		response.InternalError(w, "Failed to compute statistics", s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}
