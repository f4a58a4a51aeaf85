package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rise-pro/debt-aging/internal/api/middleware"
	"github.com/rise-pro/debt-aging/internal/history"
)

// HistoryHandler handles run-history endpoints.
type HistoryHandler struct {
	repo history.Repository
	log  zerolog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(repo history.Repository, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo: repo,
		log:  log,
	}
}

// ListRuns handles GET /api/processing-history.
func (h *HistoryHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	runs, err := h.repo.ListRecentRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list processing history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list processing history")
		return
	}

	if runs == nil {
		runs = []*history.RunRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
