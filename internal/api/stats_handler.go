package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hindisrs/hindi-srs/internal/api/middleware"
	"github.com/hindisrs/hindi-srs/internal/api/shared"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// StatsHandler exposes learner-wide progress aggregates.
type StatsHandler struct {
	stats  store.StatsStore
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsHandler creates a new StatsHandler. Panics if any dependency is nil.
func NewStatsHandler(stats store.StatsStore, log *slog.Logger) *StatsHandler {
	if stats == nil {
		panic("stats store cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &StatsHandler{
		stats:  stats,
		logger: log.With("component", "stats_handler"),
		now:    time.Now,
	}
}

// Learner handles GET /api/stats.
func (h *StatsHandler) Learner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.stats.GetLearnerStats(ctx, learnerID, h.now().UTC())
	if err != nil {
		log.Error("failed to compute learner stats", "error", err, "learner_id", learnerID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
