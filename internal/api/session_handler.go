package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/api/middleware"
	"github.com/hindisrs/hindi-srs/internal/api/shared"
	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
	"github.com/hindisrs/hindi-srs/internal/session"
)

// SessionHandler exposes review sessions over HTTP.
type SessionHandler struct {
	sessions session.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler. Panics if any dependency
// is nil.
func NewSessionHandler(sessions session.Service, log *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("session service cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &SessionHandler{
		sessions: sessions,
		validate: validator.New(),
		logger:   log.With("component", "session_handler"),
	}
}

// Start handles POST /api/sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	summary, err := h.sessions.Start(ctx, learnerID)
	if err != nil {
		if errors.Is(err, session.ErrEmptyQueue) {
			shared.RespondWithError(w, r, http.StatusConflict, "No cards are due for review")
			return
		}
		log.Error("failed to start session", "error", err, "learner_id", learnerID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, summary)
}

// Next handles GET /api/sessions/{id}/next.
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	sessionID, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	prompt, err := h.sessions.Next(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionDone):
			shared.RespondWithError(w, r, http.StatusConflict, "Session is finished")
		case errors.Is(err, session.ErrSessionNotFound):
			shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		default:
			log.Error("failed to fetch next prompt", "error", err, "session_id", sessionID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch next exercise")
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newPromptResponse(prompt))
}

// Submit handles POST /api/sessions/{id}/answers.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	sessionID, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid answer payload")
		return
	}

	result, err := h.sessions.Submit(ctx, sessionID, session.Answer{
		Response:   req.Response,
		ElapsedMs:  req.ElapsedMs,
		SelfRating: req.SelfRating,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRating):
			shared.RespondWithError(w, r, http.StatusBadRequest, "Rating must be between 1 and 4")
		case errors.Is(err, session.ErrNoActiveExercise):
			shared.RespondWithError(w, r, http.StatusConflict, "No exercise is awaiting an answer")
		case errors.Is(err, session.ErrSessionDone):
			shared.RespondWithError(w, r, http.StatusConflict, "Session is finished")
		case errors.Is(err, session.ErrSessionNotFound):
			shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		default:
			log.Error("failed to submit answer", "error", err, "session_id", sessionID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to record answer")
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// End handles POST /api/sessions/{id}/end.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	sessionID, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	summary, err := h.sessions.End(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
			return
		}
		log.Error("failed to end session", "error", err, "session_id", sessionID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to end session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Stats handles GET /api/sessions/{id}/stats.
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	sessionID, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	summary, err := h.sessions.Stats(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
			return
		}
		log.Error("failed to fetch session stats", "error", err, "session_id", sessionID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch session stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// ownedSession parses the session ID from the URL and verifies it belongs to
// the authenticated learner. A session owned by someone else reports not
// found rather than forbidden, so session IDs cannot be probed. Writes the
// error response itself when the check fails.
func (h *SessionHandler) ownedSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}

	summary, err := h.sessions.Stats(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return uuid.Nil, false
	}
	if summary.LearnerID != learnerID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return uuid.Nil, false
	}

	return sessionID, true
}
