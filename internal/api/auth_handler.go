package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hindisrs/hindi-srs/internal/api/middleware"
	"github.com/hindisrs/hindi-srs/internal/api/shared"
	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
	"github.com/hindisrs/hindi-srs/internal/service/auth"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// AuthHandler handles learner registration and login.
type AuthHandler struct {
	learnerStore store.LearnerStore
	jwtService   auth.JWTService
	verifier     auth.PasswordVerifier
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. Panics if any dependency is nil.
func NewAuthHandler(
	learnerStore store.LearnerStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) *AuthHandler {
	if learnerStore == nil {
		panic("learnerStore cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &AuthHandler{
		learnerStore: learnerStore,
		jwtService:   jwtService,
		verifier:     verifier,
		validate:     validator.New(),
		logger:       log.With("component", "auth_handler"),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid registration details")
		return
	}

	learner, err := domain.NewLearner(req.Email, req.Name, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.learnerStore.Create(ctx, learner); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email address is already registered")
			return
		}
		log.Error("failed to create learner", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := h.jwtService.GenerateToken(ctx, learner.ID)
	if err != nil {
		log.Error("failed to generate token after registration",
			"error", err, "learner_id", learner.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.Info("learner registered", "learner_id", learner.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		LearnerID: learner.ID,
		Token:     token,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	learner, err := h.learnerStore.GetByEmail(ctx, req.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Same response as a wrong password so the endpoint does not
			// reveal which emails are registered.
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error("failed to look up learner", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := h.verifier.Compare(learner.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwtService.GenerateToken(ctx, learner.ID)
	if err != nil {
		log.Error("failed to generate token", "error", err, "learner_id", learner.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		LearnerID: learner.ID,
		Token:     token,
	})
}

// UpdateLevel handles PUT /api/learners/level.
func (h *AuthHandler) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Level must be one of A1, A2, B1, B2, C1, C2")
		return
	}

	if err := h.learnerStore.UpdateLevel(ctx, learnerID, req.Level); err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Learner not found")
			return
		}
		log.Error("failed to update learner level", "error", err, "learner_id", learnerID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update level")
		return
	}

	log.Info("learner level updated", "learner_id", learnerID, "level", req.Level)
	w.WriteHeader(http.StatusNoContent)
}
