package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindisrs/hindi-srs/internal/api/middleware"
	"github.com/hindisrs/hindi-srs/internal/assessment"
	"github.com/hindisrs/hindi-srs/internal/config"
	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
	"github.com/hindisrs/hindi-srs/internal/service/auth"
	"github.com/hindisrs/hindi-srs/internal/session"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// fakeLearnerStore is an in-memory LearnerStore keyed by email.
type fakeLearnerStore struct {
	byEmail map[string]*domain.Learner
}

func newFakeLearnerStore() *fakeLearnerStore {
	return &fakeLearnerStore{byEmail: make(map[string]*domain.Learner)}
}

func (s *fakeLearnerStore) Create(_ context.Context, learner *domain.Learner) error {
	if _, exists := s.byEmail[learner.Email]; exists {
		return store.ErrEmailExists
	}
	hasher := auth.NewBcryptVerifier()
	hashed, err := hasher.Hash(learner.Password)
	if err != nil {
		return err
	}
	learner.HashedPassword = hashed
	learner.Password = ""
	s.byEmail[learner.Email] = learner
	return nil
}

func (s *fakeLearnerStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Learner, error) {
	for _, l := range s.byEmail {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrLearnerNotFound
}

func (s *fakeLearnerStore) GetByEmail(_ context.Context, email string) (*domain.Learner, error) {
	l, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrLearnerNotFound
	}
	return l, nil
}

func (s *fakeLearnerStore) UpdateLevel(_ context.Context, id uuid.UUID, level string) error {
	for _, l := range s.byEmail {
		if l.ID == id {
			l.CurrentLevel = level
			return nil
		}
	}
	return store.ErrLearnerNotFound
}

// fakeSessionService implements session.Service with canned responses.
type fakeSessionService struct {
	summary *session.Summary
	prompt  *session.Prompt
	result  *session.Result

	startErr  error
	nextErr   error
	submitErr error

	submitted []session.Answer
}

func (f *fakeSessionService) Start(_ context.Context, learnerID uuid.UUID) (*session.Summary, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.summary, nil
}

func (f *fakeSessionService) Next(_ context.Context, _ uuid.UUID) (*session.Prompt, error) {
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return f.prompt, nil
}

func (f *fakeSessionService) Submit(_ context.Context, _ uuid.UUID, answer session.Answer) (*session.Result, error) {
	f.submitted = append(f.submitted, answer)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.result, nil
}

func (f *fakeSessionService) End(_ context.Context, _ uuid.UUID) (*session.Summary, error) {
	return f.summary, nil
}

func (f *fakeSessionService) Stats(_ context.Context, sessionID uuid.UUID) (*session.Summary, error) {
	if f.summary == nil || f.summary.SessionID != sessionID {
		return nil, session.ErrSessionNotFound
	}
	return f.summary, nil
}

// fakeStatsStore returns fixed aggregates.
type fakeStatsStore struct {
	stats *store.LearnerStats
}

func (f *fakeStatsStore) GetLearnerStats(_ context.Context, _ uuid.UUID, _ time.Time) (*store.LearnerStats, error) {
	return f.stats, nil
}

type testServer struct {
	router   http.Handler
	jwt      auth.JWTService
	learners *fakeLearnerStore
	sessions *fakeSessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.Setup("error")
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	learners := newFakeLearnerStore()
	sessions := &fakeSessionService{}

	router := NewRouter(RouterDeps{
		Auth:     NewAuthHandler(learners, jwtService, auth.NewBcryptVerifier(), log),
		Sessions: NewSessionHandler(sessions, log),
		Stats:    NewStatsHandler(&fakeStatsStore{stats: &store.LearnerStats{TotalCards: 4}}, log),
		AuthMW:   middleware.NewAuthMiddleware(jwtService),
		Logger:   log,
	})

	return &testServer{router: router, jwt: jwtService, learners: learners, sessions: sessions}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "asha@example.com",
		Name:     "Asha",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.Token)
	assert.NotEqual(t, uuid.Nil, created.LearnerID)

	// Duplicate registration conflicts.
	rec = ts.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "asha@example.com",
		Name:     "Asha",
		Password: "correct horse battery",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login with the right password succeeds.
	rec = ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "asha@example.com",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Wrong password and unknown email both report the same 401.
	rec = ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong password here",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "not-an-email",
		Name:     "Asha",
		Password: "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "asha@example.com",
		Name:     "Asha",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionEndpointsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/sessions", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t)
	learnerID := uuid.New()
	sessionID := uuid.New()

	token, err := ts.jwt.GenerateToken(context.Background(), learnerID)
	require.NoError(t, err)

	exercise := &domain.Exercise{
		ID:      uuid.New(),
		Type:    domain.ExerciseTypeMCQ,
		Prompt:  "What does पानी mean?",
		Answer:  "water",
		Options: []string{"water", "fire", "bread", "milk"},
	}
	ts.sessions.summary = &session.Summary{
		SessionID: sessionID,
		LearnerID: learnerID,
		Status:    session.StatusRunning,
	}
	ts.sessions.prompt = &session.Prompt{
		SessionID:      sessionID,
		CardID:         uuid.New(),
		Exercise:       exercise,
		Classification: scheduler.ClassificationDue,
		Remaining:      2,
	}
	ts.sessions.result = &session.Result{
		Assessment: assessment.Assessment{Correct: true, SuggestedRating: domain.RatingEasy},
		Rating:     domain.RatingEasy,
		State:      domain.CardStateReview,
	}

	rec := ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/sessions/"+sessionID.String()+"/next", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	var prompt PromptResponse
	require.NoError(t, json.Unmarshal([]byte(body), &prompt))
	assert.Equal(t, exercise.Prompt, prompt.Exercise.Prompt)

	// The prompt must not leak the expected answer.
	assert.NotContains(t, body, `"answer"`)

	hard := domain.RatingHard
	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sessionID.String()+"/answers", token, SubmitAnswerRequest{
		Response:   "water",
		ElapsedMs:  1200,
		SelfRating: &hard,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result session.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.Assessment.Correct)
	assert.Equal(t, domain.RatingEasy, result.Rating)

	// The learner's self-rating reaches the service untouched.
	require.Len(t, ts.sessions.submitted, 1)
	require.NotNil(t, ts.sessions.submitted[0].SelfRating)
	assert.Equal(t, domain.RatingHard, *ts.sessions.submitted[0].SelfRating)

	rec = ts.do(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionOwnership(t *testing.T) {
	ts := newTestServer(t)
	owner := uuid.New()
	intruder := uuid.New()
	sessionID := uuid.New()

	ts.sessions.summary = &session.Summary{
		SessionID: sessionID,
		LearnerID: owner,
		Status:    session.StatusRunning,
	}

	token, err := ts.jwt.GenerateToken(context.Background(), intruder)
	require.NoError(t, err)

	// Someone else's session looks like it does not exist.
	rec := ts.do(t, http.MethodGet, "/api/sessions/"+sessionID.String()+"/next", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sessionID.String()+"/end", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	learnerID := uuid.New()
	sessionID := uuid.New()

	token, err := ts.jwt.GenerateToken(context.Background(), learnerID)
	require.NoError(t, err)

	ts.sessions.summary = &session.Summary{
		SessionID: sessionID,
		LearnerID: learnerID,
		Status:    session.StatusCompleted,
	}

	ts.sessions.startErr = session.ErrEmptyQueue
	rec := ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.sessions.nextErr = session.ErrSessionDone
	rec = ts.do(t, http.MethodGet, "/api/sessions/"+sessionID.String()+"/next", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.sessions.submitErr = session.ErrNoActiveExercise
	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sessionID.String()+"/answers", token, SubmitAnswerRequest{Response: "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.sessions.submitErr = &session.ServiceError{
		Operation: "submit_answer",
		Message:   "invalid self rating",
		Err:       domain.ErrInvalidRating,
	}
	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sessionID.String()+"/answers", token, SubmitAnswerRequest{Response: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/sessions/not-a-uuid/next", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLevel(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "asha@example.com",
		Name:     "Asha",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = ts.do(t, http.MethodPut, "/api/learners/level", created.Token, UpdateLevelRequest{Level: "B1"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	learner, err := ts.learners.GetByID(context.Background(), created.LearnerID)
	require.NoError(t, err)
	assert.Equal(t, "B1", learner.CurrentLevel)

	// Levels outside the CEFR scale are rejected.
	rec = ts.do(t, http.MethodPut, "/api/learners/level", created.Token, UpdateLevelRequest{Level: "Z9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/learners/level", "", UpdateLevelRequest{Level: "B1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
