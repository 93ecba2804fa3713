package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// MockEventHandler records the events it receives and can be configured to fail.
type MockEventHandler struct {
	HandledCount int
	LastEvent    *ReviewGradedEvent
	HandlerError error
}

func (h *MockEventHandler) HandleEvent(_ context.Context, event *ReviewGradedEvent) error {
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func gradedEvent() *ReviewGradedEvent {
	now := time.Now().UTC()
	return NewReviewGradedEvent(uuid.New(), &domain.ReviewEvent{
		ID:           uuid.New(),
		CardID:       uuid.New(),
		LearnerID:    uuid.New(),
		ExerciseType: domain.ExerciseTypeMCQ,
		Rating:       domain.RatingGood,
		After: domain.MemoryState{
			Stability:  2.4,
			Difficulty: 5.0,
			Due:        now.Add(48 * time.Hour),
			Reps:       1,
			State:      domain.CardStateLearning,
		},
		ReviewedAt: now,
	}, true)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		err := emitter.EmitEvent(context.Background(), gradedEvent())
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event := gradedEvent()
		err := emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{
			HandlerError: errors.New("handler error"),
		}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), gradedEvent())
		assert.Error(t, err)
		assert.Equal(t, "handler error", err.Error())

		// Delivery continues past the failure.
		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
	})
}

func TestNewReviewGradedEvent(t *testing.T) {
	event := gradedEvent()

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, domain.RatingGood, event.Rating)
	assert.True(t, event.Correct)
	assert.False(t, event.NextDue.IsZero())
}
