package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
)

// Status is a session's lifecycle state.
type Status string

// Session lifecycle states. A session moves Running -> Completed when its
// queue is exhausted, or Running -> Aborted when ended early. Finished
// sessions never transition again.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// presentation is the exercise currently awaiting an answer.
type presentation struct {
	entry       scheduler.QueueEntry
	exercise    *domain.Exercise
	presentedAt time.Time
}

// Session is the in-memory state of one review session. All fields are
// guarded by mu; the service locks per operation so a session tolerates a
// misbehaving client double-submitting, even though the protocol assumes a
// single driver.
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	learnerID uuid.UUID
	status    Status
	startedAt time.Time
	endedAt   time.Time

	queue    []scheduler.QueueEntry
	position int
	active   *presentation

	// Each session gets its own selector so type-variety history is scoped
	// to this session.
	selector ExerciseSelector

	presented    int
	correct      int
	ratingCounts map[domain.Rating]int

	lastTouched time.Time
}

func newSession(learnerID uuid.UUID, queue []scheduler.QueueEntry, selector ExerciseSelector, now time.Time) *Session {
	return &Session{
		id:           uuid.New(),
		learnerID:    learnerID,
		status:       StatusRunning,
		startedAt:    now,
		queue:        queue,
		selector:     selector,
		ratingCounts: make(map[domain.Rating]int),
		lastTouched:  now,
	}
}

// finished reports whether the session has reached a terminal status.
// Callers must hold s.mu.
func (s *Session) finished() bool {
	return s.status != StatusRunning
}

// exhausted reports whether every queue entry has been presented and
// answered. Callers must hold s.mu.
func (s *Session) exhausted() bool {
	return s.position >= len(s.queue) && s.active == nil
}

// end moves the session to a terminal status. Callers must hold s.mu.
func (s *Session) end(now time.Time) {
	if s.finished() {
		return
	}

	if s.exhausted() {
		s.status = StatusCompleted
	} else {
		s.status = StatusAborted
	}
	s.endedAt = now
	s.active = nil
}

// summary snapshots the session. Callers must hold s.mu.
func (s *Session) summary() *Summary {
	counts := make(map[domain.Rating]int, len(s.ratingCounts))
	for rating, n := range s.ratingCounts {
		counts[rating] = n
	}

	return &Summary{
		SessionID:    s.id,
		LearnerID:    s.learnerID,
		Status:       s.status,
		StartedAt:    s.startedAt,
		EndedAt:      s.endedAt,
		Presented:    s.presented,
		Correct:      s.correct,
		RatingCounts: counts,
	}
}
