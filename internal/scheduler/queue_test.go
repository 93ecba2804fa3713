package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/domain/fsrs"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func reviewCard(t *testing.T, due time.Time, stability float64) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(uuid.New(), uuid.New(), domain.MemoryState{
		Stability:  stability,
		Difficulty: 5.0,
		Due:        due,
		Reps:       3,
		State:      domain.CardStateReview,
	})
	require.NoError(t, err)
	card.LastReviewedAt = due.Add(-time.Duration(stability*24) * time.Hour)
	return card
}

func newCard(t *testing.T, createdAt time.Time) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(uuid.New(), uuid.New(), domain.MemoryState{
		Stability:  fsrs.MinStability,
		Difficulty: 5.0,
		Due:        createdAt,
		State:      domain.CardStateNew,
	})
	require.NoError(t, err)
	card.CreatedAt = createdAt
	return card
}

func classifications(queue []QueueEntry) []Classification {
	out := make([]Classification, len(queue))
	for i, e := range queue {
		out[i] = e.Classification
	}
	return out
}

func TestBuildSessionQueueOrdering(t *testing.T) {
	t.Parallel()
	sched := New(fsrs.NewDefaultService())

	mostOverdue := reviewCard(t, testNow.Add(-72*time.Hour), 4)
	slightlyOverdue := reviewCard(t, testNow.Add(-2*time.Hour), 4)
	notDue := reviewCard(t, testNow.Add(24*time.Hour), 4)

	// Same due time, different stability: the less stable card decays
	// faster and must surface first.
	fragile := reviewCard(t, testNow.Add(-24*time.Hour), 1.5)
	sturdy := reviewCard(t, testNow.Add(-24*time.Hour), 9)

	queue := sched.BuildSessionQueue(
		[]*domain.Card{sturdy, notDue, slightlyOverdue, mostOverdue, fragile},
		testNow, 20, 10,
	)

	require.Len(t, queue, 4)
	assert.Equal(t, mostOverdue.ID, queue[0].Card.ID)
	assert.Equal(t, fragile.ID, queue[1].Card.ID)
	assert.Equal(t, sturdy.ID, queue[2].Card.ID)
	assert.Equal(t, slightlyOverdue.ID, queue[3].Card.ID)

	// Overdue urgency should exceed the barely-overdue card's.
	assert.Greater(t, queue[0].Urgency, queue[3].Urgency)
}

func TestBuildSessionQueueIdempotent(t *testing.T) {
	t.Parallel()
	sched := New(fsrs.NewDefaultService())

	cards := []*domain.Card{
		reviewCard(t, testNow.Add(-36*time.Hour), 3),
		reviewCard(t, testNow.Add(-12*time.Hour), 6),
		newCard(t, testNow.Add(-90*time.Hour)),
		newCard(t, testNow.Add(-80*time.Hour)),
		reviewCard(t, testNow.Add(-48*time.Hour), 2),
	}

	first := sched.BuildSessionQueue(cards, testNow, 20, 10)
	second := sched.BuildSessionQueue(cards, testNow, 20, 10)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Card.ID, second[i].Card.ID, "position %d differs between builds", i)
		assert.Equal(t, first[i].Classification, second[i].Classification)
	}
}

func TestBuildSessionQueueInterleaving(t *testing.T) {
	t.Parallel()
	sched := New(fsrs.NewDefaultService())

	cards := make([]*domain.Card, 0, 15)
	for i := 0; i < 10; i++ {
		cards = append(cards, reviewCard(t, testNow.Add(-time.Duration(i+1)*time.Hour), 4))
	}
	for i := 0; i < 5; i++ {
		cards = append(cards, newCard(t, testNow.Add(time.Duration(i)*time.Minute)))
	}

	queue := sched.BuildSessionQueue(cards, testNow, 20, 10)
	require.Len(t, queue, 15)

	// The session must open with due material.
	assert.Equal(t, ClassificationDue, queue[0].Classification)

	// No run of 3+ consecutive new cards while due cards remain unconsumed.
	classes := classifications(queue)
	dueRemaining := 10
	run := 0
	for _, c := range classes {
		if c == ClassificationNew {
			run++
			if run >= 3 && dueRemaining > 0 {
				t.Fatalf("found a run of %d new cards with %d due cards unconsumed: %v", run, dueRemaining, classes)
			}
		} else {
			run = 0
			dueRemaining--
		}
	}

	// All five new cards made it in.
	newCount := 0
	for _, c := range classes {
		if c == ClassificationNew {
			newCount++
		}
	}
	assert.Equal(t, 5, newCount)
}

func TestBuildSessionQueueLimits(t *testing.T) {
	t.Parallel()
	sched := New(fsrs.NewDefaultService())

	var cards []*domain.Card
	for i := 0; i < 30; i++ {
		cards = append(cards, reviewCard(t, testNow.Add(-time.Duration(i+1)*time.Hour), 4))
	}
	for i := 0; i < 12; i++ {
		cards = append(cards, newCard(t, testNow.Add(time.Duration(i)*time.Minute)))
	}

	t.Run("due capped at max total and new at max new", func(t *testing.T) {
		queue := sched.BuildSessionQueue(cards, testNow, 20, 5)

		dueCount, newCount := 0, 0
		for _, e := range queue {
			if e.Classification == ClassificationDue {
				dueCount++
			} else {
				newCount++
			}
		}
		assert.Equal(t, 20, dueCount)
		assert.Equal(t, 5, newCount)
	})

	t.Run("new count never exceeds max total", func(t *testing.T) {
		queue := sched.BuildSessionQueue(cards, testNow, 3, 10)

		newCount := 0
		for _, e := range queue {
			if e.Classification == ClassificationNew {
				newCount++
			}
		}
		assert.LessOrEqual(t, newCount, 3)
	})

	t.Run("zero max total returns empty without error", func(t *testing.T) {
		assert.Empty(t, sched.BuildSessionQueue(cards, testNow, 0, 10))
	})

	t.Run("no cards returns empty", func(t *testing.T) {
		assert.Empty(t, sched.BuildSessionQueue(nil, testNow, 20, 10))
	})

	t.Run("only new cards are returned in creation order", func(t *testing.T) {
		fresh := []*domain.Card{
			newCard(t, testNow.Add(3*time.Minute)),
			newCard(t, testNow.Add(1*time.Minute)),
			newCard(t, testNow.Add(2*time.Minute)),
		}

		queue := sched.BuildSessionQueue(fresh, testNow, 10, 10)
		require.Len(t, queue, 3)
		assert.Equal(t, fresh[1].ID, queue[0].Card.ID)
		assert.Equal(t, fresh[2].ID, queue[1].Card.ID)
		assert.Equal(t, fresh[0].ID, queue[2].Card.ID)
	})
}
