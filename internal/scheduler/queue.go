// Package scheduler builds the ordered card queue for a review session.
// Queue building is pure: the same card snapshot and clock always produce
// the same sequence, so a queue can be rebuilt at any time.
package scheduler

import (
	"sort"
	"time"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/domain/fsrs"
)

// Classification says why a card was queued.
type Classification string

// Queue entry classifications.
const (
	ClassificationDue Classification = "due"
	ClassificationNew Classification = "new"
)

// QueueEntry is one position in a session queue. Entries are ephemeral:
// they are built per session and never persisted.
type QueueEntry struct {
	Card           *domain.Card
	Classification Classification

	// Urgency combines how overdue the card is with how far its recall
	// probability has decayed. Informational; the queue order itself is
	// defined by due time and stability.
	Urgency float64
}

// Scheduler builds session queues. It is stateless apart from the FSRS
// service it uses to estimate retrievability, and is safe to share across
// learners.
type Scheduler struct {
	srs fsrs.Service
}

// New creates a Scheduler backed by the given FSRS service.
func New(srs fsrs.Service) *Scheduler {
	if srs == nil {
		panic("srs service cannot be nil")
	}
	return &Scheduler{srs: srs}
}

// BuildSessionQueue partitions the learner's cards into due and new sets,
// orders them, and interleaves them under the session limits.
//
// Due cards (state other than New, due <= now) are capped at maxTotal and
// ordered most-overdue first, ties broken by ascending stability so the
// fastest-decaying cards surface first. New cards are capped at
// min(maxNew, maxTotal) and kept in creation order.
//
// Interleaving inserts one new card after every ceil(due/new) due cards, so
// a session never opens with a wall of unfamiliar material and new cards
// never cluster. With no due cards the new cards are returned as-is; with
// no cards at all the result is empty, which callers surface as "nothing
// due". maxTotal = 0 returns an empty queue without error.
func (s *Scheduler) BuildSessionQueue(
	cards []*domain.Card,
	now time.Time,
	maxTotal, maxNew int,
) []QueueEntry {
	if maxTotal <= 0 {
		return nil
	}

	var due, fresh []*domain.Card
	for _, card := range cards {
		switch {
		case card.IsDue(now):
			due = append(due, card)
		case card.IsNew():
			fresh = append(fresh, card)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].Due.Equal(due[j].Due) {
			return due[i].Due.Before(due[j].Due)
		}
		return due[i].Stability < due[j].Stability
	})

	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
		}
		return fresh[i].ID.String() < fresh[j].ID.String()
	})

	if len(due) > maxTotal {
		due = due[:maxTotal]
	}

	newLimit := maxNew
	if newLimit > maxTotal {
		newLimit = maxTotal
	}
	if newLimit < 0 {
		newLimit = 0
	}
	if len(fresh) > newLimit {
		fresh = fresh[:newLimit]
	}

	return s.interleave(due, fresh, now)
}

// interleave merges the ordered due and new sets into the final sequence.
func (s *Scheduler) interleave(due, fresh []*domain.Card, now time.Time) []QueueEntry {
	queue := make([]QueueEntry, 0, len(due)+len(fresh))

	if len(due) == 0 {
		for _, card := range fresh {
			queue = append(queue, s.entry(card, ClassificationNew, now))
		}
		return queue
	}

	interval := len(due)
	if len(fresh) > 0 {
		interval = (len(due) + len(fresh) - 1) / len(fresh) // ceil(due/new)
	}

	newIdx := 0
	for i, card := range due {
		queue = append(queue, s.entry(card, ClassificationDue, now))
		if newIdx < len(fresh) && (i+1)%interval == 0 {
			queue = append(queue, s.entry(fresh[newIdx], ClassificationNew, now))
			newIdx++
		}
	}

	for ; newIdx < len(fresh); newIdx++ {
		queue = append(queue, s.entry(fresh[newIdx], ClassificationNew, now))
	}

	return queue
}

// entry builds a QueueEntry with its urgency score.
func (s *Scheduler) entry(card *domain.Card, class Classification, now time.Time) QueueEntry {
	urgency := 1 - s.srs.Retrievability(card, now)
	if class == ClassificationDue {
		urgency += now.Sub(card.Due).Hours() / 24
	}

	return QueueEntry{
		Card:           card,
		Classification: class,
		Urgency:        urgency,
	}
}
