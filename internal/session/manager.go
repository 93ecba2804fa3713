package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager is the in-memory session registry. Sessions live only in the
// process that started them; the registry guards its own map and evicts
// sessions idle past the TTL.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a registry that evicts sessions idle longer than ttl.
func NewManager(ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		logger:   logger.With("component", "session_manager"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Put registers a session.
func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.id] = s
}

// Get returns the session with the given ID, or ErrSessionNotFound if it
// does not exist or has been evicted.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Sweep evicts sessions whose last activity predates the TTL cutoff and
// returns how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.lastTouched.Before(cutoff)
		s.mu.Unlock()

		if stale {
			delete(m.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Info("evicted stale sessions",
			"evicted", evicted,
			"remaining", len(m.sessions))
	}

	return evicted
}

// StartReaper sweeps at the given interval until the context is cancelled.
func (m *Manager) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
