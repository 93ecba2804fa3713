package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerPutGet(t *testing.T) {
	t.Parallel()
	m := NewManager(time.Hour, discardLogger())

	sess := newSession(uuid.New(), nil, nil, time.Now().UTC())
	m.Put(sess)

	got, err := m.Get(sess.id)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerSweepEvictsStaleSessions(t *testing.T) {
	t.Parallel()
	m := NewManager(30*time.Minute, discardLogger())

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := newSession(uuid.New(), nil, nil, start)
	active := newSession(uuid.New(), nil, nil, start)
	active.lastTouched = start.Add(50 * time.Minute)
	m.Put(stale)
	m.Put(active)

	m.now = func() time.Time { return start.Add(time.Hour) }

	evicted := m.Sweep()
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())

	_, err := m.Get(stale.id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Get(active.id)
	assert.NoError(t, err)
}
